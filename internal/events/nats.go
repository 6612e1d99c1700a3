// Package events publishes trip lifecycle events to NATS.
package events

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"backend-socialbox/internal/scoring"

	"github.com/nats-io/nats.go"
)

const subjectPrefix = "trips.scored."

// TripScored is emitted every time a trip is rescored after new samples.
type TripScored struct {
	TripID   string           `json:"trip_id"`
	UserID   string           `json:"user_id"`
	Samples  int              `json:"samples"`
	Scores   scoring.ScoreMap `json:"scores"`
	ScoredAt time.Time        `json:"scored_at"`
}

type PublisherMetrics interface {
	EventPublished()
	EventPublishFailed()
}

type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
	Close()
}

type NATSPublisher struct {
	nc      conn
	metrics PublisherMetrics
}

func NewNATSPublisher(url string, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("socialbox-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	return newPublisher(nc, m), nil
}

// Connect returns a publisher for url, or nil when url is empty.
func Connect(url string, m PublisherMetrics) (*NATSPublisher, error) {
	if url == "" {
		return nil, nil
	}
	return NewNATSPublisher(url, m)
}

func newPublisher(nc conn, m PublisherMetrics) *NATSPublisher {
	return &NATSPublisher{nc: nc, metrics: m}
}

func (p *NATSPublisher) PublishTripScored(ev TripScored) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = p.nc.Publish(Subject(ev.TripID), b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.EventPublishFailed()
		} else {
			p.metrics.EventPublished()
		}
	}
	return err
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// Subject is the NATS subject for a trip's score events.
func Subject(tripID string) string {
	return subjectPrefix + subjectToken(tripID)
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS tokens cannot contain spaces, '>', '*' or '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
