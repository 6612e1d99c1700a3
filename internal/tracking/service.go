// Package tracking ingests GPS samples for trips and keeps their scores
// current.
package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"backend-socialbox/internal/events"
	"backend-socialbox/internal/scoring"
	"backend-socialbox/internal/trip"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var ErrInvalidBatch = errors.New("invalid sample batch")

type Broadcaster interface {
	Broadcast(tripID string, payload []byte)
}

type Publisher interface {
	PublishTripScored(ev events.TripScored) error
}

type Invalidator interface {
	Invalidate(userID string)
}

type Recorder interface {
	ObserveScoring(d time.Duration, scores scoring.ScoreMap)
	SamplesAppended(n int)
	BatchRejected(reason string)
	Broadcasted()
}

// Deps are the optional collaborators notified after a trip is rescored.
type Deps struct {
	Hub     Broadcaster
	Events  Publisher
	Summary Invalidator
	Metrics Recorder
}

type Service struct {
	trips  *trip.Service
	scorer *scoring.Scorer
	deps   Deps
}

func NewService(trips *trip.Service, scorer *scoring.Scorer, deps Deps) *Service {
	if scorer == nil {
		scorer = scoring.New()
	}
	return &Service{trips: trips, scorer: scorer, deps: deps}
}

// Record appends a batch to a trip owned by userID, rescores the whole trip
// and stores the new scores in one transaction. The batch is validated before
// anything is written. Broadcasts and events go out after commit.
func (s *Service) Record(ctx context.Context, userID, tripID string, batch trip.Batch) (trip.Trip, error) {
	if err := s.validate(batch); err != nil {
		return trip.Trip{}, err
	}
	var (
		samples  []scoring.Sample
		segments []scoring.Segment
		elapsed  time.Duration
	)
	t, err := s.trips.AppendAndScore(ctx, tripID, userID, batch, func(t trip.Trip) (scoring.ScoreMap, error) {
		var err error
		samples, err = t.Samples()
		if err != nil {
			return nil, fmt.Errorf("stored samples of trip %s: %w", tripID, err)
		}
		start := time.Now()
		segments = scoring.DeriveSegments(samples)
		scores := s.scorer.Score(samples, segments)
		elapsed = time.Since(start)
		return scores, nil
	})
	if err != nil {
		return trip.Trip{}, err
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.SamplesAppended(batch.Len())
		s.deps.Metrics.ObserveScoring(elapsed, t.Scores)
	}

	if s.deps.Summary != nil {
		s.deps.Summary.Invalidate(t.UserID)
	}
	s.notify(t, samples, segments)
	return t, nil
}

func (s *Service) validate(batch trip.Batch) error {
	reject := func(reason string, err error) error {
		if s.deps.Metrics != nil {
			s.deps.Metrics.BatchRejected(reason)
		}
		return fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}
	if batch.Len() == 0 {
		return reject("empty", errors.New("no samples"))
	}
	if len(batch.Long) != batch.Len() || len(batch.Timestamps) != batch.Len() {
		return reject("count_mismatch", scoring.ErrLengthMismatch)
	}
	if _, err := scoring.ParseSamples(batch.Lat, batch.Long, batch.Timestamps); err != nil {
		return reject("parse", err)
	}
	return nil
}

func (s *Service) notify(t trip.Trip, samples []scoring.Sample, segments []scoring.Segment) {
	if s.deps.Hub != nil {
		payload, err := json.Marshal(ScoreUpdate{
			TripID:   t.ID,
			Scores:   t.Scores,
			Stats:    scoring.Summarize(samples, segments),
			ScoredAt: *t.ScoredAt,
		})
		if err != nil {
			log.Printf("score update encode error: %v", err)
		} else {
			s.deps.Hub.Broadcast(t.ID, payload)
			if s.deps.Metrics != nil {
				s.deps.Metrics.Broadcasted()
			}
		}
	}
	if s.deps.Events != nil {
		err := s.deps.Events.PublishTripScored(events.TripScored{
			TripID:   t.ID,
			UserID:   t.UserID,
			Samples:  len(samples),
			Scores:   t.Scores,
			ScoredAt: *t.ScoredAt,
		})
		if err != nil {
			log.Printf("trip scored event publish error: %v", err)
		}
	}
}

func (s *Service) Summary(ctx context.Context, userID, tripID string) (Summary, error) {
	t, samples, err := s.load(ctx, userID, tripID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		TripID: t.ID,
		Scores: t.Scores,
		Stats:  scoring.Summarize(samples, scoring.DeriveSegments(samples)),
	}, nil
}

func (s *Service) Segments(ctx context.Context, userID, tripID string) ([]scoring.Segment, error) {
	_, samples, err := s.load(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	segments := scoring.DeriveSegments(samples)
	if segments == nil {
		segments = []scoring.Segment{}
	}
	return segments, nil
}

// GeoJSON renders the trip path as a feature carrying its scores. A trip
// with a single sample is a Point.
func (s *Service) GeoJSON(ctx context.Context, userID, tripID string) (*geojson.Feature, error) {
	t, samples, err := s.load(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	var geom orb.Geometry
	if len(samples) == 1 {
		geom = orb.Point{samples[0].Lon, samples[0].Lat}
	} else {
		line := make(orb.LineString, 0, len(samples))
		for _, sm := range samples {
			line = append(line, orb.Point{sm.Lon, sm.Lat})
		}
		geom = line
	}

	stats := scoring.Summarize(samples, scoring.DeriveSegments(samples))
	feature := geojson.NewFeature(geom)
	feature.ID = t.ID
	feature.Properties["trip_id"] = t.ID
	feature.Properties["user_id"] = t.UserID
	feature.Properties["start_time"] = t.StartTime
	feature.Properties["scores"] = t.Scores
	feature.Properties["distance_miles"] = stats.DistanceMiles
	feature.Properties["duration_seconds"] = stats.DurationSeconds
	if len(samples) > 0 {
		feature.Properties["started_at"] = samples[0].At()
		feature.Properties["ended_at"] = samples[len(samples)-1].At()
	}
	return feature, nil
}

func (s *Service) load(ctx context.Context, userID, tripID string) (trip.Trip, []scoring.Sample, error) {
	t, err := s.trips.GetOwned(ctx, tripID, userID)
	if err != nil {
		return trip.Trip{}, nil, err
	}
	samples, err := t.Samples()
	if err != nil {
		return trip.Trip{}, nil, fmt.Errorf("stored samples of trip %s: %w", tripID, err)
	}
	return t, samples, nil
}
