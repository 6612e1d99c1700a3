package metrics

import (
	"net/http"
	"strconv"
	"time"

	"backend-socialbox/internal/scoring"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	TripsScored     prometheus.Counter
	SamplesIngested prometheus.Counter
	BatchesRejected *prometheus.CounterVec // reason label: empty|count_mismatch|parse

	ScoringDuration prometheus.Histogram
	TripScore       *prometheus.HistogramVec // category label

	EventsPublished   prometheus.Counter
	EventPublishErrs  prometheus.Counter
	StreamBroadcasts  prometheus.Counter
	HTTPRequests      *prometheus.CounterVec // method, status
	HTTPRequestTiming prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		TripsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "socialbox_trips_scored_total",
			Help: "Total trip rescoring passes.",
		}),
		SamplesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "socialbox_samples_ingested_total",
			Help: "Total GPS samples appended to trips.",
		}),
		BatchesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialbox_sample_batches_rejected_total",
			Help: "Sample batches rejected before storage.",
		}, []string{"reason"}),
		ScoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "socialbox_scoring_duration_seconds",
			Help:    "Time spent deriving segments and scoring a trip.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
		TripScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "socialbox_trip_score",
			Help:    "Distribution of trip scores per category.",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}, []string{"category"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "socialbox_events_published_total",
			Help: "Total trip events published to NATS.",
		}),
		EventPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "socialbox_event_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		StreamBroadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "socialbox_stream_broadcasts_total",
			Help: "Total score updates broadcast to websocket watchers.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialbox_http_requests_total",
			Help: "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		HTTPRequestTiming: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "socialbox_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.TripsScored, c.SamplesIngested, c.BatchesRejected,
		c.ScoringDuration, c.TripScore,
		c.EventsPublished, c.EventPublishErrs, c.StreamBroadcasts,
		c.HTTPRequests, c.HTTPRequestTiming,
	)
	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// FiberHandler exposes Handler on a fiber route.
func (c *Collector) FiberHandler() fiber.Handler { return adaptor.HTTPHandler(c.Handler()) }

// Middleware counts requests passing through the fiber app.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		status := ctx.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		c.HTTPRequests.WithLabelValues(ctx.Method(), strconv.Itoa(status)).Inc()
		c.HTTPRequestTiming.Observe(time.Since(start).Seconds())
		return err
	}
}

func (c *Collector) ObserveScoring(d time.Duration, scores scoring.ScoreMap) {
	c.TripsScored.Inc()
	c.ScoringDuration.Observe(d.Seconds())
	for _, cat := range scoring.Categories {
		c.TripScore.WithLabelValues(string(cat)).Observe(float64(scores[cat]))
	}
}

func (c *Collector) SamplesAppended(n int) { c.SamplesIngested.Add(float64(n)) }

func (c *Collector) BatchRejected(reason string) { c.BatchesRejected.WithLabelValues(reason).Inc() }

func (c *Collector) Broadcasted() { c.StreamBroadcasts.Inc() }

func (c *Collector) EventPublished() { c.EventsPublished.Inc() }

func (c *Collector) EventPublishFailed() { c.EventPublishErrs.Inc() }
