package server

import (
	"backend-socialbox/internal/auth"
	"backend-socialbox/internal/config"
	"backend-socialbox/internal/db"
	"backend-socialbox/internal/events"
	"backend-socialbox/internal/metrics"
	"backend-socialbox/internal/scoring"
	"backend-socialbox/internal/social"
	"backend-socialbox/internal/stream"
	"backend-socialbox/internal/summary"
	"backend-socialbox/internal/tracking"
	"backend-socialbox/internal/trip"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Resources are the external connections a server runs on. Any of them may
// be nil.
type Resources struct {
	Postgres *pgxpool.Pool
	Redis    *redis.Client
	Events   *events.NATSPublisher
	Metrics  *metrics.Collector
}

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Stream  *stream.Hub
	Metrics *metrics.Collector
	Summary *summary.Service
}

func NewServer(cfg config.Config, res Resources) *Server {
	if res.Metrics == nil {
		res.Metrics = metrics.NewCollector()
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(res.Metrics.Middleware())

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      res.Postgres,
		Redis:   res.Redis,
		Stream:  stream.NewHub(res.Redis),
		Metrics: res.Metrics,
	}

	registerRoutes(s, res.Events)
	return s
}

func registerRoutes(s *Server, publisher *events.NATSPublisher) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", s.Metrics.FiberHandler())

	var q db.Querier
	if s.DB != nil {
		q = s.DB
	}

	trips := trip.NewService(q)
	s.Summary = summary.NewService(trips, s.Cfg.SummaryCacheTTL)
	trips.OnDeleted(s.Summary.Invalidate)

	deps := tracking.Deps{
		Hub:     s.Stream,
		Summary: s.Summary,
		Metrics: s.Metrics,
	}
	if publisher != nil {
		deps.Events = publisher
	}
	scorer := scoring.New(scoring.WithLocation(s.Cfg.Location()))

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, q, s.Summary))
	trip.RegisterRoutes(s.App.Group("/trips"), trips, jwtMiddleware)
	tracking.RegisterRoutes(s.App.Group("/tracking"), tracking.NewService(trips, scorer, deps), jwtMiddleware)
	summary.RegisterRoutes(s.App.Group("/users"), s.Summary, jwtMiddleware)
	social.RegisterRoutes(s.App.Group("/social"), social.NewService(q, s.Summary), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, trips, jwtMiddleware)
}
