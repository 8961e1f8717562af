package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipe-assistant/backend/config"
	"github.com/pageza/recipe-assistant/backend/internal/api"
	"github.com/pageza/recipe-assistant/backend/internal/database"
	"github.com/pageza/recipe-assistant/backend/internal/metrics"
	"github.com/pageza/recipe-assistant/backend/internal/middleware"
	"github.com/pageza/recipe-assistant/backend/internal/realtime"
	"github.com/pageza/recipe-assistant/backend/internal/service"
	"github.com/pageza/recipe-assistant/backend/internal/session"
	"github.com/pageza/recipe-assistant/backend/internal/store"
)

// Server represents the HTTP server
type Server struct {
	cfg     *config.Config
	router  *gin.Engine
	http    *http.Server
	log     logrus.FieldLogger
	backend *store.Backend
	hub     *realtime.Hub
	redis   *redis.Client
}

// New wires the store, generator, sessions and routes described by cfg.
func New(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Server, error) {
	backend, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	generator, err := service.NewGenerator(cfg, &http.Client{}, log.WithField("component", "generator"))
	if err != nil {
		backend.Close()
		return nil, err
	}
	if cfg.GeneratorProvider == config.ProviderHTTP && cfg.IsPlaceholderEndpoint() {
		log.Warn("generation endpoint not configured, serving built-in recipes")
	}

	manager, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		backend.Close()
		return nil, err
	}
	if cfg.SessionSecret == "" {
		log.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	s := &Server{cfg: cfg, log: log, backend: backend}
	s.hub = realtime.NewHub(log.WithField("component", "realtime"), cfg.CORSOrigins)
	m := metrics.New()

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		if s.redis, err = database.NewRedisClient(cfg, log); err != nil {
			log.WithError(err).Warn("rate limiting disabled, redis unavailable")
		} else {
			limiter = middleware.NewSuggestionRateLimiter(s.redis, cfg.RateLimit, cfg.RateWindow)
		}
	}

	sessions := api.NewSessionRegistry(api.SessionDeps{
		Store:     backend,
		Generator: generator,
		Extractor: service.NewExtractor(cfg),
		Publisher: s.hub,
		Log:       log,
		Metrics:   m,
		Provider:  cfg.GeneratorProvider,

		MaxSessions: cfg.SessionCacheSize,
		IdleTimeout: cfg.SessionIdleTimeout,
	})
	m.TrackLiveSessions(sessions.Len)

	gin.SetMode(config.GetEnvironment().GinMode())
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.CORS(cfg.CORSOrigins),
	)
	router.GET("/health", s.health)
	router.GET("/api/health", s.health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	app := router.Group("")
	app.Use(
		middleware.Session(manager, middleware.SessionOptions{
			Secure: config.IsProduction(),
			MaxAge: int(manager.TTL().Seconds()),
		}),
		middleware.Logger(log),
		middleware.Recovery(),
	)
	api.NewHandler(sessions, s.hub, limiter, cfg.MaxUploadBytes).RegisterRoutes(app)

	s.router = router
	return s, nil
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.backend.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "store": s.backend.Name, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": s.backend.Name})
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.WithField("addr", s.cfg.Addr()).Info("starting server")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and releases connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	s.hub.Close()
	if s.redis != nil {
		s.redis.Close()
	}
	if cerr := s.backend.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
