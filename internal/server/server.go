package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pricewatch/internal/config"
	"pricewatch/internal/database"
	custommiddleware "pricewatch/internal/middleware"
	"pricewatch/internal/notifier"
	"pricewatch/internal/repository"
	"pricewatch/internal/scheduler"
	"pricewatch/internal/scraper"
	"pricewatch/internal/service"
	"pricewatch/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	db        *database.Service
	scheduler *scheduler.Scheduler
	redis     *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Service) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 60,
			Window:            time.Minute,
			KeyPrefix:         "pricewatch_rate_limit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"database": db.Health(r.Context()),
		})
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.DB())
	historyRepo := repository.NewPriceHistoryRepository(db.DB())
	alertRepo := repository.NewAlertRepository(db.DB())

	// Initialize external collaborators
	pageScraper := scraper.NewAmazonScraper(cfg.Checker.FetchTimeout, cfg.Checker.UserAgent)

	var notif notifier.Notifier = notifier.Nop{}
	if cfg.Email.ResendAPIKey != "" {
		notif = notifier.NewResendNotifier(cfg.Email.ResendAPIKey, cfg.Email.FromAddress)
	} else {
		logger.Warn("No email provider configured, alert notifications will not be delivered")
	}

	// Initialize services
	productService := service.NewProductService(productRepo, historyRepo, alertRepo, pageScraper)
	engine := service.NewCheckEngine(
		productRepo, historyRepo, alertRepo,
		pageScraper, notif, logger,
		cfg.Checker.ItemDelay, cfg.Checker.Cooldown,
	)
	sched := scheduler.New(engine, logger)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productService, logger)
	alertHandler := transport.NewAlertHandler(productService, logger)
	checkHandler := transport.NewCheckHandler(sched, logger)

	// Register routes
	productHandler.RegisterRoutes(router)
	alertHandler.RegisterRoutes(router)
	checkHandler.RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:    cfg,
		logger:    logger,
		db:        db,
		scheduler: sched,
		redis:     redisClient,
	}

	return server
}

// Scheduler exposes the cycle scheduler so main can start and stop it with
// the server lifecycle.
func (s *Server) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.scheduler.Stop()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
