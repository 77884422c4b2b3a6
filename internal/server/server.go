package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"product-catalog/internal/cache"
	"product-catalog/internal/config"
	"product-catalog/internal/correlation"
	"product-catalog/internal/database"
	"product-catalog/internal/derivation"
	"product-catalog/internal/metrics"
	custommiddleware "product-catalog/internal/middleware"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"
	"product-catalog/internal/transport"
	"product-catalog/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rateLimitKeyPrefix = "catalog_rate_limit"

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewServer wires the product pipeline behind the HTTP router. redisClient
// may be nil, which disables cache invalidation and rate limiting.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(correlation.Middleware())
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	router.Get("/health", s.health)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.DB())

	// Initialize the product pipeline
	validator := validation.New(productRepo, cfg.Catalog, logger, nil)
	engine := derivation.NewEngine(
		derivation.NewMoneyFormatter(cfg.Presentation.CurrencySymbol, cfg.Presentation.Locale),
		nil,
	)
	recorder := metrics.Multi{
		metrics.NewLogRecorder(logger),
		metrics.NewPrometheusRecorder(registry),
	}

	var invalidator cache.Invalidator
	var createLimit func(http.Handler) http.Handler
	if redisClient != nil {
		invalidator = cache.NewRedisInvalidator(redisClient)

		if cfg.RateLimit.Enabled {
			createLimit = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         rateLimitKeyPrefix,
			}, logger)
		}
	}

	productService := service.NewProductService(
		productRepo, validator, engine, invalidator, cfg.Cache.AllProductsKey, recorder, logger,
	)

	// Register routes
	transport.NewProductHandler(productService, logger).RegisterRoutes(router, createLimit)

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// health reports database and redis reachability
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbHealth := s.db.Health(ctx)
	status := http.StatusOK
	if dbHealth["status"] != "up" {
		status = http.StatusServiceUnavailable
	}

	body := map[string]interface{}{
		"status":   "ok",
		"database": dbHealth,
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			// redis outages do not fail the check
			body["redis"] = "down"
		} else {
			body["redis"] = "up"
		}
	}

	if status != http.StatusOK {
		body["status"] = "unavailable"
	}

	custommiddleware.RespondWithJSON(w, status, body)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
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
