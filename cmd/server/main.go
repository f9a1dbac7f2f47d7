package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cityhall/employee-registry/internal/config"
	"github.com/cityhall/employee-registry/internal/database"
	"github.com/cityhall/employee-registry/internal/handlers"
	"github.com/cityhall/employee-registry/internal/metrics"
	"github.com/cityhall/employee-registry/internal/middleware"
	"github.com/cityhall/employee-registry/internal/services"
	"github.com/cityhall/employee-registry/internal/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting employee registry backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	employeeRepo := database.NewEmployeeRepository(db)
	referenceRepo := database.NewReferenceRepository(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Session storage
	var (
		sessions    session.Store
		memoryStore *session.MemoryStore
	)
	if cfg.Session.RedisURL != "" {
		client, err := session.NewRedisClient(ctx, cfg.Session.RedisURL)
		if err != nil {
			logger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		sessions = session.NewRedisStore(client, cfg.Session.TTL)
		logger.Info("Registration sessions stored in Redis")
	} else {
		memoryStore = session.NewMemoryStore(cfg.Session.TTL)
		sessions = memoryStore
		logger.Info("Registration sessions stored in memory")
	}

	// Initialize services
	registrationService := services.NewRegistrationService(
		sessions,
		referenceRepo,
		employeeRepo,
		m,
		logger,
		services.RegistrationConfig{
			PhotoSize:      cfg.Photo.Size,
			PhotoMaxBytes:  cfg.Photo.MaxBytes,
			PhotoMaxPixels: cfg.Photo.MaxPixels,
		},
	)
	employeeService := services.NewEmployeeService(employeeRepo, logger)
	referenceService := services.NewReferenceService(referenceRepo)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: !allowsAnyOrigin(cfg.CORS.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", handlers.HealthCheck(db, version))
	if cfg.Server.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	handlers.RegisterRoutes(router,
		handlers.NewRegistrationHandler(registrationService, logger),
		handlers.NewEmployeeHandler(employeeService, logger),
		handlers.NewReferenceHandler(referenceService, logger),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// The in-memory store is swept on a schedule; Redis expires keys itself
	if memoryStore != nil {
		cronService := services.NewCronService(memoryStore, cfg.Session.SweepInterval, m, logger)
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
		defer cronService.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		return
	}

	logger.Info("Server exited successfully")
}

// allowsAnyOrigin reports a wildcard origin, which browsers refuse together with credentials
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
