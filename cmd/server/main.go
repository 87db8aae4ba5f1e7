package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecoride-campus/service-rental/internal/application"
	"github.com/ecoride-campus/service-rental/internal/auth"
	"github.com/ecoride-campus/service-rental/internal/config"
	"github.com/ecoride-campus/service-rental/internal/database"
	"github.com/ecoride-campus/service-rental/internal/events"
	"github.com/ecoride-campus/service-rental/internal/handler"
	"github.com/ecoride-campus/service-rental/internal/health"
	"github.com/ecoride-campus/service-rental/internal/kafka"
	"github.com/ecoride-campus/service-rental/internal/logger"
	"github.com/ecoride-campus/service-rental/internal/middleware"
	"github.com/ecoride-campus/service-rental/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-rental")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-rental",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.ProfileModel{},
			&repository.BikeModel{},
			&repository.BookingModel{},
			&repository.ReceiptModel{},
			&repository.DamageReportModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), cfg.MigrationsDir, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 15*time.Minute)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	bikeRepo := repository.NewGormBikeRepository(db)
	receiptRepo := repository.NewGormReceiptRepository(db)
	damageRepo := repository.NewGormDamageReportRepository(db)
	profileRepo := repository.NewGormProfileRepository(db)
	transactor := repository.NewGormTransactor(db)

	// Initialize application services
	rentalService := application.NewRentalService(
		bookingRepo,
		bikeRepo,
		receiptRepo,
		damageRepo,
		profileRepo,
		transactor,
		kafkaProducer,
		log,
	)
	bikeService := application.NewBikeService(bikeRepo, log)
	profileService := application.NewProfileService(profileRepo, log)

	// Initialize and start fleet event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "rental-service"
	fleetConsumerReader := kafka.NewConsumer(cfg.KafkaConfig.Brokers, groupID, events.TopicFleetEvents, log)
	defer func() { _ = fleetConsumerReader.Close() }()

	fleetConsumer := events.NewFleetEventConsumer(fleetConsumerReader, bikeService, log)
	go func() {
		log.Info("starting fleet event consumer")
		if err := fleetConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("fleet event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	rentalHandler := handler.NewRentalHandler(rentalService)
	bikeHandler := handler.NewBikeHandler(bikeService)
	profileHandler := handler.NewProfileHandler(profileService)
	adminHandler := handler.NewAdminHandler(rentalService, bikeService, profileService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-rental")
	healthHandler.RegisterRoutes(router)

	// Register API routes behind authentication
	api := router.Group("/api/v1", middleware.AuthMiddleware(jwtManager))
	rentalHandler.RegisterRoutes(api)
	bikeHandler.RegisterRoutes(api)
	profileHandler.RegisterRoutes(api)
	adminHandler.RegisterRoutes(api)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-rental...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-rental stopped")
}
