package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"proximity-service/internal/adapters/kafka"
	"proximity-service/internal/config"
	"proximity-service/internal/database"
	"proximity-service/internal/repository"
	"proximity-service/internal/router"
	"proximity-service/internal/service"
	"proximity-service/internal/store"
	"proximity-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongoClient, err := database.NewMongoConnection(&cfg.Mongo)
	if err != nil {
		log.Fatalw("mongo connection failed", "error", err)
	}
	defer mongoClient.Disconnect(context.Background())

	userStore, err := store.NewMongoUserStore(ctx, mongoClient, cfg.Mongo.Database)
	if err != nil {
		log.Fatalw("user store init failed", "error", err)
	}

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		log.Fatalw("redis connection failed", "error", err)
	}
	defer redisClient.Close()

	minioClient, err := database.NewMinIOClient(
		cfg.MinIO.Endpoint,
		cfg.MinIO.AccessKey,
		cfg.MinIO.SecretKey,
		cfg.MinIO.Bucket,
		cfg.MinIO.UseSSL,
	)
	if err != nil {
		log.Fatalw("minio connection failed", "error", err)
	}

	notifier, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	if err != nil {
		log.Fatalw("kafka producer init failed", "error", err)
	}
	defer notifier.Close()

	settingsRepo := repository.NewSettingsRepository(redisClient, cfg.Proximity.DefaultRadiusMeters)
	presenceRepo := repository.NewPresenceRepository(redisClient)

	userService := service.NewUserService(userStore, minioClient, cfg.JWT.Secret, cfg.JWT.ExpirationTime)
	relationshipService := service.NewRelationshipService(userStore, log)
	proximityService := service.NewProximityService(userStore, settingsRepo, notifier, log)
	presenceService := service.NewPresenceService(presenceRepo, userStore)

	engine := router.New(router.Dependencies{
		Log:           log,
		Redis:         redisClient,
		JWTSecret:     cfg.JWT.Secret,
		UserService:   userService,
		Relationships: relationshipService,
		Proximity:     proximityService,
		Presence:      presenceService,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("forced shutdown", "error", err)
	}
	log.Infow("server stopped")
}
