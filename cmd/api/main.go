package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"support-chat/internal/broadcast"
	"support-chat/internal/config"
	"support-chat/internal/db"
	apihttp "support-chat/internal/http"
	"support-chat/internal/repository"
	"support-chat/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	ctxPing, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := db.Ping(ctxPing, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	cancelPing()

	threadRepo := repository.NewPgThreadRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)
	reservationRepo := repository.NewPgReservationRepository(pool)

	hub := broadcast.NewHub()
	var publisher broadcast.Publisher = hub
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, fanout stays local", zap.Error(err))
		} else {
			fanout := broadcast.NewRedisFanout(hub, redisClient, logger)
			go fanout.Run(ctx)
			publisher = fanout
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	authSvc := service.NewAuthService(logger, userRepo, jwtSvc)
	threadSvc := service.NewThreadService(logger, threadRepo, messageRepo, userRepo, reservationRepo, publisher)
	chatSvc := service.NewChatService(logger, threadRepo, messageRepo, userRepo, publisher)

	authHandler := apihttp.NewAuthHandler(logger, authSvc)
	threadHandler := apihttp.NewThreadHandler(logger, threadSvc)
	reservationHandler := apihttp.NewReservationHandler(logger, reservationRepo)
	wsHandler := apihttp.NewWSHandler(logger, hub, threadRepo, chatSvc, jwtSvc)
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, threadHandler, reservationHandler, wsHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
