package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meuresidencial/condo-api/internal/auth"
	"github.com/meuresidencial/condo-api/internal/booking"
	"github.com/meuresidencial/condo-api/internal/config"
	"github.com/meuresidencial/condo-api/internal/database"
	"github.com/meuresidencial/condo-api/internal/handler"
	"github.com/meuresidencial/condo-api/internal/middleware"
	"github.com/meuresidencial/condo-api/internal/publisher"
	"github.com/meuresidencial/condo-api/internal/queue"
	"github.com/meuresidencial/condo-api/internal/repository"
	"github.com/meuresidencial/condo-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	operators := repository.NewOperatorRepo(db)
	condos := repository.NewCondominiumRepo(db)
	residents := repository.NewResidentRepo(db)
	areas := repository.NewCommonAreaRepo(db)
	reservations := repository.NewReservationRepo(db)
	announcements := repository.NewAnnouncementRepo(db)
	financials := repository.NewFinancialRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Seed the operator account when configured, so a fresh database
	// has an administrator without credentials living in source.
	if cfg.OperatorEmail != "" && cfg.OperatorPass != "" {
		hash, err := auth.HashPassword(cfg.OperatorPass, cfg.BcryptCost)
		if err != nil {
			logger.Fatal("operator seed hash failed", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := operators.EnsureSeed(ctx, cfg.OperatorName, cfg.OperatorEmail, hash); err != nil {
			cancel()
			logger.Fatal("operator seed failed", zap.Error(err))
		}
		cancel()
		logger.Info("operator account seeded", zap.String("email", cfg.OperatorEmail))
	}

	resolver := auth.NewResolver(operators, condos, residents, logger)
	bookingSvc := booking.NewService(residents, areas, reservations, logger)
	events := publisher.New(logger)

	authH := handler.NewAuthHandler(cfg, resolver, tokens, logger)
	residentH := handler.NewResidentHandler(residents, logger)
	areaH := handler.NewCommonAreaHandler(areas, logger)
	reservationH := handler.NewReservationHandler(bookingSvc, areas, reservations, events, logger)
	announcementH := handler.NewAnnouncementHandler(announcements, events, logger)
	financialH := handler.NewFinancialHandler(financials, logger)

	e := echo.New()
	e.HideBanner = true

	// Redis is optional: a nil client turns the limiter and the cache
	// into pass-throughs. Both are applied per route group, after
	// SessionAuth, so the keys carry the session identity.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting and caching disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	respCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterPublic(e, db)
	router.RegisterAuth(e, authH, cfg.JWTSecret, limiter)
	router.RegisterManager(e, cfg.JWTSecret, limiter, respCache, residentH, areaH, reservationH, announcementH, financialH)
	router.RegisterResident(e, cfg.JWTSecret, limiter, respCache, areaH, reservationH)

	// Background notification consumer; reconnects on its own.
	go func() {
		if err := queue.StartNotificationConsumer(logger); err != nil {
			logger.Warn("notification consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" || env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
