package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/lost-and-found/internal/config"
	"github.com/iliyamo/lost-and-found/internal/database"
	"github.com/iliyamo/lost-and-found/internal/handler"
	"github.com/iliyamo/lost-and-found/internal/middleware"
	"github.com/iliyamo/lost-and-found/internal/repository"
	"github.com/iliyamo/lost-and-found/internal/router"
	queue_publisher "github.com/iliyamo/lost-and-found/internal/service"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.WithError(err).Fatal("database: open failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = database.EnsureSchema(ctx, db, database.DialectFor(cfg.DBDriver))
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("database: schema setup failed")
	}

	// nil when Redis is unreachable; cache and rate limit then pass through
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, running without cache and rate limit")
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	items := repository.NewItemRepo(db)
	claims := repository.NewClaimRepo(db)

	var events handler.ClaimEvents
	if cfg.Broker.Enabled {
		events = queue_publisher.NewPublisher(cfg.Broker.URL, cfg.Broker.ClaimsQueue, logger)
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(logger)
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger))

	router.RegisterRoutes(e, router.Handlers{
		Auth:   handler.NewAuthHandler(users, cfg.BcryptCost, cfg.RequestTimeout, logger),
		Items:  handler.NewItemHandler(items, claims, cfg.RequestTimeout, logger),
		Claims: handler.NewClaimHandler(claims, events, cfg.RequestTimeout, logger),
	})

	addr := ":" + cfg.Port
	go func() {
		logger.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "driver": cfg.DBDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown failed")
	}
	logger.Info("server stopped")
}
