// Command claimlog consumes item.claimed events and appends them to the
// claims log file.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/lost-and-found/internal/config"
	"github.com/iliyamo/lost-and-found/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.ClaimConsumer{
		URL:     cfg.Broker.URL,
		Queue:   cfg.Broker.ClaimsQueue,
		LogPath: cfg.Broker.ClaimsLogPath,
		Log:     logger,
	}
	logger.WithFields(logrus.Fields{"queue": c.Queue, "log_path": c.LogPath}).Info("claim consumer starting")
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("claim consumer stopped")
	}
	logger.Info("claim consumer stopped")
}
