// cmd/historian/main.go is an asynchronous historian service that pops game action
// records from a Redis queue and persists them to a PostgreSQL database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/mansion/internal/cache"
	"github.com/jason-s-yu/mansion/internal/database"
	"github.com/jason-s-yu/mansion/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	log "github.com/sirupsen/logrus"
)

func main() {
	if lvl, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	if err := database.ConnectDB(); err != nil {
		log.Fatalf("historian needs the database: %v", err)
	}
	defer database.DB.Close()

	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("historian needs redis: %v", err)
	}
	defer cache.Rdb.Close()

	svc := historian.NewService(cache.Rdb, database.ActionStore{}, historian.Options{
		QueueName:  cache.QueueName(),
		BatchSize:  cache.GetEnvInt("HISTORIAN_BATCH_SIZE", 20),
		FlushDelay: time.Duration(cache.GetEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		Inactivity: time.Duration(cache.GetEnvInt("GAME_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	svc.Run(ctx)
}
