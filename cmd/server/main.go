// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/mansion/internal/auth"
	"github.com/jason-s-yu/mansion/internal/cache"
	"github.com/jason-s-yu/mansion/internal/database"
	"github.com/jason-s-yu/mansion/internal/game"
	"github.com/jason-s-yu/mansion/internal/handlers"
	"github.com/jason-s-yu/mansion/internal/middleware"
	"github.com/jason-s-yu/mansion/internal/world"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}
	logrus.SetLevel(logger.GetLevel())

	if priv, pub := os.Getenv("JWT_PRIVATE_KEY_PATH"), os.Getenv("JWT_PUBLIC_KEY_PATH"); priv != "" && pub != "" {
		if err := auth.InitFromPath(priv, pub); err != nil {
			logger.Fatalf("failed to load token keys: %v", err)
		}
	} else if err := auth.Init(); err != nil {
		logger.Fatalf("failed to init token keys: %v", err)
	}

	// Persistence is optional; games run in memory without it.
	if err := database.ConnectDB(); err != nil {
		logger.WithError(err).Warn("Database unavailable, snapshots will not be persisted")
	}
	if err := cache.ConnectRedis(); err != nil {
		logger.WithError(err).Warn("Redis unavailable, action history and snapshots will not be published")
		cache.Rdb = nil
	}

	cfg := world.DefaultConfig()
	if path := os.Getenv("WORLD_CONFIG"); path != "" {
		loaded, err := world.LoadConfig(path)
		if err != nil {
			logger.Fatalf("failed to load mansion config: %v", err)
		}
		cfg = loaded
	}

	overrides := map[string]interface{}{}
	if n := cache.GetEnvInt("GAME_NIGHT_TURNS", 0); n > 0 {
		overrides["nightTurns"] = n
	}
	if n := cache.GetEnvInt("GAME_NUMBER_NIGHTS", 0); n > 0 {
		overrides["totalNights"] = n
	}
	if room := os.Getenv("GAME_STARTING_ROOM"); room != "" {
		overrides["startingRoom"] = room
	}
	rules, err := game.ParseRules(overrides, game.DefaultRules())
	if err != nil {
		logger.Fatalf("invalid game rules: %v", err)
	}

	srv := handlers.NewGameServer(cfg, rules, logger)
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	httpServer := &http.Server{
		Addr:    addr,
		Handler: middleware.LogMiddleware(logger)(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Graceful shutdown failed")
		}
	}()

	logger.WithFields(logrus.Fields{
		"nightTurns":  rules.NightTurns,
		"totalNights": rules.TotalNights,
		"personas":    len(cfg.Personas),
	}).Infof("Running on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	if database.DB != nil {
		database.DB.Close()
	}
}
