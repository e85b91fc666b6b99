package main

import (
	"log"
	"os"

	"music-jeopardy/internal/config"
	"music-jeopardy/internal/db"
	"music-jeopardy/internal/logger"
	"music-jeopardy/internal/presence"
	"music-jeopardy/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	zlog, err := logger.New()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	conn, err := db.Open(cfg)
	if err != nil {
		zlog.Warnw("running without persistence", "error", err)
		conn = nil
	} else if err := db.Migrate(conn); err != nil {
		zlog.Fatalw("database migration failed", "error", err)
	}

	var registry presence.Registry
	if cfg.RedisURL != "" {
		registry, err = presence.NewRedis(cfg.RedisURL)
		if err != nil {
			zlog.Fatalw("failed to connect to redis", "error", err)
		}
	} else {
		registry = presence.NewMemory()
	}
	defer func() { _ = registry.Close() }()

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}

	srv := server.New(conn, registry, cfg, zlog)
	zlog.Infow("server listening", "addr", addr)
	if err := srv.Router().Run(addr); err != nil {
		zlog.Fatalw("server exited", "error", err)
	}
}
