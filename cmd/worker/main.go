package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/bookads/internal/amazonads"
	"github.com/ignite/bookads/internal/config"
	"github.com/ignite/bookads/internal/repository/postgres"
	"github.com/ignite/bookads/internal/worker"
)

func main() {
	log.Println("Starting BookAds Campaign Worker...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeMin) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Redis backs the distributed locks and the bid recommendation cache.
	// Without it the worker falls back to PG advisory locks and skips
	// caching.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Redis unavailable, using PG advisory locks: %v", err)
			redisClient = nil
		} else {
			log.Println("Connected to Redis")
		}
		pingCancel()
	}

	repo := postgres.NewCampaignRepo(db)

	// Dry-run mode swaps the advertising platform for the in-memory stub so
	// creation flows can be exercised without touching a live profile.
	var platform worker.Platform
	if cfg.Ads.DryRun {
		log.Println("Dry-run mode: using in-memory advertising platform")
		platform = amazonads.NewStub()
	} else {
		log.Fatal("Live advertising platform credentials are not configured; set ads.dry_run until they are")
	}

	runner := worker.NewCreationRunner(db, redisClient, repo, platform, cfg)
	if err := runner.Start(); err != nil {
		log.Fatalf("Failed to start creation runner: %v", err)
	}
	log.Println("Creation runner started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	runner.Stop()
	log.Println("Worker stopped")
}
