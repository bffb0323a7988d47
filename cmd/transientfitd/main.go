package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"transientfit/adapters/postgres"
	"transientfit/adapters/sampler"
	"transientfit/app"
	"transientfit/domain/model"
	"transientfit/internal/api"
	"transientfit/internal/config"
	"transientfit/internal/testkit"
	"transientfit/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize result store: %v", err)
	}

	registry := model.DefaultRegistry()
	service := app.NewFitService(registry, sampler.NewMetropolis(), app.Config{
		PriorDir: cfg.Paths.PriorDir,
		OutDir:   cfg.Paths.OutDir,
		Store:    store,
	})
	server := api.NewServer(service, registry, store)

	addr := ":" + cfg.Server.Port
	log.Printf("Starting API server on %s", addr)
	if err := http.ListenAndServe(addr, server); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// buildStore connects to postgres when DATABASE_URL is set and falls back to
// an in-process store otherwise.
func buildStore(cfg *config.Config) (ports.ResultStore, error) {
	if cfg.Database.URL == "" {
		log.Println("DATABASE_URL not set, run records are kept in memory")
		return testkit.NewInMemoryResultStore(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return nil, err
	}
	return postgres.NewRunRepository(db), nil
}
