package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gospc/adapters/excel"
	"gospc/adapters/postgres"
	"gospc/app"
	"gospc/internal/api"
	"gospc/internal/config"
	apperrors "gospc/internal/errors"
	"gospc/ports"
)

// initDatabase connects to PostgreSQL when persistence is configured
func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, apperrors.Wrap(err, "failed to ping database")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var repo ports.SessionRepository
	if cfg.Database.Enabled {
		db, err := initDatabase(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		repo, err = postgres.NewSessionRepository(db)
		if err != nil {
			log.Fatalf("Failed to initialize session repository: %v", err)
		}
	}

	hub := api.NewSSEHub()
	svc := app.NewAnalysisService(repo, hub)

	// Optionally bootstrap one session from a configured data file so the
	// service is immediately usable in demos.
	if cfg.Data.FilePath != "" {
		snap := svc.CreateSession("startup")
		if _, err := svc.LoadTable(snap.SessionID, excel.NewDataReader(cfg.Data.FilePath), cfg.Data.Sheet); err != nil {
			log.Printf("Warning: could not load %s: %v", cfg.Data.FilePath, err)
		} else {
			log.Printf("Loaded startup data from %s as session %s", cfg.Data.FilePath, snap.SessionID)
		}
	}

	server := api.NewServer(cfg, svc, hub, repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
