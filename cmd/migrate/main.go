package main

import (
	"context"
	"log"

	"github.com/duncan19760605/GenAI-Kid/internal/config"
	"github.com/duncan19760605/GenAI-Kid/internal/storage"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()

	db, err := storage.NewSQLite(cfg.Database)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	log.Println("Migrations applied successfully.")
}
