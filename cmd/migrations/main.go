package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/vncsmyrnk/vote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/vote/internal/config"
)

// Runs every embedded migration, or only the one named by the first argument
// (e.g. "create_polls.down").
func main() {
	config.LoadEnv()
	cfg, err := config.Load("migrations", os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Postgres.User == "" || cfg.Postgres.Database == "" {
		log.Fatal(errors.New("POSTGRES_USER and POSTGRES_DB are required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.Postgres.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if len(cfg.Args) == 0 {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatal(err)
		}
		log.Println("Migrations executed successfully.")
		return
	}

	name, content, err := postgres.MigrationFile(cfg.Args[0])
	if err != nil {
		log.Fatal(err)
	}

	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		log.Fatalf("Failed to execute SQL file %s: %v", name, err)
	}

	log.Printf("Migration file %s executed successfully.", name)
}
