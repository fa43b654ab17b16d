package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/vncsmyrnk/vote/internal/adapters/repository"
	"github.com/vncsmyrnk/vote/internal/config"
	"github.com/vncsmyrnk/vote/internal/core/services"
)

// Prints the results of every poll in a SQL store as JSON.
func main() {
	config.LoadEnv()
	cfg, err := config.Load("votesummary", os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Store == config.StoreMemory {
		log.Fatal("votesummary needs -store postgres or -store sqlite")
	}

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	log.Println("Starting vote summarization job...")

	tallies, err := services.NewSummaryService(store).SummarizeAll(ctx)
	if err != nil {
		log.Fatalf("Error summarizing votes: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tallies); err != nil {
		log.Fatalf("Error writing summary: %v", err)
	}

	log.Printf("Vote summarization completed for %d polls.", len(tallies))
}
