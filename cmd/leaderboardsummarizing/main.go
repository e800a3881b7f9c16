package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/memebattle/internal/adapters/deck"
	"github.com/vncsmyrnk/memebattle/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/memebattle/internal/config"
	"github.com/vncsmyrnk/memebattle/internal/core/services"
)

func main() {
	cfg, err := config.Load("leaderboardsummarizing", os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.DBConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	ledger := postgres.NewVoteLedger(db, cfg.SwipeFee)
	resultRepo := postgres.NewMemeResultRepository(db)
	leaderboard := services.NewLeaderboardService(deck.NewLocalDeck(deck.DefaultFiles, cfg.MemesDir), ledger, resultRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Println("Starting leaderboard summarization job...")

	if err := leaderboard.SummarizeAllVotes(ctx); err != nil {
		log.Fatalf("Error summarizing votes: %v", err)
	}

	log.Println("Leaderboard summarization completed successfully.")
}
