package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/memebattle/internal/adapters/deck"
	"github.com/vncsmyrnk/memebattle/internal/adapters/handler/http"
	"github.com/vncsmyrnk/memebattle/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/memebattle/internal/config"
	"github.com/vncsmyrnk/memebattle/internal/core/services"
)

func main() {
	cfg, err := config.Load("server", os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireSecret(); err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := sql.Open("postgres", cfg.DBConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	// Repositories
	playerRepo := postgres.NewPlayerRepository(db)
	authRepo := postgres.NewAuthRepository(db)
	balanceRepo := postgres.NewBalanceRepository(db)
	summaryRepo := postgres.NewSummaryRepository(db)
	statsRepo := postgres.NewPlayerStatsRepository(db)
	resultRepo := postgres.NewMemeResultRepository(db)
	ledger := postgres.NewVoteLedger(db, cfg.SwipeFee)
	memes := deck.NewLocalDeck(deck.DefaultFiles, cfg.MemesDir)

	// Services
	authService := services.NewAuthService(playerRepo, authRepo, cfg.JWTSecret)
	balanceService := services.NewBalanceService(balanceRepo, cfg.MinBalance)
	leaderboardService := services.NewLeaderboardService(memes, ledger, resultRepo)

	sessionCfg := services.DefaultSessionServiceConfig()
	sessionCfg.LiveDuration = cfg.SessionDuration
	sessionCfg.DemoDuration = cfg.DemoSessionDuration
	sessionCfg.RecordTimeout = cfg.RecordTimeout
	sessionCfg.TTL = cfg.SessionTTL
	sessionService := services.NewSessionService(memes, ledger, balanceService, summaryRepo, sessionCfg, logger)
	statsService := services.NewStatsService(statsRepo, sessionCfg.LivePolicy)

	handler := http.NewHandler(http.Handlers{
		Auth:        http.NewAuthHandler(authService, cfg.CookieDomain, stdhttp.SameSiteLaxMode),
		Session:     http.NewSessionHandler(sessionService),
		Leaderboard: http.NewLeaderboardHandler(leaderboardService),
		Balance:     http.NewBalanceHandler(balanceService),
		Player:      http.NewPlayerHandler(statsService),
		Action:      http.NewActionHandler(cfg.VoteReceiver),
		Middleware:  http.NewAuthMiddleware(authService),
		MemesDir:    cfg.MemesDir,
	}, cfg.CORSOrigins)
	server := &stdhttp.Server{Addr: cfg.Addr(), Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := services.NewScheduler(sessionService, cfg.TickInterval, logger)
	go scheduler.Run(ctx)

	go func() {
		logger.Info("server listening", "event", "server_started", "addr", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdown(shutdownCtx, server, sessionService, logger)
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

type drainer interface {
	Drain()
}

// shutdown stops the HTTP server, then lets in-flight vote recordings and
// report saves reach the database before the pool closes. A failed server
// shutdown is logged and does not skip the drain.
func shutdown(ctx context.Context, server shutdowner, sessions drainer, logger *slog.Logger) {
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed",
			"event", "server_shutdown_failed",
			"error", err.Error(),
		)
	}
	sessions.Drain()
	logger.Info("sessions drained", "event", "server_drained")
}
