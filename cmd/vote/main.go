package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vncsmyrnk/vote/internal/adapters/calculator"
	"github.com/vncsmyrnk/vote/internal/adapters/handler/http"
	"github.com/vncsmyrnk/vote/internal/adapters/repository"
	"github.com/vncsmyrnk/vote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/vote/internal/config"
	"github.com/vncsmyrnk/vote/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("vote stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadEnv()
	cfg, err := config.Load("vote", os.Args[1:])
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	pollService := services.NewPollService(store)
	voteService := services.NewVoteService(store)
	summaryService := services.NewSummaryService(store)
	aggregatorService := services.NewAggregatorService(
		memory.NewModuleRegistry(),
		calculator.NewRPCCalculator(&stdhttp.Client{Timeout: cfg.RequestTimeout}),
	)

	rpcHandler := http.NewRPCHandler(pollService, voteService, summaryService)
	defer rpcHandler.Close()

	handler := http.NewHandler(
		http.NewPollHandler(pollService),
		http.NewVoteHandler(voteService),
		http.NewResultsHandler(summaryService),
		rpcHandler,
		http.NewModuleHandler(aggregatorService),
		http.RouterConfig{
			AllowedOrigins: cfg.CORSOrigins,
			RequestTimeout: cfg.RequestTimeout,
			MaxBodyBytes:   cfg.MaxBodyBytes,
		},
	)

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}

	server := &stdhttp.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", listener.Addr().String(), "store", cfg.Store)
		if err := server.Serve(listener); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	slog.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
