package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"inddraft/internal/api"
	"inddraft/internal/config"
	"inddraft/internal/llm"
	"inddraft/internal/parser"
	"inddraft/internal/pipeline"
	"inddraft/internal/qc"
	"inddraft/internal/store"
)

func main() {
	// A missing .env is fine; real deployments set environment variables.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	parser.PDFFallback = cfg.PDFFallbackPdftotext

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	client := llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	engine := qc.NewEngine(qc.NewAIChecker(client, log), log)

	orch := pipeline.NewOrchestrator(cfg, client, db, log)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	orch.Start(ctx)

	server := api.NewServer(db, client, engine, orch, client, log, cfg)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.Port, "model", cfg.AnthropicModel)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}

	orch.Stop()
	client.Close()
	if err := db.Close(); err != nil {
		log.Error("database close error", "error", err)
	}
	log.Info("shutdown complete")
}
