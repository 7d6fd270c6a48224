package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/config"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/infra"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/repository"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/router"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Start goroutine worker pool for async tasks (agent push, statement PDF,
	// email). Worker handlers are wired here (composition root) so the pool has
	// full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agentClient := infra.NewAgentClient(cfg.AgentURL)
	agentCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	fechamentoRepo := repository.NewFechamentoRepository(db)

	handlers := worker.Handlers{
		Notificacao: worker.NewNotificacaoWorker(fechamentoRepo, agentClient, agentCB, dispatcher, rdb, cfg.PDFStoragePath),
		Email:       worker.NewEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)

	worker.StartReminderCron(ctx, worker.ReminderCronConfig{
		FechamentoRepo: fechamentoRepo,
		Dispatcher:     dispatcher,
		RDB:            rdb,
		AdminEmail:     cfg.AdminEmail,
	})

	r := router.New(cfg, db, rdb, agentCB)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: /v1/eventos holds SSE streams open indefinitely.
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Fome Ninja backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
