package worker

// reminder_cron.go
// Background goroutine that periodically looks for settlement requests stuck
// in "pendente" for more than a day and emails the admin a reminder. A Redis
// marker key with a 24h TTL deduplicates reminders per request.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	reminderTickInterval = 1 * time.Hour
	reminderPendingAge   = 24 * time.Hour
	reminderBatchSize    = 50
	reminderMarkerPrefix = "reminder:fechamento:"
)

// ReminderCronConfig holds all dependencies for the reminder goroutine.
type ReminderCronConfig struct {
	FechamentoRepo repository.FechamentoRepository
	Dispatcher     *Dispatcher
	RDB            *redis.Client
	AdminEmail     string
}

// StartReminderCron launches a background goroutine that ticks hourly,
// queries stale pending fechamentos, and enqueues one admin reminder email
// per batch. It respects the context for graceful shutdown.
func StartReminderCron(ctx context.Context, cfg ReminderCronConfig) {
	if cfg.AdminEmail == "" {
		log.Info().Msg("reminder_cron: no admin email configured, not starting")
		return
	}
	go func() {
		ticker := time.NewTicker(reminderTickInterval)
		defer ticker.Stop()

		log.Info().Msg("reminder_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reminder_cron: shutting down")
				return
			case <-ticker.C:
				processReminders(ctx, cfg)
			}
		}
	}()
}

func processReminders(ctx context.Context, cfg ReminderCronConfig) {
	antes := time.Now().Add(-reminderPendingAge)
	fechamentos, err := cfg.FechamentoRepo.ListPendentesAntes(ctx, antes, reminderBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("reminder_cron: failed to query pending fechamentos")
		return
	}
	if len(fechamentos) == 0 {
		return
	}

	var linhas []string
	for i := range fechamentos {
		f := &fechamentos[i]

		// SETNX marker: only one reminder per request per 24h window.
		ok, err := cfg.RDB.SetNX(ctx, reminderMarkerPrefix+f.ID.String(), 1, reminderPendingAge).Result()
		if err != nil {
			log.Warn().Err(err).Str("fechamento_id", f.ID.String()).Msg("reminder_cron: marker check failed")
			continue
		}
		if !ok {
			continue
		}
		linhas = append(linhas, fmt.Sprintf("- %s  restaurante=%s  líquido=R$ %s  pendente desde %s",
			f.ID, f.RestauranteID, f.TotalLiquido.StringFixed(2), f.CreatedAt.Format("02/01/2006 15:04")))
	}
	if len(linhas) == 0 {
		return
	}

	job := EmailJobPayload{
		ToEmail: cfg.AdminEmail,
		Subject: fmt.Sprintf("Fome Ninja — %d fechamento(s) pendente(s) há mais de 24h", len(linhas)),
		Body:    "Os fechamentos abaixo aguardam aprovação:\n\n" + strings.Join(linhas, "\n"),
	}
	if err := cfg.Dispatcher.EnqueueEmail(ctx, job); err != nil {
		log.Error().Err(err).Msg("reminder_cron: failed to enqueue reminder email")
		return
	}
	log.Info().Int("count", len(linhas)).Msg("reminder_cron: admin reminder enqueued")
}
