package worker

// notificacao_worker.go
// Processes settlement notification jobs from QueueNotificacao.
// For every status transition: push the event to the notification agent
// (through the circuit breaker, with exponential backoff), and enqueue the
// status email to the restaurant. A payout ("fechamento.pago") additionally
// gets a statement PDF generated and attached.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/infra"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/relay"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const maxAgentAttempts = 3

// NotificacaoPayload is the job envelope sent to QueueNotificacao.
// It carries everything the worker needs so a delayed job still renders
// the figures as they were at transition time.
type NotificacaoPayload struct {
	Tipo            string          `json:"tipo"`
	FechamentoID    string          `json:"fechamento_id"`
	RestauranteID   string          `json:"restaurante_id"`
	RestauranteNome string          `json:"restaurante_nome,omitempty"`
	Email           string          `json:"email,omitempty"`
	PeriodoInicio   string          `json:"periodo_inicio"`
	PeriodoFim      string          `json:"periodo_fim"`
	TotalBruto      decimal.Decimal `json:"total_bruto"`
	TotalLiquido    decimal.Decimal `json:"total_liquido"`
	QtdTransacoes   int             `json:"qtd_transacoes"`
}

// NotificacaoWorker fans one settlement transition out to the agent and the
// restaurant's inbox.
type NotificacaoWorker struct {
	repo           repository.FechamentoRepository
	agent          *infra.AgentClient
	cb             *infra.CircuitBreaker
	dispatcher     *Dispatcher
	rdb            *redis.Client
	pdfStoragePath string
}

func NewNotificacaoWorker(
	repo repository.FechamentoRepository,
	agent *infra.AgentClient,
	cb *infra.CircuitBreaker,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	pdfStoragePath string,
) *NotificacaoWorker {
	return &NotificacaoWorker{
		repo:           repo,
		agent:          agent,
		cb:             cb,
		dispatcher:     dispatcher,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single notification job:
//  1. Parse NotificacaoPayload from the job envelope
//  2. For a payout, generate the statement PDF from the stored row
//  3. Push the event to the agent through the circuit breaker with backoff
//  4. On exhausted retries, park the job in the DLQ
//  5. Enqueue the status email (with the statement attached when present)
func (w *NotificacaoWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload NotificacaoPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notificacao_worker: invalid payload")
		return
	}

	pdfPath := ""
	if payload.Tipo == relay.TypeFechamentoPago {
		pdfPath = w.gerarExtrato(ctx, payload)
	}

	ev := infra.AgentEvent{
		Tipo:            payload.Tipo,
		FechamentoID:    payload.FechamentoID,
		RestauranteID:   payload.RestauranteID,
		RestauranteNome: payload.RestauranteNome,
		TotalLiquido:    payload.TotalLiquido.StringFixed(2),
		PeriodoInicio:   payload.PeriodoInicio,
		PeriodoFim:      payload.PeriodoFim,
	}

	agentErr := withRetry(ctx, maxAgentAttempts, func(attempt int) error {
		return w.cb.Execute(func() error {
			ack, err := w.agent.Notificar(ctx, ev)
			if err != nil {
				log.Warn().
					Err(err).
					Int("attempt", attempt+1).
					Str("fechamento_id", payload.FechamentoID).
					Msg("notificacao_worker: agent attempt failed, retrying")
				return err
			}
			if !ack.Recebido {
				return fmt.Errorf("agent did not acknowledge: %s", ack.Detalhe)
			}
			return nil
		})
	})
	if agentErr != nil {
		log.Error().Err(agentErr).Str("fechamento_id", payload.FechamentoID).
			Msg("notificacao_worker: agent failed after all retries")
		SendToDLQ(ctx, w.rdb, QueueNotificacao, "notificacao", raw,
			fmt.Sprintf("agent failed after %d attempts: %v", maxAgentAttempts, agentErr),
			maxAgentAttempts)
	}

	w.enqueueEmail(ctx, payload, pdfPath)
}

func (w *NotificacaoWorker) gerarExtrato(ctx context.Context, payload NotificacaoPayload) string {
	id, err := uuid.Parse(payload.FechamentoID)
	if err != nil {
		log.Error().Str("fechamento_id", payload.FechamentoID).Msg("notificacao_worker: invalid fechamento_id")
		return ""
	}
	f, err := w.repo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("fechamento_id", payload.FechamentoID).Msg("notificacao_worker: fechamento not found")
		return ""
	}
	pdfPath, err := infra.GerarExtratoPDF(f, payload.RestauranteNome, w.pdfStoragePath)
	if err != nil {
		log.Warn().Err(err).Str("fechamento_id", payload.FechamentoID).Msg("notificacao_worker: PDF generation failed")
		return ""
	}
	log.Info().Str("pdf", pdfPath).Str("fechamento_id", payload.FechamentoID).Msg("notificacao_worker: statement generated")
	return pdfPath
}

func (w *NotificacaoWorker) enqueueEmail(ctx context.Context, payload NotificacaoPayload, pdfPath string) {
	if payload.Email == "" {
		return
	}

	var subject, body string
	switch payload.Tipo {
	case relay.TypeFechamentoAprovado:
		subject = "Fome Ninja — Fechamento aprovado"
		body = fmt.Sprintf("Seu fechamento foi aprovado.\nPeríodo: %s a %s\nTotal líquido: R$ %s\nO pagamento será realizado em breve.",
			payload.PeriodoInicio, payload.PeriodoFim, payload.TotalLiquido.StringFixed(2))
	case relay.TypeFechamentoPago:
		subject = "Fome Ninja — Repasse realizado"
		body = fmt.Sprintf("O repasse do seu fechamento foi realizado.\nPeríodo: %s a %s\nTotal líquido: R$ %s\nO extrato segue em anexo.",
			payload.PeriodoInicio, payload.PeriodoFim, payload.TotalLiquido.StringFixed(2))
	case relay.TypeFechamentoRejeitado:
		subject = "Fome Ninja — Fechamento devolvido para revisão"
		body = fmt.Sprintf("Seu fechamento foi devolvido para revisão.\nPeríodo: %s a %s\nConsulte o painel para ver o motivo.",
			payload.PeriodoInicio, payload.PeriodoFim)
	default:
		log.Warn().Str("tipo", payload.Tipo).Msg("notificacao_worker: unknown transition type")
		return
	}

	emailJob := EmailJobPayload{
		ToEmail: payload.Email,
		Subject: subject,
		Body:    body,
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("notificacao_worker: failed to enqueue email")
	}
}
