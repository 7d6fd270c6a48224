package service

import (
	"context"
	"time"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/dto"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/relay"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/repository"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type FechamentoService interface {
	// Resumo computes the pre-submission preview without persisting anything.
	Resumo(ctx context.Context, restauranteID uuid.UUID) (*dto.ResumoFechamentoResponse, error)
	Solicitar(ctx context.Context, restauranteID uuid.UUID, req dto.SolicitarFechamentoRequest) (*dto.FechamentoResponse, error)
	Aprovar(ctx context.Context, id uuid.UUID, observacoes string) (*dto.FechamentoResponse, error)
	MarcarPago(ctx context.Context, id uuid.UUID, comprovanteURL, observacoes string) (*dto.FechamentoResponse, error)
	Rejeitar(ctx context.Context, id uuid.UUID, motivo string) (*dto.FechamentoResponse, error)
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.FechamentoResponse, error)
	ListarPorRestaurante(ctx context.Context, restauranteID uuid.UUID, filter repository.FechamentoFilter) ([]dto.FechamentoResponse, error)
	ListarTodos(ctx context.Context, filter repository.FechamentoFilter) ([]dto.FechamentoResponse, error)
}

type fechamentoService struct {
	repo         repository.FechamentoRepository
	carteira     repository.CarteiraRepository
	pedidos      repository.PedidoRepository
	restaurantes repository.RestauranteRepository
	relay        *relay.Publisher
	dispatcher   *worker.Dispatcher
	// taxaPadrao is the global platform fee percent; a restaurant row may
	// override it.
	taxaPadrao decimal.Decimal
}

func NewFechamentoService(
	repo repository.FechamentoRepository,
	carteira repository.CarteiraRepository,
	pedidos repository.PedidoRepository,
	restaurantes repository.RestauranteRepository,
	publisher *relay.Publisher,
	dispatcher *worker.Dispatcher,
	taxaPadrao decimal.Decimal,
) FechamentoService {
	return &fechamentoService{
		repo:         repo,
		carteira:     carteira,
		pedidos:      pedidos,
		restaurantes: restaurantes,
		relay:        publisher,
		dispatcher:   dispatcher,
		taxaPadrao:   taxaPadrao,
	}
}

// janela is one computed settlement window: inputs plus aggregated figures.
type janela struct {
	carteiraID uuid.UUID
	inicio     time.Time
	fim        time.Time
	taxaPct    decimal.Decimal
	valores    ValoresFechamento
}

// computeJanela derives the next settlement window for the restaurant.
// The period start is anchored to the latest request's DataFim (or start of
// day when none exists) so periods tile without gaps or overlaps — a
// concurrent submission cannot double-count entries because the boundary is
// recomputed from the store, not carried by the client.
func (s *fechamentoService) computeJanela(ctx context.Context, repo repository.FechamentoRepository, restauranteID uuid.UUID, taxaPct decimal.Decimal) (*janela, error) {
	carteira, err := s.carteira.FindByRestaurante(ctx, restauranteID)
	if err != nil {
		return nil, ErrCarteiraNaoEncontrada
	}

	agora := time.Now()
	inicio := time.Date(agora.Year(), agora.Month(), agora.Day(), 0, 0, 0, 0, agora.Location())
	ultimo, err := repo.FindUltimo(ctx, restauranteID)
	if err != nil {
		return nil, err
	}
	if ultimo != nil {
		inicio = ultimo.DataFim
	}

	// The window end bounds the aggregation too: an entry confirmed after
	// `agora` belongs to the next period, whose start is this one's DataFim.
	movs, err := s.carteira.ListEntradasConfirmadas(ctx, carteira.ID, inicio, agora)
	if err != nil {
		return nil, err
	}
	if len(movs) == 0 {
		return nil, ErrNadaParaFechar
	}

	valores := CalcularValores(movs, taxaPct)
	if valores.TotalLiquido.IsNegative() {
		return nil, ErrValorLiquidoNegativo
	}

	return &janela{
		carteiraID: carteira.ID,
		inicio:     inicio,
		fim:        agora,
		taxaPct:    taxaPct,
		valores:    valores,
	}, nil
}

// checkPreconditions runs the submission gates shared by Resumo and
// Solicitar, and resolves the applicable platform fee.
func (s *fechamentoService) checkPreconditions(ctx context.Context, restauranteID uuid.UUID) (decimal.Decimal, error) {
	emAndamento, err := s.pedidos.HasEmAndamento(ctx, restauranteID)
	if err != nil {
		return decimal.Zero, err
	}
	if emAndamento {
		return decimal.Zero, ErrPedidosEmAndamento
	}

	rest, err := s.restaurantes.FindByID(ctx, restauranteID)
	if err != nil {
		return decimal.Zero, ErrRestauranteNaoEncontrado
	}
	if rest.ChavePix == nil || *rest.ChavePix == "" {
		return decimal.Zero, ErrSemChavePix
	}

	taxa := s.taxaPadrao
	if rest.TaxaPlataformaPercent != nil {
		taxa = *rest.TaxaPlataformaPercent
	}
	return taxa, nil
}

// ── Resumo ────────────────────────────────────────────────────────────────────

func (s *fechamentoService) Resumo(ctx context.Context, restauranteID uuid.UUID) (*dto.ResumoFechamentoResponse, error) {
	taxa, err := s.checkPreconditions(ctx, restauranteID)
	if err != nil {
		return nil, err
	}
	j, err := s.computeJanela(ctx, s.repo, restauranteID, taxa)
	if err != nil {
		return nil, err
	}
	return &dto.ResumoFechamentoResponse{
		DataInicio:        j.inicio.Format(time.RFC3339),
		DataFim:           j.fim.Format(time.RFC3339),
		TotalBruto:        j.valores.TotalBruto,
		TaxaPlataforma:    j.valores.TaxaPlataforma,
		TaxaPlataformaPct: j.taxaPct,
		TaxaEntrega:       j.valores.TaxaEntrega,
		TotalLiquido:      j.valores.TotalLiquido,
		QtdTransacoes:     j.valores.QtdTransacoes,
	}, nil
}

// ── Solicitar ─────────────────────────────────────────────────────────────────

func (s *fechamentoService) Solicitar(ctx context.Context, restauranteID uuid.UUID, req dto.SolicitarFechamentoRequest) (*dto.FechamentoResponse, error) {
	taxa, err := s.checkPreconditions(ctx, restauranteID)
	if err != nil {
		return nil, err
	}

	// The window is recomputed inside the per-restaurant advisory lock: two
	// concurrent submissions serialize here, and the second one sees the
	// first request's DataFim as its period start (usually yielding
	// ErrNadaParaFechar instead of a double-counted window).
	var fechamento *model.Fechamento
	err = s.repo.WithAdvisoryLock(ctx, restauranteID, func(txRepo repository.FechamentoRepository) error {
		j, err := s.computeJanela(ctx, txRepo, restauranteID, taxa)
		if err != nil {
			return err
		}
		fechamento = &model.Fechamento{
			RestauranteID:  restauranteID,
			CarteiraID:     j.carteiraID,
			DataInicio:     j.inicio,
			DataFim:        j.fim,
			TotalBruto:     j.valores.TotalBruto,
			TaxaPlataforma: j.valores.TaxaPlataforma,
			TaxaEntrega:    j.valores.TaxaEntrega,
			TotalLiquido:   j.valores.TotalLiquido,
			QtdTransacoes:  j.valores.QtdTransacoes,
			Observacao:     req.Observacao,
			Status:         model.FechamentoPendente,
		}
		return txRepo.Create(ctx, fechamento)
	})
	if err != nil {
		return nil, err
	}

	s.relay.Publish(ctx, relay.Invalidation("fechamento", fechamento.ID.String(), restauranteID.String()))
	return fechamentoToResponse(fechamento), nil
}

// ── Aprovar ───────────────────────────────────────────────────────────────────
// pendente → aprovado. Calling Aprovar on an already-approved request is an
// idempotent no-op: two operator tabs racing must not surprise either one.

func (s *fechamentoService) Aprovar(ctx context.Context, id uuid.UUID, observacoes string) (*dto.FechamentoResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrFechamentoNaoEncontrado
	}

	switch f.Status {
	case model.FechamentoPago:
		return nil, ErrJaPago
	case model.FechamentoAprovado:
		return fechamentoToResponse(f), nil
	}

	f.Status = model.FechamentoAprovado
	if observacoes != "" {
		f.ObservacoesAdmin = observacoes
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, f, relay.TypeFechamentoAprovado)
	return fechamentoToResponse(f), nil
}

// ── MarcarPago ────────────────────────────────────────────────────────────────
// aprovado → pago. Unlike Aprovar this is never idempotent: confirming a
// payout twice is exactly the mistake the terminal state exists to catch.

func (s *fechamentoService) MarcarPago(ctx context.Context, id uuid.UUID, comprovanteURL, observacoes string) (*dto.FechamentoResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrFechamentoNaoEncontrado
	}

	switch f.Status {
	case model.FechamentoPago:
		return nil, ErrJaPago
	case model.FechamentoPendente:
		return nil, ErrNaoAprovado
	}

	f.Status = model.FechamentoPago
	if comprovanteURL != "" {
		f.ComprovanteURL = &comprovanteURL
	}
	if observacoes != "" {
		f.ObservacoesAdmin = observacoes
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, f, relay.TypeFechamentoPago)
	return fechamentoToResponse(f), nil
}

// ── Rejeitar ──────────────────────────────────────────────────────────────────
// Any non-paid state → pendente. This is a deliberate re-open, not a terminal
// rejection: the reason is PREPENDED to the admin notes so the history of
// previous rejections survives, and the amounts stay untouched.

func (s *fechamentoService) Rejeitar(ctx context.Context, id uuid.UUID, motivo string) (*dto.FechamentoResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrFechamentoNaoEncontrado
	}
	if f.Status == model.FechamentoPago {
		return nil, ErrJaPago
	}

	nota := "REJEITADO: " + motivo
	if f.ObservacoesAdmin != "" {
		nota += "\n" + f.ObservacoesAdmin
	}
	f.Status = model.FechamentoPendente
	f.ObservacoesAdmin = nota
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, f, relay.TypeFechamentoRejeitado)
	return fechamentoToResponse(f), nil
}

// ── Listagens ─────────────────────────────────────────────────────────────────

func (s *fechamentoService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.FechamentoResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrFechamentoNaoEncontrado
	}
	return fechamentoToResponse(f), nil
}

func (s *fechamentoService) ListarPorRestaurante(ctx context.Context, restauranteID uuid.UUID, filter repository.FechamentoFilter) ([]dto.FechamentoResponse, error) {
	fechamentos, err := s.repo.ListByRestaurante(ctx, restauranteID, filter)
	if err != nil {
		return nil, err
	}
	return fechamentosToResponses(fechamentos), nil
}

func (s *fechamentoService) ListarTodos(ctx context.Context, filter repository.FechamentoFilter) ([]dto.FechamentoResponse, error) {
	fechamentos, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return fechamentosToResponses(fechamentos), nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// afterTransition publishes the invalidation + user-facing notification and
// enqueues the async notification job (email / statement PDF / agent push).
// Everything here is best-effort: the state transition already committed.
func (s *fechamentoService) afterTransition(ctx context.Context, f *model.Fechamento, tipo string) {
	s.relay.Publish(ctx, relay.Invalidation("fechamento", f.ID.String(), f.RestauranteID.String()))
	s.relay.Publish(ctx, relay.Notification(tipo, f.ID.String(), f.RestauranteID.String(), f.TotalLiquido))

	payload := worker.NotificacaoPayload{
		Tipo:          tipo,
		FechamentoID:  f.ID.String(),
		RestauranteID: f.RestauranteID.String(),
		PeriodoInicio: f.DataInicio.Format(time.RFC3339),
		PeriodoFim:    f.DataFim.Format(time.RFC3339),
		TotalBruto:    f.TotalBruto,
		TotalLiquido:  f.TotalLiquido,
		QtdTransacoes: f.QtdTransacoes,
	}
	if rest, err := s.restaurantes.FindByID(ctx, f.RestauranteID); err == nil {
		payload.RestauranteNome = rest.Nome
		if rest.Email != nil {
			payload.Email = *rest.Email
		}
	}
	if err := s.dispatcher.EnqueueNotificacao(ctx, payload); err != nil {
		log.Warn().Err(err).Str("fechamento_id", f.ID.String()).Msg("fechamento: enqueue notificação falhou")
	}
}

func fechamentoToResponse(f *model.Fechamento) *dto.FechamentoResponse {
	return &dto.FechamentoResponse{
		ID:               f.ID.String(),
		RestauranteID:    f.RestauranteID.String(),
		DataInicio:       f.DataInicio.Format(time.RFC3339),
		DataFim:          f.DataFim.Format(time.RFC3339),
		TotalBruto:       f.TotalBruto,
		TaxaPlataforma:   f.TaxaPlataforma,
		TaxaEntrega:      f.TaxaEntrega,
		TotalLiquido:     f.TotalLiquido,
		QtdTransacoes:    f.QtdTransacoes,
		Observacao:       f.Observacao,
		Status:           f.Status,
		ObservacoesAdmin: f.ObservacoesAdmin,
		ComprovanteURL:   f.ComprovanteURL,
		CriadoEm:         f.CreatedAt.Format(time.RFC3339),
		AtualizadoEm:     f.UpdatedAt.Format(time.RFC3339),
	}
}

func fechamentosToResponses(fechamentos []model.Fechamento) []dto.FechamentoResponse {
	resp := make([]dto.FechamentoResponse, len(fechamentos))
	for i := range fechamentos {
		resp[i] = *fechamentoToResponse(&fechamentos[i])
	}
	return resp
}
