package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/dto"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/relay"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CaixaService interface {
	Abrir(ctx context.Context, restauranteID, operadorID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error)
	RegistrarMovimentacao(ctx context.Context, restauranteID, operadorID uuid.UUID, req dto.MovimentacaoManualRequest) error
	Fechar(ctx context.Context, restauranteID uuid.UUID, req dto.FecharCaixaRequest) (*dto.RelatorioCaixaResponse, error)
	// Atual returns the operator's open session, or nil when there is none.
	Atual(ctx context.Context, operadorID uuid.UUID) (*dto.SessaoCaixaResponse, error)
	Status(ctx context.Context, operadorID uuid.UUID) (*dto.StatusCaixaResponse, error)
	Relatorio(ctx context.Context, restauranteID, sessaoID uuid.UUID) (*dto.RelatorioCaixaResponse, error)
	Historico(ctx context.Context, restauranteID uuid.UUID, page, limit int) ([]dto.SessaoCaixaResponse, int64, error)
}

type caixaService struct {
	repo     repository.CaixaRepository
	carteira repository.CarteiraRepository
	relay    *relay.Publisher
}

func NewCaixaService(repo repository.CaixaRepository, carteira repository.CarteiraRepository, publisher *relay.Publisher) CaixaService {
	return &caixaService{repo: repo, carteira: carteira, relay: publisher}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *caixaService) Abrir(ctx context.Context, restauranteID, operadorID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error) {
	if req.ValorAbertura.IsNegative() {
		return nil, ErrValorInvalido
	}

	// Guard: at most one open session per operator. The partial unique index
	// on (operador_id) WHERE status='aberta' backstops the check-then-insert
	// race at the store layer.
	existing, err := s.repo.FindAbertaPorOperador(ctx, operadorID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCaixaJaAberto
	}

	sessao := &model.SessaoCaixa{
		RestauranteID:       restauranteID,
		OperadorID:          operadorID,
		ValorAbertura:       req.ValorAbertura,
		ObservacoesAbertura: req.Observacoes,
		Status:              "aberta",
		AbertoEm:            time.Now(),
	}
	if err := s.repo.CreateSessao(ctx, sessao); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCaixaJaAberto
		}
		return nil, err
	}

	s.relay.Publish(ctx, relay.Invalidation("caixa_sessao", sessao.ID.String(), restauranteID.String()))
	return sessaoToResponse(sessao), nil
}

// ── RegistrarMovimentacao ─────────────────────────────────────────────────────
// Sangria / reforço. Movements are immutable — no Update/Delete exists.
// The caller supplies the magnitude; the sign is derived from Tipo.

func (s *caixaService) RegistrarMovimentacao(ctx context.Context, restauranteID, operadorID uuid.UUID, req dto.MovimentacaoManualRequest) error {
	sessaoID, err := uuid.Parse(req.SessaoID)
	if err != nil {
		return fmt.Errorf("sessao_id inválido: %w", err)
	}
	if !req.Valor.IsPositive() {
		return ErrValorInvalido
	}

	sessao, err := s.findSessaoDoRestaurante(ctx, restauranteID, sessaoID)
	if err != nil {
		return err
	}
	if sessao.Status != "aberta" {
		return ErrSemCaixaAberto
	}

	valor := req.Valor
	if req.Tipo == "sangria" {
		valor = valor.Neg()
	}
	mov := &model.MovimentacaoCaixa{
		SessaoID:    sessaoID,
		OperadorID:  operadorID,
		Tipo:        req.Tipo,
		Valor:       valor,
		Motivo:      req.Motivo,
		Observacoes: req.Observacoes,
	}
	if err := s.repo.CreateMovimentacao(ctx, mov); err != nil {
		return err
	}

	s.relay.Publish(ctx, relay.Invalidation("caixa_movimentacao", mov.ID.String(), sessao.RestauranteID.String()))
	return nil
}

// ── Fechar ────────────────────────────────────────────────────────────────────
// Computes the expected value at close time and records the variance.
// A nonzero variance is reported, never an error.

func (s *caixaService) Fechar(ctx context.Context, restauranteID uuid.UUID, req dto.FecharCaixaRequest) (*dto.RelatorioCaixaResponse, error) {
	sessaoID, err := uuid.Parse(req.SessaoID)
	if err != nil {
		return nil, fmt.Errorf("sessao_id inválido: %w", err)
	}

	sessao, err := s.findSessaoDoRestaurante(ctx, restauranteID, sessaoID)
	if err != nil {
		return nil, err
	}
	if sessao.Status != "aberta" {
		return nil, ErrSemCaixaAberto
	}

	agora := time.Now()
	vendas, err := s.carteira.SumVendasConfirmadas(ctx, sessao.RestauranteID, sessao.AbertoEm, agora)
	if err != nil {
		return nil, err
	}
	totais, err := s.repo.SumMovimentacoes(ctx, sessaoID)
	if err != nil {
		return nil, err
	}

	// esperado = abertura + vendas − sangrias + reforços
	// (Saldo already carries the signs: sangrias negative, reforços positive)
	esperado := sessao.ValorAbertura.Add(vendas).Add(totais.Saldo)
	diferenca := req.ValorFechamento.Sub(esperado)

	valorFechamento := req.ValorFechamento
	sessao.ValorEsperado = &esperado
	sessao.ValorFechamento = &valorFechamento
	sessao.Diferenca = &diferenca
	sessao.Status = "fechada"
	sessao.FechadoEm = &agora
	if req.Observacoes != "" {
		obs := req.Observacoes
		sessao.ObservacoesFechamento = &obs
	}

	if err := s.repo.UpdateSessao(ctx, sessao); err != nil {
		return nil, err
	}

	s.relay.Publish(ctx, relay.Invalidation("caixa_sessao", sessao.ID.String(), sessao.RestauranteID.String()))
	return s.buildRelatorio(ctx, sessao)
}

// ── Read models ───────────────────────────────────────────────────────────────

func (s *caixaService) Atual(ctx context.Context, operadorID uuid.UUID) (*dto.SessaoCaixaResponse, error) {
	sessao, err := s.repo.FindAbertaPorOperador(ctx, operadorID)
	if err != nil {
		return nil, err
	}
	if sessao == nil {
		return nil, nil
	}
	return sessaoToResponse(sessao), nil
}

func (s *caixaService) Status(ctx context.Context, operadorID uuid.UUID) (*dto.StatusCaixaResponse, error) {
	sessao, err := s.repo.FindAbertaPorOperador(ctx, operadorID)
	if err != nil {
		return nil, err
	}
	if sessao == nil {
		return &dto.StatusCaixaResponse{Aberto: false}, nil
	}
	id := sessao.ID.String()
	abertura := sessao.ValorAbertura
	abertoEm := sessao.AbertoEm.Format(time.RFC3339)
	return &dto.StatusCaixaResponse{
		Aberto:        true,
		SessaoID:      &id,
		ValorAbertura: &abertura,
		AbertoEm:      &abertoEm,
	}, nil
}

func (s *caixaService) Relatorio(ctx context.Context, restauranteID, sessaoID uuid.UUID) (*dto.RelatorioCaixaResponse, error) {
	sessao, err := s.findSessaoDoRestaurante(ctx, restauranteID, sessaoID)
	if err != nil {
		return nil, err
	}
	return s.buildRelatorio(ctx, sessao)
}

func (s *caixaService) Historico(ctx context.Context, restauranteID uuid.UUID, page, limit int) ([]dto.SessaoCaixaResponse, int64, error) {
	sessoes, total, err := s.repo.ListSessoes(ctx, restauranteID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.SessaoCaixaResponse, len(sessoes))
	for i := range sessoes {
		resp[i] = *sessaoToResponse(&sessoes[i])
	}
	return resp, total, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// findSessaoDoRestaurante loads a session scoped to the caller's tenant.
// A tenant must not learn whether other tenants' session ids exist, so a
// foreign session reads the same as a missing one.
func (s *caixaService) findSessaoDoRestaurante(ctx context.Context, restauranteID, sessaoID uuid.UUID) (*model.SessaoCaixa, error) {
	sessao, err := s.repo.FindSessaoByID(ctx, sessaoID)
	if err != nil {
		return nil, ErrSessaoNaoEncontrada
	}
	if sessao.RestauranteID != restauranteID {
		return nil, ErrSessaoNaoEncontrada
	}
	return sessao, nil
}

// buildRelatorio recomputes the expected value on demand: wallet confirmation
// can lag order completion, so the aggregate is never cached.
func (s *caixaService) buildRelatorio(ctx context.Context, sessao *model.SessaoCaixa) (*dto.RelatorioCaixaResponse, error) {
	ate := time.Now()
	if sessao.FechadoEm != nil {
		ate = *sessao.FechadoEm
	}
	vendas, err := s.carteira.SumVendasConfirmadas(ctx, sessao.RestauranteID, sessao.AbertoEm, ate)
	if err != nil {
		return nil, err
	}
	totais, err := s.repo.SumMovimentacoes(ctx, sessao.ID)
	if err != nil {
		return nil, err
	}
	movs, err := s.repo.ListMovimentacoes(ctx, sessao.ID)
	if err != nil {
		return nil, err
	}

	esperado := sessao.ValorAbertura.Add(vendas).Add(totais.Saldo)

	relatorio := &dto.RelatorioCaixaResponse{
		Sessao:        *sessaoToResponse(sessao),
		TotalVendas:   vendas,
		TotalSangrias: totais.Sangrias,
		TotalReforcos: totais.Reforcos,
		ValorEsperado: esperado,
		Diferenca:     sessao.Diferenca,
	}
	relatorio.Movimentacoes = make([]dto.MovimentacaoCaixaResponse, len(movs))
	for i, m := range movs {
		relatorio.Movimentacoes[i] = dto.MovimentacaoCaixaResponse{
			ID:          m.ID.String(),
			Tipo:        m.Tipo,
			Valor:       m.Valor,
			Motivo:      m.Motivo,
			Observacoes: m.Observacoes,
			CriadoEm:    m.CreatedAt.Format(time.RFC3339),
		}
	}
	return relatorio, nil
}

func sessaoToResponse(s *model.SessaoCaixa) *dto.SessaoCaixaResponse {
	resp := &dto.SessaoCaixaResponse{
		SessaoID:              s.ID.String(),
		OperadorID:            s.OperadorID.String(),
		ValorAbertura:         s.ValorAbertura,
		ValorEsperado:         s.ValorEsperado,
		ValorFechamento:       s.ValorFechamento,
		Diferenca:             s.Diferenca,
		Status:                s.Status,
		ObservacoesAbertura:   s.ObservacoesAbertura,
		ObservacoesFechamento: s.ObservacoesFechamento,
		AbertoEm:              s.AbertoEm.Format(time.RFC3339),
	}
	if s.FechadoEm != nil {
		t := s.FechadoEm.Format(time.RFC3339)
		resp.FechadoEm = &t
	}
	return resp
}
