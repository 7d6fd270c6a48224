package repository

import (
	"context"
	"errors"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TotaisMovimentacao aggregates a session's manual movements.
// Saldo is the signed sum (sangrias negative); Sangrias and Reforcos are
// reported as positive magnitudes for the closing report.
type TotaisMovimentacao struct {
	Saldo    decimal.Decimal
	Sangrias decimal.Decimal
	Reforcos decimal.Decimal
}

type CaixaRepository interface {
	CreateSessao(ctx context.Context, s *model.SessaoCaixa) error
	FindAbertaPorOperador(ctx context.Context, operadorID uuid.UUID) (*model.SessaoCaixa, error)
	FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error)
	UpdateSessao(ctx context.Context, s *model.SessaoCaixa) error
	CreateMovimentacao(ctx context.Context, m *model.MovimentacaoCaixa) error
	ListMovimentacoes(ctx context.Context, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error)
	SumMovimentacoes(ctx context.Context, sessaoID uuid.UUID) (TotaisMovimentacao, error)
	ListSessoes(ctx context.Context, restauranteID uuid.UUID, page, limit int) ([]model.SessaoCaixa, int64, error)
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) CreateSessao(ctx context.Context, s *model.SessaoCaixa) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// FindAbertaPorOperador returns (nil, nil) when the operator has no open session.
func (r *caixaRepo) FindAbertaPorOperador(ctx context.Context, operadorID uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).
		Where("operador_id = ? AND status = 'aberta'", operadorID).
		Order("aberto_em DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).Preload("Movimentacoes").First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) UpdateSessao(ctx context.Context, s *model.SessaoCaixa) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *caixaRepo) CreateMovimentacao(ctx context.Context, m *model.MovimentacaoCaixa) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *caixaRepo) ListMovimentacoes(ctx context.Context, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	var movs []model.MovimentacaoCaixa
	err := r.db.WithContext(ctx).
		Where("sessao_id = ?", sessaoID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *caixaRepo) SumMovimentacoes(ctx context.Context, sessaoID uuid.UUID) (TotaisMovimentacao, error) {
	var t TotaisMovimentacao
	err := r.db.WithContext(ctx).Raw(`
		SELECT
		  COALESCE(SUM(valor), 0)                                            AS saldo,
		  COALESCE(SUM(CASE WHEN tipo = 'sangria' THEN -valor ELSE 0 END), 0) AS sangrias,
		  COALESCE(SUM(CASE WHEN tipo = 'reforco' THEN valor ELSE 0 END), 0)  AS reforcos
		FROM caixa_movimentacoes
		WHERE sessao_id = ?`, sessaoID).Scan(&t).Error
	return t, err
}

func (r *caixaRepo) ListSessoes(ctx context.Context, restauranteID uuid.UUID, page, limit int) ([]model.SessaoCaixa, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.SessaoCaixa{}).Where("restaurante_id = ?", restauranteID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var sessoes []model.SessaoCaixa
	err := q.Order("aberto_em DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessoes).Error
	return sessoes, total, err
}
