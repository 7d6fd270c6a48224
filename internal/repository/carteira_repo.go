package repository

import (
	"context"
	"time"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CarteiraRepository reads the wallet stream. Entries are produced by the
// order pipeline; this service never writes them.
type CarteiraRepository interface {
	FindByRestaurante(ctx context.Context, restauranteID uuid.UUID) (*model.Carteira, error)
	// ListEntradasConfirmadas returns confirmed order income over
	// [desde, ate), oldest first — the settlement aggregation input. The upper
	// bound keeps entries confirmed after the window end out of the aggregate,
	// so consecutive windows never count the same entry twice.
	ListEntradasConfirmadas(ctx context.Context, carteiraID uuid.UUID, desde, ate time.Time) ([]model.MovimentacaoCarteira, error)
	// SumVendasConfirmadas is the cash drawer's sales aggregate over
	// [desde, ate) — recomputed on every call because confirmation can lag
	// order completion.
	SumVendasConfirmadas(ctx context.Context, restauranteID uuid.UUID, desde, ate time.Time) (decimal.Decimal, error)
}

type carteiraRepo struct{ db *gorm.DB }

func NewCarteiraRepository(db *gorm.DB) CarteiraRepository { return &carteiraRepo{db: db} }

func (r *carteiraRepo) FindByRestaurante(ctx context.Context, restauranteID uuid.UUID) (*model.Carteira, error) {
	var c model.Carteira
	err := r.db.WithContext(ctx).Where("restaurante_id = ?", restauranteID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *carteiraRepo) ListEntradasConfirmadas(ctx context.Context, carteiraID uuid.UUID, desde, ate time.Time) ([]model.MovimentacaoCarteira, error) {
	var movs []model.MovimentacaoCarteira
	err := r.db.WithContext(ctx).
		Where("carteira_id = ? AND tipo = 'entrada' AND origem = 'pedido' AND status = 'confirmado' AND created_at >= ? AND created_at < ?",
			carteiraID, desde, ate).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *carteiraRepo) SumVendasConfirmadas(ctx context.Context, restauranteID uuid.UUID, desde, ate time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(valor), 0)
		FROM movimentacoes_carteira
		WHERE restaurante_id = ?
		  AND tipo = 'entrada' AND origem = 'pedido' AND status = 'confirmado'
		  AND created_at >= ? AND created_at < ?`, restauranteID, desde, ate).Scan(&total).Error
	return total, err
}
