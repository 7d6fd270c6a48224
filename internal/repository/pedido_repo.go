package repository

import (
	"context"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PedidoRepository exposes the only thing this service needs from the order
// kanban: the in-progress predicate checked before a settlement submission.
type PedidoRepository interface {
	HasEmAndamento(ctx context.Context, restauranteID uuid.UUID) (bool, error)
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) HasEmAndamento(ctx context.Context, restauranteID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Pedido{}).
		Where("restaurante_id = ? AND status IN ('pendente', 'preparando', 'pronto')", restauranteID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}
