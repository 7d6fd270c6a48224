package repository

import (
	"context"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RestauranteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Restaurante, error)
}

type restauranteRepo struct{ db *gorm.DB }

func NewRestauranteRepository(db *gorm.DB) RestauranteRepository { return &restauranteRepo{db: db} }

func (r *restauranteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Restaurante, error) {
	var rest model.Restaurante
	err := r.db.WithContext(ctx).First(&rest, id).Error
	if err != nil {
		return nil, err
	}
	return &rest, nil
}
