package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FechamentoFilter narrows listing queries (admin console filters).
type FechamentoFilter struct {
	Status     string
	DataInicio *time.Time
	DataFim    *time.Time
}

type FechamentoRepository interface {
	Create(ctx context.Context, f *model.Fechamento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Fechamento, error)
	// FindUltimo returns the most recent request for the restaurant, or
	// (nil, nil) when none exists. The next period is anchored to its DataFim.
	FindUltimo(ctx context.Context, restauranteID uuid.UUID) (*model.Fechamento, error)
	Update(ctx context.Context, f *model.Fechamento) error
	ListByRestaurante(ctx context.Context, restauranteID uuid.UUID, filter FechamentoFilter) ([]model.Fechamento, error)
	ListAll(ctx context.Context, filter FechamentoFilter) ([]model.Fechamento, error)
	// ListPendentesAntes returns pending requests created before `antes`,
	// oldest first — the reminder cron's input.
	ListPendentesAntes(ctx context.Context, antes time.Time, limit int) ([]model.Fechamento, error)
	// WithAdvisoryLock runs fn inside a transaction holding the
	// per-restaurant advisory lock, serializing concurrent submissions so two
	// clients cannot compute overlapping settlement windows. fn receives a
	// repository bound to the transaction.
	WithAdvisoryLock(ctx context.Context, restauranteID uuid.UUID, fn func(txRepo FechamentoRepository) error) error
}

type fechamentoRepo struct{ db *gorm.DB }

func NewFechamentoRepository(db *gorm.DB) FechamentoRepository { return &fechamentoRepo{db: db} }

func (r *fechamentoRepo) Create(ctx context.Context, f *model.Fechamento) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fechamentoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Fechamento, error) {
	var f model.Fechamento
	err := r.db.WithContext(ctx).First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fechamentoRepo) FindUltimo(ctx context.Context, restauranteID uuid.UUID) (*model.Fechamento, error) {
	var f model.Fechamento
	err := r.db.WithContext(ctx).
		Where("restaurante_id = ?", restauranteID).
		Order("data_fim DESC").
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fechamentoRepo) Update(ctx context.Context, f *model.Fechamento) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *fechamentoRepo) ListByRestaurante(ctx context.Context, restauranteID uuid.UUID, filter FechamentoFilter) ([]model.Fechamento, error) {
	q := r.db.WithContext(ctx).Where("restaurante_id = ?", restauranteID)
	return listFechamentos(q, filter)
}

func (r *fechamentoRepo) ListAll(ctx context.Context, filter FechamentoFilter) ([]model.Fechamento, error) {
	return listFechamentos(r.db.WithContext(ctx), filter)
}

func listFechamentos(q *gorm.DB, filter FechamentoFilter) ([]model.Fechamento, error) {
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.DataInicio != nil {
		q = q.Where("data_fim >= ?", *filter.DataInicio)
	}
	if filter.DataFim != nil {
		q = q.Where("data_fim <= ?", *filter.DataFim)
	}
	var fechamentos []model.Fechamento
	err := q.Order("data_fim DESC").Find(&fechamentos).Error
	return fechamentos, err
}

func (r *fechamentoRepo) ListPendentesAntes(ctx context.Context, antes time.Time, limit int) ([]model.Fechamento, error) {
	var fechamentos []model.Fechamento
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.FechamentoPendente, antes).
		Order("created_at ASC").
		Limit(limit).
		Find(&fechamentos).Error
	return fechamentos, err
}

func (r *fechamentoRepo) WithAdvisoryLock(ctx context.Context, restauranteID uuid.UUID, fn func(txRepo FechamentoRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// xact-scoped lock: released automatically on commit/rollback
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", restauranteID.String()).Error; err != nil {
			return err
		}
		return fn(&fechamentoRepo{db: tx})
	})
}
