package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fechamento status values.
const (
	FechamentoPendente = "pendente"
	FechamentoAprovado = "aprovado"
	FechamentoPago     = "pago"
)

// Fechamento is a restaurant's settlement request: a payout claim for the
// confirmed sales accumulated in [DataInicio, DataFim).
//
// Periods must tile: DataInicio of a new request equals DataFim of the most
// recent request for the same restaurant, or start-of-day when none exists.
// Requests are never deleted; a rejection sends the row back to "pendente"
// with the reason prepended to ObservacoesAdmin.
type Fechamento struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RestauranteID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	CarteiraID       uuid.UUID       `gorm:"type:uuid;not null"`
	DataInicio       time.Time       `gorm:"not null"`
	DataFim          time.Time       `gorm:"not null"`
	TotalBruto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxaPlataforma   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxaEntrega      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalLiquido     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	QtdTransacoes    int             `gorm:"not null"`
	Observacao       string
	Status           string `gorm:"type:varchar(20);not null;default:'pendente';index"`
	ObservacoesAdmin string
	ComprovanteURL   *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Fechamento) TableName() string { return "fechamentos" }
