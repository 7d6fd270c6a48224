package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Restaurante holds the platform-facing data of one restaurant tenant.
// ChavePix is the payout destination; settlement submission is refused
// while it is unset.
type Restaurante struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome     string    `gorm:"not null"`
	Email    *string
	ChavePix *string
	// TaxaPlataformaPercent overrides the global platform fee when set.
	TaxaPlataformaPercent *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Ativo                 bool             `gorm:"not null;default:true"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (Restaurante) TableName() string { return "restaurantes" }
