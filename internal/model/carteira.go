package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Carteira is a restaurant's wallet — the aggregation root for confirmed
// order income pending settlement.
type Carteira struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RestauranteID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Carteira) TableName() string { return "carteiras" }

// MovimentacaoCarteira is a confirmed monetary event tied to a completed
// order. Rows are produced by the order pipeline and consumed read-only here:
// the Pendente→Confirmado transition happens externally.
// Tipo: "entrada" | "saida"; Origem: "pedido"
// Status: "pendente" | "confirmado" — only confirmado entrada/pedido rows are
// eligible for settlement aggregation.
type MovimentacaoCarteira struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CarteiraID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	RestauranteID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Valor         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxaEntrega   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tipo          string          `gorm:"type:varchar(20);not null;default:'entrada'"`
	Origem        string          `gorm:"type:varchar(20);not null;default:'pedido'"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pendente'"`
	PedidoID      *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time
}

func (MovimentacaoCarteira) TableName() string { return "movimentacoes_carteira" }
