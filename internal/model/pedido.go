package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pedido is the minimal projection of the order kanban this service needs:
// the "orders in flight" predicate consumed before a settlement submission.
// Status: "pendente" | "preparando" | "pronto" | "entregue" | "cancelado"
// The kanban itself lives in another service.
type Pedido struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RestauranteID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status        string          `gorm:"type:varchar(20);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Pedido) TableName() string { return "pedidos" }
