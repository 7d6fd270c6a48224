package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessaoCaixa represents one physical cash drawer shift.
// Status: "aberta" | "fechada"
// Sessions are never deleted — closed sessions stay as audit trail.
type SessaoCaixa struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RestauranteID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OperadorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ValorAbertura decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ValorEsperado is computed on close:
	// ValorAbertura + vendas confirmadas desde AbertoEm + SUM(movimentacoes)
	ValorEsperado         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ValorFechamento       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferenca             *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status                string           `gorm:"type:varchar(20);not null;default:'aberta'"`
	ObservacoesAbertura   string
	ObservacoesFechamento *string
	AbertoEm              time.Time
	FechadoEm             *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time

	Movimentacoes []MovimentacaoCaixa `gorm:"foreignKey:SessaoID"`
}

func (SessaoCaixa) TableName() string { return "caixa_sessoes" }

// MovimentacaoCaixa is an immutable manual adjustment inside an open session.
// Tipo: "sangria" | "reforco"
// Valor is always stored signed: negative for sangria, positive for reforço.
// Movements are NEVER modified or deleted.
type MovimentacaoCaixa struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessaoID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	OperadorID  uuid.UUID       `gorm:"type:uuid;not null"`
	Tipo        string          `gorm:"type:varchar(20);not null"`
	Valor       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo      string          `gorm:"not null"`
	Observacoes string
	CreatedAt   time.Time
}

func (MovimentacaoCaixa) TableName() string { return "caixa_movimentacoes" }
