package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SolicitarFechamentoRequest struct {
	Observacao string `json:"observacao" validate:"max=500"`
}

type AprovarFechamentoRequest struct {
	Observacoes string `json:"observacoes" validate:"max=500"`
}

type MarcarPagoRequest struct {
	ComprovanteURL string `json:"comprovante_url" validate:"omitempty,url"`
	Observacoes    string `json:"observacoes"     validate:"max=500"`
}

type RejeitarFechamentoRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ResumoFechamentoResponse is the pre-submission preview shown in the
// confirmation dialog. It is an unvalidated estimate and deliberately a
// different type from FechamentoResponse: only the persisted record
// participates in the approval state machine.
type ResumoFechamentoResponse struct {
	DataInicio        string          `json:"data_inicio"`
	DataFim           string          `json:"data_fim"`
	TotalBruto        decimal.Decimal `json:"total_bruto"`
	TaxaPlataforma    decimal.Decimal `json:"taxa_plataforma"`
	TaxaPlataformaPct decimal.Decimal `json:"taxa_plataforma_percent"`
	TaxaEntrega       decimal.Decimal `json:"taxa_entrega"`
	TotalLiquido      decimal.Decimal `json:"total_liquido"`
	QtdTransacoes     int             `json:"qtd_transacoes"`
}

type FechamentoResponse struct {
	ID               string          `json:"id"`
	RestauranteID    string          `json:"restaurante_id"`
	DataInicio       string          `json:"data_inicio"`
	DataFim          string          `json:"data_fim"`
	TotalBruto       decimal.Decimal `json:"total_bruto"`
	TaxaPlataforma   decimal.Decimal `json:"taxa_plataforma"`
	TaxaEntrega      decimal.Decimal `json:"taxa_entrega"`
	TotalLiquido     decimal.Decimal `json:"total_liquido"`
	QtdTransacoes    int             `json:"qtd_transacoes"`
	Observacao       string          `json:"observacao"`
	Status           string          `json:"status"`
	ObservacoesAdmin string          `json:"observacoes_admin"`
	ComprovanteURL   *string         `json:"comprovante_url"`
	CriadoEm         string          `json:"criado_em"`
	AtualizadoEm     string          `json:"atualizado_em"`
}
