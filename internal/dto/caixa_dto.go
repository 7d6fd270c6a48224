package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	ValorAbertura decimal.Decimal `json:"valor_abertura" validate:"min=0"`
	Observacoes   string          `json:"observacoes"`
}

type FecharCaixaRequest struct {
	SessaoID        string          `json:"sessao_id"        validate:"required,uuid"`
	ValorFechamento decimal.Decimal `json:"valor_fechamento" validate:"min=0"`
	Observacoes     string          `json:"observacoes"`
}

// MovimentacaoManualRequest registers a sangria or reforço. The caller always
// supplies a positive magnitude; the sign is derived from Tipo.
type MovimentacaoManualRequest struct {
	SessaoID    string          `json:"sessao_id" validate:"required,uuid"`
	Tipo        string          `json:"tipo"      validate:"required,oneof=sangria reforco"`
	Valor       decimal.Decimal `json:"valor"     validate:"required,gt=0"`
	Motivo      string          `json:"motivo"    validate:"required,min=3"`
	Observacoes string          `json:"observacoes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// StatusCaixaResponse is the header/status-bar read model.
type StatusCaixaResponse struct {
	Aberto        bool             `json:"aberto"`
	SessaoID      *string          `json:"sessao_id"`
	ValorAbertura *decimal.Decimal `json:"valor_abertura"`
	AbertoEm      *string          `json:"aberto_em"`
}

type SessaoCaixaResponse struct {
	SessaoID              string           `json:"sessao_id"`
	OperadorID            string           `json:"operador_id"`
	ValorAbertura         decimal.Decimal  `json:"valor_abertura"`
	ValorEsperado         *decimal.Decimal `json:"valor_esperado"`
	ValorFechamento       *decimal.Decimal `json:"valor_fechamento"`
	Diferenca             *decimal.Decimal `json:"diferenca"`
	Status                string           `json:"status"`
	ObservacoesAbertura   string           `json:"observacoes_abertura"`
	ObservacoesFechamento *string          `json:"observacoes_fechamento"`
	AbertoEm              string           `json:"aberto_em"`
	FechadoEm             *string          `json:"fechado_em"`
}

type MovimentacaoCaixaResponse struct {
	ID          string          `json:"id"`
	Tipo        string          `json:"tipo"`
	Valor       decimal.Decimal `json:"valor"`
	Motivo      string          `json:"motivo"`
	Observacoes string          `json:"observacoes"`
	CriadoEm    string          `json:"criado_em"`
}

// RelatorioCaixaResponse is the per-session closing report: opening amount,
// sales, manual movement totals, and the resulting expected value/variance.
type RelatorioCaixaResponse struct {
	Sessao        SessaoCaixaResponse         `json:"sessao"`
	TotalVendas   decimal.Decimal             `json:"total_vendas"`
	TotalSangrias decimal.Decimal             `json:"total_sangrias"`
	TotalReforcos decimal.Decimal             `json:"total_reforcos"`
	ValorEsperado decimal.Decimal             `json:"valor_esperado"`
	Diferenca     *decimal.Decimal            `json:"diferenca"`
	Movimentacoes []MovimentacaoCaixaResponse `json:"movimentacoes"`
}
