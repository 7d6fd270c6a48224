package service

import (
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"

	"github.com/shopspring/decimal"
)

// ValoresFechamento is the output of the pure settlement aggregation.
type ValoresFechamento struct {
	TotalBruto     decimal.Decimal
	TaxaPlataforma decimal.Decimal
	TaxaEntrega    decimal.Decimal
	TotalLiquido   decimal.Decimal
	QtdTransacoes  int
}

// CalcularValores aggregates confirmed wallet entries into settlement
// figures. taxaPct is a percentage (10 means 10%).
//
//	total_bruto    = Σ valor
//	taxa_entrega   = Σ taxa_entrega
//	taxa_plataforma = total_bruto × taxaPct / 100
//	total_liquido  = total_bruto − taxa_plataforma − taxa_entrega
//
// An empty input yields all-zero figures; refusing to persist a zero-value
// settlement is the caller's responsibility (ErrNadaParaFechar).
func CalcularValores(movs []model.MovimentacaoCarteira, taxaPct decimal.Decimal) ValoresFechamento {
	bruto := decimal.Zero
	entrega := decimal.Zero
	for _, m := range movs {
		bruto = bruto.Add(m.Valor)
		entrega = entrega.Add(m.TaxaEntrega)
	}

	taxa := bruto.Mul(taxaPct).Div(decimal.NewFromInt(100)).Round(2)

	return ValoresFechamento{
		TotalBruto:     bruto,
		TaxaPlataforma: taxa,
		TaxaEntrega:    entrega,
		TotalLiquido:   bruto.Sub(taxa).Sub(entrega),
		QtdTransacoes:  len(movs),
	}
}
