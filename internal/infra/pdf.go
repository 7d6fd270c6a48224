package infra

// pdf.go — settlement statement generation using go-pdf/fpdf.
// One A5 page per fechamento: restaurant header, settlement period, the
// figure breakdown (bruto / taxa plataforma / taxa entrega / líquido) and the
// payout status. Written to storagePath/extrato_{id}.pdf and attached to the
// status emails.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"

	"github.com/go-pdf/fpdf"
)

// GerarExtratoPDF writes the settlement statement for a fechamento.
// storagePath is created if needed; returns the absolute path of the file.
func GerarExtratoPDF(f *model.Fechamento, restauranteNome, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("extrato_%s.pdf", f.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Fome Ninja", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Extrato de Fechamento", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Identification ───────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, restauranteNome, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, "Fechamento "+f.ID.String(), "", 1, "L", false, 0, "")
	periodo := fmt.Sprintf("Período: %s — %s",
		f.DataInicio.Format("02/01/2006 15:04"),
		f.DataFim.Format("02/01/2006 15:04"))
	pdf.CellFormat(contentW, 4, periodo, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	// ── Figures ──────────────────────────────────────────────────────────────
	col1 := contentW * 0.62
	col2 := contentW * 0.38

	linha := func(label, valor string) {
		pdf.CellFormat(col1, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, valor, "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 9)
	linha(fmt.Sprintf("Vendas confirmadas (%d pedidos):", f.QtdTransacoes), "R$ "+f.TotalBruto.StringFixed(2))
	linha("Taxa da plataforma:", "-R$ "+f.TaxaPlataforma.StringFixed(2))
	linha("Taxas de entrega:", "-R$ "+f.TaxaEntrega.StringFixed(2))

	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 11)
	linha("TOTAL LÍQUIDO:", "R$ "+f.TotalLiquido.StringFixed(2))

	// ── Status ───────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, "Status: "+f.Status, "", 1, "L", false, 0, "")
	if f.ComprovanteURL != nil && *f.ComprovanteURL != "" {
		pdf.CellFormat(contentW, 4, "Comprovante: "+*f.ComprovanteURL, "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Documento gerado automaticamente.", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
