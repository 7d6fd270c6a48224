package infra

import (
	"bytes"
	"fmt"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"

	"github.com/xuri/excelize/v2"
)

// GerarRelatorioXLSX builds the admin export: one row per fechamento with the
// settlement figures. Returned as an in-memory buffer streamed by the handler.
func GerarRelatorioXLSX(fechamentos []model.Fechamento) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Fechamentos"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"ID", "Restaurante", "Início", "Fim", "Total Bruto",
		"Taxa Plataforma", "Taxa Entrega", "Total Líquido",
		"Qtd Pedidos", "Status", "Comprovante",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx: header %q: %w", h, err)
		}
	}

	for row, fec := range fechamentos {
		comprovante := ""
		if fec.ComprovanteURL != nil {
			comprovante = *fec.ComprovanteURL
		}
		values := []interface{}{
			fec.ID.String(),
			fec.RestauranteID.String(),
			fec.DataInicio.Format("02/01/2006 15:04"),
			fec.DataFim.Format("02/01/2006 15:04"),
			fec.TotalBruto.InexactFloat64(),
			fec.TaxaPlataforma.InexactFloat64(),
			fec.TaxaEntrega.InexactFloat64(),
			fec.TotalLiquido.InexactFloat64(),
			fec.QtdTransacoes,
			fec.Status,
			comprovante,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("xlsx: row %d: %w", row+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write buffer: %w", err)
	}
	return buf, nil
}
