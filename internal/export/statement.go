package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cryptodash/market/internal/domain"
	"github.com/cryptodash/market/internal/portfolio"
)

const (
	marketsSheet   = "MARKETS"
	portfolioSheet = "PORTFOLIO"
)

// XLSXWriter implements SheetWriter by writing a local XLSX workbook with a
// MARKETS and a PORTFOLIO sheet. It backs the "Export Statement" action.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates a writer that saves the workbook to path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Write builds both sheets and saves the workbook.
func (w *XLSXWriter) Write(_ context.Context, markets []domain.AssetSummary, valuation portfolio.Valuation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, marketsSheet, buildMarketRows(markets)); err != nil {
		return err
	}
	if err := writeSheet(f, portfolioSheet, buildStatementRows(valuation)); err != nil {
		return err
	}

	// Drop the default sheet so the workbook opens on MARKETS.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook to %s: %w", w.path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", name, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", i+1, name, err)
		}
	}
	return nil
}
