// Package export produces XLSX workbooks from stored invoices.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tobi-ak/invoiceflow/internal/entity"
	"github.com/tobi-ak/invoiceflow/internal/repository"
)

// Service is a tiny façade over the invoice repository that renders exports.
type Service struct {
	invoices repository.InvoiceRepository
	logger   *slog.Logger
}

func NewService(invoices repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoices: invoices, logger: logger}
}

// ExportInvoicesXLSX returns an XLSX workbook (as bytes) of all invoices
// matching the optional search query, one row per invoice.
func (s *Service) ExportInvoicesXLSX(ctx context.Context, query string) ([]byte, error) {
	start := time.Now()

	invoices, err := s.invoices.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Invoice Number",
		"Date",
		"Vendor",
		"Currency",
		"Subtotal",
		"Tax %",
		"Total",
		"PO Number",
		"Line Items",
		"Source File",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, inv := range invoices {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		rec := inv.Record
		write(1, inv.Number)
		write(2, inv.Date)
		write(3, inv.VendorName)
		write(4, inv.Currency)
		if rec.Invoice.Subtotal != nil {
			write(5, *rec.Invoice.Subtotal)
		}
		if rec.Invoice.TaxPercent != nil {
			write(6, *rec.Invoice.TaxPercent)
		}
		write(7, inv.Total)
		write(8, rec.Invoice.PONumber)
		write(9, summarizeItems(rec))
		write(10, inv.FileName)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 12)
	_ = f.SetColWidth(sheet, "C", "C", 28)
	_ = f.SetColWidth(sheet, "D", "H", 10)
	_ = f.SetColWidth(sheet, "I", "I", 60)
	_ = f.SetColWidth(sheet, "J", "J", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(invoices),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func summarizeItems(rec entity.InvoiceRecord) string {
	parts := make([]string, 0, len(rec.Invoice.LineItems))
	for _, it := range rec.Invoice.LineItems {
		parts = append(parts, fmt.Sprintf("%s x%.2g @ %.2f", it.Description, it.Quantity, it.UnitPrice))
	}
	return truncate(strings.Join(parts, "; "), 200)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
