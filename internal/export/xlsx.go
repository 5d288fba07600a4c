package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"invodex/internal/domain"
)

const (
	documentsSheet = "Documents"
	lineItemsSheet = "Line Items"
)

// columns defines the Documents sheet header row.
var columns = []string{
	"File Name",
	"Source Path",
	"Document Type",
	"Language",
	"Supplier Name",
	"Invoice Number",
	"Invoice Date",
	"Currency",
	"Subtotal",
	"Tax Amount",
	"Total",
	"Confidence",
	"Page Count",
	"Line Item Count",
	"Needs Review",
}

// lineItemColumns defines the Line Items sheet header row.
var lineItemColumns = []string{
	"File Name",
	"Description",
	"Quantity",
	"Unit Price",
	"Line Total",
}

// WriteXLSX writes a two-sheet workbook (documents plus their line items)
// to w.
func WriteXLSX(w io.Writer, docs []domain.Document) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", documentsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(lineItemsSheet); err != nil {
		return fmt.Errorf("creating line items sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := writeRow(f, documentsSheet, 1, toAny(columns)); err != nil {
		return err
	}
	if err := writeRow(f, lineItemsSheet, 1, toAny(lineItemColumns)); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	_ = f.SetCellStyle(documentsSheet, "A1", lastCol+"1", headerStyle)
	lastItemCol, _ := excelize.ColumnNumberToName(len(lineItemColumns))
	_ = f.SetCellStyle(lineItemsSheet, "A1", lastItemCol+"1", headerStyle)

	itemRow := 2
	for i := range docs {
		doc := &docs[i]
		if err := writeRow(f, documentsSheet, i+2, documentRow(doc)); err != nil {
			return err
		}
		for j := range doc.LineItems {
			item := &doc.LineItems[j]
			cells := []any{
				doc.FileName,
				item.Description,
				cellValue(item.Quantity),
				cellValue(item.UnitPrice),
				cellValue(item.LineTotal),
			}
			if err := writeRow(f, lineItemsSheet, itemRow, cells); err != nil {
				return err
			}
			itemRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func documentRow(doc *domain.Document) []any {
	return []any{
		doc.FileName,
		doc.SourceURI,
		string(doc.DocumentType),
		doc.Language,
		cellValue(doc.SupplierName),
		cellValue(doc.InvoiceNumber),
		cellValue(doc.InvoiceDate),
		cellValue(doc.Currency),
		cellValue(doc.Subtotal),
		cellValue(doc.TaxAmount),
		cellValue(doc.Total),
		cellValue(doc.Confidence),
		doc.PageCount,
		len(doc.LineItems),
		needsReviewLabel(doc.NeedsReview),
	}
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolving cell for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}

// cellValue unwraps optional fields. Nil becomes an empty cell rather than a
// zero, so missing amounts are distinguishable from genuine zeros.
func cellValue[T string | float64](p *T) any {
	if p == nil {
		return ""
	}
	return *p
}

func needsReviewLabel(flagged bool) string {
	if flagged {
		return "YES"
	}
	return ""
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// SuggestFileName derives a workbook file name from an output path argument,
// defaulting the extension to .xlsx.
func SuggestFileName(path string) string {
	if path == "" {
		return "documents.xlsx"
	}
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return path + ".xlsx"
	}
	return path
}
