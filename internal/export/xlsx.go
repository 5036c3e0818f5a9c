package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"bananaledger/internal/domain"
	"bananaledger/internal/ledger"
)

const sheetName = "Banana"

var columnWidths = map[string]float64{"A": 12, "B": 14, "C": 44, "D": 10, "E": 10, "F": 14, "G": 8, "H": 9}

// WriteXLSX renders validated ledger lines into a single-sheet workbook with
// typed date and amount cells. Account numbers stay text so leading zeros
// survive, and a date that names no calendar day is written as text.
func WriteXLSX(out io.Writer, lines []string) error {
	if ledger.IsErrorDocument(lines) {
		return domain.ErrErrorDocument
	}
	doc, err := ledger.Parse(lines)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	dateFmt := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("creating date style: %w", err)
	}
	amountFmt := "#,##0.00"
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return fmt.Errorf("creating amount style: %w", err)
	}

	header := strings.Split(ledger.Header, ";")
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "H1", headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i := range doc.Rows {
		r := &doc.Rows[i]
		rowNum := i + 2
		cell := func(col string) string { return fmt.Sprintf("%s%d", col, rowNum) }

		var date interface{} = r.Date
		if r.Date.IsZero() {
			date = r.DateText
		}
		values := []interface{}{
			date,
			r.Invoice,
			r.Description,
			r.DebitAccount,
			r.CreditAccount,
			r.Amount.InexactFloat64(),
			r.Currency,
			r.VATCode,
		}
		if err := f.SetSheetRow(sheetName, cell("A"), &values); err != nil {
			return fmt.Errorf("writing row %d: %w", rowNum, err)
		}
		if !r.Date.IsZero() {
			if err := f.SetCellStyle(sheetName, cell("A"), cell("A"), dateStyle); err != nil {
				return fmt.Errorf("styling date %d: %w", rowNum, err)
			}
		}
		if err := f.SetCellStyle(sheetName, cell("F"), cell("F"), amountStyle); err != nil {
			return fmt.Errorf("styling amount %d: %w", rowNum, err)
		}
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
