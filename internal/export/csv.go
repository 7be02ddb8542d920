// Package export serializes invoice statements to the formats the app can
// hand off: CSV downloads, PDF files and Google Sheets rows.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"financeia/internal/billing"
)

// WriteCSV renders the statement as a semicolon-delimited CSV: a header
// block with the invoice metadata, a blank line, then one row per
// transaction. Projected invoices get a single marker row instead of a
// transaction table.
func WriteCSV(w io.Writer, st billing.Statement) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	header := [][]string{
		{"FATURA DO CARTÃO DE CRÉDITO"},
		{fmt.Sprintf("Cartão: %s", st.CardName)},
		{fmt.Sprintf("Mês de Referência: %s (%s)", st.Cycle, st.Label)},
		{fmt.Sprintf("Data de Vencimento: %s", st.DueDate)},
		{fmt.Sprintf("Status: %s", strings.ToUpper(string(st.Status)))},
		{fmt.Sprintf("Valor Total: R$ %s", st.Total)},
		{},
	}
	for _, row := range header {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}

	if st.Projected {
		if err := cw.Write([]string{billing.ProjectedMarker}); err != nil {
			return fmt.Errorf("write csv marker: %w", err)
		}
		cw.Flush()
		return cw.Error()
	}

	if err := cw.Write([]string{"Data", "Descrição", "Valor"}); err != nil {
		return fmt.Errorf("write csv columns: %w", err)
	}
	for _, row := range st.Rows {
		if err := cw.Write([]string{row.Date, row.Description, row.Amount}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFilename is the download name for a statement export.
func CSVFilename(cardID int64, cycle billing.CycleKey) string {
	return fmt.Sprintf("fatura_%d_%s.csv", cardID, cycle)
}
