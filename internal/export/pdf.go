package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"financeia/internal/billing"
)

// WritePDF renders the statement as a single-page A4 PDF: a title, the
// invoice metadata, then the transaction table. The core fonts are
// latin-1, so text goes through the unicode translator to keep the
// Portuguese labels intact.
func WritePDF(w io.Writer, st billing.Statement) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Fatura do Cartão de Crédito"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	meta := []string{
		fmt.Sprintf("Cartão: %s", st.CardName),
		fmt.Sprintf("Mês de Referência: %s (%s)", st.Cycle, st.Label),
		fmt.Sprintf("Data de Vencimento: %s", st.DueDate),
		fmt.Sprintf("Status: %s", strings.ToUpper(string(st.Status))),
		fmt.Sprintf("Valor Total: R$ %s", st.Total),
	}
	for _, line := range meta {
		pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if st.Projected {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, 7, tr(billing.ProjectedMarker), "", 1, "L", false, 0, "")
		return output(pdf, w)
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(35, 8, "Data", "1", 0, "L", false, 0, "")
	pdf.CellFormat(115, 8, tr("Descrição"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Valor", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, row := range st.Rows {
		pdf.CellFormat(35, 8, row.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(115, 8, tr(row.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, row.Amount, "1", 1, "R", false, 0, "")
	}

	return output(pdf, w)
}

func output(pdf *gofpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// PDFFilename is the download name for a statement export.
func PDFFilename(cardID int64, cycle billing.CycleKey) string {
	return fmt.Sprintf("fatura_%d_%s.pdf", cardID, cycle)
}
