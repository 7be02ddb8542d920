package export

import (
	"bytes"
	"strings"
	"testing"

	"financeia/internal/billing"
)

func sampleStatement() billing.Statement {
	return billing.Statement{
		CardName: "Nubank",
		Cycle:    "2024-02",
		Label:    "Fevereiro 2024",
		DueDate:  "2024-02-15",
		Status:   billing.StatusDue,
		Total:    "75.25",
		Rows: []billing.StatementRow{
			{Date: "2024-01-10", Description: "mercado", Amount: "50.75"},
			{Date: "2024-01-28", Description: "farmácia", Amount: "24.50"},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleStatement()); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"FATURA DO CARTÃO DE CRÉDITO",
		"Cartão: Nubank",
		"Mês de Referência: 2024-02 (Fevereiro 2024)",
		"Data de Vencimento: 2024-02-15",
		"Status: DUE",
		"Valor Total: R$ 75.25",
		"",
		"Data;Descrição;Valor",
		"2024-01-10;mercado;50.75",
		"2024-01-28;farmácia;24.50",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i, line := range want {
		if lines[i] != line {
			t.Errorf("line %d = %q, want %q", i, lines[i], line)
		}
	}
}

func TestWriteCSVProjected(t *testing.T) {
	st := sampleStatement()
	st.Status = billing.StatusProjected
	st.Total = "0.00"
	st.Projected = true
	st.Rows = nil

	var buf bytes.Buffer
	if err := WriteCSV(&buf, st); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, billing.ProjectedMarker) {
		t.Errorf("projected CSV missing marker row:\n%s", out)
	}
	if strings.Contains(out, "Data;Descrição;Valor") {
		t.Errorf("projected CSV should not have a transaction table:\n%s", out)
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleStatement()); err != nil {
		t.Fatalf("WritePDF() error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not look like a PDF, starts with %q", buf.Bytes()[:8])
	}
}

func TestWritePDFProjected(t *testing.T) {
	st := sampleStatement()
	st.Projected = true
	st.Rows = nil

	var buf bytes.Buffer
	if err := WritePDF(&buf, st); err != nil {
		t.Fatalf("WritePDF() error: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty PDF output")
	}
}

func TestStatementSheetRow(t *testing.T) {
	row := StatementSheetRow(sampleStatement())
	want := []any{"2024-02", "Fevereiro 2024", "Nubank", "2024-02-15", "due", "75.25", ""}
	if len(row) != len(want) {
		t.Fatalf("row has %d columns, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, row[i], want[i])
		}
	}

	st := sampleStatement()
	st.Projected = true
	row = StatementSheetRow(st)
	if row[6] != billing.ProjectedMarker {
		t.Errorf("projected column = %v", row[6])
	}
}

func TestFilenames(t *testing.T) {
	if got := CSVFilename(7, "2024-02"); got != "fatura_7_2024-02.csv" {
		t.Errorf("CSVFilename() = %q", got)
	}
	if got := PDFFilename(7, "2024-02"); got != "fatura_7_2024-02.pdf" {
		t.Errorf("PDFFilename() = %q", got)
	}
}
