package billing

import (
	"testing"

	"financeia/internal/core"
)

func TestBuildStatementScenarioC(t *testing.T) {
	// A paid invoice with two transactions serializes to two rows and a
	// total matching their sum to two decimal places.
	card := testCard()
	txs := []core.Transaction{
		tx(1, card, "2024-01-10", 5075), // cycle 2024-02
		tx(2, card, "2024-02-01", 2450), // cycle 2024-02
	}
	invoices := mustBuild(t, card, txs, "2024-03-01", 0, func(k CycleKey) bool { return k == "2024-02" })

	st, err := BuildStatement(invoices, card, txs, "2024-02", "pt-BR")
	if err != nil {
		t.Fatalf("BuildStatement() error: %v", err)
	}

	if st.Status != StatusPaid {
		t.Errorf("statement status = %s, want paid", st.Status)
	}
	if st.Label != "Fevereiro 2024" {
		t.Errorf("statement label = %q, want %q", st.Label, "Fevereiro 2024")
	}
	if st.Total != "75.25" {
		t.Errorf("statement total = %q, want %q", st.Total, "75.25")
	}
	if len(st.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(st.Rows))
	}
	if st.Rows[0].Date != "2024-01-10" || st.Rows[0].Amount != "50.75" {
		t.Errorf("first row = %+v", st.Rows[0])
	}
	if st.Rows[1].Date != "2024-02-01" || st.Rows[1].Amount != "24.50" {
		t.Errorf("second row = %+v", st.Rows[1])
	}
}

func TestBuildStatementProjected(t *testing.T) {
	card := testCard()
	txs := []core.Transaction{tx(1, card, "2024-01-03", 10000)}
	invoices := mustBuild(t, card, txs, "2024-03-01", 2, nil)

	st, err := BuildStatement(invoices, card, txs, "2024-04", "en-US")
	if err != nil {
		t.Fatalf("BuildStatement() error: %v", err)
	}
	if !st.Projected {
		t.Error("statement for a projected invoice should be marked projected")
	}
	if len(st.Rows) != 0 {
		t.Errorf("projected statement has %d rows, want 0", len(st.Rows))
	}
	if st.Total != "0.00" {
		t.Errorf("projected statement total = %q, want 0.00", st.Total)
	}
}

func TestBuildStatementScenarioD(t *testing.T) {
	// Exporting a cycle absent from the computed sequence is a NotFoundError.
	card := testCard()
	txs := []core.Transaction{tx(1, card, "2024-01-03", 10000)}
	invoices := mustBuild(t, card, txs, "2024-03-01", 1, nil)

	_, err := BuildStatement(invoices, card, txs, "2030-01", "pt-BR")
	if !core.IsNotFound(err) {
		t.Errorf("BuildStatement(absent cycle) error = %v, want NotFoundError", err)
	}
}

func TestBuildStatementDeterministic(t *testing.T) {
	card := testCard()
	txs := []core.Transaction{
		tx(1, card, "2024-01-10", 5075),
		tx(2, card, "2024-02-01", 2450),
	}
	invoices := mustBuild(t, card, txs, "2024-03-01", 0, nil)

	a, err := BuildStatement(invoices, card, txs, "2024-02", "pt-BR")
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildStatement(invoices, card, txs, "2024-02", "pt-BR")
	if err != nil {
		t.Fatal(err)
	}
	if a.Total != b.Total || len(a.Rows) != len(b.Rows) || a.Rows[0] != b.Rows[0] {
		t.Error("identical inputs produced different statements")
	}
}
