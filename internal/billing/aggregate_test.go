package billing

import (
	"testing"
	"time"

	"financeia/internal/core"
)

func tx(id int64, card core.CreditCard, date string, cents int64) core.Transaction {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{ID: id, CardID: card.ID, Date: d, Description: "charge", Amount: core.Money{Cents: cents}}
}

func TestAggregateTransactions(t *testing.T) {
	card := testCard() // closes on the 5th

	txs := []core.Transaction{
		tx(1, card, "2024-01-03", 10000), // cycle 2024-01
		tx(2, card, "2024-01-10", 5000),  // after closing: cycle 2024-02
		tx(3, card, "2024-02-01", 2500),  // cycle 2024-02
	}

	got, err := AggregateTransactions(card, txs)
	if err != nil {
		t.Fatalf("AggregateTransactions() error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d cycles, want 2", len(got))
	}
	jan := got["2024-01"]
	if jan.TotalCents != 10000 {
		t.Errorf("January total = %d, want 10000", jan.TotalCents)
	}
	feb := got["2024-02"]
	if feb.TotalCents != 7500 {
		t.Errorf("February total = %d, want 7500", feb.TotalCents)
	}
	if len(feb.TransactionIDs) != 2 || feb.TransactionIDs[0] != 2 || feb.TransactionIDs[1] != 3 {
		t.Errorf("February transaction IDs = %v, want [2 3] in input order", feb.TransactionIDs)
	}
}

func TestAggregateTransactionsEmptyCyclesAbsent(t *testing.T) {
	card := testCard()
	got, err := AggregateTransactions(card, []core.Transaction{
		tx(1, card, "2024-01-03", 10000),
	})
	if err != nil {
		t.Fatalf("AggregateTransactions() error: %v", err)
	}
	if _, exists := got["2024-02"]; exists {
		t.Error("cycle with no transactions should be absent, not a zero record")
	}
}

func TestAggregateTransactionsCardMismatch(t *testing.T) {
	card := testCard()
	other := tx(9, card, "2024-01-03", 100)
	other.CardID = card.ID + 1

	_, err := AggregateTransactions(card, []core.Transaction{other})
	if !core.IsValidation(err) {
		t.Errorf("AggregateTransactions() error = %v, want ValidationError", err)
	}
}
