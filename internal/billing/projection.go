package billing

import (
	"time"

	"financeia/internal/core"
)

// Invoice is one billing cycle of a card: either real (backed by
// transactions) or a projected placeholder for a cycle that has none yet.
// Invoices are computed on demand and never mutated; a new query yields a
// freshly recomputed list.
type Invoice struct {
	CardID         int64
	Cycle          CycleKey
	Total          core.Money
	ClosingDate    time.Time
	DueDate        time.Time
	Status         Status
	TransactionIDs []int64
	Projected      bool
}

// PaidChecker reports whether an external payment record marks the cycle as
// paid. Payment tracking itself lives outside the engine.
type PaidChecker func(CycleKey) bool

// BuildInvoices produces the complete ordered invoice sequence for a card:
// every cycle with recorded transactions, plus projected placeholders from
// the cycle containing today through horizonMonths cycles ahead.
//
// The range runs from the earliest transaction's cycle (or the current cycle,
// if some transactions are future-dated) through the current cycle plus the
// horizon, stretched further when installment-style transactions already land
// beyond it so that no recorded charge is ever dropped. Within the range,
// cycles before the current one with no transactions are omitted: no invoice
// is manufactured for a historical month with no spend. With no transactions
// and a zero horizon the result is empty, not an error.
func BuildInvoices(card core.CreditCard, txs []core.Transaction, today time.Time, horizonMonths int, isPaid PaidChecker) ([]Invoice, error) {
	if err := card.Validate(); err != nil {
		return nil, err
	}
	if horizonMonths < 0 {
		return nil, core.Validationf("projection horizon must be >= 0, got %d", horizonMonths)
	}
	if isPaid == nil {
		isPaid = func(CycleKey) bool { return false }
	}

	totals, err := AggregateTransactions(card, txs)
	if err != nil {
		return nil, err
	}

	current := CycleOf(card, today)
	if len(totals) == 0 && horizonMonths == 0 {
		return nil, nil
	}

	start, end := current, current
	for k := 0; k < horizonMonths; k++ {
		end = end.Next()
	}
	for key := range totals {
		if key.Before(start) {
			start = key
		}
		if end.Before(key) {
			end = key
		}
	}

	var invoices []Invoice
	for key := start; !end.Before(key); key = key.Next() {
		agg, hasTx := totals[key]
		if !hasTx && key.Before(current) {
			continue
		}

		closing, err := ClosingDate(card, key)
		if err != nil {
			return nil, err
		}
		due, err := DueDate(card, key)
		if err != nil {
			return nil, err
		}

		invoices = append(invoices, Invoice{
			CardID:         card.ID,
			Cycle:          key,
			Total:          core.Money{Cents: agg.TotalCents},
			ClosingDate:    closing,
			DueDate:        due,
			Status:         ClassifyStatus(closing, due, today, hasTx, hasTx && isPaid(key)),
			TransactionIDs: agg.TransactionIDs,
			Projected:      !hasTx,
		})
	}
	return invoices, nil
}

// OutstandingBalance sums the totals of unpaid real invoices. The card's
// available limit is its total limit minus this balance.
func OutstandingBalance(invoices []Invoice) int64 {
	var sum int64
	for _, inv := range invoices {
		switch inv.Status {
		case StatusOpen, StatusDue, StatusOverdue:
			sum += inv.Total.Cents
		}
	}
	return sum
}

// DueSoon filters invoices whose due date falls within the next withinDays
// days (inclusive), skipping paid, overdue and projected ones.
func DueSoon(invoices []Invoice, today time.Time, withinDays int) []Invoice {
	day := core.DateOnly(today)
	limit := day.AddDate(0, 0, withinDays)

	var out []Invoice
	for _, inv := range invoices {
		if inv.Status != StatusOpen && inv.Status != StatusDue {
			continue
		}
		due := core.DateOnly(inv.DueDate)
		if due.Before(day) || due.After(limit) {
			continue
		}
		out = append(out, inv)
	}
	return out
}
