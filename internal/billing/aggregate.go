package billing

import (
	"financeia/internal/core"
)

// Aggregate is the per-cycle sum of recorded transactions. TransactionIDs
// keeps input order so exported statements list charges the way they were
// recorded.
type Aggregate struct {
	TotalCents     int64
	TransactionIDs []int64
}

// AggregateTransactions partitions the card's transactions into billing
// cycles via the card's closing-day window. Cycles without transactions are
// simply absent from the result; filling gaps is the projection engine's job.
// A transaction referencing a different card fails the whole call.
func AggregateTransactions(card core.CreditCard, txs []core.Transaction) (map[CycleKey]Aggregate, error) {
	totals := make(map[CycleKey]Aggregate, len(txs))
	for _, tx := range txs {
		if tx.CardID != card.ID {
			return nil, core.Validationf("transaction %d belongs to card %d, not card %d", tx.ID, tx.CardID, card.ID)
		}
		key := CycleOf(card, tx.Date)
		agg := totals[key]
		agg.TotalCents += tx.Amount.Cents
		agg.TransactionIDs = append(agg.TransactionIDs, tx.ID)
		totals[key] = agg
	}
	return totals, nil
}
