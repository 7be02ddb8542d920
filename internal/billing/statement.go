package billing

import (
	"strconv"
	"time"

	"financeia/internal/core"
)

// ProjectedMarker is the row exported in place of a transaction table for
// projected invoices, so downstream consumers can tell "no spend recorded"
// from "not yet computed".
const ProjectedMarker = "no transactions (projected invoice)"

// Statement is the flat, deterministic record an invoice exports to. Field
// order is stable and amounts are fixed-point with two decimals, suitable
// for tabular destinations (CSV, PDF, spreadsheet rows).
type Statement struct {
	CardName  string
	Cycle     CycleKey
	Label     string
	DueDate   string
	Status    Status
	Total     string
	Projected bool
	Rows      []StatementRow
}

// StatementRow is one contributing transaction.
type StatementRow struct {
	Date        string
	Description string
	Amount      string
}

// BuildStatement serializes the invoice for the requested cycle out of an
// already-computed sequence. Rows keep the invoice's transaction order.
// Requesting a cycle absent from the sequence is a NotFoundError.
func BuildStatement(invoices []Invoice, card core.CreditCard, txs []core.Transaction, key CycleKey, locale string) (Statement, error) {
	var inv *Invoice
	for i := range invoices {
		if invoices[i].Cycle == key {
			inv = &invoices[i]
			break
		}
	}
	if inv == nil {
		return Statement{}, core.NotFound("invoice", string(key))
	}

	label, err := CycleLabel(key, locale)
	if err != nil {
		return Statement{}, err
	}

	st := Statement{
		CardName:  card.Name,
		Cycle:     key,
		Label:     label,
		DueDate:   inv.DueDate.Format(time.DateOnly),
		Status:    inv.Status,
		Total:     inv.Total.String(),
		Projected: inv.Projected,
	}
	if inv.Projected {
		return st, nil
	}

	byID := make(map[int64]core.Transaction, len(txs))
	for _, tx := range txs {
		byID[tx.ID] = tx
	}
	for _, id := range inv.TransactionIDs {
		tx, ok := byID[id]
		if !ok {
			return Statement{}, core.NotFound("transaction", strconv.FormatInt(id, 10))
		}
		st.Rows = append(st.Rows, StatementRow{
			Date:        core.DateOnly(tx.Date).Format(time.DateOnly),
			Description: tx.Description,
			Amount:      tx.Amount.String(),
		})
	}
	return st, nil
}
