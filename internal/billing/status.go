package billing

import (
	"time"

	"financeia/internal/core"
)

// Status is the lifecycle state of an invoice, derived fresh on every query
// and never stored.
type Status string

const (
	// StatusOpen: the cycle is still accumulating charges.
	StatusOpen Status = "open"
	// StatusDue: the cycle closed but the due date has not passed.
	StatusDue Status = "due"
	// StatusOverdue: the due date passed without a payment record.
	StatusOverdue Status = "overdue"
	// StatusPaid: a payment record exists for the cycle. Terminal.
	StatusPaid Status = "paid"
	// StatusProjected: a synthesized placeholder with no transactions.
	StatusProjected Status = "projected"
)

// ClassifyStatus derives an invoice's state from the cycle's closing and due
// dates, the caller's "today", and two predicates: whether the cycle has any
// recorded transactions and whether an external payment record marks it paid.
//
// A cycle with no transactions is always projected: absence of spend never
// produces a payable (or paid) invoice, whatever the dates say. For cycles
// with transactions, a payment record dominates every date-based rule.
func ClassifyStatus(closing, due, today time.Time, hasTransactions, markedPaid bool) Status {
	if !hasTransactions {
		return StatusProjected
	}
	if markedPaid {
		return StatusPaid
	}
	today = core.DateOnly(today)
	if !core.DateOnly(closing).Before(today) {
		return StatusOpen
	}
	if core.DateOnly(due).Before(today) {
		return StatusOverdue
	}
	return StatusDue
}
