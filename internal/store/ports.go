// Package store defines the persistence ports the HTTP layer and the alert
// worker depend on, with memory and SQLite implementations. The invoice
// engine itself never touches storage: callers fetch here, then invoke the
// engine with plain values.
package store

import (
	"context"

	"financeia/internal/core"
)

type (
	// UserStore persists account records for authentication.
	UserStore interface {
		FindUserByEmail(ctx context.Context, email string) (core.User, error)
		InsertUser(ctx context.Context, u core.User) (int64, error)
		GetUser(ctx context.Context, id int64) (core.User, error)
	}

	// CardStore persists credit cards and their billing parameters.
	CardStore interface {
		CreateCard(ctx context.Context, c core.CreditCard) (int64, error)
		UpdateCard(ctx context.Context, c core.CreditCard) error
		GetCard(ctx context.Context, userID, cardID int64) (core.CreditCard, error)
		ListCards(ctx context.Context, userID int64) ([]core.CreditCard, error)
		// AllCards returns every card regardless of owner; the alert
		// worker scans them all on each run.
		AllCards(ctx context.Context) ([]core.CreditCard, error)
	}

	// TransactionStore persists card charges, ordered by recording time.
	TransactionStore interface {
		AddTransaction(ctx context.Context, tx core.Transaction) (int64, error)
		ListCardTransactions(ctx context.Context, cardID int64) ([]core.Transaction, error)
	}

	// PaymentStore records which billing cycles have been settled; it backs
	// the engine's isMarkedPaid predicate.
	PaymentStore interface {
		MarkPaid(ctx context.Context, cardID int64, cycle string, amountCents int64) error
		PaidCycles(ctx context.Context, cardID int64) (map[string]bool, error)
	}

	// Store is the full persistence surface a backend provides.
	Store interface {
		UserStore
		CardStore
		TransactionStore
		PaymentStore
		Close() error
	}
)
