// Package alerts scans every card for invoices about to fall due and fans
// the results out through AMQP, where the worker turns them into emails.
package alerts

import (
	"context"
	"fmt"
	"time"

	"financeia/internal/amqp"
	"financeia/internal/billing"
	"financeia/internal/core"
	"financeia/internal/log"
	"financeia/internal/store"
)

// Publisher is the slice of the AMQP client the scanner needs.
type Publisher interface {
	PublishInvoiceAlert(ctx context.Context, msg *amqp.InvoiceAlertMessage) error
}

// Scanner walks all cards, projects their invoices and publishes an alert
// for each one due within the configured window.
type Scanner struct {
	store     store.Store
	publisher Publisher
	logger    *log.Logger

	horizonMonths int
	daysAhead     int
}

func NewScanner(st store.Store, pub Publisher, logger *log.Logger, horizonMonths, daysAhead int) *Scanner {
	return &Scanner{
		store:         st,
		publisher:     pub,
		logger:        logger.WithComponent(log.ComponentAlerts),
		horizonMonths: horizonMonths,
		daysAhead:     daysAhead,
	}
}

// Run performs one scan pass. A failure on one card does not stop the scan;
// the first error is reported after every card has been tried.
func (s *Scanner) Run(ctx context.Context, today time.Time) (int, error) {
	cards, err := s.store.AllCards(ctx)
	if err != nil {
		return 0, fmt.Errorf("list cards: %w", err)
	}

	var published int
	var firstErr error
	for _, card := range cards {
		n, err := s.scanCard(ctx, card, today)
		if err != nil {
			s.logger.ErrorContext(ctx, "card scan failed", log.FieldCardID, card.ID, log.FieldError, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		published += n
	}

	s.logger.InfoContext(ctx, "alert scan finished", "cards", len(cards), "alerts", published)
	return published, firstErr
}

func (s *Scanner) scanCard(ctx context.Context, card core.CreditCard, today time.Time) (int, error) {
	user, err := s.store.GetUser(ctx, card.UserID)
	if err != nil {
		return 0, err
	}
	txs, err := s.store.ListCardTransactions(ctx, card.ID)
	if err != nil {
		return 0, err
	}
	paid, err := s.store.PaidCycles(ctx, card.ID)
	if err != nil {
		return 0, err
	}

	invoices, err := billing.BuildInvoices(card, txs, today, s.horizonMonths, func(k billing.CycleKey) bool {
		return paid[string(k)]
	})
	if err != nil {
		return 0, err
	}

	var published int
	for _, inv := range billing.DueSoon(invoices, today, s.daysAhead) {
		msg := &amqp.InvoiceAlertMessage{
			CardID:     card.ID,
			CardName:   card.Name,
			UserEmail:  user.Email,
			UserName:   user.Name,
			Cycle:      string(inv.Cycle),
			DueDate:    inv.DueDate.Format(time.DateOnly),
			TotalCents: inv.Total.Cents,
			Timestamp:  time.Now(),
		}
		if err := s.publisher.PublishInvoiceAlert(ctx, msg); err != nil {
			return published, fmt.Errorf("publish alert for cycle %s: %w", inv.Cycle, err)
		}
		published++
	}
	return published, nil
}
