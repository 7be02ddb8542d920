package http

import (
	"net/http"
	"time"

	"financeia/internal/billing"
	"financeia/internal/core"
	"financeia/internal/log"
)

type cardRequest struct {
	Name       string `json:"name"`
	LimitCents int64  `json:"limit_cents"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
}

type cardResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	LimitCents int64  `json:"limit_cents"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
}

type cardDetailResponse struct {
	cardResponse
	UsedCents      int64 `json:"used_cents"`
	AvailableCents int64 `json:"available_cents"`
}

func toCardResponse(c core.CreditCard) cardResponse {
	return cardResponse{
		ID:         c.ID,
		Name:       c.Name,
		LimitCents: c.LimitCents,
		ClosingDay: c.ClosingDay,
		DueDay:     c.DueDay,
	}
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	card := core.CreditCard{
		UserID:     userID(r),
		Name:       sanitizeInput(req.Name),
		LimitCents: req.LimitCents,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	}
	id, err := s.store.CreateCard(r.Context(), card)
	if err != nil {
		writeError(w, err)
		return
	}
	card.ID = id

	s.logger.InfoContext(r.Context(), "card created", log.FieldUserID, card.UserID, log.FieldCardID, id)
	writeJSON(w, http.StatusCreated, toCardResponse(card))
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.store.ListCards(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetCard returns the card together with its used and available limit.
// Used limit is the sum of unpaid invoice totals.
func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathCardID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	card, invoices, _, err := s.cardInvoices(r, cardID, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	used := billing.OutstandingBalance(invoices)
	writeJSON(w, http.StatusOK, cardDetailResponse{
		cardResponse:   toCardResponse(card),
		UsedCents:      used,
		AvailableCents: card.LimitCents - used,
	})
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathCardID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	// Ownership check before the write.
	if _, err := s.store.GetCard(r.Context(), userID(r), cardID); err != nil {
		writeError(w, err)
		return
	}

	card := core.CreditCard{
		ID:         cardID,
		UserID:     userID(r),
		Name:       sanitizeInput(req.Name),
		LimitCents: req.LimitCents,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	}
	if err := s.store.UpdateCard(r.Context(), card); err != nil {
		writeError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "card updated", log.FieldCardID, cardID)
	writeJSON(w, http.StatusOK, toCardResponse(card))
}

// cardInvoices loads the card scoped to the requesting user and rebuilds its
// invoice sequence with the given projection horizon.
func (s *Server) cardInvoices(r *http.Request, cardID int64, horizon int) (core.CreditCard, []billing.Invoice, []core.Transaction, error) {
	ctx := r.Context()
	card, err := s.store.GetCard(ctx, userID(r), cardID)
	if err != nil {
		return core.CreditCard{}, nil, nil, err
	}
	txs, err := s.store.ListCardTransactions(ctx, card.ID)
	if err != nil {
		return core.CreditCard{}, nil, nil, err
	}
	paid, err := s.store.PaidCycles(ctx, card.ID)
	if err != nil {
		return core.CreditCard{}, nil, nil, err
	}

	invoices, err := billing.BuildInvoices(card, txs, time.Now(), horizon, func(k billing.CycleKey) bool {
		return paid[string(k)]
	})
	if err != nil {
		return core.CreditCard{}, nil, nil, err
	}
	return card, invoices, txs, nil
}
