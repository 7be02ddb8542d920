package http

import (
	"net/http"
	"time"

	"financeia/internal/core"
	"financeia/internal/log"
)

type transactionRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	// Decimal string, dot or comma separated; negative for refunds.
	Amount string `json:"amount"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	CardID      int64  `json:"card_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		CardID:      tx.CardID,
		Date:        core.DateOnly(tx.Date).Format(time.DateOnly),
		Description: tx.Description,
		Amount:      tx.Amount.String(),
		AmountCents: tx.Amount.Cents,
	}
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathCardID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	card, err := s.store.GetCard(r.Context(), userID(r), cardID)
	if err != nil {
		writeError(w, err)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	tx := core.Transaction{
		CardID:      card.ID,
		Date:        date,
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
	}
	id, err := s.store.AddTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, err)
		return
	}
	tx.ID = id

	s.logger.InfoContext(r.Context(), "transaction added",
		log.FieldCardID, card.ID,
		log.FieldAmount, cents)
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathCardID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	card, err := s.store.GetCard(r.Context(), userID(r), cardID)
	if err != nil {
		writeError(w, err)
		return
	}

	txs, err := s.store.ListCardTransactions(r.Context(), card.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}
