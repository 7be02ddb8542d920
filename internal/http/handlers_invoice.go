package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"financeia/internal/billing"
	"financeia/internal/core"
	"financeia/internal/export"
	"financeia/internal/log"
)

type invoiceResponse struct {
	Cycle          string  `json:"cycle"`
	Label          string  `json:"label"`
	Total          string  `json:"total"`
	TotalCents     int64   `json:"total_cents"`
	ClosingDate    string  `json:"closing_date"`
	DueDate        string  `json:"due_date"`
	Status         string  `json:"status"`
	Projected      bool    `json:"projected"`
	TransactionIDs []int64 `json:"transaction_ids"`
}

type statementResponse struct {
	CardName  string                 `json:"card_name"`
	Cycle     string                 `json:"cycle"`
	Label     string                 `json:"label"`
	DueDate   string                 `json:"due_date"`
	Status    string                 `json:"status"`
	Total     string                 `json:"total"`
	Projected bool                   `json:"projected"`
	Rows      []statementRowResponse `json:"rows"`
}

type statementRowResponse struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

func (s *Server) toInvoiceResponse(inv billing.Invoice) invoiceResponse {
	label, err := billing.CycleLabel(inv.Cycle, s.exportLocale)
	if err != nil {
		label = string(inv.Cycle)
	}
	ids := inv.TransactionIDs
	if ids == nil {
		ids = []int64{}
	}
	return invoiceResponse{
		Cycle:          string(inv.Cycle),
		Label:          label,
		Total:          inv.Total.String(),
		TotalCents:     inv.Total.Cents,
		ClosingDate:    inv.ClosingDate.Format(time.DateOnly),
		DueDate:        inv.DueDate.Format(time.DateOnly),
		Status:         string(inv.Status),
		Projected:      inv.Projected,
		TransactionIDs: ids,
	}
}

// handleListInvoices returns the card's invoice timeline, most recent first.
// includeFuture=true extends it with the configured projection horizon.
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathCardID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	horizon := 0
	if r.URL.Query().Get("includeFuture") == "true" {
		horizon = s.horizonMonths
	}

	_, invoices, _, err := s.cardInvoices(r, cardID, horizon)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]invoiceResponse, 0, len(invoices))
	for i := len(invoices) - 1; i >= 0; i-- {
		out = append(out, s.toInvoiceResponse(invoices[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDueSoon returns invoices whose due date falls within the next N days
// (default: the alert window).
func (s *Server) handleDueSoon(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathCardID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	days := s.alertDaysAhead
	if v := r.URL.Query().Get("days"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil || days < 1 {
			writeError(w, core.Validationf("invalid days %q", v))
			return
		}
	}

	_, invoices, _, err := s.cardInvoices(r, cardID, s.horizonMonths)
	if err != nil {
		writeError(w, err)
		return
	}

	due := billing.DueSoon(invoices, time.Now(), days)
	out := make([]invoiceResponse, 0, len(due))
	for _, inv := range due {
		out = append(out, s.toInvoiceResponse(inv))
	}
	writeJSON(w, http.StatusOK, out)
}

type dueAlertResponse struct {
	CardID   int64  `json:"card_id"`
	CardName string `json:"card_name"`
	invoiceResponse
}

// handleDueAlerts returns due-soon invoices across every card the user owns.
func (s *Server) handleDueAlerts(w http.ResponseWriter, r *http.Request) {
	days := s.alertDaysAhead
	if v := r.URL.Query().Get("days"); v != "" {
		var err error
		days, err = strconv.Atoi(v)
		if err != nil || days < 1 {
			writeError(w, core.Validationf("invalid days %q", v))
			return
		}
	}

	cards, err := s.store.ListCards(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	out := make([]dueAlertResponse, 0)
	for _, card := range cards {
		_, invoices, _, err := s.cardInvoices(r, card.ID, s.horizonMonths)
		if err != nil {
			writeError(w, err)
			return
		}
		for _, inv := range billing.DueSoon(invoices, now, days) {
			out = append(out, dueAlertResponse{
				CardID:          card.ID,
				CardName:        card.Name,
				invoiceResponse: s.toInvoiceResponse(inv),
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// statement recomputes the sequence and serializes the requested cycle.
func (s *Server) statement(r *http.Request, cardID int64) (billing.Statement, error) {
	key, err := billing.ParseCycleKey(mux.Vars(r)["cycle"])
	if err != nil {
		return billing.Statement{}, err
	}

	card, invoices, txs, err := s.cardInvoices(r, cardID, s.horizonMonths)
	if err != nil {
		return billing.Statement{}, err
	}
	return billing.BuildStatement(invoices, card, txs, key, s.exportLocale)
}

func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathCardID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := s.statement(r, cardID)
	if err != nil {
		writeError(w, err)
		return
	}

	rows := make([]statementRowResponse, 0, len(st.Rows))
	for _, row := range st.Rows {
		rows = append(rows, statementRowResponse(row))
	}
	writeJSON(w, http.StatusOK, statementResponse{
		CardName:  st.CardName,
		Cycle:     string(st.Cycle),
		Label:     st.Label,
		DueDate:   st.DueDate,
		Status:    string(st.Status),
		Total:     st.Total,
		Projected: st.Projected,
		Rows:      rows,
	})
}

// handleMarkPaid records a payment for the cycle. Projected invoices have
// nothing to pay.
func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathCardID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	key, err := billing.ParseCycleKey(mux.Vars(r)["cycle"])
	if err != nil {
		writeError(w, err)
		return
	}

	card, invoices, _, err := s.cardInvoices(r, cardID, s.horizonMonths)
	if err != nil {
		writeError(w, err)
		return
	}

	var target *billing.Invoice
	for i := range invoices {
		if invoices[i].Cycle == key {
			target = &invoices[i]
			break
		}
	}
	if target == nil {
		writeError(w, core.NotFound("invoice", string(key)))
		return
	}
	if target.Projected {
		writeError(w, core.Validationf("cycle %s has no transactions to pay", key))
		return
	}

	if err := s.store.MarkPaid(r.Context(), card.ID, string(key), target.Total.Cents); err != nil {
		writeError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "invoice marked paid",
		log.FieldCardID, card.ID,
		log.FieldCycle, string(key),
		log.FieldAmount, target.Total.Cents)

	target.Status = billing.StatusPaid
	writeJSON(w, http.StatusOK, s.toInvoiceResponse(*target))
}

// handleExportStatement streams the statement as a CSV or PDF download.
func (s *Server) handleExportStatement(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathCardID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := s.statement(r, cardID)
	if err != nil {
		writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	s.logger.InfoContext(r.Context(), "statement export",
		log.FieldCardID, cardID,
		log.FieldCycle, string(st.Cycle),
		log.FieldFormat, format)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.CSVFilename(cardID, st.Cycle)+`"`)
		if err := export.WriteCSV(w, st); err != nil {
			s.logger.ErrorContext(r.Context(), "csv export failed", log.FieldError, err)
		}
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.PDFFilename(cardID, st.Cycle)+`"`)
		if err := export.WritePDF(w, st); err != nil {
			s.logger.ErrorContext(r.Context(), "pdf export failed", log.FieldError, err)
		}
	default:
		writeError(w, core.Validationf("unsupported export format %q", format))
	}
}

// handleSyncStatement appends the statement summary to the configured
// Google Sheets spreadsheet.
func (s *Server) handleSyncStatement(w http.ResponseWriter, r *http.Request) {
	if s.sheets == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "sheets export not configured")
		return
	}
	cardID, err := pathCardID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := s.statement(r, cardID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.sheets.AppendStatement(r.Context(), st); err != nil {
		s.logger.ErrorContext(r.Context(), "sheets sync failed", log.FieldError, err)
		writeJSONError(w, http.StatusBadGateway, "sheets sync failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "synced", "cycle": string(st.Cycle)})
}
