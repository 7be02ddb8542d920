package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"financeia/internal/auth"
	"financeia/internal/billing"
	"financeia/internal/core"
	"financeia/internal/log"
	"financeia/internal/store"
)

func newTestServer() *Server {
	st := store.NewMemoryStore()
	logger := log.New(log.Config{
		Component: log.ComponentHTTP,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
	authSvc := auth.NewService(st, "test-secret", time.Hour)
	return NewServer(":0", st, authSvc, logger, Options{
		HorizonMonths:  3,
		AlertDaysAhead: 7,
		ExportLocale:   "pt-BR",
	})
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, s *Server) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/register", "", map[string]string{
		"name":     "Maria",
		"email":    "maria@example.com",
		"password": "segredo123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Token
}

func createCard(t *testing.T, s *Server, token string) int64 {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/cards", token, cardRequest{
		Name:       "Nubank",
		LimitCents: 500000,
		ClosingDay: 28,
		DueDay:     10,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create card status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp cardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.ID
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer()
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer()
	rec := doJSON(t, s, http.MethodGet, "/api/cards", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/cards", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer()
	registerUser(t, s)
	rec := doJSON(t, s, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "maria@example.com",
		"password": "errada999",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login status = %d, want 401", rec.Code)
	}
}

func TestCardLifecycle(t *testing.T) {
	s := newTestServer()
	token := registerUser(t, s)
	cardID := createCard(t, s, token)

	rec := doJSON(t, s, http.MethodGet, "/api/cards", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list cards status = %d", rec.Code)
	}
	var cards []cardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &cards); err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 || cards[0].ID != cardID {
		t.Errorf("cards = %+v", cards)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/cards/1", token, cardRequest{
		Name: "Nubank Ultravioleta", LimitCents: 900000, ClosingDay: 28, DueDay: 10,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update card status = %d: %s", rec.Code, rec.Body.String())
	}

	// Invalid billing parameters are rejected.
	rec = doJSON(t, s, http.MethodPost, "/api/cards", token, cardRequest{
		Name: "Quebrado", LimitCents: 1000, ClosingDay: 0, DueDay: 10,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid card status = %d, want 400", rec.Code)
	}
}

func TestTransactionAndInvoiceFlow(t *testing.T) {
	s := newTestServer()
	token := registerUser(t, s)
	createCard(t, s, token)

	today := time.Now().Format(time.DateOnly)
	rec := doJSON(t, s, http.MethodPost, "/api/cards/1/transactions", token, transactionRequest{
		Date:        today,
		Description: "mercado",
		Amount:      "100,00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add transaction status = %d: %s", rec.Code, rec.Body.String())
	}
	var tx transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tx); err != nil {
		t.Fatal(err)
	}
	if tx.AmountCents != 10000 || tx.Amount != "100.00" {
		t.Errorf("transaction = %+v", tx)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/cards/1/invoices", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list invoices status = %d", rec.Code)
	}
	var invoices []invoiceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &invoices); err != nil {
		t.Fatal(err)
	}
	if len(invoices) == 0 {
		t.Fatal("no invoices returned")
	}
	for i := 1; i < len(invoices); i++ {
		if invoices[i].Cycle >= invoices[i-1].Cycle {
			t.Error("invoices not ordered most recent first")
		}
	}

	// includeFuture extends the timeline with projected cycles.
	rec = doJSON(t, s, http.MethodGet, "/api/cards/1/invoices?includeFuture=true", token, nil)
	var withFuture []invoiceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &withFuture); err != nil {
		t.Fatal(err)
	}
	if len(withFuture) <= len(invoices) {
		t.Errorf("includeFuture returned %d invoices, want more than %d", len(withFuture), len(invoices))
	}
	if !withFuture[0].Projected {
		t.Errorf("most recent future invoice = %+v, want projected", withFuture[0])
	}

	// The card detail reflects the outstanding balance.
	rec = doJSON(t, s, http.MethodGet, "/api/cards/1", token, nil)
	var detail cardDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatal(err)
	}
	if detail.UsedCents != 10000 || detail.AvailableCents != detail.LimitCents-10000 {
		t.Errorf("card detail = %+v", detail)
	}
}

func TestStatementAndMarkPaid(t *testing.T) {
	s := newTestServer()
	token := registerUser(t, s)
	createCard(t, s, token)

	today := time.Now()
	doJSON(t, s, http.MethodPost, "/api/cards/1/transactions", token, transactionRequest{
		Date:        today.Format(time.DateOnly),
		Description: "farmácia",
		Amount:      "24.50",
	})

	card := core.CreditCard{ClosingDay: 28, DueDay: 10}
	cycle := string(billing.CycleOf(card, today))

	rec := doJSON(t, s, http.MethodGet, "/api/cards/1/invoices/"+cycle, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("statement status = %d: %s", rec.Code, rec.Body.String())
	}
	var st statementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Total != "24.50" || len(st.Rows) != 1 || st.Rows[0].Description != "farmácia" {
		t.Errorf("statement = %+v", st)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/cards/1/invoices/"+cycle+"/pay", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark paid status = %d: %s", rec.Code, rec.Body.String())
	}
	var paid invoiceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &paid); err != nil {
		t.Fatal(err)
	}
	if paid.Status != string(billing.StatusPaid) {
		t.Errorf("status after payment = %q, want paid", paid.Status)
	}

	// Unknown cycles are 404, malformed ones 400.
	rec = doJSON(t, s, http.MethodGet, "/api/cards/1/invoices/1999-01", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing cycle status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/cards/1/invoices/2024-13", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed cycle status = %d, want 400", rec.Code)
	}
}

func TestExportStatement(t *testing.T) {
	s := newTestServer()
	token := registerUser(t, s)
	createCard(t, s, token)

	today := time.Now()
	doJSON(t, s, http.MethodPost, "/api/cards/1/transactions", token, transactionRequest{
		Date:        today.Format(time.DateOnly),
		Description: "mercado",
		Amount:      "75.25",
	})
	cycle := string(billing.CycleOf(core.CreditCard{ClosingDay: 28, DueDay: 10}, today))

	rec := doJSON(t, s, http.MethodGet, "/api/cards/1/invoices/"+cycle+"/export?format=csv", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv export status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("csv Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "FATURA DO CARTÃO DE CRÉDITO") {
		t.Errorf("csv body missing header:\n%s", rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/cards/1/invoices/"+cycle+"/export?format=pdf", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf export status = %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("pdf export does not start with %PDF")
	}

	rec = doJSON(t, s, http.MethodGet, "/api/cards/1/invoices/"+cycle+"/export?format=xml", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d, want 400", rec.Code)
	}
}

func TestCrossUserIsolation(t *testing.T) {
	s := newTestServer()
	token := registerUser(t, s)
	createCard(t, s, token)

	rec := doJSON(t, s, http.MethodPost, "/api/register", "", map[string]string{
		"name":     "João",
		"email":    "joao@example.com",
		"password": "segredo123",
	})
	var other sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &other); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/cards/1", other.Token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user card access status = %d, want 404", rec.Code)
	}
}

func TestDueAlertsAcrossCards(t *testing.T) {
	s := newTestServer()
	token := registerUser(t, s)
	createCard(t, s, token)

	// A wide enough window always catches the current cycle's due date.
	doJSON(t, s, http.MethodPost, "/api/cards/1/transactions", token, transactionRequest{
		Date:        time.Now().Format(time.DateOnly),
		Description: "assinatura",
		Amount:      "39.90",
	})

	rec := doJSON(t, s, http.MethodGet, "/api/alerts/due?days=60", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("due alerts status = %d: %s", rec.Code, rec.Body.String())
	}
	var alerts []dueAlertResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 || alerts[0].CardName != "Nubank" {
		t.Errorf("alerts = %+v", alerts)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/alerts/due?days=0", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid days status = %d, want 400", rec.Code)
	}
}

func TestSheetsSyncUnconfigured(t *testing.T) {
	s := newTestServer()
	token := registerUser(t, s)
	createCard(t, s, token)

	rec := doJSON(t, s, http.MethodPost, "/api/cards/1/invoices/2024-01/sheets", token, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("sheets sync status = %d, want 503", rec.Code)
	}
}
