// Package http exposes the JSON API: accounts, cards, transactions, the
// computed invoice timeline and the statement exports.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"financeia/internal/auth"
	"financeia/internal/export"
	"financeia/internal/log"
	"financeia/internal/store"
)

type contextKey string

const (
	contextKeyUserID    contextKey = "user_id"
	contextKeyRequestID contextKey = "request_id"
)

// Server wires the router, middleware and handlers around the store.
type Server struct {
	http.Server
	store  store.Store
	auth   *auth.Service
	logger *log.Logger

	rateLimiter *rateLimiter

	horizonMonths  int
	alertDaysAhead int
	exportLocale   string

	sheets       *export.SheetsClient
	shutdownOnce sync.Once
}

// Options carries the projection and export knobs the handlers need.
type Options struct {
	HorizonMonths  int
	AlertDaysAhead int
	ExportLocale   string
	Sheets         *export.SheetsClient
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, st store.Store, authSvc *auth.Service, logger *log.Logger, opts Options) *Server {
	s := &Server{
		store:          st,
		auth:           authSvc,
		logger:         logger.WithComponent(log.ComponentHTTP),
		rateLimiter:    newRateLimiter(),
		horizonMonths:  opts.HorizonMonths,
		alertDaysAhead: opts.AlertDaysAhead,
		exportLocale:   opts.ExportLocale,
		sheets:         opts.Sheets,
	}

	r := mux.NewRouter()
	r.Use(s.withRequestContext)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.withAuth)
	authed.HandleFunc("/cards", s.handleCreateCard).Methods(http.MethodPost)
	authed.HandleFunc("/cards", s.handleListCards).Methods(http.MethodGet)
	authed.HandleFunc("/cards/{cardID:[0-9]+}", s.handleGetCard).Methods(http.MethodGet)
	authed.HandleFunc("/cards/{cardID:[0-9]+}", s.handleUpdateCard).Methods(http.MethodPut)
	authed.HandleFunc("/cards/{cardID:[0-9]+}/transactions", s.handleAddTransaction).Methods(http.MethodPost)
	authed.HandleFunc("/cards/{cardID:[0-9]+}/transactions", s.handleListTransactions).Methods(http.MethodGet)
	authed.HandleFunc("/cards/{cardID:[0-9]+}/invoices", s.handleListInvoices).Methods(http.MethodGet)
	authed.HandleFunc("/cards/{cardID:[0-9]+}/invoices/due-soon", s.handleDueSoon).Methods(http.MethodGet)
	authed.HandleFunc("/cards/{cardID:[0-9]+}/invoices/{cycle}", s.handleGetStatement).Methods(http.MethodGet)
	authed.HandleFunc("/cards/{cardID:[0-9]+}/invoices/{cycle}/pay", s.handleMarkPaid).Methods(http.MethodPost)
	authed.HandleFunc("/cards/{cardID:[0-9]+}/invoices/{cycle}/export", s.handleExportStatement).Methods(http.MethodGet)
	authed.HandleFunc("/cards/{cardID:[0-9]+}/invoices/{cycle}/sheets", s.handleSyncStatement).Methods(http.MethodPost)
	authed.HandleFunc("/alerts/due", s.handleDueAlerts).Methods(http.MethodGet)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter cleanup goroutine before draining the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestContext adds security headers, request logging, a request ID
// and rate limiting on writes.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		r = r.WithContext(ctx)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "rate limit exceeded",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded, try again later", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.logger.InfoContext(ctx, "request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	})
}

// withAuth requires a valid bearer token and stores the user ID in the
// request context.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := s.auth.VerifyToken(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
