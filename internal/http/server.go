// Package http exposes the expense tracker as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/services"
)

// Options tunes the server-wide middleware.
type Options struct {
	// RateLimitPerMinute bounds mutating requests per client IP.
	RateLimitPerMinute int
	// CORSAllowedOrigin is the value sent in Access-Control-Allow-Origin.
	CORSAllowedOrigin string
}

type Server struct {
	http.Server
	expenses     *services.ExpenseService
	statistics   *services.StatisticsService
	rateLimiter  *rateLimiter
	corsOrigin   string
	shutdownOnce sync.Once
}

type contextKey string

const requestIDKey contextKey = "request_id"

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, expenses *services.ExpenseService, statistics *services.StatisticsService, opts Options) *Server {
	mux := http.NewServeMux()

	limit := opts.RateLimitPerMinute
	if limit <= 0 {
		limit = 60
	}

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		expenses:    expenses,
		statistics:  statistics,
		rateLimiter: newRateLimiter(limit),
		corsOrigin:  opts.CORSAllowedOrigin,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses/{id}", s.withMiddleware(s.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.withMiddleware(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withMiddleware(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/users", s.withMiddleware(s.handleListUsers))
	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))

	mux.HandleFunc("GET /api/statistics/{userID}", s.withMiddleware(s.handleUserStatistics))
	mux.HandleFunc("GET /api/statistics/top-days/{userID}", s.withMiddleware(s.handleTopSpendingDays))
	mux.HandleFunc("GET /api/statistics/monthly-change/{userID}", s.withMiddleware(s.handleMonthlyChange))
	mux.HandleFunc("GET /api/statistics/predict-next-month/{userID}", s.withMiddleware(s.handlePredictNextMonth))

	mux.HandleFunc("OPTIONS /api/", s.withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
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

// withMiddleware adds request tracing, security headers, CORS, rate
// limiting on mutating methods, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := uuid.NewString()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
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

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
