// Package http exposes the JSON API: auth, trips, the expense ledger with
// its live streams, and the profile endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tripmate/internal/auth"
	"tripmate/internal/blob"
	"tripmate/internal/core"
	"tripmate/internal/log"
	"tripmate/internal/metrics"
	"tripmate/internal/middleware/ratelimit"
	"tripmate/internal/middleware/security"
	"tripmate/internal/middleware/trace"
	"tripmate/internal/services"
	"tripmate/internal/watch"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// Deps collects everything the server delegates to.
type Deps struct {
	Auth     *auth.Service
	Trips    *services.TripService
	Expenses *services.ExpenseService
	Profile  *services.ProfileService
	Hub      *watch.Hub
	Metrics  *metrics.Metrics
	Blobs    blob.Store
	Logger   *log.Logger
}

type Server struct {
	http.Server

	deps    Deps
	logger  *log.Logger
	limiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		deps:    deps,
		logger:  deps.Logger.WithComponent(log.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	// Auth endpoints sit behind the rate limiter; everything here is
	// reachable without a token.
	limited := s.limiter.Middleware(clientIP)
	mux.Handle("POST /api/auth/register", limited(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /api/auth/verify", limited(http.HandlerFunc(s.handleVerifyEmail)))
	mux.Handle("POST /api/auth/resend-verification", limited(http.HandlerFunc(s.handleResendVerification)))
	mux.Handle("POST /api/auth/forgot-password", limited(http.HandlerFunc(s.handleForgotPassword)))
	mux.Handle("POST /api/auth/reset-password", limited(http.HandlerFunc(s.handleResetPassword)))
	mux.HandleFunc("POST /api/auth/logout", s.requireUser(s.handleLogout))

	mux.HandleFunc("GET /api/trips", s.requireUser(s.handleListTrips))
	mux.HandleFunc("POST /api/trips", s.requireUser(s.handleCreateTrip))
	mux.HandleFunc("GET /api/trips/stream", s.requireUser(s.handleTripsStream))
	mux.HandleFunc("GET /api/trips/{tripID}", s.requireUser(s.handleGetTrip))
	mux.HandleFunc("DELETE /api/trips/{tripID}", s.requireUser(s.handleDeleteTrip))
	mux.HandleFunc("GET /api/trips/{tripID}/summary", s.requireUser(s.handleTripSummary))
	mux.HandleFunc("GET /api/trips/{tripID}/expenses", s.requireUser(s.handleListExpenses))
	mux.HandleFunc("POST /api/trips/{tripID}/expenses", s.requireUser(s.handleCreateExpense))
	mux.HandleFunc("GET /api/trips/{tripID}/expenses/stream", s.requireUser(s.handleExpensesStream))
	mux.HandleFunc("GET /api/trips/{tripID}/expenses/{expenseID}", s.requireUser(s.handleGetExpense))
	mux.HandleFunc("PUT /api/trips/{tripID}/expenses/{expenseID}", s.requireUser(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/trips/{tripID}/expenses/{expenseID}", s.requireUser(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/profile", s.requireUser(s.handleGetProfile))
	mux.HandleFunc("GET /api/profile/stats", s.requireUser(s.handleGetStats))
	mux.HandleFunc("POST /api/profile/photo", s.requireUser(s.handleUploadPhoto))
	mux.HandleFunc("GET /api/profile/photo", s.requireUser(s.handleGetPhoto))

	tracer := trace.NewMiddleware(clientIP, deps.Metrics)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler := headers.Middleware(tracer.Middleware(mux))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// requireUser resolves the bearer token into a user and rejects the
// request when it cannot.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
			return
		}
		user, err := s.deps.Auth.CurrentUser(r.Context(), token)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

func currentUser(r *http.Request) *core.User {
	user, _ := r.Context().Value(userContextKey).(*core.User)
	return user
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.deps.Profile.Stats(r.Context(), "readyz-probe"); err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown stops the listener and the limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
