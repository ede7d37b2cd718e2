// Package http exposes the finboard services as a JSON API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/services"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr              string
	JWTSecret         string
	RequestsPerMinute int
	TrustedProxies    []string
	Logger            *log.Logger
	// Ready reports whether dependencies are usable; nil means always ready.
	Ready func(context.Context) error
	Now   func() time.Time
}

// Server is the API server. It owns the rate limiter's cleanup goroutine.
type Server struct {
	*http.Server
	limiter *ratelimit.Limiter
}

type handlers struct {
	svc   *services.Services
	now   func() time.Time
	ready func(context.Context) error
}

// NewServer wires the router over svc.
func NewServer(cfg Config, svc *services.Services) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.DefaultConfig())
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	detector, err := security.NewDetector(cfg.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("security detector: %w", err)
	}
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RequestsPerMinute})

	h := &handlers{svc: svc, now: cfg.Now, ready: cfg.Ready}
	auth := NewAuthenticator(cfg.JWTSecret)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(cfg.Logger.WithComponent(log.ComponentHTTP)))
	r.Use(trace.Middleware(detector.ClientIP))
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(detector.Middleware)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	r.Get("/healthz", h.health)
	r.Get("/readyz", h.readiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Use(limiter.Middleware(func(r *http.Request) string {
			if u := UserID(r.Context()); u != "" && u != LocalUser {
				return "user:" + u
			}
			return "ip:" + detector.ClientIP(r)
		}, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
		}))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.listTransactions)
			r.Post("/", h.createTransaction)
			r.Get("/{id}", h.getTransaction)
			r.Delete("/{id}", h.deleteTransaction)
		})

		r.Get("/summary/month", h.monthSummary)
		r.Get("/summary/year", h.yearSummary)
		r.Get("/balance", h.balance)

		r.Route("/goal", func(r chi.Router) {
			r.Get("/", h.getGoal)
			r.Put("/", h.setGoal)
			r.Post("/deposit", h.depositGoal)
			r.Post("/withdraw", h.withdrawGoal)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Post("/", h.createCategory)
			r.Post("/reorder", h.reorderCategories)
			r.Put("/{id}", h.updateCategory)
			r.Delete("/{id}", h.deleteCategory)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", h.listCards)
			r.Post("/", h.createCard)
			r.Get("/{id}", h.getCard)
			r.Put("/{id}", h.updateCard)
			r.Delete("/{id}", h.deleteCard)
			r.Get("/{id}/statement", h.cardStatement)
		})

		r.Route("/recurring", func(r chi.Router) {
			r.Get("/", h.listRecurring)
			r.Post("/", h.createRecurring)
			r.Get("/due", h.dueRecurring)
			r.Post("/process", h.processRecurring)
			r.Get("/{id}", h.getRecurring)
			r.Put("/{id}", h.updateRecurring)
			r.Delete("/{id}", h.deleteRecurring)
			r.Post("/{id}/pay", h.payRecurring)
			r.Post("/{id}/pause", h.pauseRecurring)
			r.Post("/{id}/resume", h.resumeRecurring)
		})

		r.Route("/dayoff", func(r chi.Router) {
			r.Get("/rules", h.listDayOffRules)
			r.Post("/rules", h.createDayOffRule)
			r.Delete("/rules/{id}", h.deleteDayOffRule)
			r.Get("/check", h.checkDayOff)
			r.Get("/calendar", h.dayOffCalendar)
		})

		r.Post("/sync/hydrate", h.hydrate)
	})

	return &Server{
		Server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		limiter: limiter,
	}, nil
}

// Shutdown drains connections and stops background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// Close stops the server immediately.
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.Server.Close()
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) readiness(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}
