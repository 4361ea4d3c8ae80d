package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

const maxBodyBytes = 1 << 20

type Options struct {
	// Publisher queues spreadsheet exports; nil disables POST /api/export/sheet.
	Publisher export.JobPublisher
	// Ready backs /readyz; nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *log.Logger
	Now    func() time.Time
}

type Server struct {
	http.Server
	tracker   *services.Tracker
	publisher export.JobPublisher
	ready     func(ctx context.Context) error
	logger    *log.Logger
	now       func() time.Time
	tracer    *trace.Middleware
}

func NewServer(addr string, tracker *services.Tracker, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		tracker:   tracker,
		publisher: opts.Publisher,
		ready:     opts.Ready,
		logger:    opts.Logger.WithComponent(log.ComponentHTTP),
		now:       opts.Now,
		tracer:    trace.NewMiddleware(opts.Logger),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("POST /api/transactions/{id}/delete", s.handleRequestDelete)
	mux.HandleFunc("POST /api/reset", s.handleRequestReset)
	mux.HandleFunc("POST /api/confirm/{token}", s.handleConfirm)
	mux.HandleFunc("POST /api/cancel/{token}", s.handleCancel)
	mux.HandleFunc("POST /api/budget", s.handleSetBudget)
	mux.HandleFunc("POST /api/savings", s.handleSetSavings)
	mux.HandleFunc("POST /api/filter", s.handleSetFilter)
	mux.HandleFunc("DELETE /api/filter", s.handleClearFilter)
	mux.HandleFunc("POST /api/theme/toggle", s.handleToggleTheme)
	mux.HandleFunc("GET /api/export.csv", s.handleExportCSV)
	mux.HandleFunc("POST /api/export/sheet", s.handleExportSheet)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Metrics returns request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err.Error())
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
