// Package web exposes the watch-mode status endpoint: health checks plus the
// report of the most recent normalization run.
package web

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/raido/internal/models"
)

// ReportHolder stores the most recent run report.
type ReportHolder struct {
	mu     sync.RWMutex
	report *models.Report
}

// Set replaces the stored report.
func (h *ReportHolder) Set(r *models.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.report = r
}

// Get returns the stored report, or nil if no run has completed.
func (h *ReportHolder) Get() *models.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.report
}

// NewRouter builds the status router.
func NewRouter(holder *ReportHolder) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", okHandler)
	r.Get("/health/ready", okHandler)

	r.Get("/api/report", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		rep := holder.Get()
		if rep == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"no run completed yet"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(rep)
	})

	return r
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
