package httpserver

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Dispatch triggers a single due-reminder dispatch run.
type Dispatch func(ctx context.Context, limit int) error

// NewRouter builds the ops surface: a health probe and a manual dispatch
// trigger. Dispatch invocation is at-least-once by design, so triggering a
// run by hand alongside the cron cadence is always safe.
func NewRouter(db *sql.DB, dispatch Dispatch, batchLimit int, log *logrus.Entry) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			log.WithError(err).Error("health check: database ping failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/internal/dispatch", func(w http.ResponseWriter, req *http.Request) {
		if err := dispatch(req.Context(), batchLimit); err != nil {
			log.WithError(err).Error("manual dispatch run failed")
			http.Error(w, "dispatch run failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("dispatch run complete"))
	})

	return r
}
