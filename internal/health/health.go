package health

import (
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"fleet/internal/db"
	"fleet/internal/logs"
)

// RegisterRoutes — liveness (/healthz) и readiness (/readyz, пинг БД).
func RegisterRoutes(r *mux.Router, d *gorm.DB) {
	r.HandleFunc("/healthz", liveness).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", readiness(d)).Methods(http.MethodGet, http.MethodHead)
}

func readiness(d *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(d); err != nil {
			logs.FromContext(r.Context()).WithError(err).Warn("readiness check failed")
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
		ok(w)
	}
}

func liveness(w http.ResponseWriter, _ *http.Request) { ok(w) }

func ok(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
