package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/solar-analytics/parquet-gate/internal/api/handlers"
	"github.com/solar-analytics/parquet-gate/pkg/database"
	"github.com/solar-analytics/parquet-gate/pkg/logger"
)

// HealthChecker reports the health of the history database
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// NewRouter creates and configures the HTTP router. db may be nil when
// run history is kept in memory, schedulerHandler when the scheduler
// is not running.
// ⭐ SSOT: routes are defined in this function only
func NewRouter(
	validationHandler *handlers.ValidationHandler,
	schedulerHandler *handlers.SchedulerHandler,
	db HealthChecker,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(db)).Methods("GET")

	// Full paths on the root router: mux subrouters answer a method
	// mismatch with 404 instead of 405.
	r.HandleFunc("/api/validation/latest", validationHandler.GetLatest).Methods("GET")
	r.HandleFunc("/api/validation/runs", validationHandler.ListRuns).Methods("GET")
	r.HandleFunc("/api/validation/runs/{id}", validationHandler.GetRun).Methods("GET")
	r.HandleFunc("/api/validation/run", validationHandler.TriggerRun).Methods("POST")
	r.HandleFunc("/api/validation/rules", validationHandler.GetRules).Methods("GET")

	// Scheduler endpoints
	if schedulerHandler != nil {
		r.HandleFunc("/api/scheduler/jobs", schedulerHandler.ListJobs).Methods("GET")
		r.HandleFunc("/api/scheduler/jobs/{name}/history", schedulerHandler.GetJobHistory).Methods("GET")
	}

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]any{
			"status":  "ok",
			"service": "parquet-gate",
		}

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			dbStatus, err := db.HealthCheck(ctx)
			if err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				if dbStatus == nil {
					dbStatus = &database.HealthStatus{Error: err.Error()}
				}
			}
			body["database"] = dbStatus
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]any{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]any{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
