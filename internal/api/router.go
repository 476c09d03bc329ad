package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/cohesion/internal/api/handlers"
	"github.com/wonny/cohesion/pkg/logger"
)

// HTTPRecorder receives per-request metrics
type HTTPRecorder interface {
	ObserveHTTPRequest(route, method string, status int, d time.Duration)
}

// Routes bundles the handlers the router mounts. Events and Metrics may be nil.
type Routes struct {
	Catalog *handlers.CatalogHandler
	Score   *handlers.ScoreHandler
	Jobs    *handlers.JobsHandler
	Events  http.Handler
	Health  func() error
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(routes Routes, corsOrigin string, recorder HTTPRecorder, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(routes.Health)).Methods("GET")

	// API
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/meta/seasons", routes.Catalog.GetSeasons).Methods("GET")
	api.HandleFunc("/teams", routes.Catalog.GetTeams).Methods("GET")
	api.HandleFunc("/system_state", routes.Catalog.GetSystemStates).Methods("GET")
	api.HandleFunc("/system_state/summary", routes.Catalog.GetSummary).Methods("GET")
	api.HandleFunc("/roster", routes.Catalog.GetRoster).Methods("GET")
	api.HandleFunc("/coaches/active", routes.Catalog.GetActiveCoaches).Methods("GET")

	api.HandleFunc("/score/lineup", routes.Score.ScoreLineup).Methods("POST")

	api.HandleFunc("/jobs", routes.Jobs.GetJobs).Methods("GET")
	api.HandleFunc("/jobs/{name}/run", routes.Jobs.RunJob).Methods("POST")
	api.HandleFunc("/pipeline/runs", routes.Jobs.GetRuns).Methods("GET")

	if routes.Events != nil {
		r.Handle("/ws/pipeline", routes.Events).Methods("GET")
	}

	// CORS preflight
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Apply middleware
	r.Use(recoveryMiddleware(log))
	r.Use(corsMiddleware(corsOrigin))
	r.Use(loggingMiddleware(log, recorder))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if check != nil {
			if err := check(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"status":  "unavailable",
					"service": "cohesion-api",
					"error":   err.Error(),
				})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "ok",
			"service": "cohesion-api",
		})
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

// Hijack lets the websocket upgrader take over the connection
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// loggingMiddleware logs HTTP requests and records their metrics by route template
func loggingMiddleware(log *logger.Logger, recorder HTTPRecorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			duration := time.Since(start)

			if recorder != nil {
				recorder.ObserveHTTPRequest(route, r.Method, rec.status, duration)
			}

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": duration.String(),
			}).Debug("HTTP request")
		})
	}
}

// corsMiddleware allows browser clients from origin
func corsMiddleware(origin string) mux.MiddlewareFunc {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			next.ServeHTTP(w, r)
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
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
