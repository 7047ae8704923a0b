package http

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
)

// HealthChecker defines the interface for health check dependencies
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports the number of open websocket sessions.
type SessionCounter interface {
	SessionCount() int
}

// HealthHandler handles health check requests
type HealthHandler struct {
	tracker   HealthChecker
	sessions  SessionCounter
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler. sessions may be nil.
func NewHealthHandler(tracker HealthChecker, sessions SessionCounter, version string) *HealthHandler {
	return &HealthHandler{
		tracker:   tracker,
		sessions:  sessions,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// RegisterRoutes registers the /health routes.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleHealth)
	r.Get("/live", h.HandleLiveness)
	r.Get("/ready", h.HandleReadiness)
}

// HandleLiveness reports that the process is serving requests.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness reports whether the tracker accepts our credentials.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	trackerCheck := h.checkTracker(ctx)
	status, code := "healthy", http.StatusOK
	if trackerCheck.Status != "healthy" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	WriteJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    map[string]Check{"tracker": trackerCheck},
	})
}

// HandleHealth handles detailed health check requests (for monitoring/debugging)
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]Check{"tracker": h.checkTracker(ctx)}
	overallStatus := "healthy"
	if checks["tracker"].Status != "healthy" {
		overallStatus = "degraded"
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := struct {
		HealthResponse
		Memory struct {
			Alloc uint64 `json:"alloc_bytes"`
			Sys   uint64 `json:"sys_bytes"`
			NumGC uint32 `json:"num_gc"`
		} `json:"memory"`
		Goroutines        int `json:"goroutines"`
		WebSocketSessions int `json:"websocket_sessions"`
	}{
		HealthResponse: HealthResponse{
			Status:    overallStatus,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   h.version,
			Uptime:    time.Since(h.startTime).Round(time.Second).String(),
			Checks:    checks,
		},
		Goroutines: runtime.NumGoroutine(),
	}
	response.Memory.Alloc = memStats.Alloc
	response.Memory.Sys = memStats.Sys
	response.Memory.NumGC = memStats.NumGC
	if h.sessions != nil {
		response.WebSocketSessions = h.sessions.SessionCount()
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	WriteJSON(w, statusCode, response)
}

func (h *HealthHandler) checkTracker(ctx context.Context) Check {
	if h.tracker == nil {
		return Check{
			Status:  "unhealthy",
			Message: "Tracker not configured",
		}
	}

	start := time.Now()
	err := h.tracker.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}

	return Check{
		Status:  "healthy",
		Latency: latency.String(),
	}
}
