package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	wsAdapter "github.com/lorrc/workload-dashboard/internal/adapters/primary/websocket"
	"github.com/lorrc/workload-dashboard/internal/core/ports"
)

// WebSocketConfig holds configuration for the WebSocket handler
type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
	IsDevelopment   bool
	Session         wsAdapter.SessionConfig
}

// WebSocketHandler upgrades connections into workload sessions.
type WebSocketHandler struct {
	hub      *wsAdapter.Hub
	workload ports.WorkloadService
	cfg      WebSocketConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *wsAdapter.Hub,
	workload ports.WorkloadService,
	cfg WebSocketConfig,
	logger *slog.Logger,
) *WebSocketHandler {
	handler := &WebSocketHandler{
		hub:      hub,
		workload: workload,
		cfg:      cfg,
		logger:   logger.With("handler", "websocket"),
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     handler.checkOrigin,
	}

	return handler
}

// checkOrigin accepts same-origin requests, configured origins and, in
// development, any origin.
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	parsedOrigin, err := url.Parse(origin)
	if err != nil {
		h.logger.Warn("failed to parse websocket origin", "origin", origin, "error", err)
		return false
	}
	originHost := parsedOrigin.Host

	if originHost == r.Host {
		return true
	}

	if h.cfg.IsDevelopment {
		h.logger.Warn("allowing cross-origin websocket in development mode",
			"origin", origin,
			"remote_addr", r.RemoteAddr,
		)
		return true
	}

	for _, allowed := range h.cfg.AllowedOrigins {
		// Support wildcard subdomains like "*.example.com"
		if strings.HasPrefix(allowed, "*.") {
			suffix := allowed[1:]
			if strings.HasSuffix(originHost, suffix) || originHost == allowed[2:] {
				return true
			}
		} else if originHost == allowed {
			return true
		}
	}

	h.logger.Warn("websocket connection rejected due to origin",
		"origin", origin,
		"remote_addr", r.RemoteAddr,
		"allowed_origins", h.cfg.AllowedOrigins,
	)
	return false
}

// ServeHTTP upgrades the connection and serves the session until it closes.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to upgrade websocket connection", "error", err)
		return
	}

	session := wsAdapter.NewSession(uuid.NewString(), conn, h.workload, h.cfg.Session, h.logger)
	h.logger.InfoContext(r.Context(), "websocket connection established",
		"session_id", session.ID,
		"remote_addr", r.RemoteAddr,
	)

	// Keep request-scoped log values but not the request's cancellation.
	h.hub.Serve(context.WithoutCancel(r.Context()), session)
}
