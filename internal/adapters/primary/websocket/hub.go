package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/workload-dashboard/internal/infrastructure/logging"
)

// Hub keeps track of live sessions so they can be closed on shutdown.
type Hub struct {
	sessions map[*Session]time.Time

	mu sync.RWMutex

	// wg tracks sessions still running
	wg sync.WaitGroup

	logger *slog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		sessions: make(map[*Session]time.Time),
		logger:   logger.With("component", "websocket_hub"),
	}
}

// Serve registers the session, runs it until it ends and unregisters it.
func (h *Hub) Serve(ctx context.Context, s *Session) {
	ctx = logging.WithSessionID(ctx, s.ID)
	h.register(ctx, s)
	defer h.unregister(ctx, s)

	s.Run(ctx)
}

func (h *Hub) register(ctx context.Context, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.wg.Add(1)
	h.sessions[s] = time.Now()

	h.logger.InfoContext(ctx, "session registered", "total_sessions", len(h.sessions))
}

func (h *Hub) unregister(ctx context.Context, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	opened, ok := h.sessions[s]
	if !ok {
		return
	}
	delete(h.sessions, s)
	h.wg.Done()

	h.logger.InfoContext(ctx, "session unregistered", "duration_ms", time.Since(opened).Milliseconds())
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown closes every session and waits for them to finish or for ctx
// to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.Close()
	}

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
