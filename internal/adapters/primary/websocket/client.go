package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lorrc/workload-dashboard/internal/adapters/primary/validation"
	"github.com/lorrc/workload-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
	"github.com/lorrc/workload-dashboard/internal/core/ports"
	"github.com/lorrc/workload-dashboard/internal/infrastructure/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	defaultPongWait       = 60 * time.Second
	defaultMaxMessageSize = 4096
	sendBuffer            = 16
)

// SessionConfig controls connection keep-alive and limits.
type SessionConfig struct {
	PongWait       time.Duration
	PingInterval   time.Duration // Must be less than PongWait
	MaxMessageSize int64
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.PongWait <= 0 {
		c.PongWait = defaultPongWait
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.PongWait {
		c.PingInterval = (c.PongWait * 9) / 10
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}
	return c
}

// Session serves workload requests for one browser connection.
type Session struct {
	ID string

	conn     *websocket.Conn
	workload ports.WorkloadService
	seq      *Sequencer
	cfg      SessionConfig
	logger   *slog.Logger

	send      chan ServerMessage
	done      chan struct{}
	closeOnce sync.Once
	inflight  sync.WaitGroup
}

// NewSession wraps an upgraded connection.
func NewSession(id string, conn *websocket.Conn, workload ports.WorkloadService, cfg SessionConfig, logger *slog.Logger) *Session {
	return &Session{
		ID:       id,
		conn:     conn,
		workload: workload,
		seq:      NewSequencer(),
		cfg:      cfg.withDefaults(),
		logger:   logger.With("component", "websocket_session"),
		send:     make(chan ServerMessage, sendBuffer),
		done:     make(chan struct{}),
	}
}

// Run pumps messages until the peer disconnects or Close is called.
// It blocks until all in-flight requests have finished.
func (s *Session) Run(ctx context.Context) {
	ctx = logging.WithSessionID(ctx, s.ID)
	ctx, cancel := context.WithCancel(ctx)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writePump(ctx)
	}()

	s.readPump(ctx)

	cancel()
	s.seq.CancelAll()
	s.Close()
	s.inflight.Wait()
	<-writerDone
}

// Close stops the session. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *Session) readPump(ctx context.Context) {
	s.conn.SetReadLimit(s.cfg.MaxMessageSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait)); err != nil {
		s.logger.ErrorContext(ctx, "failed to set read deadline", "error", err)
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.logger.WarnContext(ctx, "websocket read error", "error", err)
			}
			return
		}

		s.handleIncomingMessage(ctx, message)
	}
}

func (s *Session) writePump(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case msg := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.logger.ErrorContext(ctx, "failed to set write deadline", "error", err)
				s.Close()
				return
			}
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.DebugContext(ctx, "failed to write message", "error", err)
				s.Close()
				return
			}

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.Close()
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.DebugContext(ctx, "failed to send ping", "error", err)
				s.Close()
				return
			}
		}
	}
}

func (s *Session) handleIncomingMessage(ctx context.Context, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.WarnContext(ctx, "failed to unmarshal client message", "error", err)
		s.enqueue(ServerMessage{
			Type:  TypeWorkloadError,
			Error: &ErrorPayload{Code: "BAD_REQUEST", Message: "Malformed message"},
		})
		return
	}

	switch msg.Type {
	case TypeWorkloadRequest:
		s.handleWorkloadRequest(ctx, msg)
	case TypePing:
		s.enqueue(ServerMessage{Type: TypePong})
	default:
		s.logger.DebugContext(ctx, "received unknown message type", "type", msg.Type)
	}
}

func (s *Session) handleWorkloadRequest(ctx context.Context, msg ClientMessage) {
	control := msg.Control
	if control == "" {
		control = "workload"
	}
	ctx = logging.WithWorkloadRequest(ctx, control, msg.Seq)

	var query validation.WorkloadQuery
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &query); err != nil {
			s.reply(msg, control, nil, apperrors.NewBadRequestError(err, "Malformed payload"))
			return
		}
	}
	query.Seq = msg.Seq

	req, err := query.Validate()
	if err != nil {
		s.reply(msg, control, nil, err)
		return
	}

	reqCtx, ok := s.seq.Begin(ctx, control, msg.Seq)
	if !ok {
		s.logger.DebugContext(ctx, "ignoring out-of-order request")
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		report, err := s.workload.GetWorkload(reqCtx, req)
		if !s.seq.Finish(control, msg.Seq) {
			s.logger.DebugContext(ctx, "dropping superseded result")
			return
		}
		if err != nil && errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			s.logger.WarnContext(reqCtx, "workload request failed", "error", err)
		}
		s.reply(msg, control, report, err)
	}()
}

func (s *Session) reply(msg ClientMessage, control string, report *domain.WorkloadReport, err error) {
	out := ServerMessage{Seq: msg.Seq, Control: control}
	if err != nil {
		out.Type = TypeWorkloadError
		out.Error = errorPayload(err)
	} else {
		out.Type = TypeWorkloadResult
		out.Report = report
	}
	s.enqueue(out)
}

func (s *Session) enqueue(msg ServerMessage) {
	select {
	case s.send <- msg:
	case <-s.done:
	}
}

func errorPayload(err error) *ErrorPayload {
	var verrs *apperrors.ValidationErrors
	if errors.As(err, &verrs) {
		return &ErrorPayload{Code: "VALIDATION_ERROR", Message: "Validation failed", Fields: verrs.Errors}
	}

	var trackerErr *apperrors.TrackerError
	if errors.As(err, &trackerErr) {
		return &ErrorPayload{Code: "TRACKER_ERROR", Message: trackerErr.Error()}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return &ErrorPayload{Code: appErr.Code, Message: appErr.Error()}
	}

	if errors.Is(err, apperrors.ErrTrackerRequest) || errors.Is(err, apperrors.ErrTrackerDecode) || errors.Is(err, apperrors.ErrTooManyPages) {
		return &ErrorPayload{Code: "TRACKER_ERROR", Message: err.Error()}
	}

	return &ErrorPayload{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}
}
