package websocket

import (
	"encoding/json"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
)

// Message types exchanged over the workload channel.
const (
	TypeWorkloadRequest = "WORKLOAD_REQUEST"
	TypeWorkloadResult  = "WORKLOAD_RESULT"
	TypeWorkloadError   = "WORKLOAD_ERROR"
	TypePing            = "PING"
	TypePong            = "PONG"
)

// ClientMessage is a message sent by the browser.
type ClientMessage struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq"`
	Control string          `json:"control"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage is a message sent to the browser. Seq and Control echo the
// request being answered.
type ServerMessage struct {
	Type    string                 `json:"type"`
	Seq     int64                  `json:"seq,omitempty"`
	Control string                 `json:"control,omitempty"`
	Report  *domain.WorkloadReport `json:"report,omitempty"`
	Error   *ErrorPayload          `json:"error,omitempty"`
}

// ErrorPayload describes a failed request.
type ErrorPayload struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}
