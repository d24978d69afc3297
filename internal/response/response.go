// Package response defines the unified JSON envelope returned by every
// endpoint, for both success and failure.
package response

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "github.com/userbase/backend/internal/errors"
)

const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// Envelope is the wire shape of every response. Data is omitted entirely
// (not null-serialized) when the operation produces no payload.
type Envelope struct {
	Status    string `json:"status"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Success builds a success envelope around data.
func Success(data any, message string) Envelope {
	return Envelope{
		Status:    StatusSuccess,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Error builds a failure envelope carrying only the client-visible message.
func Error(message string) Envelope {
	return Envelope{
		Status:    StatusFailed,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
}

// WriteJSON writes an envelope with the given HTTP status.
func WriteJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

// WriteSuccess writes a success envelope.
func WriteSuccess(w http.ResponseWriter, status int, data any, message string) {
	WriteJSON(w, status, Success(data, message))
}

// WriteError maps an application error to its HTTP status and writes a
// failure envelope. Unknown errors are wrapped first so the client never
// sees a raw internal message.
func WriteError(w http.ResponseWriter, err error) {
	appErr := apperrors.FromError(err)
	WriteJSON(w, appErr.HTTPStatus, Error(appErr.Message))
}
