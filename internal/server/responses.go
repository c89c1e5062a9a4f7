package server

import (
	"time"

	"github.com/roach88/admit/internal/engine"
	"github.com/roach88/admit/internal/queue"
)

// EnterRequest is the body of POST /v1/events/:eventID/sessions.
type EnterRequest struct {
	Token string `json:"token" binding:"required"`
}

// SessionResponse describes a session to its participant.
type SessionResponse struct {
	SessionID string       `json:"session_id"`
	EventID   string       `json:"event_id"`
	Status    queue.Status `json:"status"`
	Position  int          `json:"position,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	EnteredAt *time.Time   `json:"entered_at,omitempty"`
	EndedAt   *time.Time   `json:"ended_at,omitempty"`
	Reentered bool         `json:"reentered,omitempty"`
}

// ExitResponse reports a completion or cancellation.
type ExitResponse struct {
	SessionID string       `json:"session_id"`
	Status    queue.Status `json:"status"`
	Changed   bool         `json:"changed"`
	Promoted  string       `json:"promoted_session_id,omitempty"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GoneResponse is the body of 410 answers for unknown sessions.
type GoneResponse struct {
	Status  queue.Status `json:"status"`
	Message string       `json:"message"`
}

// NewSessionResponse describes a ticket.
func NewSessionResponse(t engine.Ticket) SessionResponse {
	return SessionResponse{
		SessionID: t.Session.ID,
		EventID:   t.Session.EventID,
		Status:    t.Session.Status,
		Position:  t.Position,
		CreatedAt: t.Session.CreatedAt,
		EnteredAt: t.Session.EnteredAt,
		EndedAt:   t.Session.EndedAt,
		Reentered: t.Reentered,
	}
}

// NewExitResponse describes an exit result.
func NewExitResponse(r engine.ExitResult) ExitResponse {
	resp := ExitResponse{
		SessionID: r.Session.ID,
		Status:    r.Session.Status,
		Changed:   r.Changed,
	}
	if r.Promoted != nil {
		resp.Promoted = r.Promoted.ID
	}
	return resp
}
