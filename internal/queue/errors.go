package queue

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes queue errors.
type ErrorCode string

const (
	// ErrCodeEventNotFound indicates the event has no capacity/timeout configuration.
	ErrCodeEventNotFound ErrorCode = "EVENT_NOT_FOUND"

	// ErrCodeSessionNotFound indicates a stale or unknown session id.
	// Callers surface it to participants as an expired session.
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"

	// ErrCodeStoreUnavailable indicates a transient persistence failure.
	// Every queue operation is safe to retry with backoff.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// ErrCodeRaceLost indicates a concurrency conflict inside an atomic unit.
	ErrCodeRaceLost ErrorCode = "RACE_LOST"

	// ErrCodeInvalidToken indicates an empty client token.
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
)

// Error is the structured error returned by the store and the engine.
type Error struct {
	Code      ErrorCode
	Message   string
	EventID   string
	SessionID string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.EventID != "" {
		msg += fmt.Sprintf(" (event=%s)", e.EventID)
	}
	if e.SessionID != "" {
		msg += fmt.Sprintf(" (session=%s)", e.SessionID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewEventNotFound creates an Error for an unconfigured event.
func NewEventNotFound(eventID string) *Error {
	return &Error{Code: ErrCodeEventNotFound, Message: "event is not configured", EventID: eventID}
}

// NewSessionNotFound creates an Error for an unknown session.
func NewSessionNotFound(sessionID string) *Error {
	return &Error{Code: ErrCodeSessionNotFound, Message: "session not found", SessionID: sessionID}
}

// NewStoreUnavailable wraps a persistence failure.
func NewStoreUnavailable(op string, err error) *Error {
	return &Error{Code: ErrCodeStoreUnavailable, Message: op, Err: err}
}

// NewRaceLost wraps a concurrency conflict.
func NewRaceLost(op string, err error) *Error {
	return &Error{Code: ErrCodeRaceLost, Message: op, Err: err}
}

// NewInvalidToken creates an Error for an empty client token.
func NewInvalidToken(eventID string) *Error {
	return &Error{Code: ErrCodeInvalidToken, Message: "token must not be empty", EventID: eventID}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

// IsEventNotFound returns true if err is an EVENT_NOT_FOUND error.
func IsEventNotFound(err error) bool { return CodeOf(err) == ErrCodeEventNotFound }

// IsSessionNotFound returns true if err is a SESSION_NOT_FOUND error.
func IsSessionNotFound(err error) bool { return CodeOf(err) == ErrCodeSessionNotFound }

// IsStoreUnavailable returns true if err is a STORE_UNAVAILABLE error.
func IsStoreUnavailable(err error) bool { return CodeOf(err) == ErrCodeStoreUnavailable }

// IsRaceLost returns true if err is a RACE_LOST error.
func IsRaceLost(err error) bool { return CodeOf(err) == ErrCodeRaceLost }

// IsInvalidToken returns true if err is an INVALID_TOKEN error.
func IsInvalidToken(err error) bool { return CodeOf(err) == ErrCodeInvalidToken }
