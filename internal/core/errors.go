package core

import "errors"

var (
	// ErrSlowConsumer closes a client whose event queue overflowed.
	ErrSlowConsumer = errors.New("slow consumer")
	// ErrHubStopped closes clients when the hub shuts down.
	ErrHubStopped = errors.New("hub stopped")
)

// Error codes for domain errors.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotInRoom    = "not_in_room"
	ErrCodeSlowConsumer = "slow_consumer"
)

// Join failure reasons.
const (
	ReasonWrongPassword = "invalid room password"
	ReasonRoomCode      = "could not generate room code"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
