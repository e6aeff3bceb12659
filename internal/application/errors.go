package application

import (
	"errors"

	"chessmonitor/internal/fetch"
)

var (
	ErrInvalidTarget       = errors.New("tournament id and round must be positive")
	ErrNoTarget            = errors.New("no tournament has been monitored yet")
	ErrNoSnapshot          = errors.New("no snapshot available yet")
	ErrBlankPlayerName     = errors.New("player name must not be blank")
	ErrSheetsNotConfigured = errors.New("google sheets client is not configured")
)

// Status is the connectivity indicator exposed alongside the last snapshot.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnected    Status = "connected"
	StatusNetworkError Status = "network_error"
	StatusError        Status = "error"
)

// classifyFailure maps a cycle failure to the status shown to observers,
// separating connectivity trouble from everything else.
func classifyFailure(err error) Status {
	var transportErr *fetch.TransportError
	if errors.As(err, &transportErr) {
		return StatusNetworkError
	}
	return StatusError
}
