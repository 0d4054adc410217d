// Package apperrors holds the transport-level sentinel error that doesn't
// belong to the board package itself: a request the transport rejects
// before it reaches the board. It keeps that error out of package board
// (the same role the teacher's matcherrors package played for
// matchmaking and ws).
package apperrors

import "errors"

var (
	// ErrBadRequest marks a request the transport rejects before calling
	// the board: malformed JSON, wrong HTTP method, a rate-limited flip,
	// or a missing or wrong reset token.
	ErrBadRequest = errors.New("apperrors: bad request")
)
