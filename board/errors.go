package board

import "errors"

// Validation errors (§7 category 1): detected before any mutation.
var (
	// ErrOutOfBounds is returned when a position falls outside the grid.
	ErrOutOfBounds = errors.New("board: position out of bounds")
	// ErrBadPlayerID is returned when a player-id does not match ^[A-Za-z0-9_]+$.
	// The transport is expected to validate this upstream; the board checks
	// again defensively since nothing prevents it from being called directly.
	ErrBadPlayerID = errors.New("board: invalid player id")
)

// Game-rule errors (§7 category 2): the board performs compensating
// bookkeeping (relinquishing the first card) before returning these.
var (
	// ErrNoCard is returned when the targeted cell is empty (not on board).
	ErrNoCard = errors.New("board: no card at that position")
	// ErrContended is returned when a second-card flip targets a cell
	// controlled by a different player. The board never waits on a
	// second-card attempt (§5 deadlock avoidance).
	ErrContended = errors.New("board: cell is controlled by another player")
	// ErrSameCard is returned when the second flip targets the same cell
	// as the first.
	ErrSameCard = errors.New("board: cannot flip the same card twice")
)
