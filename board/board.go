// Package board implements the Board abstract data type: the shared
// mutable state of a multiplayer Memory/Concentration grid together with
// its concurrency control. It is the only piece of the system that
// enforces flip rules, serializes conflicting per-cell access fairly, and
// pushes change notifications to long-poll/websocket watchers; everything
// else (HTTP transport, the board-file parser, bots) is an external
// collaborator that calls this package's exported API.
package board

import (
	"context"
	"fmt"
	"regexp"
	"sync"
)

var playerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Board owns the grid, the per-player turn state, and all synchronization
// objects from spec §5: one exclusive mutex M, one FIFO queue per
// contended cell, and a generation channel standing in for the change
// condition C (see SPEC_FULL.md §1 for why a channel was chosen over
// sync.Cond).
type Board struct {
	rows, cols int
	initial    []string // original values, for Reset

	mu      sync.Mutex
	cards   []Card // row-major, len == rows*cols
	players map[string]*playerState
	queues  map[int]*cellQueue // keyed by flat index, created lazily
	version uint64
	changed chan struct{} // closed and replaced on every version bump
}

// New constructs a Board from parsed template dimensions and initial
// values (row-major). Cards begin OnBoard=true, FaceUp=false,
// Controller="". Values must be non-empty and contain no whitespace;
// rows*cols must equal len(values).
func New(rows, cols int, values []string) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("board: dimensions must be positive, got %dx%d", rows, cols)
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("board: expected %d values for a %dx%d board, got %d", rows*cols, rows, cols, len(values))
	}
	for i, v := range values {
		if !validValue(v) {
			return nil, fmt.Errorf("board: value %d (%q) is empty or contains whitespace", i, v)
		}
	}

	b := &Board{
		rows:    rows,
		cols:    cols,
		initial: append([]string(nil), values...),
		cards:   make([]Card, rows*cols),
		players: make(map[string]*playerState),
		queues:  make(map[int]*cellQueue),
		changed: make(chan struct{}),
	}
	for i, v := range values {
		b.cards[i] = Card{Value: v, OnBoard: true}
	}
	return b, nil
}

func validValue(v string) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' {
			return false
		}
	}
	return true
}

// Dimensions returns the grid's row and column counts, stable for the
// lifetime of the Board.
func (b *Board) Dimensions() (rows, cols int) {
	return b.rows, b.cols
}

func (b *Board) flat(p Position) int {
	return p.Row*b.cols + p.Col
}

func (b *Board) inBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.rows && p.Col >= 0 && p.Col < b.cols
}

// playerStateLocked returns the PlayerState for id, creating it on first
// use. Caller must hold b.mu.
func (b *Board) playerStateLocked(id string) *playerState {
	ps, ok := b.players[id]
	if !ok {
		ps = newPlayerState()
		b.players[id] = ps
	}
	return ps
}

// queueLocked returns the FIFO queue for the cell at idx, creating it on
// first use. Caller must hold b.mu.
func (b *Board) queueLocked(idx int) *cellQueue {
	q, ok := b.queues[idx]
	if !ok {
		q = &cellQueue{}
		b.queues[idx] = q
	}
	return q
}

// bumpVersionLocked increments the version and signals every current
// watcher by closing and replacing the generation channel. Caller must
// hold b.mu.
func (b *Board) bumpVersionLocked() {
	b.version++
	close(b.changed)
	b.changed = make(chan struct{})
}

// Look returns a textual snapshot of the grid from player's perspective
// (format in render.go). It observes a consistent state: the whole
// render happens while b.mu is held, so it never tears across cells.
func (b *Board) Look(player string) (string, error) {
	if !playerIDPattern.MatchString(player) {
		return "", ErrBadPlayerID
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return renderBoard(b.rows, b.cols, b.cards, player), nil
}

// Flip applies the flip rules for player at (row, col), per spec §4.1.2.
// ctx governs cancellation of the wait a first-card flip may incur when
// the target cell is controlled by another player; a second-card flip
// never waits (it fails fast with ErrContended instead, per §5's
// deadlock-avoidance rule).
func (b *Board) Flip(ctx context.Context, player string, row, col int) error {
	if !playerIDPattern.MatchString(player) {
		return ErrBadPlayerID
	}
	pos := Position{Row: row, Col: col}

	b.mu.Lock()
	if !b.inBounds(pos) {
		b.mu.Unlock()
		return ErrOutOfBounds
	}
	ps := b.playerStateLocked(player)
	b.cleanupTurnStartLocked(ps)

	if ps.first == nil {
		return b.flipFirst(ctx, player, ps, pos) // unlocks internally on every path
	}
	return b.flipSecond(player, ps, pos) // unlocks internally on every path
}

// cleanupTurnStartLocked performs the turn-start cleanup that runs
// unconditionally before every flip (§4.1.2). Caller must hold b.mu;
// after it returns, ps.second and ps.matchedPending are nil, and ps.first
// is nil unless the player holds a first card awaiting its second flip.
func (b *Board) cleanupTurnStartLocked(ps *playerState) {
	switch {
	case ps.matchedPending != nil:
		pending := *ps.matchedPending
		for _, p := range pending {
			idx := b.flat(p)
			b.cards[idx] = Card{}
			// The cell is gone for good: every queued waiter, not just the
			// head, can now observe ErrNoCard instead of taking control.
			b.queueLocked(idx).wakeAll()
		}
		ps.matchedPending = nil
		ps.first = nil
		ps.second = nil
		b.bumpVersionLocked()

	case ps.first != nil && ps.second != nil:
		changed := false
		for _, p := range [2]Position{*ps.first, *ps.second} {
			idx := b.flat(p)
			c := &b.cards[idx]
			if c.OnBoard && c.FaceUp && c.Controller == "" {
				c.FaceUp = false
				changed = true
			}
		}
		ps.first = nil
		ps.second = nil
		if changed {
			b.bumpVersionLocked()
		}
	}
}

// flipFirst handles the first-card branch. b.mu is held on entry; every
// return path releases it.
func (b *Board) flipFirst(ctx context.Context, player string, ps *playerState, pos Position) error {
	idx := b.flat(pos)
	for {
		card := &b.cards[idx]
		if !card.OnBoard {
			b.mu.Unlock()
			return ErrNoCard
		}
		if card.Controller == "" {
			if !card.FaceUp {
				card.FaceUp = true
				card.Controller = player
				b.bumpVersionLocked()
			} else {
				card.Controller = player
			}
			p := pos
			ps.first = &p
			b.mu.Unlock()
			return nil
		}

		// Contended: join the FIFO queue for this cell and wait. §5
		// forbids holding M across this suspension.
		q := b.queueLocked(idx)
		t := q.enqueue()
		b.mu.Unlock()

		select {
		case <-t:
			b.mu.Lock()
		case <-ctx.Done():
			b.mu.Lock()
			q.remove(t)
			b.mu.Unlock()
			return ctx.Err()
		}
		// Loop back around: re-check card state under the reacquired lock.
	}
}

// flipSecond handles the second-card branch. b.mu is held on entry; every
// return path releases it.
func (b *Board) flipSecond(player string, ps *playerState, pos2 Position) error {
	p1 := *ps.first
	idx1 := b.flat(p1)
	idx2 := b.flat(pos2)

	if pos2 == p1 {
		b.relinquishFirstLocked(ps, idx1)
		b.mu.Unlock()
		return ErrSameCard
	}

	card2 := &b.cards[idx2]
	if !card2.OnBoard {
		b.relinquishFirstLocked(ps, idx1)
		b.mu.Unlock()
		return ErrNoCard
	}
	if card2.Controller != "" && card2.Controller != player {
		b.relinquishFirstLocked(ps, idx1)
		b.mu.Unlock()
		return ErrContended
	}

	if !card2.FaceUp {
		card2.FaceUp = true
		card2.Controller = player
		b.bumpVersionLocked()
		b.queueLocked(idx2).wake()
	} else {
		card2.Controller = player
	}

	card1 := &b.cards[idx1]
	p2 := pos2
	ps.second = &p2

	if card1.Value == card2.Value {
		pending := [2]Position{p1, pos2}
		ps.matchedPending = &pending
		b.mu.Unlock()
		return nil
	}

	card1.Controller = ""
	card2.Controller = ""
	b.bumpVersionLocked()
	b.queueLocked(idx1).wake()
	b.queueLocked(idx2).wake()
	b.mu.Unlock()
	return nil
}

// relinquishFirstLocked releases the player's first card and clears their
// turn back to empty, the compensating action every second-card error
// path performs (§7 category 2). Caller must hold b.mu.
func (b *Board) relinquishFirstLocked(ps *playerState, idx1 int) {
	b.cards[idx1].Controller = ""
	ps.first = nil
	b.bumpVersionLocked()
	b.queueLocked(idx1).wake()
}

// Watch suspends the caller until the board's version changes, or ctx is
// cancelled. Multiple concurrent watchers all wake on the next change
// (§5); the happens-before relationship between a version bump and a
// watcher resuming is guaranteed by the channel close/receive pair.
func (b *Board) Watch(ctx context.Context) error {
	b.mu.Lock()
	ch := b.changed
	b.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Map rewrites every card's value through transform, preserving
// match-equivalence (I5): positions with equal values before the call
// still have equal values after, even though transform runs without the
// board mutex held. See §4.1.4 for the three-phase algorithm this
// implements verbatim.
func (b *Board) Map(ctx context.Context, transform func(string) string) error {
	b.mu.Lock()
	groups := make(map[string][]int)
	for i, c := range b.cards {
		if c.OnBoard {
			groups[c.Value] = append(groups[c.Value], i)
		}
	}
	b.mu.Unlock()

	for value, positions := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		next := transform(value)

		b.mu.Lock()
		for _, idx := range positions {
			c := &b.cards[idx]
			if c.OnBoard && c.Value == value {
				c.Value = next
			}
		}
		b.bumpVersionLocked()
		b.mu.Unlock()
	}
	return nil
}

// Reset restores the board to exactly its post-construction state:
// every cell gets its initial value, OnBoard=true, FaceUp=false,
// Controller=""; all PlayerState is cleared; every queued waiter is
// woken so it can re-examine the fresh state.
func (b *Board) Reset() {
	b.mu.Lock()
	for i, v := range b.initial {
		b.cards[i] = Card{Value: v, OnBoard: true}
	}
	b.players = make(map[string]*playerState)
	for _, q := range b.queues {
		q.wakeAll()
	}
	b.queues = make(map[int]*cellQueue)
	b.bumpVersionLocked()
	b.mu.Unlock()
}
