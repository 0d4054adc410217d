// Package sim drives simulated players directly against a board.Board,
// playing ordinary Concentration: remember revealed values, prefer a
// known pair, otherwise guess. Grounded on the teacher's ai.Run and
// ai.pickPair/pickSecondCard, stripped of everything power-up and
// element specific (no powerups in this game) and of the websocket
// message loop (a bot here calls board.Board methods directly instead
// of receiving game_state frames).
package sim

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"memoryboard/board"
	"memoryboard/config"
)

// Bot plays one simulated player's turns against a shared board until
// its context is cancelled.
type Bot struct {
	name    string
	profile config.BotProfile
	board   *board.Board
	log     *slog.Logger

	rows, cols int
	memory     map[board.Position]string // position -> last known value
}

// NewBot returns a bot named name, playing b according to profile.
func NewBot(name string, profile config.BotProfile, b *board.Board, log *slog.Logger) *Bot {
	rows, cols := b.Dimensions()
	return &Bot{
		name:    name,
		profile: profile,
		board:   b,
		log:     log.With("tag", "sim", "bot", name),
		rows:    rows,
		cols:    cols,
		memory:  make(map[board.Position]string),
	}
}

// Run plays turns until ctx is cancelled, pausing between attempts per
// profile.DelayMinMS/DelayMaxMS. Each turn flips one card, updates
// memory, waits, then flips a second; every outcome (match, mismatch,
// contention) is folded back into the next attempt's memory instead of
// halting the bot.
func (b *Bot) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		b.playTurn(ctx)
		if !b.sleep(ctx) {
			return
		}
	}
}

func (b *Bot) playTurn(ctx context.Context) {
	b.refreshMemory()

	first, reason := b.pickFirst()
	if first == nil {
		return
	}
	if err := b.board.Flip(ctx, b.name, first.Row, first.Col); err != nil {
		b.log.Debug("first flip failed", "pos", *first, "reason", reason, "error", err)
		return
	}
	b.log.Debug("flipped first", "pos", *first, "reason", reason)
	b.forgetSome()

	if !b.sleep(ctx) {
		return
	}

	b.refreshMemory()
	second, reason2 := b.pickSecond(*first)
	if second == nil {
		return
	}
	if err := b.board.Flip(ctx, b.name, second.Row, second.Col); err != nil {
		b.log.Debug("second flip failed", "pos", *second, "reason", reason2, "error", err)
		return
	}
	b.log.Debug("flipped second", "pos", *second, "reason", reason2)
}

// refreshMemory rebuilds the bot's view of every face-up card from the
// board's rendered snapshot. It never reveals cards the bot does not
// already control or see face-up, matching the no-hidden-state contract
// of Board.Look.
func (b *Bot) refreshMemory() {
	snap, err := b.board.Look(b.name)
	if err != nil {
		return
	}
	for pos, value := range parseFaceUp(snap, b.rows, b.cols) {
		b.memory[pos] = value
	}
}

// forgetSome drops entries from memory with probability
// profile.ForgetChance, mirroring the teacher's per-turn forget pass.
func (b *Bot) forgetSome() {
	chance := clampPercent(b.profile.ForgetChance)
	if chance == 0 || len(b.memory) == 0 {
		return
	}
	for pos := range b.memory {
		if rand.Intn(100) < chance {
			delete(b.memory, pos)
		}
	}
}

// pickFirst prefers a position that completes a known pair with
// probability profile.UseKnownPairChance, otherwise guesses among
// positions never seen before, falling back to any position.
func (b *Bot) pickFirst() (*board.Position, string) {
	all := allPositions(b.rows, b.cols)
	if len(all) == 0 {
		return nil, "none"
	}
	if rand.Intn(100) < clampPercent(b.profile.UseKnownPairChance) {
		if pos, ok := b.findKnownPairStart(); ok {
			return &pos, "known_pair"
		}
	}
	unknown := filterUnknown(all, b.memory)
	if len(unknown) > 0 {
		pos := unknown[rand.Intn(len(unknown))]
		return &pos, "unseen"
	}
	pos := all[rand.Intn(len(all))]
	return &pos, "random"
}

// pickSecond prefers the position matching first's remembered value.
func (b *Bot) pickSecond(first board.Position) (*board.Position, string) {
	all := allPositions(b.rows, b.cols)
	candidates := make([]board.Position, 0, len(all))
	for _, p := range all {
		if p != first {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, "none"
	}
	if value, known := b.memory[first]; known {
		for _, p := range candidates {
			if v, ok := b.memory[p]; ok && v == value {
				return &p, "known_pair"
			}
		}
	}
	unknown := filterUnknown(candidates, b.memory)
	if len(unknown) > 0 {
		pos := unknown[rand.Intn(len(unknown))]
		return &pos, "unseen"
	}
	pos := candidates[rand.Intn(len(candidates))]
	return &pos, "random"
}

func (b *Bot) findKnownPairStart() (board.Position, bool) {
	seen := make(map[string]board.Position)
	for pos, value := range b.memory {
		if other, ok := seen[value]; ok {
			_ = other
			return pos, true
		}
		seen[value] = pos
	}
	return board.Position{}, false
}

// sleep blocks for a random duration in [DelayMinMS, DelayMaxMS],
// returning false if ctx is cancelled first.
func (b *Bot) sleep(ctx context.Context) bool {
	delay := b.profile.DelayMinMS
	if b.profile.DelayMaxMS > b.profile.DelayMinMS {
		delay += rand.Intn(b.profile.DelayMaxMS - b.profile.DelayMinMS)
	}
	select {
	case <-time.After(time.Duration(delay) * time.Millisecond):
		return true
	case <-ctx.Done():
		return false
	}
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func allPositions(rows, cols int) []board.Position {
	out := make([]board.Position, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, board.Position{Row: r, Col: c})
		}
	}
	return out
}

func filterUnknown(positions []board.Position, memory map[board.Position]string) []board.Position {
	out := make([]board.Position, 0, len(positions))
	for _, p := range positions {
		if _, ok := memory[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}
