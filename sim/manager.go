package sim

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"memoryboard/board"
	"memoryboard/config"
)

// Start launches cfg.SimPlayers bots against b, cycling through
// cfg.BotProfiles, and runs them under an errgroup so the caller can
// fold their lifetime into the rest of the server's shutdown.
func Start(ctx context.Context, cfg *config.Config, b *board.Board, log *slog.Logger) *errgroup.Group {
	g, ctx := errgroup.WithContext(ctx)
	if !cfg.SimEnabled || len(cfg.BotProfiles) == 0 {
		return g
	}
	for i := 0; i < cfg.SimPlayers; i++ {
		profile := cfg.BotProfiles[i%len(cfg.BotProfiles)]
		name := fmt.Sprintf("%s_%d", profile.Name, i)
		bot := NewBot(name, profile, b, log)
		g.Go(func() error {
			bot.Run(ctx)
			return nil
		})
	}
	return g
}
