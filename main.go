package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"memoryboard/board"
	"memoryboard/boardfile"
	"memoryboard/config"
	"memoryboard/loghandler"
	"memoryboard/sim"
	"memoryboard/transport"
)

func main() {
	logger := slog.New(loghandler.NewCompactHandler(os.Stdout, slog.LevelInfo))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found; using environment variables", "tag", "main")
	}

	cfg := config.Load()
	logger.Info("configuration loaded", "tag", "main", "board_file", cfg.BoardFile, "listen_addr", cfg.ListenAddr, "sim_enabled", cfg.SimEnabled)

	b, err := loadBoard(cfg.BoardFile)
	if err != nil {
		logger.Error("failed to load board", "tag", "main", "error", err)
		os.Exit(1)
	}
	rows, cols := b.Dimensions()
	logger.Info("board ready", "tag", "main", "rows", rows, "cols", cols)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	srv := transport.NewServer(cfg, b, logger)
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	g.Go(func() error {
		logger.Info("listening", "tag", "main", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down", "tag", "main")
		return httpServer.Shutdown(shutdownCtx)
	})

	simGroup := sim.Start(ctx, cfg, b, logger)
	g.Go(simGroup.Wait)

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "tag", "main", "error", err)
		os.Exit(1)
	}
}

// loadBoard parses the board template at path and constructs the board.
// If the file is missing, a small built-in template is used instead so
// the server still boots cleanly for local exploration.
func loadBoard(path string) (*board.Board, error) {
	f, err := os.Open(path)
	if err != nil {
		rows, cols, values := defaultTemplate()
		return board.New(rows, cols, values)
	}
	defer f.Close()

	rows, cols, values, err := boardfile.Parse(f)
	if err != nil {
		return nil, err
	}
	return board.New(rows, cols, values)
}

func defaultTemplate() (rows, cols int, values []string) {
	return 3, 3, []string{
		"unicorn", "unicorn", "rainbow",
		"rainbow", "rainbow", "unicorn",
		"rainbow", "unicorn", "rainbow",
	}
}
