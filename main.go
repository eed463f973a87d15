// Command shifting-labyrinth shows a live stack of shifting maze layers in
// the terminal. Configuration comes from LABYRINTH_* environment variables
// and an optional YAML stack file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"shifting-labyrinth/assets"
	"shifting-labyrinth/internal/config"
	"shifting-labyrinth/internal/game"
	"shifting-labyrinth/internal/render"
	"shifting-labyrinth/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, stack, err := config.Load()
	if err != nil {
		return err
	}
	// The terminal belongs to the viewer; logs go to LABYRINTH_LOG_FILE or nowhere.
	logger, closeLog, err := cfg.NewLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "shifting-labyrinth")
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	theme, ok := assets.ThemeByName(stack.Theme)
	if !ok {
		return fmt.Errorf("unknown theme %q (have %s)", stack.Theme, strings.Join(assets.ThemeNames(), ", "))
	}
	theme.Count = cfg.Wanderers

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	session := game.NewSession(screen, game.Options{
		Params: game.ParamsFromStack(stack),
		Theme:  theme,
		Tiles: func(layer int) render.TileSet {
			// The theme's own tiles on the bottom layer, then cycle.
			if layer == 0 {
				return theme.Tiles
			}
			return render.TilesForLayer(layer)
		},
		MutateEvery: cfg.MutateEvery,
		SlideFrames: cfg.SlideFrames,
		ExportDir:   cfg.ExportDir,
		SaveLog:     true,
		Logger:      logger,
	})
	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
