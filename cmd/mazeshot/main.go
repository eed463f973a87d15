// mazeshot generates a labyrinth stack headlessly and writes one diagnostic
// image per layer, one pixel per cell.
//
// Usage:
//
//	mazeshot [-out dir] [-format png|bmp] [-seed n] [-mutate steps]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"shifting-labyrinth/assets"
	"shifting-labyrinth/internal/config"
	"shifting-labyrinth/internal/export"
	"shifting-labyrinth/internal/game"
	"shifting-labyrinth/internal/telemetry"
)

func main() {
	cfg, stack, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	out := flag.String("out", cfg.ExportDir, "Output directory")
	format := flag.String("format", "png", "Image format: png or bmp")
	seed := flag.Int64("seed", stack.Seed, "Stack seed (0 draws one)")
	mutate := flag.Int("mutate", 0, "Wall mover steps to run on each layer before exporting")
	timeout := flag.Duration("timeout", time.Minute, "Generation timeout")
	flag.Parse()

	logger, closeLog, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer closeLog()

	if err := run(logger, stack, *seed, *out, *format, *mutate, *timeout); err != nil {
		log.Fatal(err)
	}
}

func run(logger *slog.Logger, stack *config.Stack, seed int64, out, format string, mutate int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, "mazeshot")
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer shutdown(context.Background())

	f, err := export.FormatFor("x." + format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}

	// Themes still run so population failures surface; the images only
	// show topology.
	theme, ok := assets.ThemeByName(stack.Theme)
	if !ok {
		return fmt.Errorf("unknown theme %q", stack.Theme)
	}

	st := *stack
	st.Seed = seed
	params := game.ParamsFromStack(&st)
	s := game.NewStack(params, theme, logger)
	defer s.Close()
	s.Generate()
	if err := s.Wait(ctx); err != nil {
		return err
	}

	prefix := fmt.Sprintf("labyrinth-%d", params[0].Seed)
	for _, m := range s.Layers {
		if mutate > 0 {
			mover := m.NewWallMover(nil)
			moved := 0
			for range mutate {
				moved += mover.Step()
			}
			logger.Info("walls moved", "layer", m.Layer(), "count", moved)
		}
		path := export.LayerPath(out, prefix, m.Layer(), f)
		if err := export.WriteFile(path, m.Snapshot()); err != nil {
			return err
		}
		log.Printf("layer %d: %s (path length %d)", m.Layer(), path, m.PathLength())
	}
	log.Printf("%d layers, %d portals", len(s.Layers), s.Portals())
	return nil
}
