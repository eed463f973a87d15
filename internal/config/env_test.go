package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"LABYRINTH_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("LABYRINTH_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LABYRINTH_SEED", "7")
	t.Setenv("LABYRINTH_WIDTH", "15")
	t.Setenv("LABYRINTH_LAYERS", "2")
	t.Setenv("LABYRINTH_STACK_FILE", "")

	cfg, st, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 7 || cfg.Height != 21 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(st.Layers) != 2 || st.Layers[1].Width != 15 || st.Seed != 7 {
		t.Fatalf("stack = %+v", st)
	}
}

func TestLoadWithStackFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.yaml")
	if err := os.WriteFile(path, []byte("seed: 3\nlayers:\n  - turbulence: 5\n  - {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LABYRINTH_STACK_FILE", path)

	_, st, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.Seed != 3 || len(st.Layers) != 2 || st.Layers[0].Turbulence != 5 || st.Layers[1].Turbulence != 2 {
		t.Fatalf("stack = %+v", st)
	}
}

func TestLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := (Config{LogLevel: in}).Level(); got != want {
			t.Errorf("Level(%q) = %v, want %v", in, got, want)
		}
	}
}
