package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func defaults() Config {
	return Config{
		Seed: 9, Theme: "stone", Width: 11, Height: 9, Scale: 1,
		Turbulence: 2, MaxContinuousPathLength: 20, PortalSpawnFactor: 4, Layers: 1,
	}
}

func TestParseStackFillsDefaults(t *testing.T) {
	st, err := ParseStack([]byte(`
theme: moss
layers:
  - width: 13
    height: 13
    portalSpawnFactor: 2
  - width: 13
    height: 13
    turbulence: 0.5
`), defaults())
	if err != nil {
		t.Fatalf("ParseStack: %v", err)
	}
	if st.Seed != 9 || st.Theme != "moss" {
		t.Fatalf("header = %+v", st)
	}
	l0, l1 := st.Layers[0], st.Layers[1]
	if l0.PortalSpawnFactor != 2 || l0.Turbulence != 2 || l0.Scale != 1 {
		t.Errorf("layer 0 = %+v", l0)
	}
	if l1.Turbulence != 0.5 || l1.MaxContinuousPathLength != 20 || l1.PortalSpawnFactor != 4 {
		t.Errorf("layer 1 = %+v", l1)
	}
}

func TestParseStackErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want error
	}{
		{"no layers", "seed: 1\n", ErrNoLayers},
		{"shape mismatch", "layers:\n  - width: 10\n  - width: 12\n", ErrShapeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseStack([]byte(tc.yaml), defaults()); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if _, err := ParseStack([]byte("layers: [\n"), defaults()); err == nil {
		t.Fatal("malformed yaml accepted")
	}
}

func TestLoadStackMissingFile(t *testing.T) {
	if _, err := LoadStack(filepath.Join(t.TempDir(), "nope.yaml"), defaults()); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestDefaultStack(t *testing.T) {
	cfg := defaults()
	cfg.Layers = 3
	st := cfg.DefaultStack()
	if len(st.Layers) != 3 || st.Validate() != nil {
		t.Fatalf("stack = %+v", st)
	}
	cfg.Layers = 0
	if got := len(cfg.DefaultStack().Layers); got != 1 {
		t.Fatalf("zero layers gave %d", got)
	}
}
