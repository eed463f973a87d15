package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoLayers      = errors.New("stack has no layers")
	ErrShapeMismatch = errors.New("stacked layers must share one size")
)

// LayerSpec describes one maze layer.
type LayerSpec struct {
	Width                   int     `yaml:"width"`
	Height                  int     `yaml:"height"`
	Scale                   float64 `yaml:"scale"`
	Turbulence              float64 `yaml:"turbulence"`
	MaxContinuousPathLength int     `yaml:"maxContinuousPathLength"`
	PortalSpawnFactor       int     `yaml:"portalSpawnFactor"`
}

// Stack is a vertical pile of maze layers. Layer 0 is the bottom.
type Stack struct {
	Seed   int64       `yaml:"seed"`
	Theme  string      `yaml:"theme"`
	Layers []LayerSpec `yaml:"layers"`
}

// LoadStack reads a YAML stack file. Fields missing from a layer fall back
// to defaults.
func LoadStack(path string, defaults Config) (*Stack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stack %s: %w", path, err)
	}
	st, err := ParseStack(data, defaults)
	if err != nil {
		return nil, fmt.Errorf("stack %s: %w", path, err)
	}
	return st, nil
}

// ParseStack decodes a YAML stack and fills unset fields from defaults.
func ParseStack(data []byte, defaults Config) (*Stack, error) {
	var st Stack
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode stack: %w", err)
	}
	if st.Seed == 0 {
		st.Seed = defaults.Seed
	}
	if st.Theme == "" {
		st.Theme = defaults.Theme
	}
	base := defaults.layer()
	for i := range st.Layers {
		l := &st.Layers[i]
		if l.Width == 0 {
			l.Width = base.Width
		}
		if l.Height == 0 {
			l.Height = base.Height
		}
		if l.Scale == 0 {
			l.Scale = base.Scale
		}
		if l.Turbulence == 0 {
			l.Turbulence = base.Turbulence
		}
		if l.MaxContinuousPathLength == 0 {
			l.MaxContinuousPathLength = base.MaxContinuousPathLength
		}
		if l.PortalSpawnFactor == 0 {
			l.PortalSpawnFactor = base.PortalSpawnFactor
		}
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return &st, nil
}

// Validate checks the stack shape. Parameter ranges are left to the maze,
// which logs and rejects bad values itself.
func (s *Stack) Validate() error {
	if len(s.Layers) == 0 {
		return ErrNoLayers
	}
	first := s.Layers[0]
	for i, l := range s.Layers[1:] {
		if l.Width != first.Width || l.Height != first.Height {
			return fmt.Errorf("layer %d is %dx%d, layer 0 is %dx%d: %w",
				i+1, l.Width, l.Height, first.Width, first.Height, ErrShapeMismatch)
		}
	}
	return nil
}
