package game

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SessionLog summarises one viewing session.
type SessionLog struct {
	Seed       int64     `json:"seed"`
	Theme      string    `json:"theme"`
	Layers     int       `json:"layers"`
	Failed     []int     `json:"failed,omitempty"` // layers whose generation failed
	Portals    int       `json:"portals"`
	WallsMoved []int     `json:"wallsMoved"` // per layer
	Frames     int       `json:"frames"`
	Exports    int       `json:"exports"`
	Started    time.Time `json:"started"`
	Duration   string    `json:"duration"`
}

// saveSessionLog appends log as a single JSON line to sessions.jsonl.
func saveSessionLog(log SessionLog) error {
	dir, err := sessionLogDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "sessions.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode session log: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write session log: %w", err)
	}
	return nil
}

// sessionLogDir returns the directory where session logs are stored.
// Follows XDG Base Directory spec: $XDG_DATA_HOME/shifting-labyrinth,
// defaulting to ~/.local/share/shifting-labyrinth.
func sessionLogDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "shifting-labyrinth"), nil
}
