// labyrinth-server starts an SSH server where every connection spectates its
// own shifting labyrinth. Build:
//
//	go build -o labyrinth-server ./cmd/server
//
// Usage:
//
//	./labyrinth-server [--addr :2222] [--key labyrinth_host_key] [--max 16]
//
// Connect with:
//
//	ssh -t -p 2222 localhost
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
	xssh "golang.org/x/crypto/ssh"

	"shifting-labyrinth/assets"
	"shifting-labyrinth/internal/config"
	"shifting-labyrinth/internal/game"
	internalssh "shifting-labyrinth/internal/ssh"
	"shifting-labyrinth/internal/telemetry"
)

// maxNameBytes caps displayed user names. The rune that crosses the limit is
// kept whole.
const maxNameBytes = 16

// allowedTerms lists the TERM values handed to terminfo. Anything else falls
// back to xterm-256color.
var allowedTerms = map[string]bool{
	"xterm":                 true,
	"xterm-256color":        true,
	"screen":                true,
	"screen-256color":       true,
	"tmux":                  true,
	"tmux-256color":         true,
	"linux":                 true,
	"vt100":                 true,
	"vt220":                 true,
	"rxvt-unicode":          true,
	"rxvt-unicode-256color": true,
}

func main() {
	cfg, stack, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	addr := flag.String("addr", cfg.SSHAddr, "SSH listen address")
	keyFile := flag.String("key", cfg.HostKeyPath, "Path to the PEM-encoded host key (auto-generated if absent)")
	maxSessions := flag.Int("max", 16, "Maximum concurrent spectators")
	flag.Parse()

	logger, closeLog, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer closeLog()

	shutdown, err := telemetry.Setup(context.Background(), "labyrinth-server")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer shutdown(context.Background())

	theme, ok := assets.ThemeByName(stack.Theme)
	if !ok {
		log.Fatalf("unknown theme %q (have %s)", stack.Theme, strings.Join(assets.ThemeNames(), ", "))
	}
	theme.Count = cfg.Wanderers

	sp := &spectators{
		cfg:    cfg,
		stack:  stack,
		theme:  theme,
		logger: logger,
		slots:  make(chan struct{}, max(*maxSessions, 1)),
	}
	srv := &gossh.Server{
		Addr:    *addr,
		Handler: sp.handleSession,
		// Accept PTY requests from any client.
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		// Accept any authentication; spectating is read-only.
		HostSigners: []gossh.Signer{loadOrCreateHostKey(*keyFile)},
	}

	log.Printf("labyrinth SSH server listening on %s", *addr)
	log.Printf("Connect with:  ssh -t -p <port> -o StrictHostKeyChecking=no localhost")
	log.Fatal(srv.ListenAndServe())
}

// spectators runs one independent labyrinth per SSH connection.
type spectators struct {
	cfg    config.Config
	stack  *config.Stack
	theme  assets.Theme
	logger *slog.Logger
	slots  chan struct{}
}

// handleSession is the gliderlabs SSH handler for one connection.
// It blocks for the duration of the connection so the SSH session stays open.
func (sp *spectators) handleSession(s gossh.Session) {
	pty, winCh, hasPTY := s.Pty()
	if !hasPTY {
		fmt.Fprintln(s, "The labyrinth needs a PTY. Connect with: ssh -t -p <port> <host>")
		return
	}
	select {
	case sp.slots <- struct{}{}:
		defer func() { <-sp.slots }()
	default:
		fmt.Fprintln(s, "The labyrinth is full. Try again later.")
		return
	}

	name := sanitizeName(s.User())
	if name == "" {
		name = "spectator"
	}
	logger := sp.logger.With("user", name, "remote", s.RemoteAddr().String())

	// TERM must be set in the process environment before NewTerminfoScreenFromTty.
	tty := internalssh.NewSessionTty(s, pty, winCh)
	termMu.Lock()
	_ = os.Setenv("TERM", sessionTerm(pty.Term))
	screen, err := tcell.NewTerminfoScreenFromTty(tty)
	termMu.Unlock()
	if err != nil {
		fmt.Fprintf(s, "Terminal setup failed: %v\n", err)
		return
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(s, "Screen init failed: %v\n", err)
		return
	}
	defer screen.Fini()

	// A fixed stack seed is shared; otherwise every spectator draws a fresh one.
	session := game.NewSession(screen, game.Options{
		Params:      game.ParamsFromStack(sp.stack),
		Theme:       sp.theme,
		MutateEvery: sp.cfg.MutateEvery,
		SlideFrames: sp.cfg.SlideFrames,
		ExportDir:   sp.cfg.ExportDir,
		Logger:      logger,
	})
	logger.Info("spectator joined")
	if err := session.Run(s.Context()); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("session ended", "error", err)
	}
	logger.Info("spectator left", "frames", session.Log().Frames)
}

// termMu protects os.Setenv("TERM") around screen creation.
var termMu sync.Mutex

func sessionTerm(term string) string {
	if allowedTerms[term] {
		return term
	}
	return "xterm-256color"
}

// sanitizeName strips control characters from an SSH user name and caps it
// at maxNameBytes.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if b.Len() >= maxNameBytes {
			break
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key if the file is absent or unreadable.
func loadOrCreateHostKey(path string) gossh.Signer {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			log.Printf("Loaded host key from %s", path)
			return signer
		}
	}

	log.Printf("Generating new ed25519 host key → %s", path)
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		log.Fatalf("generate host key: %v", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		log.Fatalf("create signer: %v", err)
	}
	// Persist for next run (non-fatal if it fails).
	if pemBlock, err := xssh.MarshalPrivateKey(key, "shifting-labyrinth server"); err == nil {
		_ = os.WriteFile(path, pem.EncodeToMemory(pemBlock), 0600)
	}
	return signer
}
