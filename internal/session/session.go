// Package session stores the local "logged in" flag.
//
// The flag gates presentation only. The catalog service never sees it and
// no credentials or tokens are written. The file is read once at startup
// and the resulting Context is passed to whoever needs it; nothing re-reads
// it while the program runs.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultSessionPath = "~/.config/folio/session.toml"

// Context is the session state threaded through the UI and CLI.
type Context struct {
	LoggedIn bool      `toml:"logged_in"`
	User     string    `toml:"user,omitempty"`
	Since    time.Time `toml:"since,omitempty"`
}

// Anonymous is the state before any login.
var Anonymous = Context{}

// Active reports whether gated views may open.
func (c Context) Active() bool {
	return c.LoggedIn && strings.TrimSpace(c.User) != ""
}

// Login returns the state after a successful credential check for user.
func Login(user string, now time.Time) Context {
	return Context{LoggedIn: true, User: strings.TrimSpace(user), Since: now.UTC().Truncate(time.Second)}
}

// DefaultPath returns the session file used when none is configured.
func DefaultPath() string {
	return defaultSessionPath
}

// Load reads the session flag. A missing or unreadable file means Anonymous.
func Load(path string) (Context, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Anonymous, err
	}
	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Anonymous, nil
		}
		return Anonymous, fmt.Errorf("read session: %w", err)
	}

	var ctx Context
	if err := toml.Unmarshal(bytes, &ctx); err != nil {
		return Anonymous, fmt.Errorf("parse session: %w", err)
	}
	ctx.User = strings.TrimSpace(ctx.User)
	if !ctx.Active() {
		return Anonymous, nil
	}
	return ctx, nil
}

// Save writes ctx to path, creating directories as needed.
func Save(path string, ctx Context) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	bytes, err := toml.Marshal(ctx)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing an absent session is not an error.
func Clear(path string) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = defaultSessionPath
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
