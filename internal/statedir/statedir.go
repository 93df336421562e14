// Package statedir locates the per-user directory holding the fix journal
// and tool logs.
package statedir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvHome overrides the state directory.
	EnvHome = "FIX_ASCII_ART_HOME"
	appName = "fix-ascii-art"
)

// Paths holds the files and directories fix-ascii-art writes to.
type Paths struct {
	Root      string // state root
	LogDir    string // <root>/logs
	JournalDB string // <root>/journal.db
}

// Resolve picks the state root: $FIX_ASCII_ART_HOME, then
// $XDG_STATE_HOME/fix-ascii-art, then ~/.local/state/fix-ascii-art.
func Resolve(getenv func(string) string) (Paths, error) {
	if dir := getenv(EnvHome); dir != "" {
		return NewPaths(dir), nil
	}
	if xdg := getenv("XDG_STATE_HOME"); xdg != "" {
		return NewPaths(filepath.Join(xdg, appName)), nil
	}
	home := getenv("HOME")
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("locate state directory: %w", err)
		}
	}
	return NewPaths(filepath.Join(home, ".local", "state", appName)), nil
}

// NewPaths constructs all paths from a state root.
func NewPaths(root string) Paths {
	return Paths{
		Root:      root,
		LogDir:    filepath.Join(root, "logs"),
		JournalDB: filepath.Join(root, "journal.db"),
	}
}

// Ensure creates the state directories.
func (p Paths) Ensure() error {
	if err := os.MkdirAll(p.LogDir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	return nil
}
