// Package hook implements the git pre-commit and agent post-tool-use hook
// entry points.
package hook

import (
	"github.com/jensroland/fix-ascii-art/internal/config"
	"github.com/jensroland/fix-ascii-art/internal/journal"
)

// Env is what the command layer hands to a hook.
type Env struct {
	// LoadConfig resolves the config that applies to files under dir.
	LoadConfig func(dir string) (config.Config, error)
	LogDir     string
	Journal    *journal.Journal // nil disables journaling
	RunID      string
}

func (e Env) config(dir string) (config.Config, error) {
	if e.LoadConfig == nil {
		return config.Defaults(), nil
	}
	return e.LoadConfig(dir)
}
