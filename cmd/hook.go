package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jensroland/fix-ascii-art/internal/config"
	"github.com/jensroland/fix-ascii-art/internal/debug"
	"github.com/jensroland/fix-ascii-art/internal/git"
	"github.com/jensroland/fix-ascii-art/internal/hook"
	"github.com/jensroland/fix-ascii-art/internal/journal"
	"github.com/jensroland/fix-ascii-art/internal/statedir"
)

// RunHook dispatches hook subcommands.
func RunHook(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: fix-ascii-art hook <pre-commit|post-tool-use>")
		os.Exit(exitUsage)
	}

	paths, err := statedir.Resolve(os.Getenv)
	if err == nil {
		err = paths.Ensure()
	}
	if err != nil {
		// Nowhere to log; hooks must not block.
		return
	}
	env := hook.Env{
		LoadConfig: func(dir string) (config.Config, error) {
			cfg, _, err := config.Resolve("", dir, os.Environ())
			return cfg, err
		},
		LogDir: paths.LogDir,
		RunID:  uuid.New().String(),
	}

	if cfg, err := env.LoadConfig(cwd()); err == nil && cfg.Journal {
		if j, err := journal.Open(paths.JournalDB); err == nil {
			defer j.Close()
			env.Journal = j
		} else {
			debug.Log(paths.LogDir, debug.HookLog, fmt.Sprintf("Journal unavailable: %v", err), nil)
		}
	}

	switch args[0] {
	case "post-tool-use":
		err = hook.HandlePostToolUse(os.Stdin, env)
	case "pre-commit":
		var root string
		root, err = git.RevParseTopLevel(cwd())
		if err == nil {
			_, err = hook.HandlePreCommit(root, os.Stderr, env)
		}
		if errors.Is(err, hook.ErrMisaligned) {
			if env.Journal != nil {
				env.Journal.Close()
			}
			os.Exit(exitFail)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown hook type: %s\n", args[0])
		os.Exit(exitUsage)
	}

	if err != nil {
		// Log error but never fail -- hooks must not block commits or the agent
		debug.Log(paths.LogDir, debug.HookLog, fmt.Sprintf("Fatal error: %v", err), nil)
	}
	// Always exit 0
}
