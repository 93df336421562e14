package hook

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jensroland/fix-ascii-art/internal/config"
	"github.com/jensroland/fix-ascii-art/internal/debug"
	"github.com/jensroland/fix-ascii-art/internal/fixfile"
	"github.com/jensroland/fix-ascii-art/internal/git"
	"github.com/jensroland/fix-ascii-art/internal/record"
)

// ErrMisaligned is returned by HandlePreCommit when the commit must be
// blocked: in check mode any staged diagram needs fixing, and in fix mode a
// partially staged file does.
var ErrMisaligned = errors.New("misaligned diagrams in staged files")

// PreCommitResult lists what the pre-commit hook did, as paths relative to
// the repository root.
type PreCommitResult struct {
	Fixed    []string // rewritten and re-staged
	NeedsFix []string // left alone but misaligned
}

// HandlePreCommit fixes the staged files of the repository at root that
// match the configured extensions. In fix mode they are rewritten and
// re-staged; in check mode they are only reported. Files with unstaged
// changes are never rewritten since re-staging would commit those changes.
func HandlePreCommit(root string, out io.Writer, env Env) (PreCommitResult, error) {
	var res PreCommitResult

	cfg, err := env.config(root)
	if err != nil {
		return res, fmt.Errorf("load config: %w", err)
	}

	staged, err := git.StagedFiles(root)
	if err != nil {
		return res, err
	}
	unstaged, err := git.UnstagedFiles(root)
	if err != nil {
		return res, err
	}
	partial := make(map[string]bool, len(unstaged))
	for _, f := range unstaged {
		partial[f] = true
	}

	w := &fixfile.Writer{RunID: env.RunID, Source: record.SourcePreCommit, Journal: env.Journal}
	for _, rel := range staged {
		if !cfg.Matches(rel) {
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(rel))
		dryRun := cfg.Hook.Mode == config.HookCheck || partial[rel]

		fr, err := w.File(path, fixfile.ForPath(cfg, rel), dryRun)
		if err != nil {
			debug.Log(env.LogDir, debug.HookLog, fmt.Sprintf("pre-commit: %s: %v", rel, err), nil)
			continue
		}
		if !fr.Changed() {
			continue
		}

		if dryRun {
			res.NeedsFix = append(res.NeedsFix, rel)
			continue
		}
		if err := git.StageFile(root, rel); err != nil {
			return res, err
		}
		res.Fixed = append(res.Fixed, rel)
		fmt.Fprintf(out, "fix-ascii-art: fixed %s\n", rel)
	}

	debug.Log(env.LogDir, debug.HookLog, "pre-commit", map[string]interface{}{
		"root":      root,
		"mode":      cfg.Hook.Mode,
		"fixed":     res.Fixed,
		"needs_fix": res.NeedsFix,
	})

	if len(res.NeedsFix) > 0 {
		for _, rel := range res.NeedsFix {
			fmt.Fprintf(out, "fix-ascii-art: %s has misaligned diagrams\n", rel)
		}
		fmt.Fprintln(out, "Run 'fix-ascii-art -i <file>' and stage the result, or commit with --no-verify.")
		return res, ErrMisaligned
	}
	return res, nil
}
