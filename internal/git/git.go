// Package git wraps the git commands the pre-commit hook and the enable and
// disable subcommands need.
package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

func output(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// RevParseTopLevel returns the root of the work tree containing dir.
func RevParseTopLevel(dir string) (string, error) {
	out, err := output(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not inside a git repository")
	}
	return out, nil
}

// HooksDir returns the absolute hooks directory for the repo containing dir,
// honouring core.hooksPath and worktrees.
func HooksDir(dir string) (string, error) {
	out, err := output(dir, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(dir, out)
	}
	return out, nil
}

// StagedFiles lists files added, copied or modified in the index, relative
// to the work tree root.
func StagedFiles(root string) ([]string, error) {
	out, err := output(root, "diff", "--cached", "--name-only", "--diff-filter=ACM")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// UnstagedFiles lists tracked files whose work tree content differs from the
// index.
func UnstagedFiles(root string) ([]string, error) {
	out, err := output(root, "diff", "--name-only")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// StageFile runs git add for a file.
func StageFile(root, relPath string) error {
	cmd := exec.Command("git", "add", "--", relPath)
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git add %s: %w: %s", relPath, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func splitLines(out string) []string {
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files
}
