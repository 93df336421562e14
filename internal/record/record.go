// Package record defines a fix journal entry and the helpers used to build
// one.
package record

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/jensroland/fix-ascii-art/internal/lineset"
)

// Sources of a fix.
const (
	SourceCLI       = "cli"
	SourcePreCommit = "pre-commit"
	SourceToolUse   = "post-tool-use"
	SourceWatch     = "watch"
)

// Entry is one file rewritten by one run.
type Entry struct {
	ID         int64           `json:"id"`
	RunID      string          `json:"run_id"`
	Ts         time.Time       `json:"ts"`
	Source     string          `json:"source"`
	File       string          `json:"file"` // absolute path
	Lines      lineset.LineSet `json:"lines"`
	Regions    int             `json:"regions"`
	BeforeHash string          `json:"before_hash"`
	AfterHash  string          `json:"after_hash"`
	Before     string          `json:"-"`
	After      string          `json:"-"`
	Undone     bool            `json:"undone"`
}

// New builds an entry for a file rewritten from before to after. changed
// holds the 0-based indices of the lines that differ.
func New(runID, source, file, before, after string, changed []int, regions int) *Entry {
	return &Entry{
		RunID:      runID,
		Ts:         time.Now().UTC(),
		Source:     source,
		File:       file,
		Lines:      lineset.FromIndices(changed),
		Regions:    regions,
		BeforeHash: ContentHash(before),
		AfterHash:  ContentHash(after),
		Before:     before,
		After:      after,
	}
}

// ContentHash is the first 16 hex chars of the SHA-256 of text. Whitespace
// is significant: a fix only ever changes whitespace.
func ContentHash(text string) string {
	if text == "" {
		return ""
	}
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", h)[:16]
}

// RelativizePath converts an absolute path to a project-relative path.
// Always uses forward slashes for portability.
func RelativizePath(absPath, projectDir string) string {
	if absPath == "" {
		return ""
	}
	rel, err := filepath.Rel(projectDir, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return absPath
	}
	return filepath.ToSlash(rel)
}

// ChangeSummary renders the first changed line as "old → new", each side
// trimmed and cut to maxWidth display columns.
func (e *Entry) ChangeSummary(maxWidth int) string {
	if e.Lines.IsEmpty() {
		return ""
	}
	n := e.Lines.Min() - 1
	oldLine := lineAt(e.Before, n)
	newLine := lineAt(e.After, n)
	oldLine = runewidth.Truncate(strings.TrimSpace(oldLine), maxWidth, "…")
	newLine = runewidth.Truncate(strings.TrimSpace(newLine), maxWidth, "…")
	return oldLine + " → " + newLine
}

func lineAt(text string, n int) string {
	lines := strings.Split(text, "\n")
	if n < 0 || n >= len(lines) {
		return ""
	}
	return strings.TrimSuffix(lines[n], "\r")
}
