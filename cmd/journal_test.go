package cmd

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jensroland/fix-ascii-art/internal/journal"
	"github.com/jensroland/fix-ascii-art/internal/record"
)

// fixedRun fixes the named files in place through execute and returns the
// opened journal.
func fixedRun(t *testing.T, dir string, names ...string) (*journal.Journal, []string) {
	t.Helper()
	var paths []string
	for _, n := range names {
		p := filepath.Join(dir, n)
		writeFile(t, p, broken)
		paths = append(paths, p)
	}

	run, _, _ := newTestRun(t, paths...)
	run.inPlace = true
	if code := run.execute(); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}

	j, err := journal.Open(run.paths.JournalDB)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { j.Close() })
	return j, paths
}

func TestCmdUndo_LastRun(t *testing.T) {
	dir := t.TempDir()
	j, paths := fixedRun(t, dir, "a.txt", "b.txt")

	var code int
	var err error
	out := captureStdout(t, func() {
		code, err = cmdUndo(j, dir, "", "", false)
	})
	if err != nil || code != exitOK {
		t.Fatalf("cmdUndo() = %d, %v", code, err)
	}
	for _, p := range paths {
		if readFile(t, p) != broken {
			t.Errorf("%s not restored", p)
		}
	}
	if !strings.Contains(out, "restored a.txt") || !strings.Contains(out, "restored b.txt") {
		t.Errorf("output = %q", out)
	}

	_, err = cmdUndo(j, dir, "", "", false)
	if !errors.Is(err, journal.ErrNotFound) {
		t.Errorf("second undo error = %v, want ErrNotFound", err)
	}
}

func TestCmdUndo_ModifiedFile(t *testing.T) {
	dir := t.TempDir()
	j, paths := fixedRun(t, dir, "a.txt")
	writeFile(t, paths[0], fixed+"edited\n")

	var code int
	out := captureStdout(t, func() {
		code, _ = cmdUndo(j, dir, "", paths[0], false)
	})
	if code != exitFail {
		t.Errorf("exit code = %d, want %d", code, exitFail)
	}
	if !strings.Contains(out, "skipped a.txt") {
		t.Errorf("output = %q", out)
	}
	if readFile(t, paths[0]) != fixed+"edited\n" {
		t.Error("modified file was overwritten without --force")
	}

	captureStdout(t, func() {
		code, _ = cmdUndo(j, dir, "", paths[0], true)
	})
	if code != exitOK || readFile(t, paths[0]) != broken {
		t.Errorf("--force did not restore: code %d", code)
	}
}

func TestCmdUndo_ByRunID(t *testing.T) {
	dir := t.TempDir()
	j, paths := fixedRun(t, dir, "a.txt")
	entries, err := j.List(1)
	if err != nil || len(entries) != 1 {
		t.Fatalf("List() = %v, %v", entries, err)
	}

	if _, err := cmdUndo(j, dir, "no-such-run", "", false); !errors.Is(err, journal.ErrNotFound) {
		t.Errorf("unknown run error = %v", err)
	}
	captureStdout(t, func() {
		if _, err := cmdUndo(j, dir, entries[0].RunID, "", false); err != nil {
			t.Errorf("cmdUndo() error = %v", err)
		}
	})
	if readFile(t, paths[0]) != broken {
		t.Error("run not undone")
	}
}

func TestCmdHistory(t *testing.T) {
	dir := t.TempDir()
	j, _ := fixedRun(t, dir, "a.txt")

	out := captureStdout(t, func() {
		if err := cmdHistory(j, dir, "", 10, false, 8); err != nil {
			t.Errorf("cmdHistory() error = %v", err)
		}
	})
	if !strings.Contains(out, "#1") || !strings.Contains(out, "a.txt") || !strings.Contains(out, record.SourceCLI) {
		t.Errorf("listing = %q", out)
	}

	out = captureStdout(t, func() {
		if err := cmdHistory(j, dir, "1", 10, false, 8); err != nil {
			t.Errorf("cmdHistory(1) error = %v", err)
		}
	})
	if !strings.Contains(out, "Fix #1") || !strings.Contains(out, "| a    |") {
		t.Errorf("detail = %q", out)
	}

	out = captureStdout(t, func() {
		if err := cmdHistory(j, dir, "", 10, true, 8); err != nil {
			t.Errorf("cmdHistory(json) error = %v", err)
		}
	})
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(items) != 1 || items[0]["lines"] != "2" {
		t.Errorf("items = %v", items)
	}

	if err := cmdHistory(j, dir, "abc", 10, false, 8); err == nil {
		t.Error("expected error for non-numeric id")
	}
	if err := cmdHistory(j, dir, strconv.Itoa(99), 10, false, 8); !errors.Is(err, journal.ErrNotFound) {
		t.Errorf("missing id error = %v", err)
	}
}

func TestCmdStats(t *testing.T) {
	dir := t.TempDir()
	j, _ := fixedRun(t, dir, "a.txt", "b.txt")

	out := captureStdout(t, func() {
		if err := cmdStats(j, dir, false); err != nil {
			t.Errorf("cmdStats() error = %v", err)
		}
	})
	if !strings.Contains(out, "Fixes recorded: 2") || !strings.Contains(out, "Lines aligned:  2") {
		t.Errorf("stats = %q", out)
	}

	out = captureStdout(t, func() {
		if err := cmdStats(j, dir, true); err != nil {
			t.Errorf("cmdStats(json) error = %v", err)
		}
	})
	var s journal.Stats
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if s.Entries != 2 || s.Runs != 1 || s.Files != 2 {
		t.Errorf("stats = %+v", s)
	}
}
