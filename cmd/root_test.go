package cmd

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jensroland/fix-ascii-art/internal/config"
	"github.com/jensroland/fix-ascii-art/internal/fixfile"
	"github.com/jensroland/fix-ascii-art/internal/format"
	"github.com/jensroland/fix-ascii-art/internal/journal"
	"github.com/jensroland/fix-ascii-art/internal/statedir"
)

const (
	broken = "+------+\n| a   |\n+------+\n"
	fixed  = "+------+\n| a    |\n+------+\n"
)

func TestMain(m *testing.M) {
	format.SetColor(false)
	os.Exit(m.Run())
}

// captureStdout runs fn and returns everything it wrote to os.Stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	fn()
	w.Close()
	out, _ := io.ReadAll(r)
	os.Stdout = old
	return string(out)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// newTestRun builds a fixRun with buffered streams and a private state dir.
func newTestRun(t *testing.T, files ...string) (*fixRun, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	return &fixRun{
		settings: fixfile.Settings{Config: config.Defaults()},
		files:    files,
		journal:  true,
		paths:    statedir.NewPaths(t.TempDir()),
		logger:   newLogger(&stderr, false),
		stdin:    strings.NewReader(""),
		stdout:   &stdout,
		stderr:   &stderr,
	}, &stdout, &stderr
}

func TestExecute_Stdin(t *testing.T) {
	run, stdout, _ := newTestRun(t)
	run.stdin = strings.NewReader(broken)

	if code := run.execute(); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if stdout.String() != fixed {
		t.Errorf("stdout = %q, want %q", stdout.String(), fixed)
	}
}

func TestExecute_StdinDash(t *testing.T) {
	run, stdout, _ := newTestRun(t, "-")
	run.stdin = strings.NewReader("no diagram here\n")

	if code := run.execute(); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if stdout.String() != "no diagram here\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestExecute_StdinMarkdown(t *testing.T) {
	doc := "```go\n+-----+\n|a |\n+-----+\n```\n"

	run, stdout, _ := newTestRun(t)
	run.settings.Config.Markdown = true
	run.stdin = strings.NewReader(doc)
	if code := run.execute(); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if stdout.String() != doc {
		t.Errorf("source fence changed in markdown mode: %q", stdout.String())
	}

	run, stdout, _ = newTestRun(t)
	run.settings.Config.Markdown = true
	run.stdin = strings.NewReader("Intro\n\n+-----+\n|a |\n+-----+\n")
	if code := run.execute(); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if want := "Intro\n\n+-----+\n|a    |\n+-----+\n"; stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestExecute_FilesConcatenatedInOrder(t *testing.T) {
	dir := t.TempDir()
	var files []string
	var want strings.Builder
	for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
		p := filepath.Join(dir, name)
		writeFile(t, p, "# "+name+"\n"+broken)
		files = append(files, p)
		want.WriteString("# " + name + "\n" + fixed)
	}

	run, stdout, _ := newTestRun(t, files...)
	if code := run.execute(); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if stdout.String() != want.String() {
		t.Errorf("stdout = %q, want %q", stdout.String(), want.String())
	}
	for _, p := range files {
		if !strings.Contains(readFile(t, p), "| a   |") {
			t.Errorf("%s was modified without --in-place", p)
		}
	}
}

func TestExecute_InPlaceJournals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "box.txt")
	writeFile(t, path, broken)

	run, stdout, _ := newTestRun(t, path)
	run.inPlace = true
	if code := run.execute(); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if got := readFile(t, path); got != fixed {
		t.Errorf("file = %q, want fixed", got)
	}
	if !strings.Contains(stdout.String(), "fixed "+path+": 1 line in 1 box") {
		t.Errorf("stdout = %q", stdout.String())
	}

	j, err := journal.Open(run.paths.JournalDB)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	entries, err := j.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Before != broken {
		t.Errorf("journal entries = %+v", entries)
	}

	if _, err := os.Stat(filepath.Join(run.paths.LogDir, "fix.log")); err != nil {
		t.Errorf("fix.log not written: %v", err)
	}
}

func TestExecute_InPlaceWithoutJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.txt")
	writeFile(t, path, broken)

	run, _, _ := newTestRun(t, path)
	run.inPlace = true
	run.journal = false
	if code := run.execute(); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if _, err := os.Stat(run.paths.JournalDB); !os.IsNotExist(err) {
		t.Error("journal was created with journaling off")
	}
}

func TestExecute_Check(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	bad := filepath.Join(dir, "bad.txt")
	writeFile(t, good, fixed)
	writeFile(t, bad, broken)

	run, stdout, _ := newTestRun(t, good, bad)
	run.check = true
	if code := run.execute(); code != exitFail {
		t.Errorf("exit code = %d, want %d", code, exitFail)
	}
	out := stdout.String()
	if !strings.Contains(out, "would fix "+bad) || strings.Contains(out, good) {
		t.Errorf("stdout = %q", out)
	}
	if readFile(t, bad) != broken {
		t.Error("--check modified the file")
	}

	run, _, _ = newTestRun(t, good)
	run.check = true
	if code := run.execute(); code != exitOK {
		t.Errorf("clean file exit code = %d", code)
	}
}

func TestExecute_Diff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.txt")
	writeFile(t, path, broken)

	run, stdout, _ := newTestRun(t, path)
	run.diff = true
	if code := run.execute(); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	out := stdout.String()
	if !strings.Contains(out, "--- "+path) || !strings.Contains(out, "| a    |") {
		t.Errorf("diff output = %q", out)
	}
	if readFile(t, path) != broken {
		t.Error("--diff modified the file")
	}
}

func TestExecute_MissingFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	writeFile(t, good, broken)

	run, stdout, stderr := newTestRun(t, filepath.Join(dir, "missing.txt"), good)
	if code := run.execute(); code != exitFail {
		t.Errorf("exit code = %d, want %d", code, exitFail)
	}
	if !strings.Contains(stderr.String(), "missing.txt") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if stdout.String() != fixed {
		t.Errorf("remaining files should still be processed, stdout = %q", stdout.String())
	}
}

func TestExecute_MarkdownByExtension(t *testing.T) {
	dir := t.TempDir()
	doc := "# Data\n\n| Name  | Age |\n|-------|-----|\n| Alice | 30  |\n\n```\n" + broken + "```\n"
	md := filepath.Join(dir, "doc.md")
	writeFile(t, md, doc)

	run, stdout, _ := newTestRun(t, md)
	if code := run.execute(); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	want := "# Data\n\n| Name  | Age |\n|-------|-----|\n| Alice | 30  |\n\n```\n" + fixed + "```\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestParseLineRange(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"42", "42", false},
		{"10:20", "10-20", false},
		{"10,20", "10-20", false},
		{"10-20", "10-20", false},
		{"5,7-8,12", "5,7-8,12", false},
		{"1,2,3", "1-3", false},
		{"20,10", "", true},
		{"0", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLineRange(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLineRange(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("parseLineRange(%q) = %q, want %q", tt.in, got.String(), tt.want)
			}
		})
	}
}

func TestReorderArgs(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Bool("i", false, "")
	fs.Bool("check", false, "")
	fs.String("L", "", "")
	fs.Int("drift", 0, "")

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "flags after files",
			in:   []string{"a.md", "-i", "-L", "3:9", "b.md"},
			want: []string{"-i", "-L", "3:9", "--", "a.md", "b.md"},
		},
		{
			name: "equals form",
			in:   []string{"a.md", "--drift=12"},
			want: []string{"--drift=12", "--", "a.md"},
		},
		{
			name: "double dash keeps dashed names positional",
			in:   []string{"--check", "--", "-weird.md"},
			want: []string{"--check", "--", "-weird.md"},
		},
		{
			name: "stdin dash is positional",
			in:   []string{"-", "--check"},
			want: []string{"--check", "--", "-"},
		},
		{
			name: "no positionals",
			in:   []string{"--check"},
			want: []string{"--check"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reorderArgs(fs, tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("reorderArgs(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFlagOverrides(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var markdown, normalize bool
	fs.BoolVar(&markdown, "m", false, "")
	fs.BoolVar(&markdown, "markdown", false, "")
	fs.BoolVar(&normalize, "n", false, "")
	if err := fs.Parse([]string{"--markdown"}); err != nil {
		t.Fatal(err)
	}

	base := config.Defaults()
	base.Normalize = true
	cfg := config.Merge(base, flagOverrides(fs, markdown, normalize, 0, 4))
	if !cfg.Markdown {
		t.Error("--markdown not applied")
	}
	if !cfg.Normalize {
		t.Error("unset -n overrode the config")
	}
	if cfg.TabWidth != 4 || cfg.DriftRadius != base.DriftRadius {
		t.Errorf("TabWidth/DriftRadius = %d/%d", cfg.TabWidth, cfg.DriftRadius)
	}
}
