package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// initRepo creates a repository with one commit and returns its root.
func initRepo(t *testing.T) (string, func(args ...string) string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()

	run := func(args ...string) string {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test",
			"GIT_AUTHOR_EMAIL=test@test.com",
			"GIT_COMMITTER_NAME=Test",
			"GIT_COMMITTER_EMAIL=test@test.com",
		)
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
		return string(out)
	}

	run("init")
	run("config", "user.email", "test@test.com")
	run("config", "user.name", "Test")
	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("init\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "README")
	run("commit", "-m", "initial commit")
	return dir, run
}

func TestStagedFiles(t *testing.T) {
	dir, run := initRepo(t)

	files, err := StagedFiles(dir)
	if err != nil {
		t.Fatalf("StagedFiles returned error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected 0 staged files, got %v", files)
	}

	if err := os.MkdirAll(filepath.Join(dir, "docs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "docs", "arch.md"), []byte("+--+\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("changed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "docs/arch.md", "README")

	files, err = StagedFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"README", "docs/arch.md"}; !reflect.DeepEqual(files, want) {
		t.Errorf("StagedFiles = %v, want %v", files, want)
	}

	run("rm", "--cached", "-q", "README")
	files, _ = StagedFiles(dir)
	for _, f := range files {
		if f == "README" {
			t.Error("deleted file reported as staged")
		}
	}
}

func TestUnstagedFiles(t *testing.T) {
	dir, _ := initRepo(t)

	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("edited\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	files, err := UnstagedFiles(dir)
	if err != nil {
		t.Fatalf("UnstagedFiles returned error: %v", err)
	}
	if want := []string{"README"}; !reflect.DeepEqual(files, want) {
		t.Errorf("UnstagedFiles = %v, want %v", files, want)
	}
}

func TestStageFile(t *testing.T) {
	dir, run := initRepo(t)

	if err := os.WriteFile(filepath.Join(dir, "newfile.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := StageFile(dir, "newfile.txt"); err != nil {
		t.Fatalf("StageFile returned error: %v", err)
	}

	status := run("status", "--porcelain")
	if !strings.Contains(status, "A  newfile.txt") {
		t.Errorf("expected newfile.txt to be staged, got status: %s", status)
	}

	if err := StageFile(dir, "missing.txt"); err == nil {
		t.Error("expected error staging a missing file")
	}
}

func TestRevParseTopLevel(t *testing.T) {
	dir, _ := initRepo(t)
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := RevParseTopLevel(sub)
	if err != nil {
		t.Fatalf("RevParseTopLevel returned error: %v", err)
	}
	want, _ := filepath.EvalSymlinks(dir)
	if got, _ = filepath.EvalSymlinks(got); got != want {
		t.Errorf("RevParseTopLevel = %q, want %q", got, want)
	}
}

func TestHooksDir(t *testing.T) {
	dir, run := initRepo(t)

	got, err := HooksDir(dir)
	if err != nil {
		t.Fatalf("HooksDir returned error: %v", err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(dir, ".git", "hooks"))
	if g, _ := filepath.EvalSymlinks(got); g != want && got != filepath.Join(dir, ".git", "hooks") {
		t.Errorf("HooksDir = %q, want %q", got, want)
	}

	custom := filepath.Join(dir, "githooks")
	run("config", "core.hooksPath", custom)
	got, err = HooksDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != custom {
		t.Errorf("HooksDir with core.hooksPath = %q, want %q", got, custom)
	}
}
