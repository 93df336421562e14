package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLog(t *testing.T) {
	t.Run("writes_timestamp_and_message", func(t *testing.T) {
		logDir := t.TempDir()

		Log(logDir, "test.log", "fixed README.md", nil)

		logFile := filepath.Join(logDir, "test.log")
		data, err := os.ReadFile(logFile)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		content := string(data)

		if !strings.Contains(content, "fixed README.md") {
			t.Errorf("log should contain message, got: %s", content)
		}
		// Timestamp format: [2006-01-02T15:04:05]
		if !strings.Contains(content, "[") || !strings.Contains(content, "T") {
			t.Errorf("log should contain timestamp, got: %s", content)
		}
		// Should contain separator line
		if !strings.Contains(content, "====") {
			t.Errorf("log should contain separator, got: %s", content)
		}
	})

	t.Run("appends_json_when_data_non_nil", func(t *testing.T) {
		logDir := t.TempDir()

		Log(logDir, "test.log", "hook payload", map[string]string{"file_path": "docs/arch.md"})

		logFile := filepath.Join(logDir, "test.log")
		data, err := os.ReadFile(logFile)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		content := string(data)

		if !strings.Contains(content, `"file_path"`) || !strings.Contains(content, `"docs/arch.md"`) {
			t.Errorf("log should contain JSON data, got: %s", content)
		}
	})

	t.Run("no_json_block_when_data_nil", func(t *testing.T) {
		logDir := t.TempDir()

		Log(logDir, "test.log", "nil data", nil)

		logFile := filepath.Join(logDir, "test.log")
		data, err := os.ReadFile(logFile)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		content := string(data)

		// Should have the message but no JSON curly braces
		if !strings.Contains(content, "nil data") {
			t.Errorf("log should contain message, got: %s", content)
		}
		if strings.Contains(content, "{") {
			t.Errorf("log should not contain JSON block for nil data, got: %s", content)
		}
	})

	t.Run("appends_to_existing_file", func(t *testing.T) {
		logDir := t.TempDir()

		Log(logDir, "test.log", "first entry", nil)
		Log(logDir, "test.log", "second entry", nil)

		logFile := filepath.Join(logDir, "test.log")
		data, err := os.ReadFile(logFile)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		content := string(data)

		if !strings.Contains(content, "first entry") {
			t.Errorf("log should contain first entry, got: %s", content)
		}
		if !strings.Contains(content, "second entry") {
			t.Errorf("log should contain second entry, got: %s", content)
		}
	})
}

func TestLog_CreatesMissingDir(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "state", "logs")

	Log(logDir, HookLog, "created", nil)

	if _, err := os.Stat(filepath.Join(logDir, HookLog)); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestTail(t *testing.T) {
	logDir := t.TempDir()
	content := "one\ntwo\nthree\nfour\n"
	if err := os.WriteFile(filepath.Join(logDir, FixLog), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Tail(logDir, FixLog, 2)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if strings.Join(got, ",") != "three,four" {
		t.Errorf("Tail() = %v, want [three four]", got)
	}

	all, _ := Tail(logDir, FixLog, 0)
	if len(all) != 4 {
		t.Errorf("Tail(0) returned %d lines, want 4", len(all))
	}

	if _, err := Tail(logDir, WatchLog, 10); err == nil {
		t.Error("expected error for missing log")
	}
}
