package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jensroland/fix-ascii-art/internal/debug"
	"github.com/jensroland/fix-ascii-art/internal/fixfile"
	"github.com/jensroland/fix-ascii-art/internal/record"
)

// HandlePostToolUse processes an agent PostToolUse payload from r. Files the
// tool wrote that match the configured extensions are fixed in place.
// Problems are logged; the returned error is for the caller's log only.
func HandlePostToolUse(r io.Reader, env Env) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		debug.Log(env.LogDir, debug.HookLog, fmt.Sprintf("Failed to read stdin: %v", err), nil)
		return nil
	}

	debug.Log(env.LogDir, debug.HookLog, "Raw stdin received", map[string]interface{}{
		"raw_length":  len(raw),
		"raw_preview": string(raw[:min(len(raw), 3000)]),
	})

	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		debug.Log(env.LogDir, debug.HookLog, fmt.Sprintf("Failed to parse JSON: %v", err), nil)
		return nil
	}

	toolName := getString(data, "tool_name")
	files := extractFiles(data)
	debug.Log(env.LogDir, debug.HookLog, "Parsed payload", map[string]interface{}{
		"tool_name": toolName,
		"files":     files,
	})

	w := &fixfile.Writer{RunID: env.RunID, Source: record.SourceToolUse, Journal: env.Journal}
	for _, path := range files {
		cfg, err := env.config(filepath.Dir(path))
		if err != nil {
			debug.Log(env.LogDir, debug.HookLog, fmt.Sprintf("Config error for %s: %v", path, err), nil)
			continue
		}
		if !cfg.Matches(path) {
			continue
		}

		res, err := w.File(path, fixfile.ForPath(cfg, path), false)
		if err != nil {
			debug.Log(env.LogDir, debug.HookLog, fmt.Sprintf("Fix failed for %s: %v", path, err), nil)
			continue
		}
		if res.Changed() {
			debug.Log(env.LogDir, debug.HookLog, fmt.Sprintf("Fixed %s", path), map[string]interface{}{
				"lines":   len(res.Report.Lines),
				"regions": res.Report.Regions,
			})
		}
	}
	return nil
}

// extractFiles returns the absolute paths a file-writing tool touched, in
// payload order without duplicates. Relative paths resolve against the
// payload's cwd.
func extractFiles(data map[string]interface{}) []string {
	switch getString(data, "tool_name") {
	case "Edit", "Write", "MultiEdit":
	default:
		return nil
	}

	cwd := getString(data, "cwd")
	toolInput := getMap(data, "tool_input")

	var files []string
	seen := map[string]bool{}
	add := func(p string) {
		if p == "" {
			return
		}
		if !filepath.IsAbs(p) && cwd != "" {
			p = filepath.Join(cwd, p)
		}
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	filePath := getString(toolInput, "file_path")
	if filePath == "" {
		filePath = getString(toolInput, "path")
	}
	add(filePath)

	for _, editRaw := range getArray(toolInput, "edits") {
		if edit, ok := editRaw.(map[string]interface{}); ok {
			add(getString(edit, "file_path"))
		}
	}
	return files
}

// Helper functions for safe map access.

func getString(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func getMap(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]interface{})
	return sub
}

func getArray(m map[string]interface{}, key string) []interface{} {
	if m == nil {
		return nil
	}
	arr, _ := m[key].([]interface{})
	return arr
}
