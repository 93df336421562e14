package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jensroland/fix-ascii-art/internal/git"
)

const (
	toolName       = "fix-ascii-art"
	preCommitHook  = "pre-commit"
	preCommitMark  = "# fix-ascii-art: align diagrams"
	toolUseMatcher = "Edit|Write|MultiEdit"
)

// RunEnable handles the "enable" subcommand.
func RunEnable(args []string) {
	fs := flag.NewFlagSet("enable", flag.ExitOnError)
	global := fs.Bool("global", false, "Also configure the agent PostToolUse hook globally")
	fs.Parse(args)

	binaryPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not determine binary path: %v\n", err)
		os.Exit(exitFail)
	}

	if *global {
		settingsFile := agentSettingsFile()
		if err := enableGlobal(settingsFile, binaryPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing settings: %v\n", err)
			os.Exit(exitFail)
		}
		fmt.Printf("  ✓ PostToolUse hook configured in %s\n", settingsFile)
	}

	root, err := git.RevParseTopLevel(cwd())
	if err != nil {
		if *global {
			return
		}
		fmt.Fprintln(os.Stderr, "Error: not inside a git repository")
		os.Exit(exitFail)
	}
	hooksDir, err := git.HooksDir(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFail)
	}

	status, err := installGitHook(hooksDir, binaryPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFail)
	}
	fmt.Printf("  ✓ %s\n", status)
	fmt.Println()
	fmt.Println("  Ready! Staged diagrams are aligned on every commit.")
	fmt.Printf("  Set hook.mode: check in %s to block instead of fixing.\n", ".fix-ascii-art.yaml")
}

func agentSettingsFile() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".claude", "settings.json")
}

// enableGlobal adds a PostToolUse entry running the post-tool-use hook,
// replacing any earlier fix-ascii-art entry and keeping everything else.
func enableGlobal(settingsFile, binaryPath string) error {
	if err := os.MkdirAll(filepath.Dir(settingsFile), 0o755); err != nil {
		return err
	}

	settings, err := readSettings(settingsFile)
	if err != nil {
		return err
	}
	hooks, _ := settings["hooks"].(map[string]interface{})
	if hooks == nil {
		hooks = map[string]interface{}{}
	}

	postTool := filterHookEntries(hooks, "PostToolUse", toolName)
	postTool = append(postTool, map[string]interface{}{
		"matcher": toolUseMatcher,
		"hooks": []interface{}{map[string]interface{}{
			"type":    "command",
			"command": binaryPath + " hook post-tool-use",
		}},
	})
	hooks["PostToolUse"] = postTool
	settings["hooks"] = hooks

	return writeSettings(settingsFile, settings)
}

func readSettings(settingsFile string) (map[string]interface{}, error) {
	var settings map[string]interface{}
	data, err := os.ReadFile(settingsFile)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("%s: %w", settingsFile, err)
		}
	}
	if settings == nil {
		settings = map[string]interface{}{}
	}
	return settings, nil
}

func writeSettings(settingsFile string, settings map[string]interface{}) error {
	b, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(settingsFile, append(b, '\n'), 0o644)
}

func filterHookEntries(hooks map[string]interface{}, key, exclude string) []interface{} {
	existing, _ := hooks[key].([]interface{})
	var filtered []interface{}
	for _, entry := range existing {
		e, ok := entry.(map[string]interface{})
		if !ok {
			filtered = append(filtered, entry)
			continue
		}
		hooksList, _ := e["hooks"].([]interface{})
		hasExcluded := false
		for _, h := range hooksList {
			hm, ok := h.(map[string]interface{})
			if ok {
				cmd, _ := hm["command"].(string)
				if strings.Contains(cmd, exclude) {
					hasExcluded = true
					break
				}
			}
		}
		if !hasExcluded {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// installGitHook adds the fix-ascii-art section to the pre-commit hook in
// hooksDir, creating the hook if needed. It returns a status line.
func installGitHook(hooksDir, binaryPath string) (string, error) {
	preCommit := filepath.Join(hooksDir, preCommitHook)
	section := fmt.Sprintf("\n%s\n%q hook pre-commit || exit 1\n", preCommitMark, binaryPath)

	data, err := os.ReadFile(preCommit)
	switch {
	case err == nil && strings.Contains(string(data), preCommitMark):
		return "Pre-commit hook already installed", nil
	case err == nil:
		f, err := os.OpenFile(preCommit, os.O_APPEND|os.O_WRONLY, 0o755)
		if err != nil {
			return "", err
		}
		defer f.Close()
		if _, err := f.WriteString(section); err != nil {
			return "", err
		}
		return "Appended to existing pre-commit hook", nil
	case os.IsNotExist(err):
		if err := os.MkdirAll(hooksDir, 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(preCommit, []byte("#!/bin/sh\n"+section), 0o755); err != nil {
			return "", err
		}
		return "Installed pre-commit hook", nil
	default:
		return "", err
	}
}
