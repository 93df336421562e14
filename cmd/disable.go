package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jensroland/fix-ascii-art/internal/git"
)

// RunDisable handles the "disable" subcommand.
func RunDisable(args []string) {
	fs := flag.NewFlagSet("disable", flag.ExitOnError)
	global := fs.Bool("global", false, "Also remove the agent PostToolUse hook")
	fs.Parse(args)

	var removed []string

	if *global {
		settingsFile := agentSettingsFile()
		ok, err := disableGlobal(settingsFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(exitFail)
		}
		if ok {
			removed = append(removed, "PostToolUse hook from "+settingsFile)
		}
	}

	if root, err := git.RevParseTopLevel(cwd()); err == nil {
		hooksDir, err := git.HooksDir(root)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(exitFail)
		}
		cleanGitHook(hooksDir, preCommitHook, preCommitMark, &removed)
	} else if !*global {
		fmt.Fprintln(os.Stderr, "Error: not inside a git repository")
		os.Exit(exitFail)
	}

	if len(removed) == 0 {
		fmt.Println("fix-ascii-art hooks are not installed here.")
		return
	}
	for _, item := range removed {
		fmt.Printf("  Removed %s\n", item)
	}
	fmt.Println()
	fmt.Println("Note: the fix journal is kept; 'fix-ascii-art undo' still works.")
}

// disableGlobal removes fix-ascii-art PostToolUse entries from the agent
// settings. It reports whether anything was removed.
func disableGlobal(settingsFile string) (bool, error) {
	if _, err := os.Stat(settingsFile); os.IsNotExist(err) {
		return false, nil
	}
	settings, err := readSettings(settingsFile)
	if err != nil {
		return false, err
	}
	hooks, _ := settings["hooks"].(map[string]interface{})
	if hooks == nil {
		return false, nil
	}
	before, _ := hooks["PostToolUse"].([]interface{})
	after := filterHookEntries(hooks, "PostToolUse", toolName)
	if len(after) == len(before) {
		return false, nil
	}
	if len(after) == 0 {
		delete(hooks, "PostToolUse")
	} else {
		hooks["PostToolUse"] = after
	}
	return true, writeSettings(settingsFile, settings)
}

// cleanGitHook removes the fix-ascii-art section from a git hook file: the
// marker line and the lines after it up to the next blank line.
func cleanGitHook(hooksDir, hookName, marker string, removed *[]string) {
	hookFile := filepath.Join(hooksDir, hookName)
	data, err := os.ReadFile(hookFile)
	if err != nil {
		return
	}
	content := string(data)
	if !strings.Contains(content, marker) {
		return
	}

	lines := strings.Split(content, "\n")
	var cleaned []string
	skip := false
	for _, line := range lines {
		if strings.Contains(line, marker) {
			skip = true
			// Remove preceding blank line
			if len(cleaned) > 0 && strings.TrimSpace(cleaned[len(cleaned)-1]) == "" {
				cleaned = cleaned[:len(cleaned)-1]
			}
			continue
		}
		if skip {
			if strings.TrimSpace(line) != "" {
				continue
			}
			skip = false
		}
		cleaned = append(cleaned, line)
	}

	remaining := strings.TrimSpace(strings.Join(cleaned, "\n"))
	if remaining == "" || remaining == "#!/bin/sh" || remaining == "#!/usr/bin/env bash" {
		_ = os.Remove(hookFile)
		*removed = append(*removed, fmt.Sprintf("%s hook (deleted)", hookName))
	} else {
		_ = os.WriteFile(hookFile, []byte(strings.Join(cleaned, "\n")), 0o755)
		*removed = append(*removed, fmt.Sprintf("%s hook (cleaned)", hookName))
	}
}
