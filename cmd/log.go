package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jensroland/fix-ascii-art/internal/debug"
	"github.com/jensroland/fix-ascii-art/internal/format"
	"github.com/jensroland/fix-ascii-art/internal/statedir"
)

func cmdLog(paths statedir.Paths, logName string) {
	logFile := filepath.Join(paths.LogDir, logName)

	tail, err := debug.Tail(paths.LogDir, logName, 100)
	if err != nil {
		fmt.Printf("No log file at %s\n", logFile)
		return
	}

	fmt.Printf("%s--- %s (last %d lines) ---%s\n\n", format.Dim, logFile, len(tail), format.Reset)
	fmt.Println(strings.Join(tail, "\n"))
}
