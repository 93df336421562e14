package cmd

import (
	"fmt"
	"os"

	"github.com/jensroland/fix-ascii-art/internal/journal"
	"github.com/jensroland/fix-ascii-art/internal/statedir"
)

// openJournal opens the journal for reading. It reports false, after
// telling the user why, when there is nothing to read; errors exit.
func openJournal() (*journal.Journal, bool) {
	paths, err := statedir.Resolve(os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFail)
	}
	if _, err := os.Stat(paths.JournalDB); os.IsNotExist(err) {
		fmt.Println("No fixes recorded yet.")
		return nil, false
	}
	j, err := journal.Open(paths.JournalDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal at %s: %v\n", paths.JournalDB, err)
		os.Exit(exitFail)
	}
	return j, true
}

// cwd is the directory paths are shown relative to.
func cwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return dir
}
