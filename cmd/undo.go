package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jensroland/fix-ascii-art/internal/format"
	"github.com/jensroland/fix-ascii-art/internal/journal"
	"github.com/jensroland/fix-ascii-art/internal/record"
)

// RunUndo handles the "undo" subcommand.
func RunUndo(args []string) {
	fs := flag.NewFlagSet("undo", flag.ExitOnError)
	runID := fs.String("run", "", "Undo this run instead of the last one")
	force := fs.Bool("force", false, "Restore even if the file changed since the fix")
	fs.Parse(reorderArgs(fs, args))

	j, ok := openJournal()
	if !ok {
		return
	}
	defer j.Close()

	code, err := cmdUndo(j, cwd(), *runID, fs.Arg(0), *force)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFail)
	}
	os.Exit(code)
}

// cmdUndo restores the newest fix of file, or every fix of a run (the last
// one by default), newest first. Entries whose file changed since the fix are
// skipped unless force is set; skips make the exit code non-zero.
func cmdUndo(j *journal.Journal, root, runID, file string, force bool) (int, error) {
	var entries []*record.Entry
	switch {
	case file != "":
		abs, err := filepath.Abs(file)
		if err != nil {
			return exitFail, err
		}
		e, err := j.LatestForFile(abs)
		if err != nil {
			return exitFail, err
		}
		entries = []*record.Entry{e}
	default:
		if runID == "" {
			var err error
			if runID, err = j.LastRun(); err != nil {
				return exitFail, err
			}
		}
		var err error
		if entries, err = j.EntriesForRun(runID); err != nil {
			return exitFail, err
		}
	}

	code := exitOK
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		name := record.RelativizePath(e.File, root)
		err := j.Restore(e, force)
		switch {
		case err == nil:
			fmt.Printf("%srestored%s %s\n", format.Green, format.Reset, name)
		case errors.Is(err, journal.ErrModified):
			fmt.Printf("%sskipped%s %s: changed since it was fixed (use --force)\n", format.Yellow, format.Reset, name)
			code = exitFail
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			code = exitFail
		}
	}
	return code, nil
}
