package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/jensroland/fix-ascii-art/internal/format"
	"github.com/jensroland/fix-ascii-art/internal/journal"
)

// RunHistory handles the "history" subcommand.
func RunHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output entries as JSON")
	limit := fs.Int("n", 20, "Number of entries to list (0 for all)")
	fs.Parse(reorderArgs(fs, args))

	j, ok := openJournal()
	if !ok {
		return
	}
	defer j.Close()

	tabWidth := 0
	if cfg, err := loadConfig(""); err == nil {
		tabWidth = cfg.TabWidth
	}

	if err := cmdHistory(j, cwd(), fs.Arg(0), *limit, *jsonOutput, tabWidth); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFail)
	}
}

func cmdHistory(j *journal.Journal, root, id string, limit int, jsonOutput bool, tabWidth int) error {
	if id != "" {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", id)
		}
		e, err := j.Get(n)
		if err != nil {
			return err
		}
		if jsonOutput {
			b, _ := json.MarshalIndent(map[string]interface{}{
				"entry":  e,
				"before": e.Before,
				"after":  e.After,
			}, "", "  ")
			fmt.Println(string(b))
			return nil
		}
		fmt.Println(format.FormatEntryDetail(e, root, tabWidth))
		return nil
	}

	entries, err := j.List(limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		if entries == nil {
			fmt.Println("[]")
			return nil
		}
		b, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(b))
		return nil
	}
	if len(entries) == 0 {
		fmt.Println("No fixes recorded yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Println(format.FormatEntry(e, root))
		fmt.Println()
	}
	return nil
}
