package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jensroland/fix-ascii-art/internal/format"
	"github.com/jensroland/fix-ascii-art/internal/journal"
)

// RunStats handles the "stats" subcommand.
func RunStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output statistics as JSON")
	fs.Parse(args)

	j, ok := openJournal()
	if !ok {
		return
	}
	defer j.Close()

	if err := cmdStats(j, cwd(), *jsonOutput); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFail)
	}
}

func cmdStats(j *journal.Journal, root string, jsonOutput bool) error {
	s, err := j.Stats()
	if err != nil {
		return err
	}
	if jsonOutput {
		b, _ := json.MarshalIndent(s, "", "  ")
		fmt.Println(string(b))
		return nil
	}
	fmt.Print(format.FormatStats(s, root))
	return nil
}
