package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/jensroland/fix-ascii-art/internal/config"
	"github.com/jensroland/fix-ascii-art/internal/debug"
	"github.com/jensroland/fix-ascii-art/internal/fixfile"
	"github.com/jensroland/fix-ascii-art/internal/format"
	"github.com/jensroland/fix-ascii-art/internal/journal"
	"github.com/jensroland/fix-ascii-art/internal/record"
	"github.com/jensroland/fix-ascii-art/internal/statedir"
	"github.com/jensroland/fix-ascii-art/internal/watch"
)

// RunWatch handles the "watch" subcommand.
func RunWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	var markdown, normalize bool
	fs.BoolVar(&markdown, "m", false, "Markdown mode for every file")
	fs.BoolVar(&markdown, "markdown", false, "Markdown mode for every file")
	fs.BoolVar(&normalize, "n", false, "Normalize Unicode box characters to ASCII")
	fs.BoolVar(&normalize, "normalize", false, "Normalize Unicode box characters to ASCII")
	configPath := fs.String("config", "", "Config file")
	verbose := fs.Bool("v", false, "Verbose diagnostics")
	fs.Parse(reorderArgs(fs, args))

	dir := fs.Arg(0)
	if dir == "" {
		dir = "."
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFail)
	}
	cfg = config.Merge(cfg, flagOverrides(fs, markdown, normalize, 0, 0))

	paths, err := statedir.Resolve(os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFail)
	}

	w, err := watch.New(dir, cfg.Matches, watch.DefaultDelay)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFail)
	}
	defer w.Close()

	fw := &fixfile.Writer{RunID: uuid.New().String(), Source: record.SourceWatch, Logger: newLogger(os.Stderr, *verbose)}
	if cfg.Journal {
		if j, err := journal.Open(paths.JournalDB); err != nil {
			fw.Logger.Warn("journal unavailable, fixes will not be undoable", "err", err)
		} else {
			defer j.Close()
			fw.Journal = j
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s for %v (Ctrl-C to stop)\n", w.Root(), cfg.Extensions)
	cmdWatch(ctx, w, cfg, fw, paths.LogDir, os.Stdout)
}

// cmdWatch fixes every settled file the watcher reports until ctx is done
// or the watcher closes.
func cmdWatch(ctx context.Context, w *watch.Watcher, cfg config.Config, fw *fixfile.Writer, logDir string, out io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events():
			if !ok {
				return
			}
			res, err := fw.File(ev.Path, fixfile.ForPath(cfg, ev.Path), false)
			if err != nil {
				debug.Log(logDir, debug.WatchLog, fmt.Sprintf("Fix failed for %s: %v", ev.Path, err), nil)
				continue
			}
			if !res.Changed() {
				continue
			}
			name := record.RelativizePath(ev.Path, w.Root())
			fmt.Fprintln(out, format.FormatResult(name, res.Report, false))
			debug.Log(logDir, debug.WatchLog, fmt.Sprintf("Fixed %s", ev.Path), map[string]interface{}{
				"lines":   len(res.Report.Lines),
				"regions": res.Report.Regions,
			})
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			debug.Log(logDir, debug.WatchLog, fmt.Sprintf("Watcher error: %v", err), nil)
		}
	}
}
