package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jensroland/fix-ascii-art/internal/config"
	"github.com/jensroland/fix-ascii-art/internal/debug"
	"github.com/jensroland/fix-ascii-art/internal/fixfile"
	"github.com/jensroland/fix-ascii-art/internal/format"
	"github.com/jensroland/fix-ascii-art/internal/journal"
	"github.com/jensroland/fix-ascii-art/internal/lineset"
	"github.com/jensroland/fix-ascii-art/internal/record"
	"github.com/jensroland/fix-ascii-art/internal/statedir"
)

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

const usage = `fix-ascii-art: repair misaligned right borders in ASCII and Unicode box diagrams.

Usage:
    fix-ascii-art [flags] [file...]          # fix files (stdin when none) to stdout
    fix-ascii-art -i <file...>               # fix files in place
    fix-ascii-art --check <file...>          # exit 1 if any file needs fixing
    fix-ascii-art --diff <file...>           # preview changes side by side
    fix-ascii-art -L <start>:<end> <file>    # only lines start..end (also 5,7-8,12)
    fix-ascii-art --log [--hook|--watch]     # show tool logs

Flags:
    -i, --in-place      rewrite files instead of printing them
    -m, --markdown      only fix diagrams in markdown code blocks and body text
    -n, --normalize     convert Unicode box characters to ASCII first
    --drift N           how far a border may have drifted (default 40)
    --tab-width N       tab stop width (default 8)
    --config FILE       config file (default: nearest .fix-ascii-art.yaml)
    --no-journal        do not record in-place fixes for undo
    -v                  verbose diagnostics on stderr
    --version           print the version

Subcommands:
    fix-ascii-art undo [--run ID] [--force] [file]
    fix-ascii-art history [--json] [-n N] [id]
    fix-ascii-art stats [--json]
    fix-ascii-art watch [-m] [-n] [dir]
    fix-ascii-art enable [--global]
    fix-ascii-art disable [--global]
    fix-ascii-art hook <pre-commit|post-tool-use>
`

// fixRun holds one invocation of the default fix mode.
type fixRun struct {
	settings fixfile.Settings
	files    []string
	inPlace  bool
	check    bool
	diff     bool
	journal  bool
	paths    statedir.Paths
	logger   *slog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// RunFix handles the default mode (no subcommand).
func RunFix(args []string, version string) {
	fs := flag.NewFlagSet("fix-ascii-art", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	var inPlace, markdown, normalize bool
	fs.BoolVar(&inPlace, "i", false, "Rewrite files in place")
	fs.BoolVar(&inPlace, "in-place", false, "Rewrite files in place")
	fs.BoolVar(&markdown, "m", false, "Markdown mode")
	fs.BoolVar(&markdown, "markdown", false, "Markdown mode")
	fs.BoolVar(&normalize, "n", false, "Normalize Unicode box characters to ASCII")
	fs.BoolVar(&normalize, "normalize", false, "Normalize Unicode box characters to ASCII")
	line := fs.String("L", "", "Line number or range (42, 10:20, 10,20 or 5,7-8,12)")
	check := fs.Bool("check", false, "Exit 1 when any file would change")
	showDiff := fs.Bool("diff", false, "Show a side-by-side preview instead of output")
	drift := fs.Int("drift", 0, "Drift radius in display columns")
	tabWidth := fs.Int("tab-width", 0, "Tab stop width")
	configPath := fs.String("config", "", "Config file")
	noJournal := fs.Bool("no-journal", false, "Do not journal in-place fixes")
	verbose := fs.Bool("v", false, "Verbose diagnostics")
	showLog := fs.Bool("log", false, "Show tool logs")
	hookLog := fs.Bool("hook", false, "With --log: show hook log")
	watchLog := fs.Bool("watch", false, "With --log: show watch log")
	showVersion := fs.Bool("version", false, "Print the version")

	// Go's flag package stops at the first non-flag arg.
	// Reorder so flags come before positional args, allowing
	// both "fix-ascii-art -i file" and "fix-ascii-art file -i".
	if err := fs.Parse(reorderArgs(fs, args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		os.Exit(exitUsage)
	}

	if *showVersion {
		fmt.Println("fix-ascii-art", version)
		return
	}

	paths, err := statedir.Resolve(os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFail)
	}

	if *showLog {
		logName := debug.FixLog
		switch {
		case *hookLog:
			logName = debug.HookLog
		case *watchLog:
			logName = debug.WatchLog
		}
		cmdLog(paths, logName)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFail)
	}
	cfg = config.Merge(cfg, flagOverrides(fs, markdown, normalize, *drift, *tabWidth))
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitUsage)
	}

	restrict, err := parseLineRange(*line)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: -L:", err)
		os.Exit(exitUsage)
	}

	files := fs.Args()
	if inPlace && len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: --in-place needs at least one file")
		os.Exit(exitUsage)
	}
	if len(files) == 0 && format.IsTerminal(os.Stdin) {
		fs.Usage()
		os.Exit(exitUsage)
	}

	run := &fixRun{
		settings: fixfile.Settings{Config: cfg, Restrict: restrict},
		files:    files,
		inPlace:  inPlace && !*check && !*showDiff,
		check:    *check,
		diff:     *showDiff,
		journal:  cfg.Journal && !*noJournal,
		paths:    paths,
		logger:   newLogger(os.Stderr, *verbose),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	os.Exit(run.execute())
}

// flagOverrides turns the flags the user actually set into config overrides.
func flagOverrides(fs *flag.FlagSet, markdown, normalize bool, drift, tabWidth int) config.Overrides {
	var over config.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "m", "markdown":
			over.Markdown = &markdown
		case "n", "normalize":
			over.Normalize = &normalize
		}
	})
	over.DriftRadius = drift
	over.TabWidth = tabWidth
	return over
}

// fileResult is one processed input, kept in argument order.
type fileResult struct {
	name string
	res  fixfile.Result
	err  error
}

func (r *fixRun) execute() int {
	if len(r.files) == 0 || (len(r.files) == 1 && r.files[0] == "-") {
		return r.executeStdin()
	}

	var j *journal.Journal
	runID := uuid.New().String()
	if r.inPlace && r.journal {
		var err error
		j, err = journal.Open(r.paths.JournalDB)
		if err != nil {
			r.logger.Warn("journal unavailable, fixes will not be undoable", "err", err)
		} else {
			defer j.Close()
		}
	}
	w := &fixfile.Writer{RunID: runID, Source: record.SourceCLI, Journal: j, Logger: r.logger}

	results := make([]fileResult, len(r.files))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, name := range r.files {
		g.Go(func() error {
			s := r.settings
			s.Markdown = s.Config.Markdown || config.IsMarkdown(name)
			res, err := w.File(name, s, !r.inPlace)
			results[i] = fileResult{name: name, res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	code := exitOK
	var fixed []map[string]interface{}
	for _, fr := range results {
		if fr.err != nil {
			fmt.Fprintf(r.stderr, "Error: %v\n", fr.err)
			code = exitFail
			continue
		}
		if c := r.report(fr.name, fr.res); c != exitOK {
			code = c
		}
		if r.inPlace && fr.res.Changed() {
			fixed = append(fixed, map[string]interface{}{
				"file":    fr.name,
				"lines":   len(fr.res.Report.Lines),
				"regions": fr.res.Report.Regions,
			})
		}
	}

	if len(fixed) > 0 {
		debug.Log(r.paths.LogDir, debug.FixLog, fmt.Sprintf("Run %s fixed %d file(s)", runID, len(fixed)), fixed)
	}
	return code
}

// report prints one file's outcome in the selected mode and returns its
// exit code.
func (r *fixRun) report(name string, res fixfile.Result) int {
	switch {
	case r.check:
		if res.Changed() {
			fmt.Fprintln(r.stdout, format.FormatResult(name, res.Report, true))
			return exitFail
		}
	case r.diff:
		if res.Changed() {
			fmt.Fprintf(r.stdout, "%s--- %s%s\n", format.Bold, name, format.Reset)
			fmt.Fprintln(r.stdout, format.FormatSideBySideDiff(res.Before, res.After, r.settings.Config.TabWidth))
		}
	case r.inPlace:
		if res.Changed() {
			fmt.Fprintln(r.stdout, format.FormatResult(name, res.Report, false))
		}
	default:
		fmt.Fprint(r.stdout, res.After)
	}
	return exitOK
}

func (r *fixRun) executeStdin() int {
	raw, err := io.ReadAll(r.stdin)
	if err != nil {
		fmt.Fprintf(r.stderr, "Error: read stdin: %v\n", err)
		return exitFail
	}
	before := string(raw)
	s := r.settings
	s.Markdown = s.Config.Markdown
	after, rep := fixfile.Text(before, s)
	r.logger.Debug("fixed", "file", "<stdin>", "regions", rep.Regions, "lines", len(rep.Lines))
	return r.report("<stdin>", fixfile.Result{Path: "-", Before: before, After: after, Report: rep})
}

// newLogger returns a text slog logger on w: Debug with verbose, Warn
// otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves the config for the working directory.
func loadConfig(explicit string) (config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.Config{}, err
	}
	cfg, _, err := config.Resolve(explicit, cwd, os.Environ())
	return cfg, err
}

// parseLineRange accepts "42", "10:20", "10,20" and lineset notation like
// "5,7-8,12". Two plain numbers joined by a comma are a range.
func parseLineRange(line string) (lineset.LineSet, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return lineset.LineSet{}, nil
	}
	if a, b, ok := strings.Cut(line, ","); ok && !strings.ContainsAny(b, ",-:") {
		start, err1 := strconv.Atoi(strings.TrimSpace(a))
		end, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 == nil && err2 == nil {
			if start <= 0 || end < start {
				return lineset.LineSet{}, fmt.Errorf("invalid range %d,%d", start, end)
			}
			return lineset.FromRange(start, end), nil
		}
	}
	return lineset.FromString(line)
}

// reorderArgs moves flags before positional args so flag.Parse works
// regardless of argument order (e.g. "file -L 42" → "-L 42 file").
// Everything after "--" stays positional.
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if strings.Contains(a, "=") || isBoolFlag(fs, a) {
			continue
		}
		if i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	if len(positional) > 0 {
		flags = append(flags, "--")
	}
	return append(flags, positional...)
}

func isBoolFlag(fs *flag.FlagSet, arg string) bool {
	f := fs.Lookup(strings.TrimLeft(arg, "-"))
	if f == nil {
		return true
	}
	bf, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && bf.IsBoolFlag()
}
