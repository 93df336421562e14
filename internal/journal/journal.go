// Package journal keeps a SQLite log of every file fix-ascii-art rewrites,
// with enough content to undo it.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jensroland/fix-ascii-art/internal/lineset"
	"github.com/jensroland/fix-ascii-art/internal/record"
)

var (
	ErrNotFound = errors.New("journal entry not found")
	ErrModified = errors.New("file changed since it was fixed")
)

const schema = `
	CREATE TABLE IF NOT EXISTS fixes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		ts TEXT NOT NULL,
		source TEXT NOT NULL,
		file TEXT NOT NULL,
		lines TEXT,
		regions INTEGER NOT NULL DEFAULT 0,
		before_hash TEXT,
		after_hash TEXT,
		before_content TEXT NOT NULL,
		after_content TEXT NOT NULL,
		undone INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_fixes_run ON fixes(run_id);
	CREATE INDEX IF NOT EXISTS idx_fixes_file ON fixes(file);
	CREATE INDEX IF NOT EXISTS idx_fixes_ts ON fixes(ts);
`

// tsLayout is fixed-width so timestamps sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000Z"

const columns = `id, run_id, ts, source, file, lines, regions, before_hash, after_hash,
	before_content, after_content, undone`

type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// Writers from concurrent file workers queue on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores e and sets its ID. Entries are always stored as not undone.
func (j *Journal) Record(e *record.Entry) error {
	res, err := j.db.Exec(`
		INSERT INTO fixes
		(run_id, ts, source, file, lines, regions, before_hash, after_hash,
		 before_content, after_content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.RunID, e.Ts.UTC().Format(tsLayout), e.Source, e.File, e.Lines, e.Regions,
		e.BeforeHash, e.AfterHash, e.Before, e.After,
	)
	if err != nil {
		return fmt.Errorf("record fix for %s: %w", e.File, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Get returns the entry with the given id.
func (j *Journal) Get(id int64) (*record.Entry, error) {
	rows, err := j.db.Query("SELECT "+columns+" FROM fixes WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	entries, err := scanAll(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return entries[0], nil
}

// List returns the newest entries first. limit <= 0 means no limit.
func (j *Journal) List(limit int) ([]*record.Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query("SELECT "+columns+" FROM fixes ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	return scanAll(rows)
}

// LastRun returns the id of the most recent run that still has entries to
// undo.
func (j *Journal) LastRun() (string, error) {
	var runID string
	err := j.db.QueryRow("SELECT run_id FROM fixes WHERE undone = 0 ORDER BY id DESC LIMIT 1").Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no fixes to undo: %w", ErrNotFound)
	}
	return runID, err
}

// EntriesForRun returns a run's entries that have not been undone, oldest
// first.
func (j *Journal) EntriesForRun(runID string) ([]*record.Entry, error) {
	rows, err := j.db.Query("SELECT "+columns+" FROM fixes WHERE run_id = ? AND undone = 0 ORDER BY id", runID)
	if err != nil {
		return nil, err
	}
	entries, err := scanAll(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return entries, nil
}

// LatestForFile returns the newest entry for file that has not been undone.
func (j *Journal) LatestForFile(file string) (*record.Entry, error) {
	rows, err := j.db.Query("SELECT "+columns+" FROM fixes WHERE file = ? AND undone = 0 ORDER BY id DESC LIMIT 1", file)
	if err != nil {
		return nil, err
	}
	entries, err := scanAll(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", file, ErrNotFound)
	}
	return entries[0], nil
}

func (j *Journal) MarkUndone(id int64) error {
	res, err := j.db.Exec("UPDATE fixes SET undone = 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// Restore writes e's original content back to its file and marks the entry
// undone. Unless force is set, the file must still hold exactly what the fix
// produced.
func (j *Journal) Restore(e *record.Entry, force bool) error {
	info, err := os.Stat(e.File)
	if err != nil {
		return fmt.Errorf("restore %s: %w", e.File, err)
	}
	if !force {
		current, err := os.ReadFile(e.File)
		if err != nil {
			return fmt.Errorf("restore %s: %w", e.File, err)
		}
		if record.ContentHash(string(current)) != e.AfterHash {
			return fmt.Errorf("%s: %w", e.File, ErrModified)
		}
	}
	if err := os.WriteFile(e.File, []byte(e.Before), info.Mode().Perm()); err != nil {
		return fmt.Errorf("restore %s: %w", e.File, err)
	}
	e.Undone = true
	return j.MarkUndone(e.ID)
}

// Stats summarises the journal.
type Stats struct {
	Entries    int       `json:"entries"`
	Runs       int       `json:"runs"`
	Files      int       `json:"files"`
	LinesFixed int       `json:"lines_fixed"`
	Undone     int       `json:"undone"`
	BySource   []Count   `json:"by_source"`
	TopFiles   []Count   `json:"top_files"`
	First      time.Time `json:"first,omitempty"`
	Last       time.Time `json:"last,omitempty"`
}

type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (j *Journal) Stats() (Stats, error) {
	var s Stats
	var first, last sql.NullString
	err := j.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT run_id), COUNT(DISTINCT file),
		       COALESCE(SUM(undone), 0), MIN(ts), MAX(ts)
		FROM fixes
	`).Scan(&s.Entries, &s.Runs, &s.Files, &s.Undone, &first, &last)
	if err != nil {
		return s, fmt.Errorf("stats: %w", err)
	}
	s.First = parseTime(first.String)
	s.Last = parseTime(last.String)

	// Line counts live in the compact lines column, so sum them in Go.
	rows, err := j.db.Query("SELECT lines FROM fixes WHERE undone = 0")
	if err != nil {
		return s, err
	}
	for rows.Next() {
		var ls lineset.LineSet
		if err := rows.Scan(&ls); err != nil {
			rows.Close()
			return s, err
		}
		s.LinesFixed += ls.Len()
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return s, err
	}

	if s.BySource, err = j.counts("SELECT source, COUNT(*) FROM fixes GROUP BY source ORDER BY COUNT(*) DESC, source"); err != nil {
		return s, err
	}
	if s.TopFiles, err = j.counts("SELECT file, COUNT(*) FROM fixes GROUP BY file ORDER BY COUNT(*) DESC, file LIMIT 5"); err != nil {
		return s, err
	}
	return s, nil
}

func (j *Journal) counts(query string) ([]Count, error) {
	rows, err := j.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanAll(rows *sql.Rows) ([]*record.Entry, error) {
	defer rows.Close()
	var out []*record.Entry
	for rows.Next() {
		e := &record.Entry{}
		var ts string
		var undone int
		var beforeHash, afterHash sql.NullString
		err := rows.Scan(
			&e.ID, &e.RunID, &ts, &e.Source, &e.File, &e.Lines, &e.Regions,
			&beforeHash, &afterHash, &e.Before, &e.After, &undone,
		)
		if err != nil {
			return nil, err
		}
		e.Ts = parseTime(ts)
		e.BeforeHash = beforeHash.String
		e.AfterHash = afterHash.String
		e.Undone = undone != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(tsLayout, s)
	return t
}
