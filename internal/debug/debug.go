package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Log names.
const (
	FixLog   = "fix.log"
	HookLog  = "hook.log"
	WatchLog = "watch.log"
)

// Log appends an entry to logDir/logName. Failures are swallowed: logging
// must never break a hook or a fix.
func Log(logDir, logName, message string, data interface{}) {
	_ = os.MkdirAll(logDir, 0o755)

	f, err := os.OpenFile(filepath.Join(logDir, logName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	ts := time.Now().Format("2006-01-02T15:04:05")
	fmt.Fprintf(f, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(f, "[%s] %s\n", ts, message)

	if data != nil {
		b, err := json.MarshalIndent(data, "", "  ")
		if err == nil {
			fmt.Fprintf(f, "%s\n", b)
		}
	}
}

// Tail returns at most the last n lines of logDir/logName.
func Tail(logDir, logName string, n int) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(logDir, logName))
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
