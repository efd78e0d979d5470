// Package logger provides a logger that writes to a timestamped log file under
// the installer's cache directory and, when verbose, to stderr as well.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const appDir = "meldmc-installer"

// Logger writes to a log file and optionally stderr.
type Logger struct {
	w    io.Writer
	file *os.File
}

// Dir returns the default base directory for installer logs.
func Dir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(base, appDir), nil
}

// New creates a logger writing to <baseDir>/logs/install-<ts>.log, and also
// to stderr when verbose is set.
func New(baseDir string, verbose bool) (*Logger, error) {
	logsDir := filepath.Join(baseDir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	ts := time.Now().Format("20060102-150405")
	logPath := filepath.Join(logsDir, fmt.Sprintf("install-%s.log", ts))

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	var w io.Writer = f
	if verbose {
		w = io.MultiWriter(os.Stderr, f)
	}
	return &Logger{w: w, file: f}, nil
}

// NewDiscard returns a logger that throws everything away (tests, or when no
// log dir can be created).
func NewDiscard() *Logger {
	return &Logger{w: io.Discard}
}

// LogPath returns the path of the current log file, or empty string if discarded.
func (l *Logger) LogPath() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Write implements io.Writer by forwarding to the underlying writer.
func (l *Logger) Write(p []byte) (n int, err error) {
	return l.w.Write(p)
}

// Printf writes a formatted line to the log.
func (l *Logger) Printf(format string, args ...any) {
	fmt.Fprintf(l.w, time.Now().Format("15:04:05")+" "+format+"\n", args...)
}

// Warnf writes a formatted line marked as a warning.
func (l *Logger) Warnf(format string, args ...any) {
	l.Printf("WARN "+format, args...)
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// LatestLogPath returns the path to the most recent install log in <baseDir>.
// Returns "" if no logs exist.
func LatestLogPath(baseDir string) string {
	logsDir := filepath.Join(baseDir, "logs")
	entries, err := os.ReadDir(logsDir)
	if err != nil || len(entries) == 0 {
		return ""
	}
	// ReadDir returns sorted by name; install-<ts> logs sort chronologically.
	latest := ""
	for _, e := range entries {
		if !e.IsDir() {
			latest = filepath.Join(logsDir, e.Name())
		}
	}
	return latest
}
