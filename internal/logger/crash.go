// Package logger builds the application's slog logger and records crash
// reports when a command panics.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// MaxCrashLogs is the number of crash logs kept on disk.
const MaxCrashLogs = 10

const crashTimeFormat = "20060102_150405.000000000"

// CrashLog is one crash report.
type CrashLog struct {
	Timestamp  time.Time
	Version    string
	Command    string
	PanicValue string
	StackTrace string
	LastInput  string
	GoVersion  string
	OS         string
	Arch       string
}

// CrashReporter remembers what the CLI was doing and writes a report when a
// panic reaches the top of a command.
type CrashReporter struct {
	fs      afero.Fs
	dir     string
	version string

	mu        sync.RWMutex
	command   string
	lastInput string

	stderr io.Writer
	now    func() time.Time
	exit   func(int)
}

// NewCrashReporter creates a reporter writing into dir on fs.
func NewCrashReporter(fs afero.Fs, dir, version string) *CrashReporter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &CrashReporter{
		fs:      fs,
		dir:     dir,
		version: version,
		stderr:  os.Stderr,
		now:     time.Now,
		exit:    os.Exit,
	}
}

// SetCommand records the command being executed.
func (c *CrashReporter) SetCommand(cmd string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.command = cmd
}

// SetLastInput records the last writing instruction.
func (c *CrashReporter) SetLastInput(input string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastInput = truncateForLog(strings.TrimSpace(input), 500)
}

func truncateForLog(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "... [truncated]"
}

// Recover must be deferred directly: defer crash.Recover().
func (c *CrashReporter) Recover() {
	r := recover()
	if r == nil {
		return
	}

	path, err := c.Report(r, debug.Stack())
	if err != nil {
		fmt.Fprintf(c.stderr, "\n[CRASH] failed to write crash log: %v\n", err)
		fmt.Fprintf(c.stderr, "[CRASH] panic: %v\n%s\n", r, debug.Stack())
	} else {
		fmt.Fprintf(c.stderr, "\nagentwriting crashed unexpectedly.\nA crash log has been saved to:\n  %s\n\n", path)
	}
	c.exit(1)
}

// Report writes a crash log for panicValue and returns its path. Older logs
// beyond MaxCrashLogs are removed.
func (c *CrashReporter) Report(panicValue any, stack []byte) (string, error) {
	c.mu.RLock()
	log := CrashLog{
		Timestamp:  c.now(),
		Version:    c.version,
		Command:    c.command,
		PanicValue: fmt.Sprintf("%v", panicValue),
		StackTrace: string(stack),
		LastInput:  c.lastInput,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
	}
	c.mu.RUnlock()

	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash log dir: %w", err)
	}
	if err := c.prune(MaxCrashLogs - 1); err != nil {
		fmt.Fprintf(c.stderr, "[WARN] failed to clean old crash logs: %v\n", err)
	}

	path := filepath.Join(c.dir, fmt.Sprintf("crash_%s.log", log.Timestamp.Format(crashTimeFormat)))
	if err := afero.WriteFile(c.fs, path, []byte(formatCrashLog(log)), 0o644); err != nil {
		return "", fmt.Errorf("write crash log: %w", err)
	}
	return path, nil
}

// List returns crash log paths, oldest first.
func (c *CrashReporter) List() ([]string, error) {
	entries, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "crash_") && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, filepath.Join(c.dir, e.Name()))
		}
	}
	sort.Strings(logs)
	return logs, nil
}

// prune keeps at most keep crash logs, removing the oldest.
func (c *CrashReporter) prune(keep int) error {
	logs, err := c.List()
	if err != nil || len(logs) <= keep {
		return err
	}
	for _, path := range logs[:len(logs)-keep] {
		if err := c.fs.Remove(path); err != nil {
			return fmt.Errorf("remove old crash log %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func formatCrashLog(log CrashLog) string {
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)

	var sb strings.Builder
	sb.WriteString(rule + "\nAGENTWRITING CRASH LOG\n" + rule + "\n\n")
	fmt.Fprintf(&sb, "Timestamp: %s\n", log.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Version:   %s\n", log.Version)
	fmt.Fprintf(&sb, "Command:   %s\n", log.Command)
	fmt.Fprintf(&sb, "Go:        %s\n", log.GoVersion)
	fmt.Fprintf(&sb, "OS/Arch:   %s/%s\n", log.OS, log.Arch)

	section := func(title, body string) {
		sb.WriteString("\n" + thin + "\n" + title + "\n" + thin + "\n")
		sb.WriteString(strings.TrimRight(body, "\n") + "\n")
	}
	section("PANIC VALUE", log.PanicValue)
	section("STACK TRACE", log.StackTrace)
	if log.LastInput != "" {
		section("LAST INSTRUCTION", log.LastInput)
	}

	sb.WriteString("\n" + rule + "\nEND OF CRASH LOG\n" + rule + "\n")
	return sb.String()
}
