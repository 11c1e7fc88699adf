package logger

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func newTestReporter(t *testing.T) (*CrashReporter, afero.Fs, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	c := NewCrashReporter(fs, "/home/u/.agentwriting/logs", "1.0.0-test")
	var stderr bytes.Buffer
	c.stderr = &stderr

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		ts = ts.Add(time.Second)
		return ts
	}
	return c, fs, &stderr
}

func TestCrashReporter_Report(t *testing.T) {
	c, fs, _ := newTestReporter(t)
	c.SetCommand("write")
	c.SetLastInput("  Write a story about a lighthouse  ")

	path, err := c.Report("test panic", []byte("goroutine 1 [running]:\nmain.main()"))
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !strings.HasPrefix(path, "/home/u/.agentwriting/logs/crash_20240501_120001") {
		t.Errorf("unexpected crash log path %q", path)
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read crash log: %v", err)
	}
	for _, want := range []string{
		"AGENTWRITING CRASH LOG",
		"Version:   1.0.0-test",
		"Command:   write",
		"test panic",
		"main.main()",
		"LAST INSTRUCTION\n" + strings.Repeat("-", 80) + "\nWrite a story about a lighthouse\n",
	} {
		if !strings.Contains(string(content), want) {
			t.Errorf("crash log missing %q:\n%s", want, content)
		}
	}
}

func TestCrashReporter_LastInputTruncated(t *testing.T) {
	c, _, _ := newTestReporter(t)
	c.SetLastInput(strings.Repeat("a", 3000))

	if len(c.lastInput) > 600 {
		t.Errorf("expected input to be truncated, got length %d", len(c.lastInput))
	}
	if !strings.HasSuffix(c.lastInput, "[truncated]") {
		t.Error("expected truncated input to end with [truncated]")
	}
}

func TestCrashReporter_PrunesOldLogs(t *testing.T) {
	c, _, _ := newTestReporter(t)

	for i := range MaxCrashLogs + 5 {
		if _, err := c.Report(fmt.Sprintf("panic %d", i), nil); err != nil {
			t.Fatalf("Report(%d) error = %v", i, err)
		}
	}

	logs, err := c.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(logs) != MaxCrashLogs {
		t.Fatalf("expected %d logs, got %d", MaxCrashLogs, len(logs))
	}
	if !strings.Contains(logs[0], "120006") {
		t.Errorf("oldest kept log = %s, want the sixth report", logs[0])
	}
}

func TestCrashReporter_RecoverWritesAndExits(t *testing.T) {
	c, _, stderr := newTestReporter(t)
	exitCode := -1
	c.exit = func(code int) { exitCode = code }

	func() {
		defer c.Recover()
		panic("boom")
	}()

	if exitCode != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode)
	}
	if !strings.Contains(stderr.String(), "crash log has been saved") {
		t.Errorf("stderr = %q, want crash notice", stderr.String())
	}
	logs, _ := c.List()
	if len(logs) != 1 {
		t.Fatalf("expected 1 crash log, got %d", len(logs))
	}
}

func TestCrashReporter_RecoverNoPanic(t *testing.T) {
	c, _, _ := newTestReporter(t)
	c.exit = func(int) { t.Fatal("exit called without a panic") }

	func() {
		defer c.Recover()
	}()

	logs, err := c.List()
	if err != nil || len(logs) != 0 {
		t.Fatalf("List() = %v, %v; want no logs", logs, err)
	}
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record written without verbose: %q", buf.String())
	}

	New(&buf, true).Debug("state transition", "to", "writing")
	if !strings.Contains(buf.String(), "to=writing") {
		t.Fatalf("expected debug record, got %q", buf.String())
	}

	Discard().Error("dropped")
}
