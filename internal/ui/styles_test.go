package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestStyles(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)

	out := StyleSuccess.Render("Test")
	assert.Contains(t, out, "Test")
	assert.NotEqual(t, "Test", out, "Style should add ANSI codes when forced")
}

func TestIcon(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)

	out := Icon("X", StyleError)
	assert.Contains(t, out, "X")
	assert.NotEqual(t, "X", out)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_StartStop(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "Planning...")
	s.delay = 5 * time.Millisecond

	s.Start()
	s.Start() // second start is a no-op
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Planning...")
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
	assert.Contains(t, out.String(), "\r\033[K")
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	var out syncBuffer
	NewSpinner(&out, "x").Stop()
	assert.Empty(t, out.String())
}
