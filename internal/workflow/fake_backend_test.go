package workflow

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/josephgoksu/agentwriting/internal/llm"
)

// pass scripts one StreamComplete call.
type pass struct {
	chunks  []string
	openErr error // returned by StreamComplete
	midErr  error // returned by Recv after all chunks
	// onRecv runs before chunk n is delivered.
	onRecv func(n int)
}

// fakeBackend replays a plan reply and a sequence of streamed passes.
type fakeBackend struct {
	mu sync.Mutex

	plan    string
	planErr error

	passes   []pass
	fallback *pass // used once passes are exhausted

	completeCalls int
	streamCalls   int
	prompts       []llm.Prompt
}

func (f *fakeBackend) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCalls++
	if err := ctx.Err(); err != nil {
		return "", llm.NewError(llm.KindCancelled, "complete", err)
	}
	return f.plan, f.planErr
}

func (f *fakeBackend) StreamComplete(ctx context.Context, p llm.Prompt) (llm.ChunkStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := f.streamCalls
	f.streamCalls++
	f.prompts = append(f.prompts, p)

	if err := ctx.Err(); err != nil {
		return nil, llm.NewError(llm.KindCancelled, "stream", err)
	}

	var script pass
	switch {
	case call < len(f.passes):
		script = f.passes[call]
	case f.fallback != nil:
		script = *f.fallback
	default:
		return nil, llm.NewError(llm.KindUnavailable, "stream", errors.New("script exhausted"))
	}
	if script.openErr != nil {
		return nil, script.openErr
	}
	return &sliceStream{ctx: ctx, script: script}, nil
}

func (f *fakeBackend) streams() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streamCalls
}

type sliceStream struct {
	ctx    context.Context
	script pass
	next   int
	closed bool
}

func (s *sliceStream) Recv() (string, error) {
	if s.script.onRecv != nil {
		s.script.onRecv(s.next)
	}
	if err := s.ctx.Err(); err != nil {
		return "", llm.NewError(llm.KindCancelled, "stream recv", err)
	}
	if s.next < len(s.script.chunks) {
		c := s.script.chunks[s.next]
		s.next++
		return c, nil
	}
	if s.script.midErr != nil {
		return "", s.script.midErr
	}
	return "", io.EOF
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

// words returns n words split into uneven chunks.
func words(n int, word string) []string {
	text := strings.TrimSpace(strings.Repeat(word+" ", n))
	var out []string
	for size := 3; len(text) > 0; size = size%7 + 2 {
		if size > len(text) {
			size = len(text)
		}
		out = append(out, text[:size])
		text = text[size:]
	}
	return out
}

func ok(n int) pass {
	return pass{chunks: words(n, "word")}
}

func fail(kind llm.Kind) pass {
	return pass{openErr: llm.NewError(kind, "stream", errors.New(string(kind)))}
}

func noRetry() Config {
	cfg := DefaultConfig()
	cfg.Retry = llm.RetryPolicy{MaxRetries: 0}
	cfg.PlanRetry = llm.RetryPolicy{MaxRetries: 0}
	return cfg
}

func fastRetry(n int) llm.RetryPolicy {
	return llm.RetryPolicy{MaxRetries: n, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, Multiplier: 2}
}

// tickingClock advances by step on every reading.
func tickingClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(step)
		return t
	}
}
