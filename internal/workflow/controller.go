package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/josephgoksu/agentwriting/internal/document"
	"github.com/josephgoksu/agentwriting/internal/llm"
	"github.com/josephgoksu/agentwriting/internal/planner"
)

// Backend is an LLM endpoint the workflow can plan and write with.
// *llm.Gateway satisfies it.
type Backend interface {
	Complete(ctx context.Context, p llm.Prompt) (string, error)
	StreamComplete(ctx context.Context, p llm.Prompt) (llm.ChunkStream, error)
}

// Progress is reported for every chunk received during a writing pass.
type Progress struct {
	Iteration int
	// Attempt is 1 for the first try of a pass and grows with each retry.
	Attempt   int
	Passes    int
	Step      string
	Chunk     string
	LiveWords int
}

var errEmptySegment = errors.New("completion contained no text")

// Controller drives the writing passes of one run. It is not safe for
// concurrent use; each run owns its own Controller.
type Controller struct {
	backend Backend
	cfg     Config
	logger  *slog.Logger
	onChunk func(Progress)

	state     State
	iteration int
	started   int
	acc       *document.Accumulator
	errs      []IterationError
}

// NewController creates a controller in the Planning state.
func NewController(backend Backend, cfg Config, acc *document.Accumulator, logger *slog.Logger, onChunk func(Progress)) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if acc == nil {
		acc = document.NewAccumulator()
	}
	return &Controller{
		backend: backend,
		cfg:     cfg,
		logger:  logger,
		onChunk: onChunk,
		state:   StatePlanning,
		acc:     acc,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Iteration returns the index of the current or last writing pass.
func (c *Controller) Iteration() int {
	return c.iteration
}

// Started returns how many writing passes have begun.
func (c *Controller) Started() int {
	return c.started
}

// WordCount is the live word count of the committed document.
func (c *Controller) WordCount() int {
	return c.acc.WordCount()
}

// Errors returns the recorded per-pass failures.
func (c *Controller) Errors() []IterationError {
	out := make([]IterationError, len(c.errs))
	copy(out, c.errs)
	return out
}

// Passes returns how many writing passes an instruction gets.
func Passes(stepCount int) int {
	return max(stepCount, 1)
}

// Abort moves the controller to Cancelled or Failed after a planning error.
func (c *Controller) Abort(err error) {
	if llm.KindOf(err) == llm.KindCancelled {
		c.transition(StateCancelled)
		return
	}
	c.transition(StateFailed)
}

// Execute runs the writing passes for instr against plan. It returns nil when
// at least one segment was committed, a Cancelled error when ctx ends, and a
// NoContentGenerated error when every pass failed.
func (c *Controller) Execute(ctx context.Context, instr Instruction, plan planner.Plan) error {
	if c.state.Terminal() {
		return fmt.Errorf("controller already %s", c.state)
	}

	passes := Passes(instr.StepCount)
	direct := instr.StepCount == 0 || plan.Len() == 0
	if direct {
		if instr.StepCount > 0 {
			c.logger.Warn("plan has no steps, writing directly", "step_count", instr.StepCount)
		}
		passes = 1
	}

	for i := range passes {
		c.iteration = i
		c.started++
		c.transition(StateWriting)

		attempts, err := c.runPass(ctx, instr, plan, i, passes, direct)
		if err == nil {
			continue
		}
		if llm.KindOf(err) == llm.KindCancelled || ctx.Err() != nil {
			c.transition(StateCancelled)
			return newError(KindCancelled, fmt.Sprintf("cancelled during pass %d", i), err)
		}

		ie := IterationError{Iteration: i, Attempts: attempts, Kind: llm.KindOf(err), Err: err}
		c.errs = append(c.errs, ie)
		c.logger.Warn("writing pass skipped", "iteration", i, "attempts", attempts, "kind", ie.Kind, "error", err)
	}

	if c.acc.Segments() == 0 {
		c.transition(StateFailed)
		causes := make([]error, len(c.errs))
		for i, e := range c.errs {
			causes[i] = e
		}
		return newError(KindNoContentGenerated, fmt.Sprintf("all %d writing passes failed", passes), errors.Join(causes...))
	}

	c.transition(StateFinalizing)
	return nil
}

// Finalize freezes the document. It is idempotent.
func (c *Controller) Finalize() document.Document {
	doc := c.acc.Finalize()
	if c.state == StateFinalizing {
		c.transition(StateDone)
	}
	return doc
}

// runPass streams one pass, retrying Unavailable and Throttled failures.
// It returns the number of attempts made and the last error.
func (c *Controller) runPass(ctx context.Context, instr Instruction, plan planner.Plan, pass, passes int, direct bool) (int, error) {
	prompt, err := passPrompt(instr.Prompt, plan, c.cfg.StepBinding, pass, direct, c.acc.Text())
	if err != nil {
		return 0, llm.NewError(llm.KindMalformed, "build prompt", err)
	}

	var step string
	if !direct {
		if idx, ok := c.cfg.StepBinding.Target(plan, pass); ok {
			step, _ = plan.Step(idx)
		}
	}

	attempts := c.cfg.Retry.Attempts()
	for attempt := 1; ; attempt++ {
		err := c.stream(ctx, prompt, Progress{Iteration: pass, Attempt: attempt, Passes: passes, Step: step})
		if err == nil {
			c.logger.Debug("pass committed", "iteration", pass, "attempt", attempt, "words", c.acc.WordCount())
			return attempt, nil
		}
		if llm.KindOf(err) == llm.KindCancelled || ctx.Err() != nil {
			return attempt, err
		}
		if !llm.Retryable(err) || attempt >= attempts {
			return attempt, err
		}

		wait := c.cfg.Retry.Backoff(attempt)
		c.logger.Warn("writing pass failed, retrying", "iteration", pass, "attempt", attempt, "wait", wait, "error", err)
		if serr := llm.Sleep(ctx, wait); serr != nil {
			return attempt, llm.NewError(llm.KindCancelled, "write backoff", serr)
		}
	}
}

// stream consumes one completion into a draft and commits it at EOF.
func (c *Controller) stream(ctx context.Context, prompt llm.Prompt, p Progress) error {
	s, err := c.backend.StreamComplete(ctx, prompt)
	if err != nil {
		return err
	}
	defer s.Close()

	draft, err := c.acc.Begin()
	if err != nil {
		return err
	}
	defer draft.Discard()

	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return llm.NewError(llm.KindCancelled, "write", err)
		}
		if chunk == "" {
			continue
		}
		if err := draft.Write(chunk); err != nil {
			return err
		}
		if c.onChunk != nil {
			p.Chunk = chunk
			p.LiveWords = draft.LiveWords()
			c.onChunk(p)
		}
	}

	if strings.TrimSpace(draft.Text()) == "" {
		return llm.NewError(llm.KindMalformed, "write", errEmptySegment)
	}
	return draft.Commit()
}

func (c *Controller) transition(to State) {
	if c.state == to && to != StateWriting {
		return
	}
	c.logger.Debug("state transition", "from", c.state, "to", to, "iteration", c.iteration)
	c.state = to
}
