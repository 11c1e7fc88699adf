// Package workflow orchestrates a writing run: plan once, then stream a
// bounded number of writing passes into a document.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/josephgoksu/agentwriting/internal/document"
	"github.com/josephgoksu/agentwriting/internal/llm"
	"github.com/josephgoksu/agentwriting/internal/planner"
)

// DefaultMaxStepCount bounds stepCount when no limit is configured.
const DefaultMaxStepCount = 16

// Config tunes a Runner.
type Config struct {
	Retry        llm.RetryPolicy // writing passes
	PlanRetry    llm.RetryPolicy // planning call, throttling only
	StepBinding  StepBinding
	MaxStepCount int
	MaxPlanSteps int
}

// DefaultConfig returns the configuration used by the CLI when nothing is set.
func DefaultConfig() Config {
	return Config{
		Retry:        llm.DefaultRetryPolicy(),
		PlanRetry:    llm.DefaultRetryPolicy(),
		StepBinding:  BindIndex,
		MaxStepCount: DefaultMaxStepCount,
		MaxPlanSteps: planner.DefaultMaxSteps,
	}
}

// Instruction is a validated writing request.
type Instruction struct {
	Prompt    string
	StepCount int
}

// NewInstruction validates prompt and stepCount. maxSteps <= 0 disables the
// upper bound.
func NewInstruction(prompt string, stepCount, maxSteps int) (Instruction, error) {
	if strings.TrimSpace(prompt) == "" {
		return Instruction{}, newError(KindInvalidInstruction, "instruction is empty", nil)
	}
	if stepCount < 0 {
		return Instruction{}, newError(KindInvalidInstruction, fmt.Sprintf("step count %d is negative", stepCount), nil)
	}
	if maxSteps > 0 && stepCount > maxSteps {
		return Instruction{}, newError(KindInvalidInstruction, fmt.Sprintf("step count %d exceeds maximum %d", stepCount, maxSteps), nil)
	}
	return Instruction{Prompt: prompt, StepCount: stepCount}, nil
}

// Metrics summarizes a run.
type Metrics struct {
	WordCount        int
	Duration         time.Duration
	Segments         int
	Iterations       int
	FailedIterations int
}

// Result is what Run hands back on success or cancellation.
type Result struct {
	RunID    string
	Status   Status
	Document document.Document
	Metrics  Metrics
	Plan     planner.Plan
	Errors   []IterationError
}

// RunOption customizes a single Run call.
type RunOption func(*runOptions)

type runOptions struct {
	onChunk func(Progress)
}

// WithProgress registers a callback for streamed chunks.
func WithProgress(fn func(Progress)) RunOption {
	return func(o *runOptions) {
		o.onChunk = fn
	}
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClock overrides the clock used for run duration.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// Runner executes writing runs. It holds only immutable configuration, so a
// single Runner may serve concurrent Run calls.
type Runner struct {
	cfg     Config
	planner *planner.Generator
	logger  *slog.Logger
	now     func() time.Time
}

// NewRunner creates a Runner.
func NewRunner(cfg Config, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.StepBinding == "" {
		cfg.StepBinding = BindIndex
	}
	r := &Runner{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.planner = planner.NewGenerator(planner.GeneratorConfig{
		Retry:    cfg.PlanRetry,
		MaxSteps: cfg.MaxPlanSteps,
	}, logger)
	return r
}

// Run plans and writes a document for instruction using stepCount passes.
//
// On success it returns a Done result. On cancellation it returns a Cancelled
// result holding the segments committed so far together with a Cancelled
// error. Every other failure returns a nil result and a *Error.
func (r *Runner) Run(ctx context.Context, instruction string, stepCount int, backend Backend, opts ...RunOption) (*Result, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	runID := uuid.NewString()
	log := r.logger.With("run_id", runID)

	instr, err := NewInstruction(instruction, stepCount, r.cfg.MaxStepCount)
	if err != nil {
		log.Warn("run rejected", "error", err)
		return nil, err
	}
	if backend == nil {
		return nil, newError(KindInvalidInstruction, "backend is required", nil)
	}

	log.Info("run started", "step_count", instr.StepCount, "binding", r.cfg.StepBinding)

	acc := document.NewAccumulator(document.WithClock(r.now))
	ctrl := NewController(backend, r.cfg, acc, log, o.onChunk)

	plan, err := r.planner.GeneratePlan(ctx, instr.Prompt, backend)
	if err != nil {
		ctrl.Abort(err)
		werr := fromGateway("planning failed", err)
		if werr.Kind == KindCancelled {
			log.Info("run cancelled during planning")
			return r.result(runID, StatusCancelled, ctrl, plan), werr
		}
		log.Error("run failed", "state", ctrl.State(), "kind", werr.Kind, "error", err)
		return nil, werr
	}
	log.Debug("plan ready", "steps", plan.Len())

	if err := ctrl.Execute(ctx, instr, plan); err != nil {
		if ctrl.State() == StateCancelled {
			res := r.result(runID, StatusCancelled, ctrl, plan)
			log.Info("run cancelled", "iteration", ctrl.Iteration(), "segments", res.Metrics.Segments)
			return res, err
		}
		log.Error("run failed", "state", ctrl.State(), "kind", KindOf(err), "error", err)
		return nil, err
	}

	res := r.result(runID, StatusDone, ctrl, plan)
	log.Info("run complete",
		"words", res.Metrics.WordCount,
		"segments", res.Metrics.Segments,
		"failed_iterations", res.Metrics.FailedIterations,
		"duration", res.Metrics.Duration,
	)
	return res, nil
}

func (r *Runner) result(runID string, status Status, ctrl *Controller, plan planner.Plan) *Result {
	doc := ctrl.Finalize()
	errs := ctrl.Errors()
	return &Result{
		RunID:    runID,
		Status:   status,
		Document: doc,
		Plan:     plan,
		Errors:   errs,
		Metrics: Metrics{
			WordCount:        doc.WordCount,
			Duration:         doc.Duration,
			Segments:         len(doc.Segments),
			Iterations:       ctrl.Started(),
			FailedIterations: len(errs),
		},
	}
}
