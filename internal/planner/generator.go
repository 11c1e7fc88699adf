// Package planner turns a writing instruction into an ordered plan of steps.
package planner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/josephgoksu/agentwriting/internal/llm"
)

// DefaultMaxSteps caps how many plan steps are kept from a response.
const DefaultMaxSteps = 32

// Completer is the non-streaming half of an LLM backend.
type Completer interface {
	Complete(ctx context.Context, p llm.Prompt) (string, error)
}

// GeneratorConfig configures the plan generator.
type GeneratorConfig struct {
	// Retry applies to throttled responses only; other failures are fatal.
	Retry    llm.RetryPolicy
	MaxSteps int
}

// Generator produces plans. It holds no per-request state and may be shared.
type Generator struct {
	cfg    GeneratorConfig
	tmpl   *template.Template
	logger *slog.Logger
}

// NewGenerator creates a plan generator.
func NewGenerator(cfg GeneratorConfig, logger *slog.Logger) *Generator {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		cfg:    cfg,
		tmpl:   template.Must(template.New("plan").Parse(planPromptTemplate)),
		logger: logger,
	}
}

// GeneratePlan issues one planning call and parses the response.
// A response with no usable lines yields an empty plan, not an error.
func (g *Generator) GeneratePlan(ctx context.Context, instruction string, backend Completer) (Plan, error) {
	prompt, err := g.BuildPrompt(instruction)
	if err != nil {
		return Plan{}, err
	}

	attempts := g.cfg.Retry.Attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := backend.Complete(ctx, prompt)
		if err == nil {
			plan := ParsePlan(raw)
			if plan.Len() > g.cfg.MaxSteps {
				g.logger.Debug("plan truncated", "steps", plan.Len(), "max", g.cfg.MaxSteps)
				plan.Steps = plan.Steps[:g.cfg.MaxSteps]
			}
			g.logger.Debug("plan generated", "steps", plan.Len(), "attempts", attempt)
			return plan, nil
		}

		lastErr = err
		if llm.KindOf(err) != llm.KindThrottled || attempt == attempts {
			break
		}

		wait := g.cfg.Retry.Backoff(attempt)
		g.logger.Warn("planning throttled, backing off", "attempt", attempt, "wait", wait)
		if serr := llm.Sleep(ctx, wait); serr != nil {
			return Plan{}, fmt.Errorf("generate plan: %w", llm.NewError(llm.KindCancelled, "plan backoff", serr))
		}
	}

	return Plan{}, fmt.Errorf("generate plan: %w", lastErr)
}

// BuildPrompt renders the planning prompt for an instruction.
func (g *Generator) BuildPrompt(instruction string) (llm.Prompt, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, map[string]any{
		"Instruction": fenceSafe(instruction),
	}); err != nil {
		return llm.Prompt{}, fmt.Errorf("execute template: %w", err)
	}
	return llm.Prompt{System: planSystemPrompt, User: buf.String()}, nil
}

// fenceSafe keeps user text from closing the instruction fence early.
func fenceSafe(s string) string {
	return strings.ReplaceAll(s, instructionFenceClose, "</ instruction>")
}

const instructionFenceClose = "</instruction>"

const planSystemPrompt = "You are a meticulous editor who plans long-form writing before it is written."

const planPromptTemplate = `Break the following writing instruction into an ordered list of subtasks.
Each subtask guides the writing of one paragraph or section and states its main point
and an approximate word count.

<instruction>
{{.Instruction}}
</instruction>

Output format, one subtask per line:
Paragraph 1 - Main Point: [what this paragraph covers, in detail] - Word Count: [e.g. 300 words]
Paragraph 2 - Main Point: [...] - Word Count: [...]

RULES:
- Subtasks together must cover the whole instruction
- Do not split too finely; each paragraph should be 200 to 1000 words
- Output ONLY the subtask lines, no introduction or closing remarks`
