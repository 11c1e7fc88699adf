package workflow

import (
	"fmt"

	"github.com/josephgoksu/agentwriting/internal/planner"
)

// StepBinding decides which plan step a writing pass targets when the pass
// count and the plan length differ.
type StepBinding string

const (
	// BindIndex binds pass i to step i; passes past the plan end extend the text.
	BindIndex StepBinding = "index"
	// BindCycle binds pass i to step i mod len(plan).
	BindCycle StepBinding = "cycle"
	// BindFirst binds only the first pass to step 0.
	BindFirst StepBinding = "first"
)

// ParseStepBinding validates a configured binding name. Empty means BindIndex.
func ParseStepBinding(s string) (StepBinding, error) {
	switch StepBinding(s) {
	case "", BindIndex:
		return BindIndex, nil
	case BindCycle, BindFirst:
		return StepBinding(s), nil
	default:
		return "", fmt.Errorf("unknown step binding %q (want index, cycle or first)", s)
	}
}

// Target returns the plan index pass binds to, or false when the pass has no
// target step.
func (b StepBinding) Target(plan planner.Plan, pass int) (int, bool) {
	n := plan.Len()
	if n == 0 || pass < 0 {
		return 0, false
	}
	switch b {
	case BindCycle:
		return pass % n, true
	case BindFirst:
		return 0, pass == 0
	default:
		return pass, pass < n
	}
}
