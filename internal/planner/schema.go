package planner

import (
	"regexp"
	"strconv"
	"strings"
)

// Plan is an ordered list of writing subtasks. Its length is independent of
// how many writing passes consume it.
type Plan struct {
	Steps []string
}

// Len returns the number of steps.
func (p Plan) Len() int {
	return len(p.Steps)
}

// Step returns step i, or false when i is out of range.
func (p Plan) Step(i int) (string, bool) {
	if i < 0 || i >= len(p.Steps) {
		return "", false
	}
	return p.Steps[i], true
}

// String renders the plan as a numbered list for prompts.
func (p Plan) String() string {
	var sb strings.Builder
	for i, s := range p.Steps {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(". ")
		sb.WriteString(s)
	}
	return sb.String()
}

// listMarker matches bullets and numbering such as "1.", "2)", "(3)", "#4:", "-", "*", "•".
var listMarker = regexp.MustCompile(`^(?:[-*+•](?:\s+|$)|\(?\d{1,3}[.)](?:\s+|$)|\(\d{1,3}\)\s*|#\d{1,3}[.):]?(?:\s+|$))`)

// heading matches a markdown heading line: hashes followed by a space or nothing.
var heading = regexp.MustCompile(`^#+(?:\s|$)`)

// ParsePlan splits a raw planning response into steps, one per non-blank line.
// Code fences and markdown headings are skipped; list markers are stripped.
func ParsePlan(raw string) Plan {
	var steps []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") || heading.MatchString(line) {
			continue
		}
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		steps = append(steps, line)
	}
	return Plan{Steps: steps}
}
