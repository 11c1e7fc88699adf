package workflow

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/josephgoksu/agentwriting/internal/llm"
	"github.com/josephgoksu/agentwriting/internal/planner"
)

const writerSystemPrompt = "You are an excellent writing assistant. You write vivid, coherent long-form text and follow the writing plan you are given."

const directPromptTemplate = `Complete the following writing instruction.

<instruction>
{{.Instruction}}
</instruction>

Output only the text itself, with no preamble or closing remarks.`

const stepPromptTemplate = `You are writing a long piece step by step, following a plan.

<instruction>
{{.Instruction}}
</instruction>

Writing plan:
{{.Plan}}

Text written so far:
<written>
{{if .Written}}{{.Written}}{{else}}(nothing yet){{end}}
</written>

{{if .Step}}Now write step {{.StepNumber}} of the plan: {{.Step}}
If needed, you can add a small subtitle at the beginning.{{else}}All steps of the plan are covered. Write a further passage that extends and deepens the piece, consistent with the plan and the text so far.{{end}}
Output only the new text. Do not repeat what has already been written.`

const fenceClose = "</instruction>"

var (
	directTmpl = template.Must(template.New("direct").Parse(directPromptTemplate))
	stepTmpl   = template.Must(template.New("step").Parse(stepPromptTemplate))
)

// passPrompt builds the prompt for one writing pass. written is the committed
// document text before this pass.
func passPrompt(instruction string, plan planner.Plan, binding StepBinding, pass int, direct bool, written string) (llm.Prompt, error) {
	data := map[string]any{
		"Instruction": strings.ReplaceAll(instruction, fenceClose, "</ instruction>"),
	}

	tmpl := directTmpl
	if !direct {
		tmpl = stepTmpl
		data["Plan"] = plan.String()
		data["Written"] = written
		if idx, ok := binding.Target(plan, pass); ok {
			step, _ := plan.Step(idx)
			data["Step"] = step
			data["StepNumber"] = idx + 1
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return llm.Prompt{}, fmt.Errorf("execute %s template: %w", tmpl.Name(), err)
	}
	return llm.Prompt{System: writerSystemPrompt, User: buf.String()}, nil
}
