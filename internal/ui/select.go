package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/josephgoksu/agentwriting/internal/config"
	"github.com/josephgoksu/agentwriting/internal/llm"
)

// ErrSelectionCancelled is returned when the user leaves a picker without choosing.
var ErrSelectionCancelled = errors.New("selection cancelled")

// Option is one entry in a selection list.
type Option struct {
	ID          string
	Label       string
	Description string
	Badge       string
}

// ProviderOptions lists every supported provider. hasKey reports whether a
// credential is already available for a hosted provider.
func ProviderOptions(hasKey func(llm.Provider) bool) []Option {
	providers := llm.Providers()
	options := make([]Option, 0, len(providers))
	for _, p := range providers {
		opt := Option{ID: string(p), Label: string(p)}
		switch {
		case p == llm.ProviderOllama:
			opt.Description = "Local, private, free"
		case hasKey != nil && hasKey(p):
			opt.Description = "Hosted"
			opt.Badge = "key set"
		default:
			opt.Description = "Hosted • key not set"
		}
		options = append(options, opt)
	}
	return options
}

// ModelOptions lists the suggested models for a provider, default first.
func ModelOptions(provider string) []Option {
	models := llm.SuggestedModels(provider)
	options := make([]Option, 0, len(models))
	for _, m := range models {
		opt := Option{ID: m.ID, Label: m.ID}
		if m.IsDefault {
			opt.Badge = "default"
		}
		if len(m.Aliases) > 0 {
			opt.Description = "aka " + strings.Join(m.Aliases, ", ")
		}
		options = append(options, opt)
	}
	return options
}

// Select runs an interactive picker and returns the chosen option ID.
func Select(title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("%s: nothing to choose from", title)
	}
	p := tea.NewProgram(newSelectModel(title, options))
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running selection: %w", err)
	}
	result := finalModel.(selectModel)
	if result.quit {
		return "", ErrSelectionCancelled
	}
	return result.selectedID, nil
}

// LLMSelection contains the result of provider + model selection.
type LLMSelection struct {
	Provider string
	Model    string
}

// PromptLLMSelection runs a provider then model selection flow.
func PromptLLMSelection() (*LLMSelection, error) {
	provider, err := Select("Select LLM provider", ProviderOptions(func(p llm.Provider) bool {
		return config.ResolveAPIKey(p) != ""
	}))
	if err != nil {
		return nil, err
	}

	model, err := Select("Select model for "+provider, ModelOptions(provider))
	if err != nil {
		return nil, err
	}

	return &LLMSelection{Provider: provider, Model: model}, nil
}

type selectModel struct {
	title      string
	options    []Option
	cursor     int
	selectedID string
	quit       bool
}

func newSelectModel(title string, options []Option) selectModel {
	return selectModel{title: title, options: options}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quit = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			m.selectedID = m.options[m.cursor].ID
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m selectModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n" + StyleSelectTitle.Render(m.title) + "\n\n")

	width := 0
	for _, opt := range m.options {
		width = max(width, len(opt.Label))
	}

	for i, opt := range m.options {
		cursor := "  "
		style := StyleSelectNormal
		if m.cursor == i {
			cursor = "▶ "
			style = StyleSelectActive
		}

		line := cursor + style.Render(padRight(opt.Label, width))
		if opt.Badge != "" {
			line += " " + StyleSelectBadge.Render("["+opt.Badge+"]")
		}
		if opt.Description != "" {
			line += StyleSelectDim.Render(" " + opt.Description)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n" + StyleSelectDim.Render("↑/↓ navigate • enter select • esc cancel") + "\n")
	return sb.String()
}
