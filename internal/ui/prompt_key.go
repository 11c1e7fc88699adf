package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// PromptAPIKey asks for the API key of provider with input hidden.
func PromptAPIKey(provider string) (string, error) {
	p := tea.NewProgram(newAPIKeyModel(provider))
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running prompt: %w", err)
	}

	result := finalModel.(apiKeyModel)
	if result.quit {
		return "", fmt.Errorf("api key input cancelled")
	}
	return result.value, nil
}

type apiKeyModel struct {
	provider  string
	textInput textinput.Model
	value     string
	quit      bool
}

func newAPIKeyModel(provider string) apiKeyModel {
	ti := textinput.New()
	ti.Placeholder = "api-key"
	ti.Focus()
	ti.EchoMode = textinput.EchoPassword
	ti.CharLimit = 256
	ti.Width = 50
	return apiKeyModel{provider: provider, textInput: ti}
}

func (m apiKeyModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m apiKeyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			m.value = m.textInput.Value()
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quit = true
			return m, tea.Quit
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m apiKeyModel) View() string {
	s := "\n" + StyleSelectTitle.Render("🔑 API key required for "+m.provider) + "\n"
	s += StyleSelectDim.Render("It will be stored locally in ~/.agentwriting/config.yaml") + "\n\n"
	s += m.textInput.View() + "\n\n"
	s += StyleSelectDim.Render("Press Enter to confirm • Esc to cancel") + "\n"
	return s
}
