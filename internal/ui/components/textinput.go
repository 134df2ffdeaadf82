package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizzer/internal/ui/theme"
)

// AnswerInput is a single-line answer field that can show a verdict mark
// after submission.
type AnswerInput struct {
	Model     textinput.Model
	submitted bool
	correct   bool
}

// NewAnswerInput creates a focused answer field.
func NewAnswerInput(placeholder string, charLimit int) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	ti.Focus()
	return AnswerInput{Model: ti}
}

// Init returns the initial command.
func (a AnswerInput) Init() tea.Cmd {
	return a.Model.Focus()
}

// Update forwards messages to the text field until it is submitted.
func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	if a.submitted {
		return a, nil
	}
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// View renders the field and, once submitted, a ✓ or ✗.
func (a AnswerInput) View() string {
	view := a.Model.View()
	if !a.submitted {
		return view
	}
	if a.correct {
		return view + " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
	}
	return view + " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
}

// Value returns the current text.
func (a AnswerInput) Value() string {
	return a.Model.Value()
}

// Submit freezes the field and records the verdict to display.
func (a *AnswerInput) Submit(correct bool) {
	a.submitted = true
	a.correct = correct
	a.Model.Blur()
}

// Submitted reports whether Submit has been called.
func (a AnswerInput) Submitted() bool {
	return a.submitted
}
