package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizzer/internal/report"
	"github.com/abhisek/quizzer/internal/router"
	"github.com/abhisek/quizzer/internal/screen"
	"github.com/abhisek/quizzer/internal/scoring"
	"github.com/abhisek/quizzer/internal/ui/layout"
	"github.com/abhisek/quizzer/internal/ui/theme"
)

// SummaryScreen shows a finalized result and its failed questions.
type SummaryScreen struct {
	result     scoring.Result
	reportPath string
	saveErr    error
	offset     int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. saveErr is shown when persisting the result
// failed.
func New(res scoring.Result, reportPath string, saveErr error) *SummaryScreen {
	return &SummaryScreen{result: res, reportPath: reportPath, saveErr: saveErr}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Done"}}
	if len(s.result.Failures) > 1 {
		hints = append(hints, layout.KeyHint{Key: "↑↓", Description: "Scroll"})
	}
	return hints
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.DoneMsg{} }
		case "up", "k":
			s.offset = max(s.offset-1, 0)
		case "down", "j":
			s.offset = min(s.offset+1, max(len(s.result.Failures)-1, 0))
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.result
	var b strings.Builder

	b.WriteString(layout.Centered("Quiz complete!", width, theme.Title))
	b.WriteString("\n\n")

	verdictStyle := theme.Incorrect
	if res.Passed {
		verdictStyle = theme.Correct
	}
	scoreStyle := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color(report.ScoreColor(res.ScorePercentage, scoring.DefaultPassThreshold)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		scoreStyle.Render(fmt.Sprintf("%.1f%%", res.ScorePercentage))+"   "+verdictStyle.Render(res.Verdict())))
	b.WriteString("\n")
	b.WriteString(layout.Centered(
		fmt.Sprintf("Correct: %d/%d    Time: %s", res.CorrectCount, res.Total, scoring.FormatElapsed(res.ElapsedSeconds)),
		width, theme.Body))
	b.WriteString("\n")
	if res.Tier != "" {
		b.WriteString(layout.Centered(res.Tier.Message(), width, theme.Hint))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(res.Failures) > 0 {
		b.WriteString(layout.Centered(fmt.Sprintf("Failed questions (%d)", len(res.Failures)), width,
			lipgloss.NewStyle().Foreground(theme.TextDim)))
		b.WriteString("\n")
		b.WriteString(layout.Divider(width))
		b.WriteString("\n")

		// Each failure takes four lines; keep room for the footer lines below.
		visible := max((height-14)/4, 1)
		end := min(s.offset+visible, len(res.Failures))
		for _, f := range res.Failures[s.offset:end] {
			b.WriteString(layout.Centered(fmt.Sprintf("Q%d. %s", f.QuestionID, f.QuestionText), width, theme.Body))
			b.WriteString("\n")
			b.WriteString(layout.Centered("Your answer: "+f.Submitted, width, lipgloss.NewStyle().Foreground(theme.Error)))
			b.WriteString("\n")
			b.WriteString(layout.Centered("Correct answer: "+f.Display, width, lipgloss.NewStyle().Foreground(theme.Success)))
			b.WriteString("\n\n")
		}
	}

	switch {
	case s.saveErr != nil:
		b.WriteString(layout.Centered("Could not save result: "+s.saveErr.Error(), width, theme.Incorrect))
	case s.reportPath != "":
		b.WriteString(layout.Centered("Report: "+s.reportPath, width, theme.Hint))
	}
	return b.String()
}
