package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizzer/internal/scoring"
	"github.com/abhisek/quizzer/internal/ui/components"
	"github.com/abhisek/quizzer/internal/ui/layout"
	"github.com/abhisek/quizzer/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	if s.finishing {
		return layout.Centered("\n\n  Saving results...", width, lipgloss.NewStyle().Foreground(theme.TextDim))
	}
	if s.confirmQuit {
		return s.renderQuitConfirm(width)
	}

	snap := s.attempt.Snapshot()
	position := snap.Answered
	if !s.feedback {
		position++
	}

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  Question %d/%d", position, snap.Total))
	infoRight := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(scoring.FormatElapsed(s.elapsed.Seconds()))
	b.WriteString(infoLeft)
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad) + infoRight)
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(s.current.Text, width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
	b.WriteString("\n\n")

	if s.feedback {
		b.WriteString(s.renderFeedback(width))
		b.WriteString("\n\n")
	} else if len(s.current.Canonical) > 1 {
		b.WriteString(layout.Centered(
			fmt.Sprintf("%d parts, separated by commas, in any order", len(s.current.Canonical)),
			width, theme.Hint))
		b.WriteString("\n\n")
	}

	bar := components.ProgressBar{Done: snap.Answered, Total: snap.Total, Width: min(width-8, 60)}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	return b.String()
}

func (s *QuizScreen) renderFeedback(width int) string {
	if s.lastCorrect {
		return layout.Centered("✓ Correct!", width, theme.Correct)
	}
	return layout.Centered("✗ Incorrect", width, theme.Incorrect) + "\n" +
		layout.Centered("Correct answer: "+s.current.Display, width, theme.Body)
}

func (s *QuizScreen) renderQuitConfirm(width int) string {
	snap := s.attempt.Snapshot()
	msg := "Finish the quiz now?\n\n"
	if snap.Answered == 0 {
		msg += "Nothing has been answered, so no result will be saved."
	} else {
		msg += fmt.Sprintf("%d unanswered question(s) will count as incorrect.", snap.Total-snap.Answered)
	}
	return "\n\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Card.Render(lipgloss.NewStyle().Foreground(theme.Text).Render(msg)))
}
