// Package history shows recently stored attempts.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizzer/internal/router"
	"github.com/abhisek/quizzer/internal/screen"
	"github.com/abhisek/quizzer/internal/scoring"
	"github.com/abhisek/quizzer/internal/store"
	"github.com/abhisek/quizzer/internal/ui/layout"
	"github.com/abhisek/quizzer/internal/ui/theme"
)

const pageSize = 20

type historyLoadedMsg struct {
	Attempts []store.AttemptRecord
	Summary  store.Summary
	Err      error
}

type failuresLoadedMsg struct {
	Index    int
	Failures []scoring.Failure
	Err      error
}

// HistoryScreen lists stored attempts. Enter expands the failures of the
// selected attempt.
type HistoryScreen struct {
	repo     store.AttemptRepo
	attempts []store.AttemptRecord
	summary  store.Summary
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen.
func New(repo store.AttemptRepo) *HistoryScreen {
	return &HistoryScreen{repo: repo, expanded: make(map[int]bool)}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		ctx := context.Background()
		attempts, err := repo.Recent(ctx, pageSize)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		sum, err := repo.Summary(ctx)
		return historyLoadedMsg{Attempts: attempts, Summary: sum, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		s.attempts = msg.Attempts
		s.summary = msg.Summary
		return s, nil

	case failuresLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		if msg.Index < len(s.attempts) {
			s.attempts[msg.Index].Failures = msg.Failures
			s.expanded[msg.Index] = true
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			s.selected = max(s.selected-1, 0)
		case "down", "j":
			s.selected = min(s.selected+1, max(len(s.attempts)-1, 0))
		case "enter":
			return s, s.toggle()
		}
	}
	return s, nil
}

func (s *HistoryScreen) toggle() tea.Cmd {
	if s.selected >= len(s.attempts) {
		return nil
	}
	if s.expanded[s.selected] {
		s.expanded[s.selected] = false
		return nil
	}
	idx, id, repo := s.selected, s.attempts[s.selected].ID, s.repo
	return func() tea.Msg {
		fs, err := repo.Failures(context.Background(), id)
		return failuresLoadedMsg{Index: idx, Failures: fs, Err: err}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	if s.errMsg != "" {
		return layout.Centered("\n\nError: "+s.errMsg, width, theme.Incorrect)
	}
	if !s.loaded {
		return layout.Centered("\n\n  Loading history...", width, dim)
	}
	if len(s.attempts) == 0 {
		return layout.Centered("\n\n  No attempts yet. Take a quiz!", width, theme.Hint)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(fmt.Sprintf("%d attempts   %.1f%% passed   %.1f%% average",
		s.summary.Attempts, s.summary.PassRate(), s.summary.AverageScore), width, dim))
	b.WriteString("\n\n")

	for i, a := range s.attempts {
		prefix := "  "
		style := theme.Unselected
		if i == s.selected {
			prefix = "> "
			style = theme.Selected
		}
		verdict := theme.Incorrect.Render("FAIL")
		if a.Passed {
			verdict = theme.Correct.Render("PASS")
		}
		line := fmt.Sprintf("%s%s  %-32s %2d/%-2d %5.1f%%  ",
			prefix, a.CompletedAt.Local().Format("Jan 02 15:04"), a.QuizID, a.Correct, a.Total, a.Score)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)+verdict))
		b.WriteString("\n")

		if !s.expanded[i] {
			continue
		}
		if len(a.Failures) == 0 {
			b.WriteString(layout.Centered("    No failed questions", width, theme.Hint))
			b.WriteString("\n")
		}
		for _, f := range a.Failures {
			b.WriteString(layout.Centered(
				fmt.Sprintf("    Q%d %s  %s → %s", f.QuestionID, f.QuestionText, f.Submitted, f.Display),
				width, dim))
			b.WriteString("\n")
		}
	}
	return b.String()
}
