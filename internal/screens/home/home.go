// Package home lists available quizzes and opens one for an attempt.
package home

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizzer/internal/quizfile"
	"github.com/abhisek/quizzer/internal/router"
	"github.com/abhisek/quizzer/internal/screen"
	"github.com/abhisek/quizzer/internal/screens/history"
	quizscreen "github.com/abhisek/quizzer/internal/screens/quiz"
	"github.com/abhisek/quizzer/internal/store"
	"github.com/abhisek/quizzer/internal/ui/components"
	"github.com/abhisek/quizzer/internal/ui/layout"
	"github.com/abhisek/quizzer/internal/ui/theme"
)

// Options configures the home screen.
type Options struct {
	QuizzesDir string
	TestMode   bool

	// Repo enables the history entry. It may be nil.
	Repo store.AttemptRepo

	Quiz quizscreen.Options
}

type quizzesLoadedMsg struct {
	Quizzes []quizfile.Summary
	Err     error
}

type openFailedMsg struct {
	Err error
}

// HomeScreen is the quiz picker.
type HomeScreen struct {
	opts   Options
	menu   components.Menu
	loaded bool
	count  int
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a HomeScreen. Quizzes are listed in Init.
func New(opts Options) *HomeScreen {
	return &HomeScreen{opts: opts}
}

func (s *HomeScreen) Init() tea.Cmd {
	dir, testMode := s.opts.QuizzesDir, s.opts.TestMode
	return func() tea.Msg {
		list, err := quizfile.List(dir, quizfile.ListOptions{IncludeTestData: testMode})
		return quizzesLoadedMsg{Quizzes: list, Err: err}
	}
}

func (s *HomeScreen) Title() string {
	return "Quizzes"
}

func (s *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case quizzesLoadedMsg:
		s.loaded = true
		s.errMsg = ""
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		s.count = len(msg.Quizzes)
		s.menu = components.NewMenu(s.items(msg.Quizzes))
		return s, nil

	case openFailedMsg:
		s.errMsg = msg.Err.Error()
		return s, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *HomeScreen) items(quizzes []quizfile.Summary) []components.MenuItem {
	items := make([]components.MenuItem, 0, len(quizzes)+2)
	for _, q := range quizzes {
		items = append(items, components.MenuItem{
			Label:  q.ID,
			Detail: fmt.Sprintf("%d questions · %s", q.Questions, q.Folder),
			Action: s.open(q.Path),
		})
	}
	if s.opts.Repo != nil {
		repo := s.opts.Repo
		items = append(items, components.MenuItem{Label: "HISTORY", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: history.New(repo)} }
		}})
	}
	items = append(items, components.MenuItem{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }})
	return items
}

func (s *HomeScreen) open(rel string) func() tea.Cmd {
	dir, opts := s.opts.QuizzesDir, s.opts.Quiz
	return func() tea.Cmd {
		return func() tea.Msg {
			path, err := quizfile.Resolve(dir, rel)
			if err != nil {
				return openFailedMsg{Err: err}
			}
			q, err := quizfile.Load(path)
			if err != nil {
				return openFailedMsg{Err: err}
			}
			if len(q.Questions) == 0 {
				return openFailedMsg{Err: fmt.Errorf("quiz %s has no questions", q.ID)}
			}
			return router.PushScreenMsg{Screen: quizscreen.New(q, opts)}
		}
	}
}

func (s *HomeScreen) View(width, height int) string {
	if !s.loaded {
		return layout.Centered("\n\n  Loading quizzes...", width, lipgloss.NewStyle().Foreground(theme.TextDim))
	}

	out := "\n" + layout.Centered("Choose a quiz", width, theme.Title) + "\n\n"
	if s.count == 0 {
		out += layout.Centered("No quizzes found in "+s.opts.QuizzesDir+". Run `quizzer import` first.", width, theme.Hint) + "\n\n"
	}
	out += lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.View())
	if s.errMsg != "" {
		out += "\n" + layout.Centered("Error: "+s.errMsg, width, theme.Incorrect)
	}
	return out
}
