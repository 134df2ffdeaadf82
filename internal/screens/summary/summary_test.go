package summary

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizzer/internal/router"
	"github.com/abhisek/quizzer/internal/scoring"
)

func testResult() scoring.Result {
	return scoring.Result{
		QuizID:          "geo_20260206_103045_1",
		Total:           4,
		CorrectCount:    3,
		Answered:        4,
		ScorePercentage: 75,
		Tier:            scoring.TierFor(75),
		ElapsedSeconds:  65,
		Failures: []scoring.Failure{
			{QuestionID: 2, QuestionText: "Capital of Peru?", Submitted: scoring.NoAnswer, Display: "Lima"},
		},
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testResult(), "", nil)
	if s.Title() != "Results" {
		t.Errorf("Title = %q, want %q", s.Title(), "Results")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testResult(), "/tmp/reports/geo_report.html", nil)
	view := s.View(100, 40)
	for _, want := range []string{"75.0%", "FAIL", "3/4", "1m 5s", "Capital of Peru?", "(no answer)", "Lima", "geo_report.html"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_SaveError(t *testing.T) {
	s := New(testResult(), "", errors.New("disk full"))
	if !strings.Contains(s.View(100, 40), "disk full") {
		t.Error("expected save error in view")
	}
}

func TestSummaryScreen_Navigation_Enter(t *testing.T) {
	s := New(testResult(), "", nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	if _, ok := cmd().(router.DoneMsg); !ok {
		t.Error("expected router.DoneMsg")
	}
}

func TestSummaryScreen_ScrollBounds(t *testing.T) {
	s := New(testResult(), "", nil)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.offset != 0 {
		t.Errorf("offset = %d with one failure, want 0", s.offset)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if s.offset != 0 {
		t.Errorf("offset = %d, want 0", s.offset)
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(testResult(), "", nil)
	if got := len(s.KeyHints()); got != 1 {
		t.Errorf("KeyHints length = %d, want 1", got)
	}
}
