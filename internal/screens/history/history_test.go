package history

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizzer/internal/router"
	"github.com/abhisek/quizzer/internal/scoring"
	"github.com/abhisek/quizzer/internal/store"
)

// fakeRepo implements store.AttemptRepo in memory.
type fakeRepo struct {
	records  []store.AttemptRecord
	failures map[string][]scoring.Failure
}

func (f *fakeRepo) SaveResult(context.Context, string, scoring.Result) (string, error) {
	return "", nil
}
func (f *fakeRepo) Recent(_ context.Context, limit int) ([]store.AttemptRecord, error) {
	return f.records[:min(limit, len(f.records))], nil
}
func (f *fakeRepo) Failures(_ context.Context, id string) ([]scoring.Failure, error) {
	return f.failures[id], nil
}
func (f *fakeRepo) Summary(context.Context) (store.Summary, error) {
	return store.Summary{Attempts: len(f.records), Passed: 1, AverageScore: 70}, nil
}
func (f *fakeRepo) Prune(context.Context, int) (int, error) { return 0, nil }
func (f *fakeRepo) Reset(context.Context) (int64, error)    { return 0, nil }

func newTestRepo() *fakeRepo {
	when := time.Date(2026, 2, 6, 10, 0, 0, 0, time.UTC)
	return &fakeRepo{
		records: []store.AttemptRecord{
			{ID: "a2", QuizID: "geo_20260206_103045_2", Total: 2, Correct: 2, Score: 100, Passed: true, CompletedAt: when},
			{ID: "a1", QuizID: "geo_20260206_103045_1", Total: 2, Correct: 1, Score: 50, CompletedAt: when.Add(-time.Hour)},
		},
		failures: map[string][]scoring.Failure{
			"a1": {{QuestionID: 2, QuestionText: "Capital of Peru?", Submitted: "quito", Display: "Lima"}},
		},
	}
}

func load(t *testing.T, s *HistoryScreen) {
	t.Helper()
	s.Update(s.Init()())
}

func TestHistoryScreen_Lists(t *testing.T) {
	s := New(newTestRepo())
	load(t, s)
	view := s.View(120, 30)
	for _, want := range []string{"geo_20260206_103045_2", "geo_20260206_103045_1", "PASS", "FAIL", "2 attempts", "50.0% passed"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistoryScreen_ExpandFailures(t *testing.T) {
	s := New(newTestRepo())
	load(t, s)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected failures to load")
	}
	s.Update(cmd())
	if !strings.Contains(s.View(120, 30), "quito → Lima") {
		t.Error("expanded failures not shown")
	}

	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("collapsing should not reload")
	}
	if strings.Contains(s.View(120, 30), "quito") {
		t.Error("failures still shown after collapse")
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := New(&fakeRepo{})
	load(t, s)
	if !strings.Contains(s.View(80, 24), "No attempts yet") {
		t.Error("expected empty message")
	}
}

func TestHistoryScreen_EscPops(t *testing.T) {
	s := New(newTestRepo())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
