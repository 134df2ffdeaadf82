package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	qz "github.com/abhisek/quizzer/internal/quiz"
	"github.com/abhisek/quizzer/internal/router"
	"github.com/abhisek/quizzer/internal/scoring"
	"github.com/abhisek/quizzer/internal/screens/summary"
)

func testQuiz() *qz.Quiz {
	return &qz.Quiz{
		ID:         "geo_20260206_103045_1",
		SourceName: "geo.csv",
		Questions: []qz.Question{
			{ID: 1, Text: "Capital of France?", Canonical: []string{"paris"}, Display: "Paris"},
			{ID: 2, Text: "Primary colors?", Canonical: []string{"blue", "red", "yellow"}, Display: "Red, Blue, Yellow"},
		},
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestScreen(finish Finisher) (*QuizScreen, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 2, 6, 10, 0, 0, 0, time.UTC)}
	return New(testQuiz(), Options{
		PassThreshold: scoring.DefaultPassThreshold,
		Clock:         clock.Now,
		OnFinish:      finish,
	}), clock
}

var (
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
	esc   = tea.KeyPressMsg{Code: tea.KeyEscape}
	space = tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	yes   = tea.KeyPressMsg{Code: 'y', Text: "y"}
	no    = tea.KeyPressMsg{Code: 'n', Text: "n"}
)

func answer(s *QuizScreen, text string) {
	s.input.Model.SetValue(text)
	s.Update(enter)
}

// drain runs cmd and feeds resulting messages back until a router message
// appears.
func drain(t *testing.T, s *QuizScreen, cmd tea.Cmd) tea.Msg {
	t.Helper()
	for i := 0; cmd != nil && i < 5; i++ {
		msg := cmd()
		switch msg.(type) {
		case router.ReplaceScreenMsg, router.DoneMsg:
			return msg
		}
		_, cmd = s.Update(msg)
	}
	t.Fatal("no router message produced")
	return nil
}

func TestQuizScreen_FullRun(t *testing.T) {
	var saved scoring.Result
	s, clock := newTestScreen(func(_ context.Context, source string, res scoring.Result) (string, error) {
		if source != "geo.csv" {
			t.Errorf("source = %q, want geo.csv", source)
		}
		saved = res
		return "/tmp/r.html", nil
	})

	answer(s, " PARIS ")
	if !s.feedback || !s.lastCorrect {
		t.Fatal("expected correct feedback after first answer")
	}
	if !strings.Contains(s.View(100, 30), "Correct!") {
		t.Error("feedback not rendered")
	}
	_, cmd := s.Update(space)
	if s.feedback || s.current.ID != 2 {
		t.Fatalf("expected question 2 after continue, got %d", s.current.ID)
	}
	_ = cmd

	answer(s, "red, blue")
	if s.lastCorrect {
		t.Fatal("partial answer graded correct")
	}
	if !strings.Contains(s.View(100, 30), "Red, Blue, Yellow") {
		t.Error("correct answer not shown after miss")
	}

	clock.t = clock.t.Add(90 * time.Second)
	_, cmd = s.Update(space)
	msg := drain(t, s, cmd)

	rep, ok := msg.(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", msg)
	}
	if _, ok := rep.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("expected summary screen, got %T", rep.Screen)
	}
	if saved.ScorePercentage != 50 || saved.ElapsedSeconds != 90 {
		t.Errorf("saved result = %+v", saved)
	}
	if len(saved.Failures) != 1 || saved.Failures[0].Submitted != "red, blue" {
		t.Errorf("failures = %+v", saved.Failures)
	}
}

func TestQuizScreen_EmptyAnswerIsIncorrect(t *testing.T) {
	s, _ := newTestScreen(nil)
	answer(s, "")
	if !s.feedback || s.lastCorrect {
		t.Fatal("empty answer should be graded incorrect")
	}
}

func TestQuizScreen_QuitConfirm(t *testing.T) {
	s, _ := newTestScreen(nil)
	answer(s, "paris")
	s.Update(space)

	s.Update(esc)
	if !s.confirmQuit {
		t.Fatal("expected quit confirmation")
	}
	if !strings.Contains(s.View(100, 30), "1 unanswered") {
		t.Error("confirmation should mention unanswered count")
	}
	s.Update(no)
	if s.confirmQuit {
		t.Fatal("expected confirmation dismissed")
	}

	s.Update(esc)
	_, cmd := s.Update(yes)
	msg := drain(t, s, cmd)
	if _, ok := msg.(router.ReplaceScreenMsg); !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", msg)
	}
	if s.result.ScorePercentage != 50 || len(s.result.Failures) != 0 {
		t.Errorf("early finish result = %+v", s.result)
	}
}

func TestQuizScreen_QuitWithNothingAnswered(t *testing.T) {
	s, _ := newTestScreen(nil)
	s.Update(esc)
	_, cmd := s.Update(yes)
	if cmd == nil {
		t.Fatal("expected command")
	}
	if _, ok := cmd().(router.DoneMsg); !ok {
		t.Error("expected DoneMsg when nothing was answered")
	}
}

func TestQuizScreen_FinisherError(t *testing.T) {
	s, _ := newTestScreen(func(context.Context, string, scoring.Result) (string, error) {
		return "", errors.New("db locked")
	})
	answer(s, "paris")
	s.Update(space)
	answer(s, "red, yellow, blue")
	_, cmd := s.Update(space)
	msg := drain(t, s, cmd).(router.ReplaceScreenMsg)
	if !strings.Contains(msg.Screen.View(100, 40), "db locked") {
		t.Error("summary should surface the save error")
	}
}

func TestQuizScreen_StatusAndHints(t *testing.T) {
	s, _ := newTestScreen(nil)
	answer(s, "paris")
	st := s.Status()
	if st.Answered != 1 || st.Total != 2 || st.Correct != 1 {
		t.Errorf("Status = %+v", st)
	}
	if hints := s.KeyHints(); len(hints) != 1 || hints[0].Key != "any key" {
		t.Errorf("feedback hints = %+v", hints)
	}
}

func TestQuizScreen_TickUpdatesElapsed(t *testing.T) {
	s, clock := newTestScreen(nil)
	clock.t = clock.t.Add(42 * time.Second)
	_, cmd := s.Update(tickMsg(clock.t))
	if cmd == nil {
		t.Error("expected next tick")
	}
	if !strings.Contains(s.View(100, 30), "42s") {
		t.Error("elapsed time not shown")
	}
}

func TestQuizScreen_ZeroThresholdPassesEverything(t *testing.T) {
	s := New(testQuiz(), Options{PassThreshold: 0})
	answer(s, "london")
	s.Update(space)
	answer(s, "green")
	_, cmd := s.Update(space)
	drain(t, s, cmd)
	if s.result.ScorePercentage != 0 || !s.result.Passed {
		t.Errorf("result = %+v, want a 0%% pass", s.result)
	}
}

func TestQuizScreen_RecordErrorReachesSummary(t *testing.T) {
	s, _ := newTestScreen(nil)
	if _, err := s.attempt.Record(s.current, "paris"); err != nil {
		t.Fatal(err)
	}
	s.input.Model.SetValue("paris")
	_, cmd := s.Update(enter)
	if cmd == nil {
		t.Fatal("expected a command for the rejected answer")
	}
	msg := cmd()
	fin, ok := msg.(finishedMsg)
	if !ok {
		t.Fatalf("expected finishedMsg, got %T", msg)
	}
	if !errors.Is(fin.Err, qz.ErrAttemptState) {
		t.Errorf("Err = %v, want ErrAttemptState", fin.Err)
	}
	if !s.finishing {
		t.Error("screen should stop taking input")
	}
	_, cmd = s.Update(msg)
	rep, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected summary screen")
	}
	if !strings.Contains(rep.Screen.View(100, 40), "already answered") {
		t.Error("summary should show the state error")
	}
}
