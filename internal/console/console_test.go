package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/quizzer/internal/quiz"
	"github.com/abhisek/quizzer/internal/scoring"
)

func testQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		ID: "geo_1",
		Questions: []quiz.Question{
			{ID: 1, Text: "2+2?", Canonical: []string{"4"}, Display: "4"},
			{ID: 2, Text: "Capital of France?", Canonical: []string{"paris"}, Display: "Paris"},
			{ID: 3, Text: "Primary colors?", Canonical: []string{"blue", "red", "yellow"}, Display: "Red, Blue, Yellow"},
		},
	}
}

func run(t *testing.T, input string) (scoring.Result, string, error) {
	t.Helper()
	var out bytes.Buffer
	s := &Session{In: strings.NewReader(input), Out: &out, PassThreshold: scoring.DefaultPassThreshold}
	res, err := s.Run(context.Background(), testQuiz())
	return res, out.String(), err
}

func TestRun_AllAnswered(t *testing.T) {
	res, out, err := run(t, "4\n PARIS \nyellow, red, blue\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.CorrectCount != 3 || !res.Passed {
		t.Errorf("result = %+v", res)
	}
	for _, want := range []string{"Quiz ID: geo_1", "Question 1/3: 2+2?", "Question 3/3", "✓ Correct!"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRun_WrongAndBlank(t *testing.T) {
	res, out, err := run(t, "5\n\nred, blue\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.CorrectCount != 0 || res.Passed {
		t.Errorf("result = %+v", res)
	}
	if len(res.Failures) != 3 || res.Failures[1].Submitted != scoring.NoAnswer {
		t.Errorf("failures = %+v", res.Failures)
	}
	if !strings.Contains(out, "✗ Incorrect") {
		t.Error("missing incorrect marker")
	}
}

func TestRun_QuitEarly(t *testing.T) {
	res, out, err := run(t, "4\n:quit\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Answered != 1 || res.Total != 3 || res.CorrectCount != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(res.Failures) != 0 {
		t.Errorf("unanswered questions listed as failures: %+v", res.Failures)
	}
	if !strings.Contains(out, "ended early") {
		t.Error("missing early-exit message")
	}
}

func TestRun_EOF(t *testing.T) {
	res, _, err := run(t, "4\nparis\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Answered != 2 {
		t.Errorf("Answered = %d, want 2", res.Answered)
	}
}

func TestRun_NothingAnswered(t *testing.T) {
	_, _, err := run(t, ":QUIT\n")
	if !errors.Is(err, ErrNoAnswers) {
		t.Errorf("err = %v, want ErrNoAnswers", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Session{In: strings.NewReader("4\n"), Out: &bytes.Buffer{}, PassThreshold: 80}
	if _, err := s.Run(ctx, testQuiz()); !errors.Is(err, ErrNoAnswers) {
		t.Errorf("err = %v, want ErrNoAnswers", err)
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	PrintResult(&buf, scoring.Result{
		Total: 2, CorrectCount: 1, Answered: 2, ScorePercentage: 50,
		Failures: []scoring.Failure{{QuestionID: 2, QuestionText: "Capital of France?", Submitted: "london", Display: "Paris"}},
	})
	out := buf.String()
	for _, want := range []string{"Score: 1/2 (50.0%)", "FAIL", "Q2: Capital of France?", "Correct answer: Paris"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintResult(&buf, scoring.Result{Total: 1, CorrectCount: 1, Answered: 1, ScorePercentage: 100, Passed: true})
	if !strings.Contains(buf.String(), "Perfect score!") {
		t.Error("missing perfect score line")
	}
}
