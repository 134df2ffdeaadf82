//go:build cucumber

package scoring

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"

	"github.com/abhisek/quizzer/internal/partition"
	"github.com/abhisek/quizzer/internal/quiz"
)

// TestAttemptFeatures runs the grading scenarios through godog.
func TestAttemptFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "attempt",
		ScenarioInitializer: initializeAttemptScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{filepath.Join("testdata", "attempt.feature")},
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

type attemptState struct {
	pairs   []quiz.Pair
	quiz    *quiz.Quiz
	attempt *Attempt
	result  Result
}

func initializeAttemptScenario(ctx *godog.ScenarioContext) {
	s := &attemptState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*s = attemptState{}
		return ctx, nil
	})

	ctx.Step(`^a pool with the questions:$`, s.givenPool)
	ctx.Step(`^the pool is partitioned into (\d+) quiz(?:zes)? of at most (\d+) questions$`, s.partitioned)
	ctx.Step(`^I answer "([^"]*)" with "([^"]*)"$`, s.answer)
	ctx.Step(`^I finish with a pass threshold of (\d+)$`, s.finish)
	ctx.Step(`^(\d+) answers are correct$`, s.correctCount)
	ctx.Step(`^the score is ([\d.]+) percent$`, s.score)
	ctx.Step(`^the attempt passed$`, func() error { return s.passed(true) })
	ctx.Step(`^the attempt failed$`, func() error { return s.passed(false) })
	ctx.Step(`^there are no failures$`, s.noFailures)
	ctx.Step(`^the failure for "([^"]*)" shows "([^"]*)"$`, s.failureShows)
}

func (s *attemptState) givenPool(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		s.pairs = append(s.pairs, quiz.Pair{Text: row.Cells[0].Value, Answer: row.Cells[1].Value})
	}
	return nil
}

func (s *attemptState) partitioned(variations, maxPerQuiz int) error {
	res, err := partition.Partition(s.pairs, partition.Config{
		Variations: variations,
		MaxPerQuiz: maxPerQuiz,
		Seed:       1,
	})
	if err != nil {
		return err
	}
	if len(res.Quizzes) != variations {
		return fmt.Errorf("got %d quizzes, want %d", len(res.Quizzes), variations)
	}
	s.quiz = &res.Quizzes[0]
	s.attempt = NewAttempt(s.quiz)
	return nil
}

func (s *attemptState) answer(text, submitted string) error {
	for _, q := range s.quiz.Questions {
		if q.Text == text {
			_, err := s.attempt.Record(q, submitted)
			return err
		}
	}
	return fmt.Errorf("no question %q in quiz", text)
}

func (s *attemptState) finish(threshold int) error {
	res, err := s.attempt.Finalize(float64(threshold))
	s.result = res
	return err
}

func (s *attemptState) correctCount(want int) error {
	if s.result.CorrectCount != want {
		return fmt.Errorf("correct = %d, want %d", s.result.CorrectCount, want)
	}
	return nil
}

func (s *attemptState) score(want float64) error {
	if s.result.ScorePercentage != want {
		return fmt.Errorf("score = %v, want %v", s.result.ScorePercentage, want)
	}
	return nil
}

func (s *attemptState) passed(want bool) error {
	if s.result.Passed != want {
		return fmt.Errorf("passed = %v, want %v", s.result.Passed, want)
	}
	return nil
}

func (s *attemptState) noFailures() error {
	if len(s.result.Failures) != 0 {
		return fmt.Errorf("got %d failures", len(s.result.Failures))
	}
	return nil
}

func (s *attemptState) failureShows(text, display string) error {
	for _, f := range s.result.Failures {
		if f.QuestionText == text {
			if f.Display != display {
				return fmt.Errorf("failure %q shows %q, want %q", text, f.Display, display)
			}
			return nil
		}
	}
	return fmt.Errorf("no failure recorded for %q", text)
}
