// Package scoring grades submitted answers for one quiz attempt and
// computes the final pass/fail result.
package scoring

import (
	"fmt"
	"time"

	"github.com/abhisek/quizzer/internal/answer"
	"github.com/abhisek/quizzer/internal/quiz"
)

// NoAnswer is recorded as the submission for blank answers.
const NoAnswer = "(no answer)"

// DefaultPassThreshold is the conventional pass mark in percent. Callers
// pass it to Finalize explicitly.
const DefaultPassThreshold = 80.0

// Phase is the lifecycle phase of an attempt.
type Phase int

const (
	PhaseNotStarted Phase = iota // Created, nothing recorded yet
	PhaseInProgress              // At least one answer recorded
	PhaseFinalized               // Result computed, no further changes
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not started"
	case PhaseInProgress:
		return "in progress"
	case PhaseFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// StateError reports an operation that is not valid in the attempt's
// current phase.
type StateError struct {
	Op     string
	Phase  Phase
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s attempt (%s): %s", e.Op, e.Phase, e.Reason)
}

func (e *StateError) Unwrap() error { return quiz.ErrAttemptState }

// Failure is one incorrectly answered question.
type Failure struct {
	QuestionID   int    `json:"question_id"`
	QuestionText string `json:"question"`
	Submitted    string `json:"user_answer"`
	Display      string `json:"correct_answer"`
}

// Result is the outcome of an attempt. Before finalization only the
// counters are meaningful.
type Result struct {
	QuizID          string    `json:"quiz_id"`
	Total           int       `json:"total_questions"`
	CorrectCount    int       `json:"correct_answers"`
	Answered        int       `json:"answered"`
	Failures        []Failure `json:"failures"`
	ScorePercentage float64   `json:"score_percentage"`
	Passed          bool      `json:"passed"`
	Tier            Tier      `json:"tier,omitempty"`
	ElapsedSeconds  float64   `json:"time_spent"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Attempt accumulates answers for a single run of a quiz. It is owned by
// one driver and is not safe for concurrent use.
type Attempt struct {
	quiz     *quiz.Quiz
	now      func() time.Time
	started  time.Time
	phase    Phase
	answered map[int]bool
	correct  int
	failures []Failure
	result   Result
}

// AttemptOption configures an Attempt.
type AttemptOption func(*Attempt)

// WithClock replaces time.Now as the attempt's time source.
func WithClock(now func() time.Time) AttemptOption {
	return func(a *Attempt) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAttempt starts an attempt at q. The elapsed time is measured from
// this call.
func NewAttempt(q *quiz.Quiz, opts ...AttemptOption) *Attempt {
	a := &Attempt{
		quiz:     q,
		now:      time.Now,
		answered: make(map[int]bool, len(q.Questions)),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.started = a.now()
	return a
}

// Quiz returns the quiz being attempted.
func (a *Attempt) Quiz() *quiz.Quiz { return a.quiz }

// Phase returns the current lifecycle phase.
func (a *Attempt) Phase() Phase { return a.phase }

// Answered reports whether question id has been recorded.
func (a *Attempt) Answered(id int) bool { return a.answered[id] }

// Next returns the first question in presentation order that has not been
// answered yet.
func (a *Attempt) Next() (quiz.Question, bool) {
	for _, q := range a.quiz.Questions {
		if !a.answered[q.ID] {
			return q, true
		}
	}
	return quiz.Question{}, false
}

// Record grades submitted against q and updates the counters. An empty
// submission is graded as incorrect.
func (a *Attempt) Record(q quiz.Question, submitted string) (bool, error) {
	if a.phase == PhaseFinalized {
		return false, &StateError{Op: "record", Phase: a.phase, Reason: "attempt already finalized"}
	}
	if _, ok := a.quiz.Question(q.ID); !ok {
		return false, &StateError{Op: "record", Phase: a.phase,
			Reason: fmt.Sprintf("question %d is not part of quiz %s", q.ID, a.quiz.ID)}
	}
	if a.answered[q.ID] {
		return false, &StateError{Op: "record", Phase: a.phase,
			Reason: fmt.Sprintf("question %d already answered", q.ID)}
	}

	a.answered[q.ID] = true
	a.phase = PhaseInProgress

	correct := answer.IsCorrect(q.Canonical, submitted)
	if correct {
		a.correct++
	} else {
		a.failures = append(a.failures, Failure{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Submitted:    displaySubmitted(submitted),
			Display:      q.Display,
		})
	}
	return correct, nil
}

// Finalize computes the score against passThreshold (percent, inclusive)
// and freezes the attempt. Questions never recorded count as incorrect.
func (a *Attempt) Finalize(passThreshold float64) (Result, error) {
	if passThreshold < 0 || passThreshold > 100 {
		return Result{}, &quiz.ConfigError{Field: "pass_threshold_percent", Value: passThreshold}
	}
	switch {
	case a.phase == PhaseFinalized:
		return Result{}, &StateError{Op: "finalize", Phase: a.phase, Reason: "attempt already finalized"}
	case len(a.quiz.Questions) == 0:
		return Result{}, &StateError{Op: "finalize", Phase: a.phase, Reason: "quiz has no questions"}
	case a.phase == PhaseNotStarted:
		return Result{}, &StateError{Op: "finalize", Phase: a.phase, Reason: "no answers recorded"}
	}

	finished := a.now()
	res := a.Snapshot()
	res.ScorePercentage = 100.0 * float64(a.correct) / float64(res.Total)
	res.Passed = res.ScorePercentage >= passThreshold
	res.Tier = TierFor(res.ScorePercentage)
	res.ElapsedSeconds = finished.Sub(a.started).Seconds()
	res.CompletedAt = finished

	a.phase = PhaseFinalized
	a.result = res
	return res, nil
}

// Result returns the finalized result. ok is false until Finalize succeeds.
func (a *Attempt) Result() (Result, bool) {
	return a.result, a.phase == PhaseFinalized
}

// Snapshot returns the running counters without finalizing.
func (a *Attempt) Snapshot() Result {
	failures := make([]Failure, len(a.failures))
	copy(failures, a.failures)
	return Result{
		QuizID:       a.quiz.ID,
		Total:        len(a.quiz.Questions),
		CorrectCount: a.correct,
		Answered:     len(a.answered),
		Failures:     failures,
	}
}

func displaySubmitted(submitted string) string {
	if d := answer.Display(submitted); d != "" {
		return d
	}
	return NoAnswer
}
