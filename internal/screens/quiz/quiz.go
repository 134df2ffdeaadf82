// Package quiz is the interactive screen that runs one attempt.
package quiz

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	qz "github.com/abhisek/quizzer/internal/quiz"
	"github.com/abhisek/quizzer/internal/router"
	"github.com/abhisek/quizzer/internal/screen"
	"github.com/abhisek/quizzer/internal/screens/summary"
	"github.com/abhisek/quizzer/internal/scoring"
	"github.com/abhisek/quizzer/internal/ui/components"
	"github.com/abhisek/quizzer/internal/ui/layout"
)

// Finisher persists a finalized result for the quiz built from sourceName
// and returns the report path, if one was written. It runs outside the
// update loop.
type Finisher func(ctx context.Context, sourceName string, res scoring.Result) (reportPath string, err error)

// Options configures a QuizScreen.
type Options struct {
	PassThreshold float64
	Clock         func() time.Time
	OnFinish      Finisher
}

// QuizScreen asks each question in order and grades answers as they are
// submitted.
type QuizScreen struct {
	attempt *scoring.Attempt
	opts    Options
	started time.Time

	current     qz.Question
	input       components.AnswerInput
	feedback    bool
	lastCorrect bool
	confirmQuit bool
	finishing   bool
	elapsed     time.Duration
	result      scoring.Result
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)

// New starts an attempt at q. q must have at least one question.
func New(q *qz.Quiz, opts Options) *QuizScreen {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &QuizScreen{
		attempt: scoring.NewAttempt(q, scoring.WithClock(opts.Clock)),
		opts:    opts,
	}
	s.started = opts.Clock()
	s.current, _ = s.attempt.Next()
	s.input = newInput()
	return s
}

func newInput() components.AnswerInput {
	return components.NewAnswerInput("Type your answer...", 500)
}

func (s *QuizScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), tick())
}

func (s *QuizScreen) Title() string {
	return s.attempt.Quiz().ID
}

func (s *QuizScreen) Status() layout.Status {
	snap := s.attempt.Snapshot()
	return layout.Status{Answered: snap.Answered, Total: snap.Total, Correct: snap.CorrectCount}
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirmQuit:
		return []layout.KeyHint{{Key: "Y", Description: "Finish now"}, {Key: "N", Description: "Keep going"}}
	case s.feedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	}
	return []layout.KeyHint{{Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Finish early"}}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if s.finishing {
			return s, nil
		}
		s.elapsed = s.opts.Clock().Sub(s.started)
		return s, tick()

	case finishedMsg:
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: summary.New(s.result, msg.ReportPath, msg.Err)}
		}

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if !s.feedback && !s.confirmQuit && !s.finishing {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.finishing {
		return s, nil
	}
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s, s.finish()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if s.feedback {
		return s, s.advance()
	}

	switch key {
	case "esc":
		s.confirmQuit = true
		return s, nil
	case "enter":
		return s, s.submit()
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *QuizScreen) submit() tea.Cmd {
	correct, err := s.attempt.Record(s.current, s.input.Value())
	if err != nil {
		s.finishing = true
		if res, ok := s.attempt.Result(); ok {
			s.result = res
		} else {
			s.result = s.attempt.Snapshot()
		}
		return func() tea.Msg { return finishedMsg{Err: err} }
	}
	s.lastCorrect = correct
	s.input.Submit(correct)
	s.feedback = true
	return nil
}

func (s *QuizScreen) advance() tea.Cmd {
	s.feedback = false
	next, ok := s.attempt.Next()
	if !ok {
		return s.finish()
	}
	s.current = next
	s.input = newInput()
	return s.input.Init()
}

// finish finalizes the attempt. Unanswered questions count as incorrect.
// With nothing answered there is no result and the screen is left.
func (s *QuizScreen) finish() tea.Cmd {
	res, err := s.attempt.Finalize(s.opts.PassThreshold)
	if errors.Is(err, qz.ErrAttemptState) {
		return func() tea.Msg { return router.DoneMsg{} }
	}
	s.finishing = true
	s.result = res
	if err != nil {
		return func() tea.Msg { return finishedMsg{Err: err} }
	}
	onFinish, source := s.opts.OnFinish, s.attempt.Quiz().SourceName
	return func() tea.Msg {
		if onFinish == nil {
			return finishedMsg{}
		}
		path, err := onFinish(context.Background(), source, res)
		return finishedMsg{ReportPath: path, Err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
