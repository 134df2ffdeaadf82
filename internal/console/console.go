// Package console runs a quiz as a plain line-oriented prompt loop. It is
// used when stdin is not a terminal or when the TUI is disabled.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abhisek/quizzer/internal/quiz"
	"github.com/abhisek/quizzer/internal/scoring"
)

// QuitCommand abandons the quiz when typed as an answer.
const QuitCommand = ":quit"

// ErrNoAnswers is returned when the quiz is abandoned before the first
// answer, leaving nothing to grade.
var ErrNoAnswers = errors.New("quiz abandoned before any answer")

const width = 60

// Session drives one attempt over a reader and writer.
type Session struct {
	In            io.Reader
	Out           io.Writer
	PassThreshold float64

	// Clock overrides time.Now for elapsed time.
	Clock func() time.Time
}

// Run asks every question of qz in order and returns the finalized result.
// End of input, QuitCommand or ctx cancellation finalize early with the
// answers given so far.
func (s *Session) Run(ctx context.Context, qz *quiz.Quiz) (scoring.Result, error) {
	attempt := scoring.NewAttempt(qz, scoring.WithClock(s.Clock))
	s.printIntro(qz)

	scanner := bufio.NewScanner(s.In)
	total := len(qz.Questions)
	for i, q := range qz.Questions {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(s.Out, "\nQuestion %d/%d: %s\n", i+1, total, q.Text)
		fmt.Fprint(s.Out, "Your answer: ")
		if !scanner.Scan() {
			fmt.Fprint(s.Out, "\n\nQuiz interrupted.\n")
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, QuitCommand) {
			fmt.Fprintln(s.Out, "Quiz ended early.")
			break
		}

		correct, err := attempt.Record(q, line)
		if err != nil {
			return scoring.Result{}, err
		}
		if correct {
			fmt.Fprintln(s.Out, "✓ Correct!")
		} else {
			fmt.Fprintln(s.Out, "✗ Incorrect")
		}
	}
	if err := scanner.Err(); err != nil {
		return scoring.Result{}, fmt.Errorf("read answer: %w", err)
	}

	if attempt.Phase() == scoring.PhaseNotStarted {
		return scoring.Result{}, ErrNoAnswers
	}
	return attempt.Finalize(s.PassThreshold)
}

func (s *Session) printIntro(qz *quiz.Quiz) {
	rule := strings.Repeat("=", width)
	fmt.Fprintf(s.Out, "\n%s\n%s\n%s\n\n", rule, center("QUIZ RUNNER"), rule)
	fmt.Fprintf(s.Out, "Quiz ID: %s\n", qz.ID)
	fmt.Fprintf(s.Out, "Questions: %d\n", len(qz.Questions))
	fmt.Fprintf(s.Out, "Pass threshold: %.1f%%\n", s.PassThreshold)
	fmt.Fprintln(s.Out, "\nInstructions:")
	fmt.Fprintln(s.Out, "  - For multiple answers, separate with commas (e.g., 'a, b, c')")
	fmt.Fprintln(s.Out, "  - Answers are case-insensitive")
	fmt.Fprintln(s.Out, "  - Whitespace is ignored")
	fmt.Fprintf(s.Out, "\nType %s to finish early.\n", QuitCommand)
}

// PrintResult writes the end-of-quiz summary.
func PrintResult(w io.Writer, res scoring.Result) {
	rule := strings.Repeat("=", width)
	fmt.Fprintf(w, "\n%s\n%s\n%s\n\n", rule, center("QUIZ COMPLETE"), rule)
	fmt.Fprintf(w, "Score: %d/%d (%.1f%%)\n", res.CorrectCount, res.Total, res.ScorePercentage)
	if res.Passed {
		fmt.Fprintln(w, "Result: ✓ PASS")
	} else {
		fmt.Fprintln(w, "Result: ✗ FAIL")
	}
	if res.Answered < res.Total {
		fmt.Fprintf(w, "Answered: %d of %d\n", res.Answered, res.Total)
	}

	if len(res.Failures) > 0 {
		fmt.Fprintf(w, "\nFailed Questions (%d):\n", len(res.Failures))
		fmt.Fprintln(w, strings.Repeat("-", width))
		for _, f := range res.Failures {
			fmt.Fprintf(w, "\nQ%d: %s\n", f.QuestionID, f.QuestionText)
			fmt.Fprintf(w, "  Your answer: %s\n", f.Submitted)
			fmt.Fprintf(w, "  Correct answer: %s\n", f.Display)
		}
	} else if res.Answered == res.Total {
		fmt.Fprintln(w, "\nPerfect score! All answers correct!")
	}
	fmt.Fprintf(w, "\n%s\n", rule)
}

func center(s string) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
