package scoring

import (
	"fmt"
	"strings"
)

const ruleWidth = 60

// Report renders the result as a plain text report.
func (r Result) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quiz Report - %s\n", r.QuizID)
	fmt.Fprintf(&b, "Date: %s\n", r.CompletedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Questions: %d\n", r.Total)
	fmt.Fprintf(&b, "Correct: %d\n", r.CorrectCount)
	fmt.Fprintf(&b, "Score: %.1f%%\n", r.ScorePercentage)
	fmt.Fprintf(&b, "Time Spent: %s\n", FormatElapsed(r.ElapsedSeconds))
	fmt.Fprintf(&b, "Result: %s\n\n", r.Verdict())

	if len(r.Failures) == 0 {
		b.WriteString("Perfect score! All answers correct.")
		return b.String()
	}

	fmt.Fprintf(&b, "Failures (%d):\n", len(r.Failures))
	b.WriteString(strings.Repeat("=", ruleWidth))
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "\nQ%d: %s\n", f.QuestionID, f.QuestionText)
		fmt.Fprintf(&b, "  Your answer: %s\n", f.Submitted)
		fmt.Fprintf(&b, "  Correct answer: %s\n", f.Display)
		b.WriteString(strings.Repeat("-", ruleWidth))
	}
	return b.String()
}

// Verdict is "PASS" or "FAIL".
func (r Result) Verdict() string {
	if r.Passed {
		return "PASS"
	}
	return "FAIL"
}

// FormatElapsed renders seconds as "1m 5s", or "42s" under a minute.
func FormatElapsed(seconds float64) string {
	total := int(seconds)
	mins, secs := total/60, total%60
	if mins > 0 {
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
	return fmt.Sprintf("%ds", secs)
}
