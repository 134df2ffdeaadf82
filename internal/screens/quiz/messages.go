package quiz

import "time"

// tickMsg drives the elapsed-time display.
type tickMsg time.Time

// finishedMsg carries the finalized result after the finisher ran.
type finishedMsg struct {
	ReportPath string
	Err        error
}
