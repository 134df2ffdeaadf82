// Package report renders finalized attempts as standalone HTML pages.
package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/quizzer/internal/scoring"
)

//go:embed report.html.tmpl
var reportHTML string

var reportTmpl = template.Must(template.New("report").Parse(reportHTML))

// Report colors.
const (
	ColorSuccess = "#28a745"
	ColorWarning = "#ffc107"
	ColorDanger  = "#dc3545"
)

// warningThreshold is the lowest score shown in the warning color.
const warningThreshold = 60.0

type view struct {
	Result      scoring.Result
	SourceName  string
	StatusColor string
	ScoreColor  string
	Elapsed     string
	GeneratedAt time.Time
}

// ScoreColor picks the color for a score: green at or above passThreshold,
// yellow from 60, red below.
func ScoreColor(score, passThreshold float64) string {
	switch {
	case score >= passThreshold:
		return ColorSuccess
	case score >= warningThreshold:
		return ColorWarning
	default:
		return ColorDanger
	}
}

// Render writes the HTML report for res.
func Render(w io.Writer, res scoring.Result, sourceName string) error {
	v := view{
		Result:      res,
		SourceName:  sourceName,
		StatusColor: ColorDanger,
		ScoreColor:  ScoreColor(res.ScorePercentage, scoring.DefaultPassThreshold),
		Elapsed:     scoring.FormatElapsed(res.ElapsedSeconds),
		GeneratedAt: time.Now(),
	}
	if res.Passed {
		v.StatusColor = ColorSuccess
	}
	if err := reportTmpl.Execute(w, v); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// FileName is the report file name for a quiz. Later attempts of the same
// quiz overwrite earlier reports.
func FileName(quizID string) string {
	return quizID + "_report.html"
}

// Save renders the report into dir and returns its path.
func Save(dir string, res scoring.Result, sourceName string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	var b strings.Builder
	if err := Render(&b, res, sourceName); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(res.QuizID))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Path returns the saved report for quizID inside dir, or an error wrapping
// os.ErrNotExist.
func Path(dir, quizID string) (string, error) {
	if quizID == "" || strings.ContainsAny(quizID, `/\`) || strings.Contains(quizID, "..") {
		return "", fmt.Errorf("report %q: %w", quizID, os.ErrNotExist)
	}
	path := filepath.Join(dir, FileName(quizID))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("report %q: %w", quizID, err)
	}
	return path, nil
}
