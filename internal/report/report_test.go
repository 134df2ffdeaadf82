package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/quizzer/internal/scoring"
)

func failedResult() scoring.Result {
	return scoring.Result{
		QuizID:          "geo_20260206_103045_1",
		Total:           2,
		CorrectCount:    0,
		ScorePercentage: 0,
		ElapsedSeconds:  75,
		CompletedAt:     time.Date(2026, 2, 6, 10, 35, 0, 0, time.UTC),
		Failures: []scoring.Failure{
			{QuestionID: 1, QuestionText: "2+2?", Submitted: "5", Display: "4"},
			{QuestionID: 2, QuestionText: "<b>Capital</b> of France?", Submitted: "london", Display: "Paris"},
		},
	}
}

func TestRender_Failures(t *testing.T) {
	var b strings.Builder
	if err := Render(&b, failedResult(), "geo.csv"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := b.String()

	for _, want := range []string{
		"Quiz Report - geo_20260206_103045_1",
		"FAIL",
		"Failed Questions (2)",
		"Question #2",
		"&lt;b&gt;Capital&lt;/b&gt; of France?",
		"london",
		"Paris",
		"1m 15s",
		"geo.csv",
		ColorDanger,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(html, "Perfect Score!") {
		t.Error("failed attempt rendered as perfect")
	}
}

func TestRender_Perfect(t *testing.T) {
	res := failedResult()
	res.Failures = nil
	res.CorrectCount = 2
	res.ScorePercentage = 100
	res.Passed = true

	var b strings.Builder
	if err := Render(&b, res, ""); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := b.String()
	if !strings.Contains(html, "Perfect Score!") || !strings.Contains(html, "PASS") {
		t.Error("perfect report missing congratulations")
	}
	if !strings.Contains(html, "N/A") {
		t.Error("missing source should render as N/A")
	}
}

func TestScoreColor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, ColorSuccess},
		{80, ColorSuccess},
		{79.9, ColorWarning},
		{60, ColorWarning},
		{59.9, ColorDanger},
	}
	for _, tt := range tests {
		if got := ScoreColor(tt.score, 80); got != tt.want {
			t.Errorf("ScoreColor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestSaveAndPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	res := failedResult()

	path, err := Save(dir, res, "geo.csv")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(path) != "geo_20260206_103045_1_report.html" {
		t.Errorf("path = %s", path)
	}

	got, err := Path(dir, res.QuizID)
	if err != nil || got != path {
		t.Errorf("Path() = %q, %v; want %q", got, err, path)
	}

	for _, id := range []string{"missing", "../etc", "a/b", ""} {
		if _, err := Path(dir, id); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Path(%q) err = %v, want ErrNotExist", id, err)
		}
	}
}
