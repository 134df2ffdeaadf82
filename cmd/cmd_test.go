package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizzer/internal/quiz"
	"github.com/abhisek/quizzer/internal/quizfile"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportRunStats(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "geo.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"question,answer\n"+
			"Capital of France?,Paris\n"+
			"Primary colors?,\"Red, Blue, Yellow\"\n"+
			"Blank row?,\n"), 0o644))

	quizzes := filepath.Join(dir, "quizzes")
	reports := filepath.Join(dir, "reports")
	common := []string{"--db", filepath.Join(dir, "q.db"), "--log-file", filepath.Join(dir, "q.log")}

	out, err := execute(t, "", append([]string{"import", csvPath, "-o", quizzes, "-n", "1", "--seed", "7", "--yes"}, common...)...)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Warning: skipping row 4")
	assert.Contains(t, out, "(2 questions)")

	rec, err := quizfile.LoadImportRecord(quizzes)
	require.NoError(t, err)
	require.Len(t, rec.QuizFiles, 1)
	assert.Equal(t, 1, rec.SkippedRows)

	qz, err := quizfile.Load(rec.QuizFiles[0])
	require.NoError(t, err)
	answers := map[int]string{1: "paris", 2: "yellow, RED, blue"}
	var stdin strings.Builder
	for _, q := range qz.Questions {
		stdin.WriteString(answers[q.ID] + "\n")
	}

	out, err = execute(t, stdin.String(), append([]string{"run", rec.QuizFiles[0], "--plain", "--report-dir", reports}, common...)...)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Score: 2/2 (100.0%)")
	assert.Contains(t, out, "HTML report:")
	_, err = os.Stat(filepath.Join(reports, qz.ID+"_report.html"))
	assert.NoError(t, err)

	out, err = execute(t, "", append([]string{"stats"}, common...)...)
	require.NoError(t, err, out)
	assert.Contains(t, out, qz.ID)
	assert.Contains(t, out, "1 attempt(s), 1 passed")
}

func TestRun_NoAnswers(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "capitals.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Capital of Peru?,Lima\n"), 0o644))
	common := []string{"--db", filepath.Join(dir, "q.db"), "--log-file", filepath.Join(dir, "q.log")}
	quizzes := filepath.Join(dir, "quizzes")

	_, err := execute(t, "", append([]string{"import", csvPath, "-o", quizzes, "-n", "1", "--yes"}, common...)...)
	require.NoError(t, err)
	rec, err := quizfile.LoadImportRecord(quizzes)
	require.NoError(t, err)

	out, err := execute(t, ":quit\n", append([]string{"run", rec.QuizFiles[0], "--plain"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing recorded")
}

func TestImport_NegativeNumberRejected(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "capitals.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Capital of Peru?,Lima\n"), 0o644))
	quizzes := filepath.Join(dir, "quizzes")

	_, err := execute(t, "", "import", csvPath, "-o", quizzes, "--number=-2", "--yes",
		"--db", filepath.Join(dir, "q.db"), "--log-file", filepath.Join(dir, "q.log"))
	require.ErrorIs(t, err, quiz.ErrInvalidConfiguration)
	_, err = os.Stat(filepath.Join(quizzes, "capitals"))
	assert.True(t, os.IsNotExist(err), "nothing should be written")
}

func TestImport_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "", "import", filepath.Join(dir, "nope.csv"), "--db", filepath.Join(dir, "q.db"))
	assert.Error(t, err)
}
