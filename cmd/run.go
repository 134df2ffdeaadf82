package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizzer/internal/console"
	"github.com/abhisek/quizzer/internal/quiz"
	"github.com/abhisek/quizzer/internal/quizfile"
	"github.com/abhisek/quizzer/internal/report"
	"github.com/abhisek/quizzer/internal/scoring"
	"github.com/abhisek/quizzer/internal/screens/home"
	quizscreen "github.com/abhisek/quizzer/internal/screens/quiz"
	"github.com/abhisek/quizzer/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run [QUIZ.json]",
	Short: "Take a quiz",
	Long: "Runs a quiz interactively. Without a file the quiz picker opens in a terminal, " +
		"otherwise the first quiz of the last import is used.",
	Args: cobra.MaximumNArgs(1),
	RunE: runQuiz,
}

func init() {
	f := runCmd.Flags()
	f.Float64("pass-threshold", 0, "Pass threshold in percent (default from config)")
	f.String("report-dir", "", "Directory for HTML reports (default from config)")
	f.Bool("plain", false, "Use the line-oriented prompt instead of the full-screen UI")
}

// runner finalizes and persists attempts for the run and root commands.
type runner struct {
	repo       store.AttemptRepo
	reportsDir string
	threshold  float64
	log        logrus.FieldLogger
}

func newRunner(cmd *cobra.Command, repo store.AttemptRepo) (*runner, error) {
	r := &runner{repo: repo, reportsDir: cfg.ReportsDir, threshold: cfg.Run.PassThreshold, log: log}
	if cmd.Flags().Changed("pass-threshold") {
		r.threshold, _ = cmd.Flags().GetFloat64("pass-threshold")
		if r.threshold < 0 || r.threshold > 100 {
			return nil, &quiz.ConfigError{Field: "pass_threshold", Value: r.threshold}
		}
	}
	if dir, _ := cmd.Flags().GetString("report-dir"); dir != "" {
		r.reportsDir = dir
	}
	return r, nil
}

// finish stores res and writes its HTML report. Storage failures are
// logged; only a report failure is returned.
func (r *runner) finish(ctx context.Context, sourceName string, res scoring.Result) (string, error) {
	flog := r.log.WithFields(logrus.Fields{"quiz_id": res.QuizID, "score": res.ScorePercentage})
	if r.repo != nil {
		if _, err := r.repo.SaveResult(ctx, sourceName, res); err != nil {
			flog.WithError(err).Warn("failed to store result")
		} else if cfg.Run.HistoryLimit > 0 {
			if _, err := r.repo.Prune(ctx, cfg.Run.HistoryLimit); err != nil {
				flog.WithError(err).Warn("failed to prune history")
			}
		}
	}
	path, err := report.Save(r.reportsDir, res, sourceName)
	if err != nil {
		return "", err
	}
	flog.WithField("report", path).Info("attempt finished")
	return path, nil
}

func (r *runner) quizOptions() quizscreen.Options {
	return quizscreen.Options{PassThreshold: r.threshold}
}

func runQuiz(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	plain, _ := cmd.Flags().GetBool("plain")
	interactive := !plain && isTerminal()

	var path string
	switch {
	case len(args) == 1:
		path = args[0]
	case interactive:
		return runPicker(cmd)
	default:
		rec, err := quizfile.LoadImportRecord(cfg.QuizzesDir)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no quiz given and no previous import in %s", cfg.QuizzesDir)
		}
		if err != nil {
			return err
		}
		if len(rec.QuizFiles) == 0 {
			return fmt.Errorf("last import in %s produced no quizzes", cfg.QuizzesDir)
		}
		path = rec.QuizFiles[0]
	}

	qz, err := quizfile.Load(path)
	if err != nil {
		return err
	}
	if len(qz.Questions) == 0 {
		return fmt.Errorf("quiz %s has no questions", qz.ID)
	}

	repo, closeStore := historyRepo()
	defer closeStore()
	r, err := newRunner(cmd, repo)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if interactive {
		var (
			res        scoring.Result
			done       bool
			reportPath string
		)
		opts := r.quizOptions()
		opts.OnFinish = func(ctx context.Context, source string, got scoring.Result) (string, error) {
			res, done = got, true
			p, err := r.finish(ctx, source, got)
			reportPath = p
			return p, err
		}
		if err := runTUI(ctx, quizscreen.New(qz, opts)); err != nil {
			return err
		}
		if !done {
			fmt.Fprintln(out, "Quiz ended with no answers; nothing recorded.")
			return nil
		}
		fmt.Fprintln(out, res.Report())
		if reportPath != "" {
			fmt.Fprintf(out, "\nHTML report: %s\n", reportPath)
		}
		return nil
	}

	sess := &console.Session{In: cmd.InOrStdin(), Out: out, PassThreshold: r.threshold}
	res, err := sess.Run(ctx, qz)
	if errors.Is(err, console.ErrNoAnswers) {
		fmt.Fprintln(out, "\nNo answers given; nothing recorded.")
		return nil
	}
	if err != nil {
		return err
	}
	console.PrintResult(out, res)
	reportPath, err := r.finish(context.WithoutCancel(ctx), qz.SourceName, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "HTML report: %s\n", reportPath)
	return nil
}

// runPicker opens the quiz picker, the full-screen entry point.
func runPicker(cmd *cobra.Command) error {
	repo, closeStore := historyRepo()
	defer closeStore()
	r, err := newRunner(cmd, repo)
	if err != nil {
		return err
	}

	opts := r.quizOptions()
	opts.OnFinish = r.finish
	return runTUI(cmd.Context(), home.New(home.Options{
		QuizzesDir: cfg.QuizzesDir,
		TestMode:   cfg.Server.TestMode,
		Repo:       repo,
		Quiz:       opts,
	}))
}

// historyRepo opens the store, or returns a nil repo when it is
// unavailable so a quiz can still be taken.
func historyRepo() (store.AttemptRepo, func()) {
	st, err := openStore()
	if err != nil {
		log.WithError(err).Warn("attempt history unavailable")
		return nil, func() {}
	}
	return st.AttemptRepo(), func() { _ = st.Close() }
}
