package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizzer/internal/csvsource"
	"github.com/abhisek/quizzer/internal/partition"
	"github.com/abhisek/quizzer/internal/quiz"
	"github.com/abhisek/quizzer/internal/quizfile"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Generate quiz files from a CSV question pool",
	Long: "Reads question,answer rows from FILE and writes one or more shuffled quizzes " +
		"to <output>/<file stem>/. Existing quizzes in that folder can be replaced.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringP("output", "o", "", "Quiz root directory (default from config)")
	f.IntP("number", "n", 0, "Number of quiz variations; 0 picks one per max questions (default from config)")
	f.IntP("max-questions", "m", 0, "Maximum questions per quiz (default from config)")
	f.String("prefix", "", "Quiz ID prefix (default: CSV file name)")
	f.Uint64("seed", 0, "Shuffle seed for reproducible quizzes")
	f.BoolP("yes", "y", false, "Delete existing quizzes in the output folder without asking")
	f.Bool("keep", false, "Keep existing quizzes in the output folder without asking")
	importCmd.MarkFlagsMutuallyExclusive("yes", "keep")
}

func runImport(cmd *cobra.Command, args []string) error {
	src := args[0]
	out := cmd.OutOrStdout()
	f := cmd.Flags()

	root, _ := f.GetString("output")
	if root == "" {
		root = cfg.QuizzesDir
	}
	maxQ, _ := f.GetInt("max-questions")
	if maxQ == 0 {
		maxQ = cfg.Import.MaxQuestions
	}
	variations := cfg.Import.Variations
	if f.Changed("number") {
		variations, _ = f.GetInt("number")
	}
	prefix, _ := f.GetString("prefix")
	seed, _ := f.GetUint64("seed")

	pool, err := csvsource.ReadFile(src)
	if err != nil {
		return err
	}
	ilog := log.WithFields(logrus.Fields{"source": src, "encoding": pool.Encoding})
	for _, row := range pool.SkippedRows {
		fmt.Fprintf(out, "Warning: skipping row %d (empty question or answer)\n", row)
	}
	ilog.WithField("rows", len(pool.Pairs)).Info("read question pool")

	if variations == 0 && maxQ > 0 {
		variations = partition.AutoVariations(len(pool.Pairs), maxQ)
	}
	res, err := partition.Partition(pool.Pairs, partition.Config{
		Variations: variations,
		MaxPerQuiz: maxQ,
		SourceName: filepath.Base(src),
		Prefix:     prefix,
		Seed:       seed,
	})
	switch {
	case errors.Is(err, quiz.ErrEmptyPool):
		return fmt.Errorf("no usable questions in %s", src)
	case err != nil:
		return err
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(out, "Warning: %v\n", s)
	}

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dir := filepath.Join(root, stem)
	cleaner := &quizfile.Cleaner{Dir: dir, Confirm: importConfirmer(cmd)}
	deleted, err := cleaner.Clean()
	if err != nil {
		return err
	}
	if len(deleted) > 0 {
		fmt.Fprintf(out, "Deleted %d existing quiz file(s)\n", len(deleted))
	}

	var paths []string
	total := 0
	for i := range res.Quizzes {
		q := &res.Quizzes[i]
		path, err := quizfile.Save(dir, q)
		if err != nil {
			return err
		}
		paths = append(paths, path)
		total += len(q.Questions)
		fmt.Fprintf(out, "Created %s (%d questions)\n", path, len(q.Questions))
	}

	created := res.Quizzes[0].CreatedAt
	if err := quizfile.SaveImportRecord(root, &quizfile.ImportRecord{
		LastImport:     created,
		SourceCSV:      src,
		CSVBasename:    stem,
		OutputDir:      dir,
		QuizFiles:      paths,
		NumQuizzes:     len(paths),
		TotalQuestions: total,
		SkippedRows:    len(pool.SkippedRows) + len(res.Skipped),
	}); err != nil {
		return err
	}

	printCoverage(out, res)
	ilog.WithFields(logrus.Fields{"quizzes": len(paths), "dir": dir}).Info("import complete")
	return nil
}

func printCoverage(w io.Writer, res *partition.Result) {
	fmt.Fprintf(w, "\n%d quiz(zes) from %d usable question(s)", len(res.Quizzes), res.PoolSize)
	if len(res.Usage) == 0 {
		fmt.Fprintln(w)
		return
	}
	counts := slices.Collect(maps.Values(res.Usage))
	lo, hi := slices.Min(counts), slices.Max(counts)
	if len(res.Usage) < res.PoolSize {
		lo = 0
	}
	if lo == hi {
		fmt.Fprintf(w, "; each question used %d time(s)\n", lo)
		return
	}
	fmt.Fprintf(w, "; each question used %d to %d time(s)\n", lo, hi)
}

// importConfirmer picks the delete policy from --yes/--keep, falling back
// to a prompt on stdin.
func importConfirmer(cmd *cobra.Command) quizfile.Confirmer {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return quizfile.Always(true)
	}
	if keep, _ := cmd.Flags().GetBool("keep"); keep {
		return quizfile.Always(false)
	}
	return quizfile.ConfirmFunc(func(existing []string) (bool, error) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Found %d existing quiz file(s):\n", len(existing))
		for _, p := range existing {
			fmt.Fprintf(out, "  %s\n", filepath.Base(p))
		}
		return promptYes(cmd.InOrStdin(), out, "Delete them before importing?")
	})
}

// promptYes asks question and reads a y/n answer. End of input means no.
func promptYes(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
