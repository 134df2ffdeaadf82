package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recent attempts and the overall pass rate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			return fmt.Errorf("--limit must be positive")
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		repo := st.AttemptRepo()

		sum, err := repo.Summary(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if sum.Attempts == 0 {
			fmt.Fprintln(out, "No attempts recorded yet.")
			return nil
		}

		recent, err := repo.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-19s  %-36s  %7s  %6s  %s\n", "Completed", "Quiz", "Correct", "Score", "Result")
		fmt.Fprintln(out, strings.Repeat("─", 84))
		for _, a := range recent {
			verdict := "FAIL"
			if a.Passed {
				verdict = "PASS"
			}
			fmt.Fprintf(out, "%-19s  %-36s  %3d/%-3d  %5.1f%%  %s\n",
				a.CompletedAt.Local().Format("2006-01-02 15:04:05"), truncate(a.QuizID, 36),
				a.Correct, a.Total, a.Score, verdict)
		}

		fmt.Fprintf(out, "\n%d attempt(s), %d passed (%.1f%%), average score %.1f%%\n",
			sum.Attempts, sum.Passed, sum.PassRate(), sum.AverageScore)
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("limit", 10, "Number of recent attempts to list")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
