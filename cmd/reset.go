package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored attempts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		out := cmd.OutOrStdout()
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			ok, err := promptYes(cmd.InOrStdin(), out, "Delete all stored attempts?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "Nothing deleted.")
				return nil
			}
		}

		n, err := st.AttemptRepo().Reset(cmd.Context())
		if err != nil {
			return err
		}
		log.WithField("deleted", n).Info("attempt history reset")
		fmt.Fprintf(out, "Deleted %d attempt(s).\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
