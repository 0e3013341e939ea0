package cli

import (
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent edits from the journal",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			defer j.Detach()

			edits, err := j.Recent(limit)
			if err != nil {
				return err
			}
			return a.renderEdits(cmd.OutOrStdout(), edits)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of edits to show (0 for all)")
	return cmd
}
