package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dockm/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [section]",
		Short: "List Dock entries",
		Long: `List the entries of one section, or of every present section.

Valid sections: persistent-apps, persistent-others, recent-apps, static-apps, static-others`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := a.load()
			if err != nil {
				return err
			}

			sections := types.AllSections
			if len(args) == 1 {
				s, err := types.ParseSection(args[0])
				if err != nil {
					return err
				}
				if !doc.HasSection(s) {
					return fmt.Errorf("%w: %s", types.ErrSectionMissing, s)
				}
				sections = []types.Section{s}
			}
			return a.renderEntries(cmd.OutOrStdout(), rowsFor(doc, sections))
		},
	}
}
