package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dockm/internal/sqlite"
	"github.com/mesh-intelligence/dockm/pkg/types"
)

func newEnsureSectionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-section <section>",
		Short: "Create a Dock section if it is absent",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := types.ParseSection(args[0])
			if err != nil {
				return err
			}

			created := false
			_, _, err = a.edit(sqlite.OpEnsure, func(doc *types.Document) (sqlite.Edit, bool, error) {
				created = doc.EnsureSection(section)
				return sqlite.Edit{Section: string(section)}, created, nil
			})
			if err != nil {
				return err
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"section": section, "created": created})
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created section %s\n", section)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Section %s already present\n", section)
			}
			return nil
		},
	}
}
