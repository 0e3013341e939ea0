package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dockm/internal/sqlite"
	"github.com/mesh-intelligence/dockm/pkg/types"
)

func newRemoveCmd(a *app) *cobra.Command {
	var sectionName string

	cmd := &cobra.Command{
		Use:   "remove <guid>",
		Short: "Remove a Dock entry by GUID",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("%w: GUID %q is not a 32-bit unsigned integer", errUsage, args[0])
			}
			guid := uint32(n)

			var section types.Section
			if sectionName != "" {
				if section, err = types.ParseSection(sectionName); err != nil {
					return err
				}
			}

			doc, _, err := a.edit(sqlite.OpRemove, func(doc *types.Document) (sqlite.Edit, bool, error) {
				target := section
				if target == "" {
					loc, err := doc.Locate(guid)
					if err != nil {
						return sqlite.Edit{}, false, err
					}
					target = loc.Section
				}
				removed, err := doc.Remove(target, guid)
				if err != nil {
					return sqlite.Edit{}, false, err
				}
				section = target
				return sqlite.Edit{
					Section: string(target),
					GUID:    removed.GUID,
					Label:   removed.Tile.Label,
					URL:     removed.Tile.File.URLString,
				}, true, nil
			})
			if err != nil {
				return err
			}
			return a.renderEntries(cmd.OutOrStdout(), rowsFor(doc, []types.Section{section}))
		},
	}

	cmd.Flags().StringVarP(&sectionName, "section", "s", "", "section to remove from (default: search all sections)")
	return cmd
}
