package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dockm/internal/sqlite"
	"github.com/mesh-intelligence/dockm/pkg/types"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		sectionName  string
		positionName string
		ensure       bool
	)

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Add a file tile to a Dock section",
		Long: `Add a file tile for path to a section. The label is the last path
component without its extension, so "/Applications/Google Chrome.app" is
labelled "Google Chrome".

The section must already exist unless --ensure-section is given.`,
		Example: `  dockm add "/Applications/Google Chrome.app"
  dockm add /Applications/Notes.app --section persistent-apps --position beginning`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sectionName == "" {
				sectionName = a.cfg.DefaultSection
			}
			if positionName == "" {
				positionName = a.cfg.DefaultPosition
			}
			section, err := types.ParseSection(sectionName)
			if err != nil {
				return err
			}
			pos, err := types.ParsePosition(positionName)
			if err != nil {
				return err
			}
			entry, err := types.NewFileEntry(args[0])
			if err != nil {
				return err
			}

			doc, _, err := a.edit(sqlite.OpInsert, func(doc *types.Document) (sqlite.Edit, bool, error) {
				if ensure && doc.EnsureSection(section) {
					a.log.Debug("section created", "section", section)
				}
				idx, err := doc.Insert(section, entry, pos)
				if err != nil {
					return sqlite.Edit{}, false, err
				}
				return sqlite.Edit{
					Section:  string(section),
					GUID:     entry.GUID,
					Label:    entry.Tile.Label,
					URL:      entry.Tile.File.URLString,
					Position: pos.String(),
					Index:    idx,
				}, true, nil
			})
			if err != nil {
				return err
			}
			return a.renderEntries(cmd.OutOrStdout(), rowsFor(doc, []types.Section{section}))
		},
	}

	cmd.Flags().StringVarP(&sectionName, "section", "s", "", "target section (default from config: persistent-apps)")
	cmd.Flags().StringVarP(&positionName, "position", "p", "", "beginning, middle, or end (default from config: end)")
	cmd.Flags().BoolVar(&ensure, "ensure-section", false, "create the section if it is absent")
	return cmd
}
