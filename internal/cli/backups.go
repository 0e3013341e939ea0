package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dockm/internal/backup"
	"github.com/mesh-intelligence/dockm/internal/dockplist"
	"github.com/mesh-intelligence/dockm/internal/sqlite"
)

func newBackupsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List stored backups of the Dock file, newest first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			backups, err := backup.NewStore(a.cfg.DataDir).List()
			if err != nil {
				return err
			}
			return a.renderBackups(cmd.OutOrStdout(), backups)
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-id>",
		Short: "Replace the Dock file with a stored backup",
		Long: `Replace the Dock file with the contents of a backup. The backup must
decode as a valid Dock document. The current file is backed up first, so a
restore can itself be undone.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			data, err := backup.NewStore(a.cfg.DataDir).Read(id)
			if err != nil {
				return err
			}
			if _, err := dockplist.Decode(data); err != nil {
				return fmt.Errorf("backup %s: %w", id, err)
			}

			// The current file may be the reason for the restore, so it is
			// backed up as raw bytes without decoding.
			var backupID string
			original, err := os.ReadFile(a.cfg.DockFile)
			switch {
			case err == nil:
				if backupID, err = a.backup(original); err != nil {
					return err
				}
			case !errors.Is(err, os.ErrNotExist):
				return fmt.Errorf("read dock file: %w", err)
			}
			if err := dockplist.WriteBytes(a.cfg.DockFile, data); err != nil {
				return fmt.Errorf("write dock file: %w", err)
			}
			a.log.Debug("backup restored", "id", id, "path", a.cfg.DockFile)

			if err := a.record(sqlite.Edit{
				Operation: sqlite.OpRestore,
				Label:     id,
				BackupID:  backupID,
				DockFile:  a.cfg.DockFile,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from backup %s\n", a.cfg.DockFile, id)
			return nil
		},
	}
}
