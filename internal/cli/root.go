// Package cli implements the dockm command-line interface: a thin wrapper
// that loads the Dock document, applies one edit, saves it, and renders the
// result as a table.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dockm/internal/backup"
	"github.com/mesh-intelligence/dockm/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	dockFile  string
	jsonMode  bool
	verbose   bool
	noBackup  bool
}

// app carries per-invocation state from PersistentPreRunE to subcommands.
type app struct {
	flags rootFlags
	cfg   types.Config
	log   *slog.Logger
}

// NewRootCmd creates the top-level "dockm" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "dockm",
		Short: "Edit the macOS Dock property list",
		Long: `dockm reads com.apple.dock.plist, applies one edit to a Dock section,
and writes the file back. Every write is preceded by a compressed backup and
recorded in an edit journal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log = newLogger(cmd.ErrOrStderr(), a.flags.verbose)
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := loadConfig(a.flags)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log.Debug("config resolved", "dock_file", cfg.DockFile, "data_dir", cfg.DataDir)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory for backups and journal")
	root.PersistentFlags().StringVar(&a.flags.dockFile, "dock-file", "", "Dock plist to edit (default: ~/Library/Preferences/com.apple.dock.plist)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log each step to stderr")
	root.PersistentFlags().BoolVar(&a.flags.noBackup, "no-backup", false, "skip the backup before writing")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	root.AddCommand(newVersionCmd())
	root.AddCommand(newListCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newRemoveCmd(a))
	root.AddCommand(newEnsureSectionCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newBackupsCmd(a))
	root.AddCommand(newRestoreCmd(a))

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dockm:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// userErrors are failures caused by the caller's input rather than the
// environment.
var userErrors = []error{
	types.ErrSectionMissing,
	types.ErrUnknownSection,
	types.ErrInvalidPosition,
	types.ErrEntryNotFound,
	types.ErrPrecondition,
	types.ErrDockFileEmpty,
	types.ErrKeepBackupsNegative,
	backup.ErrBackupNotFound,
	errUsage,
}

// errUsage marks malformed arguments.
var errUsage = errors.New("invalid argument")

func exitCode(err error) int {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}

// usageArgs marks positional argument errors as user errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}
