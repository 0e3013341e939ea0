package types

import "errors"

// Config holds the settings the CLI resolves from flags, environment, and
// config.yaml before touching the Dock file.
type Config struct {
	DockFile        string `mapstructure:"dock_file" yaml:"dock_file,omitempty"`
	DataDir         string `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	Backup          bool   `mapstructure:"backup" yaml:"backup"`
	KeepBackups     int    `mapstructure:"keep_backups" yaml:"keep_backups"`
	DefaultSection  string `mapstructure:"default_section" yaml:"default_section"`
	DefaultPosition string `mapstructure:"default_position" yaml:"default_position"`
}

// Config validation errors.
var (
	ErrDockFileEmpty       = errors.New("dock file must not be empty")
	ErrKeepBackupsNegative = errors.New("keep_backups must not be negative")
)

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.DockFile == "" {
		return ErrDockFileEmpty
	}
	if c.KeepBackups < 0 {
		return ErrKeepBackupsNegative
	}
	if _, err := ParseSection(c.DefaultSection); err != nil {
		return err
	}
	if _, err := ParsePosition(c.DefaultPosition); err != nil {
		return err
	}
	return nil
}
