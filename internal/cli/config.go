package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/dockm/internal/paths"
	"github.com/mesh-intelligence/dockm/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "DOCKM"
)

// Config keys.
const (
	cfgKeyDockFile        = "dock_file"
	cfgKeyDataDir         = "data_dir"
	cfgKeyBackup          = "backup"
	cfgKeyKeepBackups     = "keep_backups"
	cfgKeyDefaultSection  = "default_section"
	cfgKeyDefaultPosition = "default_position"
)

// envKeys are the config keys that DOCKM_<KEY> environment variables
// override.
var envKeys = []string{
	cfgKeyBackup,
	cfgKeyKeepBackups,
	cfgKeyDefaultSection,
	cfgKeyDefaultPosition,
}

// defaultConfig is written to config.yaml on first run.
var defaultConfig = types.Config{
	Backup:          true,
	KeepBackups:     20,
	DefaultSection:  string(types.SectionPersistentApps),
	DefaultPosition: types.PositionEnd.String(),
}

// loadConfig reads config.yaml from the resolved config directory using Viper,
// layers DOCKM_* environment variables over the non-path keys, resolves the
// Dock file and data directory (flag, config, env, default), and validates
// the result. The config directory and a default config.yaml are created on
// first run.
func loadConfig(f rootFlags) (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve config dir: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return types.Config{}, fmt.Errorf("create config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt)); err != nil {
		return types.Config{}, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyDockFile, "")
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyBackup, defaultConfig.Backup)
	v.SetDefault(cfgKeyKeepBackups, defaultConfig.KeepBackups)
	v.SetDefault(cfgKeyDefaultSection, defaultConfig.DefaultSection)
	v.SetDefault(cfgKeyDefaultPosition, defaultConfig.DefaultPosition)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	// Path keys are left unbound: their DOCKM_* variables rank below
	// config.yaml and are read by internal/paths.
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return types.Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.DockFile, err = paths.ResolveDockFile(f.dockFile, cfg.DockFile); err != nil {
		return types.Config{}, fmt.Errorf("resolve dock file: %w", err)
	}
	if cfg.DataDir, err = paths.ResolveDataDir(f.dataDir, cfg.DataDir); err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	if f.noBackup {
		cfg.Backup = false
	}

	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&defaultConfig)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# dockm configuration\n# dock_file and data_dir default to the platform locations.\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
