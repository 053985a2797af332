// Package settings loads drushcfg's own settings using Viper.
//
// These are settings of the tool, not the drush configuration it
// resolves: the environment variable prefix, the variant, local mode and
// extra paths. Precedence is flags > DRUSHCFG_* environment > settings
// file > defaults.
package settings

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/thoreinstein/drushcfg/internal/errors"
	"github.com/thoreinstein/drushcfg/internal/paths"
)

// EnvPrefix is the prefix of environment variables that override settings.
const EnvPrefix = "DRUSHCFG"

// DirEnv names the environment variable that replaces the settings
// directory.
const DirEnv = "DRUSHCFG_CONFIG_DIR"

// Setting keys.
const (
	KeyEnvPrefix   = "env_prefix"
	KeyVariant     = "variant"
	KeyLocal       = "local"
	KeyAliasPaths  = "alias_paths"
	KeyEnvFiles    = "env_files"
	KeyConfigPaths = "config_paths"
	KeyDrushBase   = "drush_base"
)

// Settings represents the settings file.
type Settings struct {
	EnvPrefix   string   `mapstructure:"env_prefix" yaml:"env_prefix"`
	Variant     string   `mapstructure:"variant" yaml:"variant"`
	Local       bool     `mapstructure:"local" yaml:"local"`
	AliasPaths  []string `mapstructure:"alias_paths" yaml:"alias_paths"`
	EnvFiles    []string `mapstructure:"env_files" yaml:"env_files"`
	ConfigPaths []string `mapstructure:"config_paths" yaml:"config_paths"`
	DrushBase   string   `mapstructure:"drush_base" yaml:"drush_base"`
}

// Dir returns the directory searched for config.yaml after the current
// directory.
func Dir() string {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir
	}
	return paths.SettingsDir()
}

// Init initializes Viper with default settings.
// Call this once at application startup before accessing settings.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(Dir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault(KeyEnvPrefix, "DRUSH_")
	viper.SetDefault(KeyVariant, "")
	viper.SetDefault(KeyLocal, false)
	viper.SetDefault(KeyAliasPaths, []string{})
	viper.SetDefault(KeyEnvFiles, []string{})
	viper.SetDefault(KeyConfigPaths, []string{})
	viper.SetDefault(KeyDrushBase, "")
}

// Load reads the settings file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches the default locations and falls back to
// defaults when no file exists.
func Load(path string) (*Settings, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file: defaults apply.
		case errors.As(err, &notFound), os.IsNotExist(err):
			return nil, errors.Wrapf(err, "settings file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading settings file")
		}
	}

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "unmarshaling settings")
	}
	return &s, nil
}

// File returns the settings file in use, or "" when none was read.
func File() string {
	if f := viper.ConfigFileUsed(); f != "" {
		if _, err := os.Stat(f); err == nil {
			abs, absErr := filepath.Abs(f)
			if absErr == nil {
				return abs
			}
			return f
		}
	}
	return ""
}
