// Package commands implements the CLI commands for drushcfg.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thoreinstein/drushcfg/cmd"
	"github.com/thoreinstein/drushcfg/internal/errors"
	"github.com/thoreinstein/drushcfg/internal/logging"
	"github.com/thoreinstein/drushcfg/internal/settings"
)

// Resolution flags. Those bound to viper are read back through
// currentSettings so the settings file and DRUSHCFG_* variables apply when
// the flag is not given.
var (
	configPaths  []string
	siteRoot     string
	composerRoot string
	localMode    bool
	variant      string
	envPrefix    string
	defines      []string
	envFiles     []string
	aliasPaths   []string
	drushBase    string
	settingsFile string
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// loadedSettings and settingsLoadErr hold the result of loading the
// settings file.
var (
	loadedSettings  *settings.Settings
	settingsLoadErr error
)

// flagBindings maps settings keys to the persistent flags overriding them.
var flagBindings = map[string]string{
	settings.KeyConfigPaths: "config",
	settings.KeyLocal:       "local",
	settings.KeyVariant:     "variant",
	settings.KeyEnvPrefix:   "env-prefix",
	settings.KeyEnvFiles:    "env-file",
	settings.KeyAliasPaths:  "alias-path",
	settings.KeyDrushBase:   "drush-base",
}

func init() {
	cobra.OnInitialize(initSettings)

	flags := rootCmd.PersistentFlags()
	flags.StringSliceVarP(&configPaths, "config", "c", nil,
		"additional drush.yml file or directory (repeatable)")
	flags.StringVarP(&siteRoot, "root", "r", "",
		"site root whose drush directories are searched (default: current directory)")
	flags.StringVar(&composerRoot, "composer-root", "",
		"project root whose drush/sites directory holds aliases")
	flags.BoolVar(&localMode, "local", false,
		"ignore system, home and --config files; use only site configuration")
	flags.StringVar(&variant, "variant", "",
		"also load drush{VARIANT}.yml next to every drush.yml")
	flags.StringVar(&envPrefix, "env-prefix", "DRUSH_",
		"prefix of environment variables that override configuration (empty disables)")
	flags.StringArrayVarP(&defines, "define", "D", nil,
		"override a configuration value: key=value (repeatable)")
	flags.StringSliceVar(&envFiles, "env-file", nil,
		"dotenv file feeding environment overrides (repeatable)")
	flags.StringSliceVar(&aliasPaths, "alias-path", nil,
		"extra directory to search for site aliases (repeatable)")
	flags.StringVar(&drushBase, "drush-base", "",
		"directory holding the tool's default drush.yml (default: executable directory)")
	flags.StringVar(&settingsFile, "settings", "",
		"drushcfg settings file (default: ./config.yaml or $XDG_CONFIG_HOME/drushcfg/config.yaml)")

	flags.CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv, -vvv)")
	flags.BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	flags.StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	flags.StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	for key, flag := range flagBindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("drushcfg version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initSettings() {
	settings.Init()
	loadedSettings, settingsLoadErr = settings.Load(settingsFile)
}

var rootCmd = &cobra.Command{
	Use:   "drushcfg",
	Short: "Inspect layered drush configuration",
	Long: `drushcfg resolves drush configuration the way drush does and shows
where every value came from.

Configuration is merged from, lowest precedence first: the environment,
the tool's own drush.yml, /etc/drush, ~/.drush, --config files, the site's
drush directories, DRUSH_* environment variables and --define overrides.
With --local only the site and runtime values are used.`,
	Example: `  # Show the merged configuration
  drushcfg config list

  # Where did a value come from?
  drushcfg provenance options.uri

  # Which files were considered?
  drushcfg sources --root /var/www/web

  See Also: drushcfg alias-paths, drushcfg version`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkSettings(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.Wrap(errors.ErrInvalidFlag, "--quiet with --verbose"),
			"cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("DRUSHCFG_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkSettings reports settings that failed to load or validate.
func checkSettings(cmd *cobra.Command) error {
	// Skip validation for help and version commands
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}

	if settingsLoadErr != nil {
		return errors.NewConfigError(errors.Mark(settingsLoadErr, errors.ErrInvalidConfig), settingsFile)
	}

	if errs := settings.Validate(currentSettings()); len(errs) > 0 {
		for _, err := range errs[1:] {
			logging.FromContext(cmd.Context()).Error("invalid setting", "error", err)
		}
		return errors.NewUserError(errors.Mark(errs[0], errors.ErrInvalidConfig),
			"Fix the flag or the value in your drushcfg settings file")
	}
	return nil
}

// currentSettings returns the effective settings: flags over DRUSHCFG_*
// variables over the settings file over defaults.
func currentSettings() *settings.Settings {
	if loadedSettings == nil {
		return &settings.Settings{EnvPrefix: envPrefix, Variant: variant, Local: localMode}
	}
	return loadedSettings
}

// Execute runs the root command.
func Execute() error {
	return errors.Wrap(rootCmd.Execute(), "executing root command")
}
