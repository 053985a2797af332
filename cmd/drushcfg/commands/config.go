package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/drushcfg/internal/config"
	"github.com/thoreinstein/drushcfg/internal/errors"
	"github.com/thoreinstein/drushcfg/internal/redact"
)

// Output formats of config list.
const (
	formatYAML = "yaml"
	formatJSON = "json"
	formatTOML = "toml"
)

var (
	configFormat      string
	configShowSecrets bool
	configGetJSON     bool
)

func init() {
	configListCmd.Flags().StringVar(&configFormat, "format", formatYAML, "output format: yaml, json, toml")
	configCmd.PersistentFlags().BoolVar(&configShowSecrets, "show-secrets", false, "reveal values that look like secrets")
	configGetCmd.Flags().BoolVar(&configGetJSON, "json", false, "output the value as JSON")

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configHasCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the merged drush configuration",
	Long: `Show the drush configuration after merging every source.

Without a subcommand, lists the whole configuration. Values whose key or
content looks like a secret are masked unless --show-secrets is given.`,
	Example: `  # List everything
  drushcfg config

  # Read one value
  drushcfg config get options.uri

  # Script-friendly existence check
  drushcfg config has drush.paths.alias-path && echo set

See Also: drushcfg provenance, drushcfg sources`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the merged configuration",
	Long:  `List the merged configuration as YAML, JSON or TOML.`,
	Example: `  drushcfg config list
  drushcfg config list --format json --local

See Also: drushcfg config get`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by dotted key.

Lists are printed one item per line; maps are printed as YAML.`,
	Example: `  drushcfg config get drush.paths.alias-path
  drushcfg config get options --json

See Also: drushcfg config has, drushcfg provenance`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configHasCmd = &cobra.Command{
	Use:   "has <key>",
	Short: "Check whether a configuration key is set",
	Long:  `Print true or false, and exit with status 1 when the key is not set.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigHas,
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return writeConfigList(os.Stdout, cfg, configFormat)
}

// writeConfigList allows injecting a writer for testing.
func writeConfigList(w io.Writer, cfg *config.Config, format string) error {
	tree := cfg.AllSettings()
	if !configShowSecrets {
		tree = redact.Tree(tree)
	}

	switch format {
	case formatYAML:
		data, err := yaml.Marshal(tree)
		if err != nil {
			return errors.Wrap(err, "marshaling config")
		}
		_, err = w.Write(data)
		return err
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	case formatTOML:
		data, err := toml.Marshal(tree)
		if err != nil {
			return errors.Wrap(err, "marshaling config")
		}
		_, err = w.Write(data)
		return err
	}
	return errors.NewUserError(
		errors.Wrapf(errors.ErrInvalidFlag, "unknown format %q", format),
		"Use --format yaml, json or toml")
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return writeConfigValue(os.Stdout, cfg, args[0])
}

// writeConfigValue allows injecting a writer for testing.
func writeConfigValue(w io.Writer, cfg *config.Config, key string) error {
	value, ok := cfg.Lookup(key)
	if !ok {
		return errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "key %q", key),
			"Run 'drushcfg config list' to see the available keys")
	}
	if !configShowSecrets {
		if m, isMap := value.(map[string]any); isMap {
			value = redact.Tree(m)
		} else {
			value = redact.Value(key, value)
		}
	}

	if configGetJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}

	switch v := value.(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(w, formatValue(item))
		}
	case map[string]any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "marshaling value")
		}
		_, err = w.Write(data)
		return err
	default:
		fmt.Fprintln(w, formatValue(v))
	}
	return nil
}

func runConfigHas(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return writeConfigHas(os.Stdout, cfg, args[0])
}

// writeConfigHas allows injecting a writer for testing. A missing key
// yields an ExitError without a message.
func writeConfigHas(w io.Writer, cfg *config.Config, key string) error {
	has := cfg.Has(key)
	fmt.Fprintln(w, has)
	if !has {
		return errors.NewExitError(nil, errors.ExitUser)
	}
	return nil
}

// loadConfig builds the locator from the command line and merges it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	res, err := buildLocator(cmd)
	if err != nil {
		return nil, err
	}
	return res.mergedConfig()
}
