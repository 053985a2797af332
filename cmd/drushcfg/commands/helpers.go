package commands

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/drushcfg/internal/config"
	"github.com/thoreinstein/drushcfg/internal/environment"
	"github.com/thoreinstein/drushcfg/internal/errors"
	"github.com/thoreinstein/drushcfg/internal/logging"
)

// Terminal styles for headers and highlights. fatih/color disables them
// when stdout is not a terminal or NO_COLOR is set.
var (
	headerStyle = color.New(color.Bold, color.FgCyan)
	keyStyle    = color.New(color.FgGreen)
	dimStyle    = color.New(color.FgHiBlack)
	boldStyle   = color.New(color.Bold)
	okStyle     = color.New(color.FgGreen)
	warnStyle   = color.New(color.FgYellow)
	errStyle    = color.New(color.FgRed, color.Bold)
)

// resolution is a fully registered locator plus the environment it was
// built from.
type resolution struct {
	locator *config.Locator
	env     *environment.Environment
}

// buildLocator registers every source the command line asks for, in the
// order drush uses: environment, user/system/home, tool defaults, site,
// environment variables, overrides.
func buildLocator(cmd *cobra.Command) (*resolution, error) {
	s := currentSettings()
	logger := logging.FromContext(cmd.Context())

	env, err := environment.Detect(s.DrushBase)
	if err != nil {
		return nil, errors.NewSystemError(err, "Check that the working and home directories are accessible")
	}

	overrides, err := parseDefines(defines)
	if err != nil {
		return nil, errors.NewUserError(err, "Use --define key=value, e.g. -D options.uri=https://example.com")
	}

	loc := config.NewLocator(s.EnvPrefix,
		config.WithVariant(s.Variant),
		config.WithLogger(logger),
	)
	loc.SetLocal(s.Local)
	loc.AddEnvironment(env)
	loc.AddUserConfig(s.ConfigPaths, env.SystemConfigPath(), env.UserConfigPath())
	loc.AddDrushConfig(env.DrushBasePath())

	root := siteRoot
	if root == "" {
		root = env.Cwd()
	}
	loc.AddSitewideConfig(root)
	if composerRoot != "" {
		loc.SetComposerRoot(composerRoot)
	}

	loc.AddEnvVars(os.Environ())
	if err := loc.AddDotEnv(s.EnvFiles...); err != nil {
		return nil, configError(err)
	}
	loc.AddOverrides(overrides)

	logger.Debug("registered configuration sources",
		"local", s.Local,
		"variant", s.Variant,
		"prefix", loc.EnvPrefix())

	return &resolution{locator: loc, env: env}, nil
}

// mergedConfig merges the locator's sources, mapping parse failures to a
// user error naming the file.
func (r *resolution) mergedConfig() (*config.Config, error) {
	cfg, err := r.locator.Config()
	if err != nil {
		return nil, configError(err)
	}
	return cfg, nil
}

// configError converts a resolution failure into an ExitError.
func configError(err error) error {
	var perr *config.ParseError
	if errors.As(err, &perr) {
		return errors.NewConfigError(err, perr.Path)
	}
	return errors.NewSystemError(err, "")
}

// parseDefines turns key=value pairs into overrides. Values are parsed as
// YAML scalars or flow collections, so -D a=3 sets an integer and
// -D a=[x,y] a list.
func parseDefines(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Wrapf(errors.ErrInvalidFlag, "--define %q: expected key=value", pair)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
			value = raw
		}
		out[key] = value
	}
	return out, nil
}

// formatValue renders a configuration value on one line.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case map[string]any, []any:
		data, err := yaml.Marshal(t)
		if err != nil {
			return ""
		}
		return flowYAML(data)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// flowYAML collapses block YAML onto a single line for table cells.
func flowYAML(data []byte) string {
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, " ")
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
