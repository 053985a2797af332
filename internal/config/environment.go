package config

// Environment supplies the read-only runtime facts the locator needs.
// environment.Environment is the production implementation.
type Environment interface {
	Cwd() string
	HomeDir() string
	DrushBasePath() string
	SystemConfigPath() string
	UserConfigPath() string
}

// Exporter is implemented by environments that publish more facts than the
// Environment accessors, such as env.user or env.tmp.
type Exporter interface {
	Exports() map[string]any
}

// environmentData returns the tree published by AddEnvironment.
func environmentData(env Environment) map[string]any {
	if exp, ok := env.(Exporter); ok {
		if tree, err := normalizeMap(exp.Exports()); err == nil {
			return tree
		}
	}

	tree := map[string]any{}
	set := func(key, value string) {
		if value != "" {
			setPath(tree, splitKeyUnchecked(key), value)
		}
	}
	set("env.cwd", env.Cwd())
	set("env.home", env.HomeDir())
	set("drush.base-dir", env.DrushBasePath())
	set("drush.system-dir", env.SystemConfigPath())
	set("drush.user-dir", env.UserConfigPath())
	return tree
}
