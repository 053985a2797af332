// Package config resolves layered drush configuration.
//
// A Locator collects named sources of configuration, each with a
// precedence rank:
//
//	environment  facts about the running process (env.cwd, env.home, ...)
//	drush        the tool's own drush.yml defaults
//	system       the system-wide configuration directory
//	home         ~/.drush, or the configured user directory
//	user         files and directories passed explicitly with --config
//	site         the drush directories around the site root
//	envvars      prefixed environment variables and dotenv files
//	cli          command-line overrides
//
// File-backed sources are described by templates that resolve to
// candidate files (drush.yml, then drush{VARIANT}.yml when a variant is
// set). Missing files are skipped silently. Calling Config merges the
// active sources lowest rank first: maps are merged recursively and any
// other value replaces what was there, so the higher-ranked source wins.
// The merged Config records which source and file supplied every leaf.
//
// In local mode only the site source and the synthetic runtime sources
// take part in the merge. Global sources remain visible through Sources
// and Describe so diagnostics can still show them.
//
// A loaded file may name further files under drush.paths.config. They are
// loaded as part of the same source, directly after the file naming them.
//
// The Locator is frozen once Config has been called. Register every source
// first.
package config
