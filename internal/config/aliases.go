package config

import (
	"path/filepath"

	"github.com/thoreinstein/drushcfg/internal/paths"
)

// AliasPathKey lists extra alias directories in configuration.
const AliasPathKey = "drush.paths.alias-path"

// GetSiteAliasPaths returns the directories to search for site alias
// files, in order:
//
//  1. <dir>/sites for every existing drush directory of the site source
//  2. extraPaths, in caller order
//  3. the AliasPathKey entries of the merged configuration
//  4. <composer root>/drush/sites
//
// Entries are deduplicated by canonical path, keeping the first
// occurrence. Existence is not checked. "~" and ${key} tokens in extras
// and configured entries are expanded; relative entries resolve against
// env.Cwd().
//
// GetSiteAliasPaths merges the configuration if that has not happened yet.
func (l *Locator) GetSiteAliasPaths(extraPaths []string, env Environment) []string {
	if env == nil {
		env = l.env
	}
	cfg, err := l.Config()
	if err != nil {
		l.logger.Warn("alias paths computed without merged configuration", "error", err)
		cfg = nil
	}

	var home, cwd string
	if env != nil {
		home, cwd = env.HomeDir(), env.Cwd()
	}

	var out []string
	for _, src := range l.sources {
		if src.Scope != ScopeProject {
			continue
		}
		for _, dir := range src.Dirs {
			out = append(out, filepath.Join(dir, "sites"))
		}
	}
	for _, p := range extraPaths {
		out = append(out, expandPath(p, cfg, home, cwd))
	}
	for _, p := range cfg.GetStringSlice(AliasPathKey) {
		out = append(out, expandPath(p, cfg, home, cwd))
	}
	if l.composerRoot != "" {
		out = append(out, filepath.Join(l.composerRoot, "drush", "sites"))
	}

	return paths.Dedupe(l.fs, out)
}
