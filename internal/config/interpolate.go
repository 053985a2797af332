package config

import (
	"path/filepath"
	"regexp"

	"github.com/spf13/cast"

	"github.com/thoreinstein/drushcfg/internal/paths"
)

var tokenPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_.-]+)\}`)

// Interpolate replaces ${dotted.key} tokens in s with values from cfg.
// Tokens naming missing keys, or keys holding maps, are left as written.
func Interpolate(s string, cfg *Config) string {
	if cfg == nil {
		return s
	}
	return tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		key := tokenPattern.FindStringSubmatch(tok)[1]
		v, ok := cfg.Lookup(key)
		if !ok {
			return tok
		}
		if _, isMap := v.(map[string]any); isMap {
			return tok
		}
		return cast.ToString(v)
	})
}

// expandPath interpolates p, expands a leading "~" with home and makes the
// result absolute relative to base.
func expandPath(p string, cfg *Config, home, base string) string {
	p = Interpolate(p, cfg)
	p = paths.ExpandHome(p, home)
	if p == "" || filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}
