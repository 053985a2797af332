package config

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/thoreinstein/drushcfg/internal/paths"
)

// ConfigFileName is the base configuration filename searched in every
// configuration directory.
const ConfigFileName = "drush.yml"

// TemplateKind selects the resolution rule of a Template.
type TemplateKind int

const (
	// KindSystem searches {systemConfigPath}.
	KindSystem TemplateKind = iota
	// KindHome searches {userConfigPath}, or {home}/.drush when unset.
	KindHome
	// KindSite searches the drush directories around a site root.
	KindSite
	// KindDrush names the tool's own defaults file {base}/drush.yml.
	KindDrush
	// KindUser is an explicit --config path, either a file or a directory.
	KindUser
)

// Template is a declared search pattern for a source. Base is the
// directory or path the kind is applied to.
type Template struct {
	Kind TemplateKind
	Base string
}

// VariantFileName returns the variant filename, e.g. drushVARIANT.yml.
func VariantFileName(variant string) string {
	if variant == "" {
		return ""
	}
	return "drush" + variant + ".yml"
}

// resolver expands templates into concrete paths for one runtime context.
type resolver struct {
	fs      afero.Fs
	env     Environment
	variant string
}

// resolve returns the existing directories a template searches and the
// canonical candidate files inside them. Missing directories produce
// nothing.
func (r resolver) resolve(t Template) (dirs, files []string) {
	switch t.Kind {
	case KindSystem:
		return r.searchDirs([]string{t.Base}, true)

	case KindHome:
		base := t.Base
		if base == "" && r.env != nil && r.env.HomeDir() != "" {
			base = filepath.Join(r.env.HomeDir(), ".drush")
		}
		return r.searchDirs([]string{base}, true)

	case KindSite:
		if t.Base == "" {
			return nil, nil
		}
		return r.searchDirs([]string{
			filepath.Join(filepath.Dir(t.Base), "drush"),
			filepath.Join(t.Base, "drush"),
			filepath.Join(t.Base, "sites", "all", "drush"),
		}, true)

	case KindDrush:
		return r.searchDirs([]string{t.Base}, false)

	case KindUser:
		if t.Base == "" {
			return nil, nil
		}
		base := t.Base
		if r.env != nil {
			base = paths.ExpandHome(base, r.env.HomeDir())
			if !filepath.IsAbs(base) && r.env.Cwd() != "" {
				base = filepath.Join(r.env.Cwd(), base)
			}
		}
		if paths.IsDir(r.fs, base) {
			return r.searchDirs([]string{base}, true)
		}
		return nil, []string{paths.Canonicalize(r.fs, base)}
	}
	return nil, nil
}

// searchDirs returns the candidate files of every existing directory in
// dirs: drush.yml, then the variant file when a variant is configured and
// withVariant is set.
func (r resolver) searchDirs(dirs []string, withVariant bool) (found, files []string) {
	for _, dir := range dirs {
		if !paths.IsDir(r.fs, dir) {
			continue
		}
		dir = paths.Canonicalize(r.fs, dir)
		found = append(found, dir)
		files = append(files, filepath.Join(dir, ConfigFileName))
		if withVariant && r.variant != "" {
			files = append(files, filepath.Join(dir, VariantFileName(r.variant)))
		}
	}
	return found, files
}
