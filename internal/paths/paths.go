package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// AppName is the directory name used for drushcfg's own settings.
const AppName = "drushcfg"

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// ResolveHome returns the user's home directory. os.UserHomeDir is consulted
// first; the XDG home is the fallback.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return home, nil
	}
	if xdg.Home != "" {
		return xdg.Home, nil
	}
	if err == nil {
		return "", ErrHomeDirNotFound
	}
	return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// SettingsDir returns the directory holding drushcfg's own settings file.
// Returns: <ConfigHome>/drushcfg
func SettingsDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// ExpandHome replaces a leading "~" or "~/" in p with home. Paths that do
// not start with "~" (including "~user" forms) are returned unchanged.
func ExpandHome(p, home string) string {
	if home == "" {
		return p
	}
	switch {
	case p == "~":
		return home
	case strings.HasPrefix(p, "~/"), strings.HasPrefix(p, "~"+string(filepath.Separator)):
		return filepath.Join(home, p[2:])
	}
	return p
}

// Canonicalize returns the absolute, cleaned form of p. On the OS
// filesystem, existing paths additionally have their symlinks resolved.
// An empty path stays empty.
func Canonicalize(fs afero.Fs, p string) string {
	if p == "" {
		return ""
	}
	if !filepath.IsAbs(p) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	}
	p = filepath.Clean(p)
	if isOsFs(fs) {
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			return resolved
		}
	}
	return p
}

// Exists reports whether p exists on fs.
func Exists(fs afero.Fs, p string) bool {
	if p == "" {
		return false
	}
	_, err := fs.Stat(p)
	return err == nil
}

// IsDir reports whether p exists on fs and is a directory.
func IsDir(fs afero.Fs, p string) bool {
	if p == "" {
		return false
	}
	ok, err := afero.IsDir(fs, p)
	return err == nil && ok
}

// Dedupe returns list with duplicate entries removed, comparing canonical
// forms and keeping the first occurrence. Returned entries are canonical.
// Empty entries are dropped.
func Dedupe(fs afero.Fs, list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, p := range list {
		c := Canonicalize(fs, p)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func isOsFs(fs afero.Fs) bool {
	switch fs.(type) {
	case *afero.OsFs, afero.OsFs:
		return true
	}
	return false
}
