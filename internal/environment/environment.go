// Package environment describes the runtime facts the configuration
// resolver consumes: working directory, home directory, the tool's install
// path and the system and user configuration directories.
package environment

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/drushcfg/internal/paths"
)

// Environment is an immutable snapshot of runtime facts. The zero value is
// usable; empty fields simply contribute nothing.
type Environment struct {
	// WorkDir is the current working directory.
	WorkDir string
	// Home is the user's home directory.
	Home string
	// DrushBase is the directory the tool is installed in. Its drush.yml
	// holds tool defaults.
	DrushBase string
	// SystemDir is the system-wide configuration directory (/etc/drush).
	SystemDir string
	// UserDir is the user configuration directory (~/.drush).
	UserDir string
	// User is the login name of the current user.
	User string
	// TmpDir is the temporary directory.
	TmpDir string
	// Windows is true when running on Windows.
	Windows bool
}

// Detect builds an Environment for the running process. basePath names the
// tool's install directory; when empty the directory of the running
// executable is used.
func Detect(basePath string) (*Environment, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "getting working directory")
	}

	home, err := paths.ResolveHome()
	if err != nil {
		return nil, err
	}

	if basePath == "" {
		if exe, exeErr := os.Executable(); exeErr == nil {
			if resolved, evalErr := filepath.EvalSymlinks(exe); evalErr == nil {
				exe = resolved
			}
			basePath = filepath.Dir(exe)
		}
	}

	windows := runtime.GOOS == "windows"
	return &Environment{
		WorkDir:   cwd,
		Home:      home,
		DrushBase: basePath,
		SystemDir: SystemConfigDir(windows),
		UserDir:   filepath.Join(home, ".drush"),
		User:      currentUser(),
		TmpDir:    os.TempDir(),
		Windows:   windows,
	}, nil
}

// SystemConfigDir returns the conventional system-wide configuration
// directory: /etc/drush, or %ALLUSERSPROFILE%\Drush on Windows.
func SystemConfigDir(windows bool) string {
	if windows {
		if base := os.Getenv("ALLUSERSPROFILE"); base != "" {
			return filepath.Join(base, "Drush")
		}
		return ""
	}
	return "/etc/drush"
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return os.Getenv("USERNAME")
}

// Cwd returns the working directory.
func (e *Environment) Cwd() string { return e.WorkDir }

// HomeDir returns the home directory.
func (e *Environment) HomeDir() string { return e.Home }

// DrushBasePath returns the tool's install directory.
func (e *Environment) DrushBasePath() string { return e.DrushBase }

// SystemConfigPath returns the system-wide configuration directory.
func (e *Environment) SystemConfigPath() string { return e.SystemDir }

// UserConfigPath returns the user configuration directory.
func (e *Environment) UserConfigPath() string { return e.UserDir }

// Exports returns the facts published as configuration under the env and
// drush namespaces. Empty facts are omitted.
func (e *Environment) Exports() map[string]any {
	envNS := map[string]any{
		"is-windows": e.Windows,
	}
	drushNS := map[string]any{}

	put := func(ns map[string]any, key, value string) {
		if value != "" {
			ns[key] = value
		}
	}
	put(envNS, "cwd", e.WorkDir)
	put(envNS, "home", e.Home)
	put(envNS, "user", e.User)
	put(envNS, "tmp", e.TmpDir)
	put(drushNS, "base-dir", e.DrushBase)
	put(drushNS, "system-dir", e.SystemDir)
	put(drushNS, "user-dir", e.UserDir)

	out := map[string]any{"env": envNS}
	if len(drushNS) > 0 {
		out["drush"] = drushNS
	}
	return out
}
