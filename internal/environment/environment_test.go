package environment

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	base := t.TempDir()

	env, err := Detect(base)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, cwd, env.Cwd())
	assert.NotEmpty(t, env.HomeDir())
	assert.Equal(t, base, env.DrushBasePath())
	assert.Equal(t, filepath.Join(env.HomeDir(), ".drush"), env.UserConfigPath())
	assert.Equal(t, runtime.GOOS == "windows", env.Windows)
	if runtime.GOOS != "windows" {
		assert.Equal(t, "/etc/drush", env.SystemConfigPath())
	}
}

func TestDetect_DefaultsBaseToExecutableDir(t *testing.T) {
	env, err := Detect("")
	require.NoError(t, err)
	assert.NotEmpty(t, env.DrushBasePath())
	assert.True(t, filepath.IsAbs(env.DrushBasePath()))
}

func TestSystemConfigDir_Windows(t *testing.T) {
	t.Setenv("ALLUSERSPROFILE", filepath.Join("C:", "ProgramData"))
	assert.Equal(t, filepath.Join("C:", "ProgramData", "Drush"), SystemConfigDir(true))

	t.Setenv("ALLUSERSPROFILE", "")
	assert.Empty(t, SystemConfigDir(true))
}

func TestExports(t *testing.T) {
	env := &Environment{
		WorkDir:   "/home/user",
		Home:      "/home/user",
		DrushBase: "/opt/drush",
		SystemDir: "/etc/drush",
		UserDir:   "/home/user/.drush",
		User:      "user",
		TmpDir:    "/tmp",
	}

	got := env.Exports()

	assert.Equal(t, map[string]any{
		"env": map[string]any{
			"cwd":        "/home/user",
			"home":       "/home/user",
			"user":       "user",
			"tmp":        "/tmp",
			"is-windows": false,
		},
		"drush": map[string]any{
			"base-dir":   "/opt/drush",
			"system-dir": "/etc/drush",
			"user-dir":   "/home/user/.drush",
		},
	}, got)
}

func TestExports_OmitsEmptyFacts(t *testing.T) {
	env := &Environment{WorkDir: "/srv"}

	got := env.Exports()

	assert.Equal(t, map[string]any{
		"env": map[string]any{"cwd": "/srv", "is-windows": false},
	}, got)
}
