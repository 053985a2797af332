package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/drushcfg/internal/config"
	"github.com/thoreinstein/drushcfg/internal/errors"
	"github.com/thoreinstein/drushcfg/internal/logging"
	"github.com/thoreinstein/drushcfg/internal/settings"
)

type stubEnv struct{ cwd, home string }

func (e stubEnv) Cwd() string              { return e.cwd }
func (e stubEnv) HomeDir() string          { return e.home }
func (e stubEnv) DrushBasePath() string    { return "/opt/drush" }
func (e stubEnv) SystemConfigPath() string { return "/etc/drush" }
func (e stubEnv) UserConfigPath() string   { return "" }

func writeFile(t *testing.T, fs afero.Fs, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), mode))
	require.NoError(t, fs.Chmod(path, mode))
}

func newFileCheck(fs afero.Fs, sources ...config.SourceInfo) *FileCheck {
	c := NewFileCheck(fs, config.NewFileLoader(fs), sources)
	c.checkPerms = true
	return c
}

func TestFileCheck_Pass(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/srv/web/drush/drush.yml", "options:\n  uri: https://example.com\n", 0o644)

	c := newFileCheck(fs, config.SourceInfo{
		Name:   config.SourceSite,
		Active: true,
		Paths:  []string{"/srv/web/drush/drush.yml", "/srv/web/drush/missing.yml"},
	})
	result := c.Run()

	assert.Equal(t, SeverityPass, result.Status)
	assert.Equal(t, "all 1 configuration files parse cleanly", result.Message)
	assert.Empty(t, result.Issues)
	assert.Equal(t, "config-files", result.Name)
	assert.Equal(t, "files", result.Category)
}

func TestFileCheck_Issues(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		mode     os.FileMode
		want     Severity
		problem  string
		wantHint string
	}{
		{
			name:     "parse error",
			content:  "options: [unclosed\n",
			mode:     0o644,
			want:     SeverityError,
			wantHint: "fix the syntax of /site/drush/drush.yml",
		},
		{
			name:     "world writable",
			content:  "options:\n  uri: x\n",
			mode:     0o666,
			want:     SeverityWarning,
			problem:  "file is world-writable (security risk)",
			wantHint: "chmod o-w /site/drush/drush.yml",
		},
		{
			name:     "world readable secret",
			content:  "db:\n  password: hunter2\n",
			mode:     0o644,
			want:     SeverityWarning,
			problem:  `world-readable file holds secret "db.password"`,
			wantHint: "chmod o-r /site/drush/drush.yml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			path := "/site/drush/drush.yml"
			writeFile(t, fs, path, tt.content, tt.mode)

			result := newFileCheck(fs, config.SourceInfo{Name: config.SourceSite, Active: true, Paths: []string{path}}).Run()

			assert.Equal(t, tt.want, result.Status)
			require.Len(t, result.Issues, 1)
			issue := result.Issues[0]
			assert.Equal(t, path, issue.Path)
			assert.Equal(t, config.SourceSite, issue.Source)
			assert.Equal(t, tt.wantHint, issue.FixHint)
			if tt.problem != "" {
				assert.Equal(t, tt.problem, issue.Problem)
			}
		})
	}
}

func TestFileCheck_SecretNotReadable(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/site/drush/drush.yml", "db:\n  password: hunter2\n", 0o600)

	result := newFileCheck(fs, config.SourceInfo{Name: config.SourceSite, Active: true, Paths: []string{"/site/drush/drush.yml"}}).Run()
	assert.Equal(t, SeverityPass, result.Status)
}

func TestFileCheck_IncludedFilesAndDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/site/drush/drush.yml", "a: 1\n", 0o644)
	writeFile(t, fs, "/site/extra/drush.yml", "b: [\n", 0o644)
	require.NoError(t, fs.MkdirAll("/site/dir.yml", 0o755))
	writeFile(t, fs, "/site/.env", "A=1\n", 0o644)

	result := newFileCheck(fs,
		config.SourceInfo{
			Name:   config.SourceSite,
			Active: true,
			Paths:  []string{"/site/drush/drush.yml", "/site/dir.yml"},
			Loaded: []string{"/site/drush/drush.yml", "/site/extra/drush.yml"},
		},
		config.SourceInfo{Name: config.SourceEnvVars, Scope: "runtime", Active: true, Loaded: []string{"/site/.env"}},
	).Run()

	assert.Equal(t, SeverityError, result.Status)
	assert.Equal(t, "2 problem(s) in 3 configuration files", result.Message)
	require.Len(t, result.Issues, 2)
	assert.Equal(t, "/site/dir.yml", result.Issues[0].Path)
	assert.Equal(t, "expected a file but found a directory", result.Issues[0].Problem)
	assert.Equal(t, "/site/extra/drush.yml", result.Issues[1].Path)
}

func TestFileCheck_SkipsInactiveSources(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/etc/drush/drush.yml", "test: [\n", 0o644)
	writeFile(t, fs, "/srv/web/drush/drush.yml", "a: 1\n", 0o644)

	result := newFileCheck(fs,
		config.SourceInfo{Name: config.SourceSystem, Scope: "global", Paths: []string{"/etc/drush/drush.yml"}},
		config.SourceInfo{Name: config.SourceSite, Scope: "project", Active: true, Paths: []string{"/srv/web/drush/drush.yml"}},
	).Run()

	assert.Equal(t, SeverityPass, result.Status)
	assert.Equal(t, "all 1 configuration files parse cleanly", result.Message)
}

func TestFileCheck_SkipsPermissions(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/site/drush/drush.yml", "db:\n  password: x\n", 0o666)

	c := newFileCheck(fs, config.SourceInfo{Name: config.SourceSite, Active: true, Paths: []string{"/site/drush/drush.yml"}})
	c.checkPerms = false
	assert.Equal(t, SeverityPass, c.Run().Status)
}

func TestSecretKey(t *testing.T) {
	tree := map[string]any{
		"options": map[string]any{"uri": "x"},
		"api":     map[string]any{"token": "t", "auth": "a"},
	}
	assert.Equal(t, "api.auth", secretKey("", tree))
	assert.Empty(t, secretKey("", map[string]any{"password": map[string]any{"policy": 3}}))
}

func TestSettingsCheck(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		result := NewSettingsCheck(&settings.Settings{EnvPrefix: "DRUSH_"}, "/home/u/.config/drushcfg/config.yaml").Run()
		assert.Equal(t, SeverityPass, result.Status)
		assert.Contains(t, result.Message, "config.yaml")
	})

	t.Run("invalid", func(t *testing.T) {
		result := NewSettingsCheck(&settings.Settings{EnvPrefix: "1BAD", Variant: "a/b"}, "").Run()
		assert.Equal(t, SeverityError, result.Status)
		assert.Equal(t, "2 invalid setting(s)", result.Message)
		require.Len(t, result.Issues, 2)
		assert.Contains(t, result.Issues[0].Problem, settings.KeyEnvPrefix)
	})
}

type failingResolver struct{ err error }

func (r failingResolver) Config() (*config.Config, error) { return nil, r.err }

func TestResolveCheck(t *testing.T) {
	t.Run("merged", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/srv/web/drush/drush.yml", "options:\n  uri: https://example.com\n", 0o644)

		loc := config.NewLocator("TEST_", config.WithFs(fs), config.WithLogger(logging.ForTest(t)))
		loc.AddEnvironment(stubEnv{cwd: "/srv/web", home: "/home/u"})
		loc.AddSitewideConfig("/srv/web")
		loc.AddOverrides(map[string]any{"cli.flag": true})

		result := NewResolveCheck(loc).Run()
		assert.Equal(t, SeverityPass, result.Status)
		assert.Contains(t, result.Message, "from 3 sources")
	})

	t.Run("parse error", func(t *testing.T) {
		perr := &config.ParseError{Source: config.SourceSite, Path: "/srv/web/drush/drush.yml", Err: errors.New("bad")}
		result := NewResolveCheck(failingResolver{err: perr}).Run()

		assert.Equal(t, SeverityError, result.Status)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, "/srv/web/drush/drush.yml", result.Issues[0].Path)
		assert.Equal(t, config.SourceSite, result.Issues[0].Source)
	})
}

func TestAliasPathCheck(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/site/drush/sites", 0o755))
	writeFile(t, fs, "/aliases", "not a dir", 0o644)

	tests := []struct {
		name string
		dirs []string
		want Severity
	}{
		{name: "none exist", dirs: []string{"/nope", "/also/nope"}, want: SeverityInfo},
		{name: "some exist", dirs: []string{"/site/drush/sites", "/nope"}, want: SeverityPass},
		{name: "file in the way", dirs: []string{"/site/drush/sites", "/aliases"}, want: SeverityWarning},
		{name: "empty", want: SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewAliasPathCheck(fs, tt.dirs).Run()
			assert.Equal(t, tt.want, result.Status, result.Message)
		})
	}
}

func TestFormatPermissions(t *testing.T) {
	assert.Equal(t, "-rw-r--r-- (0644)", formatPermissions(0o644))
	assert.Equal(t, "0600", formatOctal(0o600))
}
