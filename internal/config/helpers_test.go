package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/thoreinstein/drushcfg/internal/logging"
)

// fakeEnv is a minimal Environment without extra exports.
type fakeEnv struct {
	cwd, home, base, system, user string
}

func (e fakeEnv) Cwd() string              { return e.cwd }
func (e fakeEnv) HomeDir() string          { return e.home }
func (e fakeEnv) DrushBasePath() string    { return e.base }
func (e fakeEnv) SystemConfigPath() string { return e.system }
func (e fakeEnv) UserConfigPath() string   { return e.user }

// writeMem writes content to path on fs, creating parent directories.
func writeMem(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// writeOS writes content below root on the real filesystem.
func writeOS(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// tempRoot returns a temporary directory with symlinks resolved, so paths
// compare equal to the canonical paths the locator produces.
func tempRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func newMemLocator(t *testing.T, fs afero.Fs, opts ...Option) *Locator {
	t.Helper()
	opts = append([]Option{WithFs(fs), WithLogger(logging.ForTest(t))}, opts...)
	return NewLocator("TEST_", opts...)
}
