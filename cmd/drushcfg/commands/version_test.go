package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/thoreinstein/drushcfg/cmd"
)

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	t.Setenv("DRUSHCFG_CONFIG_DIR", t.TempDir())
	rootCmd.SetArgs([]string{"version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"drushcfg version " + cmd.Version,
		"commit: " + cmd.Commit,
		"built:  " + cmd.Date,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}
