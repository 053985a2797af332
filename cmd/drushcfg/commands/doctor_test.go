package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/drushcfg/internal/doctor"
	"github.com/thoreinstein/drushcfg/internal/errors"
	"github.com/thoreinstein/drushcfg/internal/settings"
)

func TestDiagnose_Clean(t *testing.T) {
	f := newCLIFixture(t)
	s := &settings.Settings{EnvPrefix: "TEST_", DrushBase: f.base}
	withResolutionFlags(t, f.site, s)

	res, err := buildLocator(testCommand(t))
	require.NoError(t, err)

	report := diagnose(res, afero.NewOsFs(), s, "")

	require.Len(t, report.Results, 4)
	names := make([]string, 0, len(report.Results))
	for _, r := range report.Results {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"settings", "config-files", "resolve", "alias-paths"}, names)
	assert.False(t, report.HasErrors())
	assert.False(t, report.HasWarnings())
	assert.NoError(t, doctorExit(report))
}

func TestDiagnose_ParseError(t *testing.T) {
	f := newCLIFixture(t)
	bad := filepath.Join(f.site, "drush", "drush.yml")
	require.NoError(t, os.WriteFile(bad, []byte("test: [\n"), 0o600))
	s := &settings.Settings{EnvPrefix: "TEST_", DrushBase: f.base}
	withResolutionFlags(t, f.site, s)

	res, err := buildLocator(testCommand(t))
	require.NoError(t, err)

	report := diagnose(res, afero.NewOsFs(), s, "")
	assert.True(t, report.HasErrors())

	files := report.Results[1]
	assert.Equal(t, doctor.SeverityError, files.Status)
	require.NotEmpty(t, files.Issues)
	assert.Equal(t, bad, files.Issues[0].Path)

	assert.Equal(t, doctor.SeverityError, report.Results[2].Status)

	var exitErr *errors.ExitError
	require.True(t, errors.As(doctorExit(report), &exitErr))
	assert.Equal(t, errors.ExitSystem, exitErr.Code)
	assert.Nil(t, exitErr.Err)
}

func TestDiagnose_LocalIgnoresGlobalFiles(t *testing.T) {
	f := newCLIFixture(t)
	broken := filepath.Join(f.home, ".drush", "drush.yml")
	require.NoError(t, os.WriteFile(broken, []byte("test: [\n"), 0o600))
	s := &settings.Settings{EnvPrefix: "TEST_", DrushBase: f.base, Local: true}
	withResolutionFlags(t, f.site, s)

	res, err := buildLocator(testCommand(t))
	require.NoError(t, err)

	report := diagnose(res, afero.NewOsFs(), s, "")
	assert.False(t, report.HasErrors())
	assert.Equal(t, doctor.SeverityPass, report.Results[1].Status)
	assert.NoError(t, doctorExit(report))
}

func TestDoctorExit_Warnings(t *testing.T) {
	report := &doctor.Report{Summary: doctor.Summary{Warnings: 1}}

	var exitErr *errors.ExitError
	require.True(t, errors.As(doctorExit(report), &exitErr))
	assert.Equal(t, errors.ExitUser, exitErr.Code)
}

func sampleReport() *doctor.Report {
	return &doctor.Report{
		Results: []*doctor.CheckResult{
			{Name: "settings", Category: "settings", Status: doctor.SeverityPass, Message: "settings are valid"},
			{
				Name:     "config-files",
				Category: "files",
				Status:   doctor.SeverityWarning,
				Message:  "1 warning(s) in 2 configuration files",
				Issues: []doctor.Issue{{
					Path:     "/srv/web/drush/drush.yml",
					Source:   "site",
					Problem:  "file is world-writable (security risk)",
					Severity: doctor.SeverityWarning,
					FixHint:  "chmod o-w /srv/web/drush/drush.yml",
				}},
			},
		},
		Summary: doctor.Summary{Passed: 1, Warnings: 1},
	}
}

func TestWriteDoctorReport_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDoctorReport(&buf, sampleReport(), false, false))
	out := buf.String()

	assert.NotContains(t, out, "settings are valid")
	assert.Contains(t, out, "[files] config-files: 1 warning(s)")
	assert.Contains(t, out, "site /srv/web/drush/drush.yml: file is world-writable")
	assert.Contains(t, out, "hint: chmod o-w /srv/web/drush/drush.yml")
	assert.True(t, strings.HasSuffix(out, "Summary: 1 passed, 0 info, 1 warnings, 0 errors\n"))
}

func TestWriteDoctorReport_All(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDoctorReport(&buf, sampleReport(), false, true))
	assert.Contains(t, buf.String(), "✓ [settings] settings: settings are valid")
}

func TestWriteDoctorReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDoctorReport(&buf, sampleReport(), true, false))

	var got struct {
		Results []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"results"`
		Summary doctor.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Results, 2)
	assert.Equal(t, "warning", got.Results[1].Status)
	assert.Equal(t, 1, got.Summary.Warnings)
}
