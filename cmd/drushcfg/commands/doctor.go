package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/drushcfg/internal/config"
	"github.com/thoreinstein/drushcfg/internal/doctor"
	"github.com/thoreinstein/drushcfg/internal/errors"
	"github.com/thoreinstein/drushcfg/internal/settings"
)

var (
	doctorJSON    bool
	doctorAll     bool
	doctorSilence bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false,
		"show every check, including passed ones")
	doctorCmd.Flags().BoolVar(&doctorSilence, "silent", false,
		"suppress output, exit code only")
	doctorCmd.MarkFlagsMutuallyExclusive("json", "all", "silent")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration problems",
	Long: `Check every candidate configuration file for parse errors and risky
permissions, validate drushcfg's own settings, merge the configuration and
look for the alias search directories.

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  drushcfg doctor
  drushcfg doctor --root /var/www/web --all
  drushcfg doctor --json

See Also: drushcfg sources`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	res, err := buildLocator(cmd)
	if err != nil {
		return err
	}

	report := diagnose(res, afero.NewOsFs(), currentSettings(), settings.File())
	if !doctorSilence {
		if err := writeDoctorReport(os.Stdout, report, doctorJSON, doctorAll); err != nil {
			return err
		}
	}
	return doctorExit(report)
}

// diagnose runs every check against a registered locator. The alias
// check merges the configuration first, so the file check sees which
// files were loaded.
func diagnose(res *resolution, fs afero.Fs, s *settings.Settings, settingsPath string) *doctor.Report {
	aliasDirs := res.locator.GetSiteAliasPaths(s.AliasPaths, res.env)

	runner := doctor.NewRunner()
	runner.AddCheck(doctor.NewSettingsCheck(s, settingsPath))
	runner.AddCheck(doctor.NewFileCheck(fs, config.NewFileLoader(fs), res.locator.Describe()))
	runner.AddCheck(doctor.NewResolveCheck(res.locator))
	runner.AddCheck(doctor.NewAliasPathCheck(fs, aliasDirs))
	return runner.Run()
}

// doctorExit maps a report to the process exit code without printing
// anything further.
func doctorExit(report *doctor.Report) error {
	switch {
	case report.HasErrors():
		return errors.NewExitError(nil, errors.ExitSystem)
	case report.HasWarnings():
		return errors.NewExitError(nil, errors.ExitUser)
	}
	return nil
}

// writeDoctorReport allows injecting a writer for testing. Without all,
// only warnings and errors are listed.
func writeDoctorReport(w io.Writer, report *doctor.Report, asJSON, all bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		return nil
	}

	listed := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !all && !problem {
			continue
		}
		listed = true

		fmt.Fprintf(w, "%s [%s] %s: %s\n",
			statusIcon(result.Status), result.Category, boldStyle.Sprint(result.Name), result.Message)
		for _, issue := range result.Issues {
			where := issue.Path
			if issue.Source != "" {
				where = issue.Source + " " + where
			}
			if where != "" {
				fmt.Fprintf(w, "    %s: %s\n", dimStyle.Sprint(where), issue.Problem)
			} else {
				fmt.Fprintf(w, "    %s\n", issue.Problem)
			}
			if issue.FixHint != "" {
				fmt.Fprintf(w, "      hint: %s\n", issue.FixHint)
			}
		}
		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if listed {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return okStyle.Sprint("✓")
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return warnStyle.Sprint("⚠")
	case doctor.SeverityError:
		return errStyle.Sprint("✗")
	default:
		return "?"
	}
}
