// Package doctor runs diagnostic checks against a resolved drush
// configuration: unreadable or malformed files, risky permissions and
// invalid tool settings.
package doctor

// Severity indicates the importance level of a check result.
type Severity int

const (
	// SeverityPass indicates the check passed without issues.
	SeverityPass Severity = iota

	// SeverityInfo indicates informational output, not a problem.
	SeverityInfo

	// SeverityWarning indicates a potential issue that doesn't prevent resolution.
	SeverityWarning

	// SeverityError indicates a problem that prevents resolution.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityPass:
		return "pass"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name in JSON reports.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult represents the outcome of a single diagnostic check.
type CheckResult struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Status   Severity `json:"status"`
	Message  string   `json:"message"`

	// Issues lists the individual problems behind a non-passing status.
	Issues []Issue `json:"issues,omitempty"`

	// FixHint provides guidance on how to resolve the issue.
	FixHint string `json:"fix_hint,omitempty"`
}

// Issue is one problem found by a check, usually tied to a file.
type Issue struct {
	Path        string   `json:"path,omitempty"`
	Source      string   `json:"source,omitempty"`
	Problem     string   `json:"problem"`
	Severity    Severity `json:"severity"`
	Permissions string   `json:"permissions,omitempty"`
	FixHint     string   `json:"fix_hint,omitempty"`
}

// Summary aggregates counts of check results by severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// worst returns the highest severity among issues, or SeverityPass.
func worst(issues []Issue) Severity {
	s := SeverityPass
	for _, issue := range issues {
		if issue.Severity > s {
			s = issue.Severity
		}
	}
	return s
}
