package doctor

import (
	"fmt"
	"io/fs"
	"maps"
	"os"
	"runtime"
	"slices"

	"github.com/spf13/afero"

	"github.com/thoreinstein/drushcfg/internal/config"
	"github.com/thoreinstein/drushcfg/internal/errors"
	"github.com/thoreinstein/drushcfg/internal/paths"
	"github.com/thoreinstein/drushcfg/internal/redact"
	"github.com/thoreinstein/drushcfg/internal/settings"
)

// FileCheck parses every candidate file of every active file-backed source
// and inspects its permissions.
type FileCheck struct {
	fs      afero.Fs
	loader  config.Loader
	sources []config.SourceInfo
	// checkPerms is false on platforms without Unix permission bits.
	checkPerms bool
}

var _ Check = (*FileCheck)(nil)

// NewFileCheck creates a check over the files described by sources.
// Missing candidates are not reported: most search locations are
// expected to be empty.
func NewFileCheck(fsys afero.Fs, loader config.Loader, sources []config.SourceInfo) *FileCheck {
	return &FileCheck{
		fs:         fsys,
		loader:     loader,
		sources:    sources,
		checkPerms: runtime.GOOS != "windows",
	}
}

// Name returns the unique identifier for this check.
func (c *FileCheck) Name() string {
	return "config-files"
}

// Category returns the grouping for this check.
func (c *FileCheck) Category() string {
	return "files"
}

// Run executes the file diagnostic check.
func (c *FileCheck) Run() *CheckResult {
	var issues []Issue
	checked := 0
	seen := make(map[string]bool)

	for _, src := range c.sources {
		// Runtime sources hold in-memory data or dotenv files. Inactive
		// sources are skipped in local mode and never parsed.
		if src.Scope == config.ScopeRuntime.String() || !src.Active {
			continue
		}
		for _, path := range append(append([]string(nil), src.Paths...), src.Loaded...) {
			if path == "" || seen[path] {
				continue
			}
			seen[path] = true

			info, err := c.fs.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			checked++
			if err != nil {
				issues = append(issues, Issue{
					Path:     path,
					Source:   src.Name,
					Problem:  fmt.Sprintf("cannot stat file: %v", err),
					Severity: SeverityError,
				})
				continue
			}
			if info.IsDir() {
				issues = append(issues, Issue{
					Path:     path,
					Source:   src.Name,
					Problem:  "expected a file but found a directory",
					Severity: SeverityError,
				})
				continue
			}
			issues = append(issues, c.checkFile(path, src.Name, info.Mode())...)
		}
	}

	return c.buildResult(issues, checked)
}

func (c *FileCheck) checkFile(path, source string, mode os.FileMode) []Issue {
	tree, err := c.loader.Load(path)
	if err != nil {
		issue := Issue{
			Path:     path,
			Source:   source,
			Problem:  err.Error(),
			Severity: SeverityError,
		}
		var perr *config.ParseError
		if errors.As(err, &perr) {
			issue.Problem = perr.Err.Error()
			issue.FixHint = "fix the syntax of " + path
		} else {
			issue.FixHint = "chmod 644 " + path
		}
		return []Issue{issue}
	}
	if !c.checkPerms {
		return nil
	}

	var issues []Issue
	perm := mode.Perm()
	if perm&0o002 != 0 {
		issues = append(issues, Issue{
			Path:        path,
			Source:      source,
			Problem:     "file is world-writable (security risk)",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(mode),
			FixHint:     "chmod o-w " + path,
		})
	}
	if perm&0o004 != 0 {
		if key := secretKey("", tree); key != "" {
			issues = append(issues, Issue{
				Path:        path,
				Source:      source,
				Problem:     fmt.Sprintf("world-readable file holds secret %q", key),
				Severity:    SeverityWarning,
				Permissions: formatPermissions(mode),
				FixHint:     "chmod o-r " + path,
			})
		}
	}
	return issues
}

// secretKey returns the first dotted key in tree that looks sensitive.
func secretKey(prefix string, tree map[string]any) string {
	for _, k := range slices.Sorted(maps.Keys(tree)) {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := tree[k].(map[string]any); ok {
			if found := secretKey(key, child); found != "" {
				return found
			}
			continue
		}
		if redact.ShouldMask(key) {
			return key
		}
	}
	return ""
}

func (c *FileCheck) buildResult(issues []Issue, checked int) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   worst(issues),
		Issues:   issues,
	}
	switch result.Status {
	case SeverityPass:
		result.Message = fmt.Sprintf("all %d configuration files parse cleanly", checked)
	case SeverityError:
		result.Message = fmt.Sprintf("%d problem(s) in %d configuration files", len(issues), checked)
		result.FixHint = "resolution stops at the first file that fails to parse"
	default:
		result.Message = fmt.Sprintf("%d warning(s) in %d configuration files", len(issues), checked)
	}
	return result
}

// SettingsCheck validates the tool's own settings.
type SettingsCheck struct {
	settings *settings.Settings
	file     string
}

var _ Check = (*SettingsCheck)(nil)

// NewSettingsCheck creates a check over s. file names the settings file
// for messages and may be empty.
func NewSettingsCheck(s *settings.Settings, file string) *SettingsCheck {
	return &SettingsCheck{settings: s, file: file}
}

// Name returns the unique identifier for this check.
func (c *SettingsCheck) Name() string {
	return "settings"
}

// Category returns the grouping for this check.
func (c *SettingsCheck) Category() string {
	return "settings"
}

// Run executes the settings validation.
func (c *SettingsCheck) Run() *CheckResult {
	errs := settings.Validate(c.settings)
	if len(errs) == 0 {
		msg := "settings are valid"
		if c.file != "" {
			msg = "settings in " + c.file + " are valid"
		}
		return &CheckResult{Name: c.Name(), Category: c.Category(), Status: SeverityPass, Message: msg}
	}

	issues := make([]Issue, 0, len(errs))
	for _, err := range errs {
		issues = append(issues, Issue{
			Path:     c.file,
			Problem:  err.Error(),
			Severity: SeverityError,
		})
	}
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityError,
		Message:  fmt.Sprintf("%d invalid setting(s)", len(errs)),
		Issues:   issues,
		FixHint:  "correct the flag, environment variable or settings file entry",
	}
}

// Resolver is the part of the locator a ResolveCheck needs.
type Resolver interface {
	Config() (*config.Config, error)
}

// ResolveCheck merges the configuration and reports whether it succeeds.
type ResolveCheck struct {
	resolver Resolver
}

var _ Check = (*ResolveCheck)(nil)

// NewResolveCheck creates a check that merges r's sources.
func NewResolveCheck(r Resolver) *ResolveCheck {
	return &ResolveCheck{resolver: r}
}

// Name returns the unique identifier for this check.
func (c *ResolveCheck) Name() string {
	return "resolve"
}

// Category returns the grouping for this check.
func (c *ResolveCheck) Category() string {
	return "config"
}

// Run merges the configuration.
func (c *ResolveCheck) Run() *CheckResult {
	cfg, err := c.resolver.Config()
	if err != nil {
		issue := Issue{Problem: err.Error(), Severity: SeverityError}
		var perr *config.ParseError
		if errors.As(err, &perr) {
			issue.Path = perr.Path
			issue.Source = perr.Source
		}
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  "configuration could not be merged",
			Issues:   []Issue{issue},
		}
	}

	origins := make(map[string]bool)
	for _, o := range cfg.Provenance() {
		origins[o.Source] = true
	}
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  fmt.Sprintf("merged %d keys from %d sources", len(cfg.Keys()), len(origins)),
	}
}

// AliasPathCheck reports how many alias search directories exist.
type AliasPathCheck struct {
	fs   afero.Fs
	dirs []string
}

var _ Check = (*AliasPathCheck)(nil)

// NewAliasPathCheck creates a check over the alias search path dirs.
func NewAliasPathCheck(fsys afero.Fs, dirs []string) *AliasPathCheck {
	return &AliasPathCheck{fs: fsys, dirs: dirs}
}

// Name returns the unique identifier for this check.
func (c *AliasPathCheck) Name() string {
	return "alias-paths"
}

// Category returns the grouping for this check.
func (c *AliasPathCheck) Category() string {
	return "aliases"
}

// Run counts existing alias directories. Finding none is informational,
// since sites without aliases are common.
func (c *AliasPathCheck) Run() *CheckResult {
	var existing int
	var issues []Issue
	for _, dir := range c.dirs {
		switch {
		case paths.IsDir(c.fs, dir):
			existing++
		case paths.Exists(c.fs, dir):
			issues = append(issues, Issue{
				Path:     dir,
				Problem:  "alias path is not a directory",
				Severity: SeverityWarning,
			})
		}
	}

	result := &CheckResult{Name: c.Name(), Category: c.Category(), Issues: issues}
	switch {
	case len(issues) > 0:
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%d alias path(s) are not directories", len(issues))
	case existing == 0:
		result.Status = SeverityInfo
		result.Message = fmt.Sprintf("none of the %d alias search directories exist", len(c.dirs))
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("%d of %d alias search directories exist", existing, len(c.dirs))
	}
	return result
}

// formatPermissions renders a mode the way ls -l does, with the octal
// value appended.
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%s (%s)", mode.Perm().String(), formatOctal(mode.Perm()))
}

func formatOctal(mode os.FileMode) string {
	return fmt.Sprintf("%04o", uint32(mode.Perm()))
}
