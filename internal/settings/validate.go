package settings

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/thoreinstein/drushcfg/internal/errors"
)

// Validation errors for settings fields.
var (
	// ErrInvalidPrefix indicates an environment prefix that no variable
	// name could start with.
	ErrInvalidPrefix = errors.New("invalid environment variable prefix")

	// ErrInvalidVariant indicates a variant that cannot be part of a
	// filename.
	ErrInvalidVariant = errors.New("invalid variant")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

var (
	prefixPattern  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	variantPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Validate checks s for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(s *Settings) []error {
	if s == nil {
		return []error{errors.New("settings are nil")}
	}

	var errs []error

	if s.EnvPrefix != "" && !prefixPattern.MatchString(s.EnvPrefix) {
		errs = append(errs, &FieldError{Field: KeyEnvPrefix, Value: s.EnvPrefix, Err: ErrInvalidPrefix})
	}
	if s.Variant != "" && !variantPattern.MatchString(s.Variant) {
		errs = append(errs, &FieldError{Field: KeyVariant, Value: s.Variant, Err: ErrInvalidVariant})
	}

	check := func(field string, list ...string) {
		for _, p := range list {
			if err := validatePath(p); err != nil {
				errs = append(errs, &PathError{Field: field, Path: p, Err: err})
			}
		}
	}
	check(KeyAliasPaths, s.AliasPaths...)
	check(KeyEnvFiles, s.EnvFiles...)
	check(KeyConfigPaths, s.ConfigPaths...)
	if s.DrushBase != "" {
		check(KeyDrushBase, s.DrushBase)
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists.
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrInvalidPath
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	if cleaned := filepath.Clean(path); cleaned == "" {
		return ErrInvalidPath
	}
	return nil
}

// FieldError represents an invalid value of a scalar setting.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
