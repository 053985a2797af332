// Package errors provides error handling conventions for drushcfg.
//
// The package re-exports the constructors and inspectors of
// github.com/cockroachdb/errors so that callers import a single errors
// package, defines sentinel errors for common failure conditions, and an
// ExitError type that carries a process exit code for the CLI.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, errors.ErrInvalidConfig) {
//	    // handle bad configuration
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (bad flags, malformed config file)
//   - ExitSystem (2): System-related error (I/O, permissions)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and an optional
// suggestion:
//
//	err := errors.NewConfigError(parseErr, "/etc/drush/drush.yml")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    if exitErr.Suggestion != "" {
//	        fmt.Println("Suggestion:", exitErr.Suggestion)
//	    }
//	    os.Exit(exitErr.Code)
//	}
package errors
