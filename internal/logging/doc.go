// Package logging provides structured logging for drushcfg using slog.
//
// The package supports both text and JSON output formats, verbosity-driven
// log levels, and helpers for testing. All loggers are based on the standard
// library's [log/slog] package; the text handler colorizes output when
// writing to a terminal and masks values that look like secrets.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("merged configuration", "sources", 5)
//
// # Verbosity
//
// [LevelFromVerbosity] maps the count of -v flags to a level: none is Warn,
// -v is Info, -vv is Debug and -vvv is [LevelTrace].
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
//
// Use [NewDiscard] when log output should be suppressed entirely.
package logging
