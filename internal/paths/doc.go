// Package paths provides path utilities shared by the configuration
// resolver and the CLI.
//
// # Canonical Paths
//
// [Canonicalize] turns any path into an absolute, cleaned form with
// trailing separators removed. On the real operating system filesystem it
// also resolves symlinks when the path exists, so two spellings of the same
// directory compare equal. On in-memory filesystems (used by tests) the
// cleaned path is the canonical one.
//
//	paths.Canonicalize(afero.NewOsFs(), "/etc/drush/../drush/") // "/etc/drush"
//
// # Home and XDG Directories
//
// [Home] and [ConfigHome] wrap os.UserHomeDir and github.com/adrg/xdg so
// that callers get consistent answers across Linux, macOS and Windows.
// [ExpandHome] replaces a leading "~" with a given home directory.
//
// # Error Handling
//
// Functions in this package never fail on missing files: lookups report
// false and canonicalization falls back to the cleaned path.
package paths
