// Package fileutil provides bounded file reads over an afero filesystem so
// that configuration loading works identically against the OS and against
// in-memory filesystems in tests.
package fileutil
