package errors

import (
	"fmt"
)

// MissingFieldError represents a missing required field.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", err.Field)
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// ConfigError represents a configuration file that is missing, malformed, or
// lacks a required key.
type ConfigError struct {
	Path string
	Err  error
}

func (err ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %q: %s", err.Path, err.Err)
}

func (err ConfigError) Unwrap() error {
	return err.Err
}

// FilesystemError represents a directory tree that couldn't be read while
// taking a snapshot.
type FilesystemError struct {
	Path string
	Err  error
}

func (err FilesystemError) Error() string {
	return fmt.Sprintf("read %q: %s", err.Path, err.Err)
}

func (err FilesystemError) Unwrap() error {
	return err.Err
}

// CopyError represents a file that couldn't be copied into the backup tree.
// Path is the path relative to the mirrored roots.
type CopyError struct {
	Path string
	Err  error
}

func (err CopyError) Error() string {
	return fmt.Sprintf("copy %q: %s", err.Path, err.Err)
}

func (err CopyError) Unwrap() error {
	return err.Err
}

// DeleteError represents a backup file that couldn't be removed.
// Path is the path relative to the mirrored roots.
type DeleteError struct {
	Path string
	Err  error
}

func (err DeleteError) Error() string {
	return fmt.Sprintf("remove %q: %s", err.Path, err.Err)
}

func (err DeleteError) Unwrap() error {
	return err.Err
}
