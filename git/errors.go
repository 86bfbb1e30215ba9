// Package git provides sentinel errors for common git operations.
// All errors can be checked using errors.Is() for programmatic handling.
package git

import (
	"errors"
	"fmt"
)

// ErrAlreadyUpToDate is returned when a push results in no changes because
// the local and remote states are already synchronized.
var ErrAlreadyUpToDate = errors.New("already up to date")

// ErrTagExists is returned when attempting to create a tag that already exists.
var ErrTagExists = errors.New("tag already exists")

// ErrTagMissing is returned when attempting to operate on a tag that does not exist.
var ErrTagMissing = errors.New("tag does not exist")

// ErrNoTags is returned when the repository has no version tags to base a
// release on. Callers treat this as the "v0.0.0 base" case.
var ErrNoTags = errors.New("no version tags")

// ErrInvalidRef is returned when a reference name or revision specification
// is malformed or invalid according to git's reference naming rules.
var ErrInvalidRef = errors.New("invalid reference")

// ErrResolveFailed is returned when a revision specification cannot be
// resolved to a valid commit hash.
var ErrResolveFailed = errors.New("cannot resolve revision")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
