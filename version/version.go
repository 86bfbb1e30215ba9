// Package version computes the authoritative ReleaseDecision for a release
// run. It classifies commit history using the conventional-commit convention,
// parses and increments semantic versions as structured values, and applies
// the fallback arithmetic rules when no fully-formed next version is
// available from analysis.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/errors"
)

// BaseVersion is the version a repository with no prior release tag is
// treated as being at.
const BaseVersion = "v0.0.0"

// Version is a structured semantic version. Increment rules operate on this
// record rather than on strings so they stay pure and testable.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// ParseTag parses a version tag such as "v1.2.3" (the leading "v" is
// optional). Pre-release and build suffixes are accepted and discarded;
// release arithmetic operates on the core triple only.
func ParseTag(tag string) (Version, error) {
	v, err := semver.NewVersion(tag)
	if err != nil {
		return Version{}, errors.WrapWithContext(err, errors.CodeInvalidInput,
			"not a semantic version tag", map[string]interface{}{"tag": tag})
	}
	return Version{Major: v.Major(), Minor: v.Minor(), Patch: v.Patch()}, nil
}

// Bump returns the version incremented for the given release type, zeroing
// all lower components. Bumping with ReleaseTypeNone returns the version
// unchanged.
func (v Version) Bump(t domain.ReleaseType) Version {
	switch t {
	case domain.ReleaseTypeMajor:
		return Version{Major: v.Major + 1}
	case domain.ReleaseTypeMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case domain.ReleaseTypePatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		return v
	}
}

// String renders the version with a leading "v", matching the tag format
// used across the release pipeline.
func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsZero reports whether the version is the v0.0.0 base/sentinel.
func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0 && v.Patch == 0
}
