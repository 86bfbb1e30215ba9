// Package git provides a high-level Go wrapper for go-git operations.
// This file contains tag-related operations for release management.
package git

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	gogit "github.com/go-git/go-git/v5"
	gogitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TagFilter is a predicate function for filtering tags.
// A tag must pass ALL provided filters to be included in results.
type TagFilter func(name string, ref *plumbing.Reference) bool

// TagPrefixFilter returns a filter that matches tags with the given prefix.
// For example: "v" matches "v1.0.0", "v2.0.0", etc.
func TagPrefixFilter(prefix string) TagFilter {
	return func(name string, _ *plumbing.Reference) bool {
		return strings.HasPrefix(name, prefix)
	}
}

// Tags returns a list of tags that pass all the provided filters,
// sorted alphabetically.
func (r *Repo) Tags(ctx context.Context, filters ...TagFilter) ([]string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, WrapError(err, "failed to get references")
	}

	var tags []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsTag() {
			return nil
		}
		name := ref.Name().Short()
		for _, filter := range filters {
			if filter != nil && !filter(name, ref) {
				return nil
			}
		}
		tags = append(tags, name)
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate references")
	}

	sort.Strings(tags)
	return tags, nil
}

// LatestVersionTag returns the highest semantic-version tag in the
// repository. Tags that do not parse as semantic versions are ignored.
// Returns ErrNoTags when no version tag exists; callers treat that as the
// v0.0.0 base case.
func (r *Repo) LatestVersionTag(ctx context.Context) (string, error) {
	tags, err := r.Tags(ctx)
	if err != nil {
		return "", err
	}

	var latest *semver.Version
	var latestName string
	for _, name := range tags {
		v, parseErr := semver.NewVersion(name)
		if parseErr != nil {
			continue
		}
		if latest == nil || v.GreaterThan(latest) {
			latest = v
			latestName = name
		}
	}

	if latest == nil {
		return "", ErrNoTags
	}
	return latestName, nil
}

// CreateTag creates an annotated tag at the specified target revision.
// The target can be any valid revision specifier (commit hash, branch name,
// "HEAD", etc.). Returns ErrTagExists if the tag is already present.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) CreateTag(ctx context.Context, name, target, message string) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}
	if target == "" {
		return WrapError(ErrInvalidRef, "target revision cannot be empty")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(target))
	if err != nil {
		return WrapError(ErrResolveFailed, "failed to resolve target revision")
	}

	tagRefName := plumbing.NewTagReferenceName(name)
	if _, err = r.repo.Reference(tagRefName, true); err == nil {
		return WrapError(ErrTagExists, name)
	}

	tagOpts := &gogit.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  taggerName,
			Email: taggerEmail,
			When:  time.Now(),
		},
		Message: message,
	}
	if _, err = r.repo.CreateTag(name, *hash, tagOpts); err != nil {
		return WrapError(err, "failed to create annotated tag")
	}

	return nil
}

// PushTag pushes the named tag to the remote. Returns nil when the remote
// already has the tag (push is idempotent for release retries).
// Returns ErrTagMissing if the tag does not exist locally.
//
// Context timeout/cancellation is honored during the push.
func (r *Repo) PushTag(ctx context.Context, remote, name string) error {
	if remote == "" {
		remote = DefaultRemoteName
	}

	tagRefName := plumbing.NewTagReferenceName(name)
	if _, err := r.repo.Reference(tagRefName, true); err != nil {
		return WrapError(ErrTagMissing, name)
	}

	refspec := gogitcfg.RefSpec(tagRefName + ":" + tagRefName)
	pushOpts := &gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   []gogitcfg.RefSpec{refspec},
	}
	if r.auth != nil {
		pushOpts.Auth = r.auth
	}

	err := r.repo.PushContext(ctx, pushOpts)
	if err != nil {
		if err == gogit.NoErrAlreadyUpToDate {
			return nil
		}
		return WrapError(err, "failed to push tag")
	}
	return nil
}

// tagCommitHash resolves a tag name to the commit it points at, peeling
// annotated tag objects.
func (r *Repo) tagCommitHash(name string) (plumbing.Hash, error) {
	ref, err := r.repo.Reference(plumbing.NewTagReferenceName(name), true)
	if err != nil {
		return plumbing.ZeroHash, WrapError(ErrTagMissing, name)
	}

	hash := ref.Hash()
	if tagObj, tagErr := r.repo.TagObject(hash); tagErr == nil {
		commit, commitErr := tagObj.Commit()
		if commitErr != nil {
			return plumbing.ZeroHash, WrapError(commitErr, "failed to peel annotated tag")
		}
		return commit.Hash, nil
	}
	return hash, nil
}
