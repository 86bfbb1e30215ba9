// Package git provides a high-level Go wrapper for go-git operations.
// It exposes the task-oriented operations the release pipeline needs:
// listing version tags, walking history since the latest release, and
// creating and pushing the release tag.
package git

import (
	"context"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

const (
	// DefaultRemoteName is the default remote used for push operations.
	DefaultRemoteName = "origin"

	// taggerName is the signature name used for annotated release tags.
	taggerName = "ontora-pipelines"

	// taggerEmail is the signature email used for annotated release tags.
	taggerEmail = "pipelines@ontora.ai"
)

// Repo wraps a go-git repository with release-oriented operations.
type Repo struct {
	repo *gogit.Repository

	// auth is an optional transport auth method used for push operations.
	auth transport.AuthMethod
}

// Option configures a Repo.
type Option func(*Repo)

// WithAuth sets the transport auth method used when pushing tags.
func WithAuth(auth transport.AuthMethod) Option {
	return func(r *Repo) {
		r.auth = auth
	}
}

// Open opens an existing repository at path, walking up to locate the .git
// directory the way the git CLI does.
func Open(ctx context.Context, path string, opts ...Option) (*Repo, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, WrapError(err, "failed to open repository")
	}
	return newRepo(repo, opts...), nil
}

// Wrap adapts an already-open go-git repository. Tests use this with
// in-memory storage.
func Wrap(repo *gogit.Repository, opts ...Option) *Repo {
	return newRepo(repo, opts...)
}

func newRepo(repo *gogit.Repository, opts ...Option) *Repo {
	r := &Repo{repo: repo}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Head returns the current HEAD commit hash.
func (r *Repo) Head(ctx context.Context) (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", WrapError(ErrResolveFailed, "failed to resolve HEAD")
	}
	return ref.Hash().String(), nil
}
