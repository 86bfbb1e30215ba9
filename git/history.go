// Package git provides a high-level Go wrapper for go-git operations.
// This file contains history operations used by commit analysis.
package git

import (
	"context"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Commit is a minimal view of a commit used by release analysis.
type Commit struct {
	// Hash is the full commit hash.
	Hash string

	// Message is the complete commit message.
	Message string

	// Author is the author name.
	Author string

	// When is the author timestamp.
	When time.Time
}

// CommitsSince returns the commits reachable from HEAD after the given tag,
// newest first. The tagged commit itself is excluded. If tag is empty, the
// full history from HEAD is returned (the no-prior-release case).
//
// Context timeout/cancellation is honored during the walk.
func (r *Repo) CommitsSince(ctx context.Context, tag string) ([]Commit, error) {
	var boundary string
	if tag != "" {
		hash, err := r.tagCommitHash(tag)
		if err != nil {
			return nil, err
		}
		boundary = hash.String()
	}

	iter, err := r.repo.Log(&gogit.LogOptions{Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return nil, WrapError(err, "failed to create commit iterator")
	}
	defer iter.Close()

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if boundary != "" && c.Hash.String() == boundary {
			return storer.ErrStop
		}
		commits = append(commits, Commit{
			Hash:    c.Hash.String(),
			Message: c.Message,
			Author:  c.Author.Name,
			When:    c.Author.When,
		})
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate commits")
	}

	return commits, nil
}
