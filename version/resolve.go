package version

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/errors"
	"github.com/ontora-ai/pipelines/git"
)

// HistorySource provides the repository facts version resolution needs.
// *git.Repo satisfies it; tests use a fake.
type HistorySource interface {
	// LatestVersionTag returns the highest semantic-version tag, or
	// git.ErrNoTags when the repository has never been released.
	LatestVersionTag(ctx context.Context) (string, error)

	// CommitsSince returns the commits after the given tag, newest first.
	// An empty tag means the full history.
	CommitsSince(ctx context.Context, tag string) ([]git.Commit, error)
}

// Hinter optionally supplies a fully-formed next version, typically parsed
// from an external release tool's dry-run output. A hint that is absent,
// unparseable, or the v0.0.0 sentinel is discarded in favor of the structured
// bump arithmetic.
type Hinter interface {
	NextVersion(ctx context.Context, latestTag string, t domain.ReleaseType) (string, error)
}

// Resolver produces the single authoritative ReleaseDecision for a run.
type Resolver struct {
	source   HistorySource
	analyzer *Analyzer
	hinter   Hinter
	logger   *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithHinter sets the optional next-version hinter.
func WithHinter(h Hinter) ResolverOption {
	return func(r *Resolver) {
		r.hinter = h
	}
}

// WithLogger sets the resolver's logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver over the given history source.
func NewResolver(source HistorySource, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source:   source,
		analyzer: NewAnalyzer(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes the ReleaseDecision for the run described by trigger.
//
// Manual dispatch takes the release type and pre-release flag directly from
// operator input with no inference. Otherwise the commit history since the
// latest tag is classified; a history with no qualifying commits yields a
// none decision, which gates off all downstream build and publish jobs.
//
// Analyzer or repository failures are returned as errors: they are NOT
// conflated with "no release needed".
func (r *Resolver) Resolve(ctx context.Context, trigger domain.TriggerContext) (domain.ReleaseDecision, error) {
	var decision domain.ReleaseDecision

	if trigger.Manual() {
		if !trigger.ReleaseType.Valid() || trigger.ReleaseType == domain.ReleaseTypeNone {
			return decision, errors.Newf(errors.CodeInvalidInput,
				"manual dispatch requires release_type of major, minor, or patch; got %q", trigger.ReleaseType)
		}
		decision.Type = trigger.ReleaseType
		decision.PreRelease = trigger.PreRelease
	} else {
		analysis, err := r.analyze(ctx)
		if err != nil {
			return decision, err
		}
		decision.Type = analysis.Type
		decision.PreRelease = analysis.PreRelease
	}

	if !decision.ShouldRelease() {
		decision.Type = domain.ReleaseTypeNone
		r.logger.Info("no qualifying changes; release gated off")
		return decision, nil
	}

	next, err := r.nextVersion(ctx, decision.Type)
	if err != nil {
		return domain.ReleaseDecision{}, err
	}
	decision.NewVersion = next

	r.logger.Info("release decision resolved",
		"release_type", decision.Type.String(),
		"new_version", decision.NewVersion,
		"pre_release", decision.PreRelease,
	)
	return decision, nil
}

// analyze classifies the history since the latest tag.
func (r *Resolver) analyze(ctx context.Context) (Analysis, error) {
	latest, err := r.latestTag(ctx)
	if err != nil {
		return Analysis{}, err
	}

	commits, err := r.source.CommitsSince(ctx, latest)
	if err != nil {
		return Analysis{}, errors.Wrap(err, errors.CodeExecutionFailed, "commit analysis failed")
	}

	return r.analyzer.Analyze(commits), nil
}

// nextVersion obtains the next version string, preferring a hinter-supplied
// value and falling back to structured bump arithmetic on the latest tag.
func (r *Resolver) nextVersion(ctx context.Context, t domain.ReleaseType) (string, error) {
	latest, err := r.latestTag(ctx)
	if err != nil {
		return "", err
	}

	if hint := r.hint(ctx, latest, t); hint != "" {
		return hint, nil
	}

	base := Version{}
	if latest != "" {
		base, err = ParseTag(latest)
		if err != nil {
			return "", err
		}
	}
	return base.Bump(t).String(), nil
}

// hint consults the hinter, discarding absent, unparseable, or sentinel
// values. Hinter failure is logged and tolerated; the arithmetic fallback
// always produces a version.
func (r *Resolver) hint(ctx context.Context, latest string, t domain.ReleaseType) string {
	if r.hinter == nil {
		return ""
	}

	raw, err := r.hinter.NextVersion(ctx, latest, t)
	if err != nil {
		r.logger.Warn("next-version hint unavailable, using fallback arithmetic", "error", err)
		return ""
	}
	if raw == "" {
		return ""
	}

	v, err := ParseTag(raw)
	if err != nil || v.IsZero() {
		r.logger.Warn("discarding unusable next-version hint", "hint", raw)
		return ""
	}
	return v.String()
}

// latestTag returns the latest version tag, mapping the never-released case
// to an empty string (the v0.0.0 base).
func (r *Resolver) latestTag(ctx context.Context) (string, error) {
	latest, err := r.source.LatestVersionTag(ctx)
	if err != nil {
		if stderrors.Is(err, git.ErrNoTags) {
			return "", nil
		}
		return "", errors.Wrap(err, errors.CodeExecutionFailed, "failed to read tag history")
	}
	return latest, nil
}
