package version

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/git"
)

// fakeSource is a scripted HistorySource.
type fakeSource struct {
	latestTag string
	tagErr    error
	commits   []git.Commit
	commitErr error
}

func (f *fakeSource) LatestVersionTag(_ context.Context) (string, error) {
	if f.tagErr != nil {
		return "", f.tagErr
	}
	if f.latestTag == "" {
		return "", git.ErrNoTags
	}
	return f.latestTag, nil
}

func (f *fakeSource) CommitsSince(_ context.Context, _ string) ([]git.Commit, error) {
	return f.commits, f.commitErr
}

// fakeHinter returns a fixed next-version string.
type fakeHinter struct {
	next string
	err  error
}

func (f *fakeHinter) NextVersion(_ context.Context, _ string, _ domain.ReleaseType) (string, error) {
	return f.next, f.err
}

func TestResolveManualDispatch(t *testing.T) {
	// Commit history is deliberately full of breaking changes: manual
	// dispatch must not infer from it.
	source := &fakeSource{
		latestTag: "v1.2.3",
		commits:   commits("feat!: would be major"),
	}
	resolver := NewResolver(source)

	decision, err := resolver.Resolve(context.Background(), domain.TriggerContext{
		Type:        domain.TriggerManual,
		ReleaseType: domain.ReleaseTypeMinor,
		PreRelease:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ReleaseTypeMinor, decision.Type)
	assert.Equal(t, "v1.3.0", decision.NewVersion)
	assert.True(t, decision.PreRelease)
}

func TestResolveManualDispatchRejectsBadType(t *testing.T) {
	resolver := NewResolver(&fakeSource{latestTag: "v1.0.0"})

	for _, rt := range []domain.ReleaseType{"", domain.ReleaseTypeNone, "hotfix"} {
		_, err := resolver.Resolve(context.Background(), domain.TriggerContext{
			Type:        domain.TriggerManual,
			ReleaseType: rt,
		})
		assert.Error(t, err, rt)
	}
}

func TestResolveNoSignalGatesRelease(t *testing.T) {
	source := &fakeSource{
		latestTag: "v1.2.3",
		commits:   commits("chore: deps", "docs: readme"),
	}
	resolver := NewResolver(source)

	decision, err := resolver.Resolve(context.Background(), domain.TriggerContext{Type: domain.TriggerPush})

	require.NoError(t, err)
	assert.Equal(t, domain.ReleaseTypeNone, decision.Type)
	assert.False(t, decision.ShouldRelease())
	assert.Empty(t, decision.NewVersion)
}

func TestResolveFallbackArithmetic(t *testing.T) {
	tests := []struct {
		name    string
		latest  string
		commits []git.Commit
		want    string
	}{
		{
			name:    "patch bump from v1.2.3",
			latest:  "v1.2.3",
			commits: commits("fix: something"),
			want:    "v1.2.4",
		},
		{
			name:    "major bump resets minor and patch",
			latest:  "v1.2.3",
			commits: commits("feat!: breaking"),
			want:    "v2.0.0",
		},
		{
			name:    "no prior tag starts from v0.0.0 base",
			latest:  "",
			commits: commits("feat: first feature"),
			want:    "v0.1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(&fakeSource{latestTag: tt.latest, commits: tt.commits})

			decision, err := resolver.Resolve(context.Background(), domain.TriggerContext{Type: domain.TriggerPush})
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision.NewVersion)
		})
	}
}

func TestResolveUsesValidHint(t *testing.T) {
	source := &fakeSource{latestTag: "v1.2.3", commits: commits("fix: x")}
	resolver := NewResolver(source, WithHinter(&fakeHinter{next: "v1.2.9"}))

	decision, err := resolver.Resolve(context.Background(), domain.TriggerContext{Type: domain.TriggerPush})
	require.NoError(t, err)
	assert.Equal(t, "v1.2.9", decision.NewVersion)
}

func TestResolveDiscardsSentinelHint(t *testing.T) {
	// The v0.0.0 sentinel means the hint tool produced nothing useful.
	source := &fakeSource{latestTag: "v1.2.3", commits: commits("fix: x")}
	resolver := NewResolver(source, WithHinter(&fakeHinter{next: "v0.0.0"}))

	decision, err := resolver.Resolve(context.Background(), domain.TriggerContext{Type: domain.TriggerPush})
	require.NoError(t, err)
	assert.Equal(t, "v1.2.4", decision.NewVersion)
}

func TestResolveToleratesHinterFailure(t *testing.T) {
	source := &fakeSource{latestTag: "v1.2.3", commits: commits("fix: x")}
	resolver := NewResolver(source, WithHinter(&fakeHinter{err: stderrors.New("dry-run crashed")}))

	decision, err := resolver.Resolve(context.Background(), domain.TriggerContext{Type: domain.TriggerPush})
	require.NoError(t, err)
	assert.Equal(t, "v1.2.4", decision.NewVersion)
}

func TestResolveSurfacesHistoryFailure(t *testing.T) {
	// A broken repository is a real error, not a "no release" decision.
	source := &fakeSource{tagErr: stderrors.New("corrupt repository")}
	resolver := NewResolver(source)

	_, err := resolver.Resolve(context.Background(), domain.TriggerContext{Type: domain.TriggerPush})
	assert.Error(t, err)
}
