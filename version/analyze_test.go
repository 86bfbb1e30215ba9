package version

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/git"
)

func commits(messages ...string) []git.Commit {
	out := make([]git.Commit, 0, len(messages))
	for _, m := range messages {
		out = append(out, git.Commit{Message: m})
	}
	return out
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		commits  []git.Commit
		wantType domain.ReleaseType
		wantPre  bool
	}{
		{
			name:     "empty history yields none",
			commits:  nil,
			wantType: domain.ReleaseTypeNone,
		},
		{
			name:     "no conventional signal yields none",
			commits:  commits("update readme", "wip", "merge branch 'main'"),
			wantType: domain.ReleaseTypeNone,
		},
		{
			name:     "fix yields patch",
			commits:  commits("fix: correct version arithmetic"),
			wantType: domain.ReleaseTypePatch,
		},
		{
			name:     "perf yields patch",
			commits:  commits("perf: faster artifact hashing"),
			wantType: domain.ReleaseTypePatch,
		},
		{
			name:     "feat outranks fix",
			commits:  commits("fix: small thing", "feat: add typescript track"),
			wantType: domain.ReleaseTypeMinor,
		},
		{
			name:     "exclamation marks breaking change",
			commits:  commits("feat!: drop legacy artifact layout", "fix: tidy"),
			wantType: domain.ReleaseTypeMajor,
		},
		{
			name:     "chore and docs carry no signal",
			commits:  commits("chore: bump deps", "docs: explain release flow"),
			wantType: domain.ReleaseTypeNone,
		},
		{
			name:     "pre-release marker detected",
			commits:  commits("feat: new scanner [pre-release]"),
			wantType: domain.ReleaseTypeMinor,
			wantPre:  true,
		},
		{
			name:     "marker without signal still yields none",
			commits:  commits("try things [pre-release]"),
			wantType: domain.ReleaseTypeNone,
			wantPre:  true,
		},
	}

	analyzer := NewAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := analyzer.Analyze(tt.commits)
			assert.Equal(t, tt.wantType, analysis.Type)
			assert.Equal(t, tt.wantPre, analysis.PreRelease)
		})
	}
}

func TestAnalyzeCountsQualifyingCommits(t *testing.T) {
	analyzer := NewAnalyzer()
	analysis := analyzer.Analyze(commits(
		"feat: one",
		"fix: two",
		"docs: not counted",
	))
	assert.Equal(t, 2, analysis.Qualifying)
}
