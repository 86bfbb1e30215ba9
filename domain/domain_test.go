package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArchiveName(t *testing.T) {
	tests := []struct {
		name      string
		component Component
		version   string
		want      string
	}{
		{
			name:      "rust artifact",
			component: ComponentRust,
			version:   "v1.2.3",
			want:      "rust-ontora-ai-v1.2.3.tar.gz",
		},
		{
			name:      "typescript artifact",
			component: ComponentTypeScript,
			version:   "v0.4.0",
			want:      "typescript-ontora-ai-v0.4.0.tar.gz",
		},
		{
			name:      "pre-release version",
			component: ComponentGo,
			version:   "v2.0.0-rc.1",
			want:      "go-ontora-ai-v2.0.0-rc.1.tar.gz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArchiveName(tt.component, tt.version))
		})
	}
}

func TestReleaseDecisionShouldRelease(t *testing.T) {
	assert.False(t, ReleaseDecision{Type: ReleaseTypeNone}.ShouldRelease())
	assert.False(t, ReleaseDecision{}.ShouldRelease())
	assert.True(t, ReleaseDecision{Type: ReleaseTypePatch, NewVersion: "v1.2.4"}.ShouldRelease())
}

func TestSeverityAtLeast(t *testing.T) {
	assert.True(t, SeverityCritical.AtLeast(SeverityHigh))
	assert.True(t, SeverityHigh.AtLeast(SeverityHigh))
	assert.False(t, SeverityMedium.AtLeast(SeverityHigh))
	assert.False(t, Severity("bogus").AtLeast(SeverityLow))
}

func TestJobStatusTerminal(t *testing.T) {
	assert.True(t, JobStatusSuccess.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
	assert.True(t, JobStatusSkipped.Terminal())
	assert.False(t, JobStatusPending.Terminal())
	assert.False(t, JobStatusRunning.Terminal())
}

func TestReleaseTypeValid(t *testing.T) {
	for _, rt := range []ReleaseType{ReleaseTypeMajor, ReleaseTypeMinor, ReleaseTypePatch, ReleaseTypeNone} {
		assert.True(t, rt.Valid(), rt)
	}
	assert.False(t, ReleaseType("hotfix").Valid())
}
