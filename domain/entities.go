// Package domain provides canonical type definitions for the ontora-ai pipeline platform.
package domain

import (
	"fmt"
	"time"
)

// ProjectName is the fixed project identifier embedded in artifact names.
const ProjectName = "ontora-ai"

// TriggerContext carries the typed inputs that initiated a pipeline run.
// It replaces ambient environment-variable propagation: every job receives
// the trigger as an explicit read-only value.
type TriggerContext struct {
	// Type indicates how the run was triggered (push, pull_request, schedule, manual).
	Type TriggerType `json:"type"`

	// Branch is the git branch the run operates on.
	Branch string `json:"branch,omitempty"`

	// CommitSHA is the commit being processed.
	CommitSHA string `json:"commit_sha,omitempty"`

	// Actor identifies who or what initiated the run.
	Actor string `json:"actor,omitempty"`

	// ReleaseType is the operator-supplied release type for manual dispatch.
	// Empty for non-manual triggers.
	ReleaseType ReleaseType `json:"release_type,omitempty"`

	// PreRelease is the operator-supplied pre-release flag for manual dispatch.
	PreRelease bool `json:"pre_release,omitempty"`
}

// Manual reports whether the run was operator-initiated.
func (t TriggerContext) Manual() bool {
	return t.Type == TriggerManual
}

// ReleaseDecision is the authoritative version/type/pre-release triple driving
// a release run. It is produced exactly once by version resolution, is
// immutable thereafter, and is consumed read-only by every downstream job.
type ReleaseDecision struct {
	// Type classifies the release (major, minor, patch, none).
	Type ReleaseType `json:"release_type"`

	// NewVersion is the computed semantic version string with a leading "v"
	// (e.g., "v1.2.4"). Empty when Type is none.
	NewVersion string `json:"new_version,omitempty"`

	// PreRelease marks the release as a pre-release.
	PreRelease bool `json:"is_pre_release"`
}

// ShouldRelease reports whether downstream build and publish jobs may execute.
func (d ReleaseDecision) ShouldRelease() bool {
	return d.Type != ReleaseTypeNone && d.Type != ""
}

// BuildArtifact describes one archived build output. Exactly one is produced
// per component per run when the track executes.
type BuildArtifact struct {
	// Component identifies the build track that produced the artifact.
	Component Component `json:"component"`

	// Version is the release version the artifact was built for.
	Version string `json:"version"`

	// ArchivePath is the location of the compressed archive in the artifact store.
	ArchivePath string `json:"archive_path"`

	// Size is the archive size in bytes.
	Size int64 `json:"size"`

	// Checksum is the hex-encoded SHA-256 of the archive contents.
	Checksum string `json:"checksum,omitempty"`
}

// ArchiveName returns the deterministic archive filename for a component and
// version. The fan-in job locates artifacts by recomputing this name, so it
// must stay a pure function of its inputs.
func ArchiveName(component Component, version string) string {
	return fmt.Sprintf("%s-%s-%s.tar.gz", component, ProjectName, version)
}

// JobResult records the terminal outcome of a single pipeline job.
type JobResult struct {
	// Name is the job's unique name within its pipeline.
	Name string `json:"name"`

	// Status is the terminal execution status.
	Status JobStatus `json:"status"`

	// Kind distinguishes why the job ended in its status.
	Kind ResultKind `json:"kind"`

	// Message carries a human-readable summary (failure reason, skip reason).
	Message string `json:"message,omitempty"`

	// StartedAt is when the job began. Zero if it never ran.
	StartedAt time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job reached its terminal status.
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// Succeeded reports whether the job completed successfully.
func (r JobResult) Succeeded() bool {
	return r.Status == JobStatusSuccess
}

// PipelineRun represents a complete execution of one pipeline.
type PipelineRun struct {
	// ID is the unique identifier for this run (UUID).
	ID string `json:"id"`

	// Pipeline is the pipeline name (e.g., "security-scan", "release").
	Pipeline string `json:"pipeline"`

	// Trigger is the typed trigger context for the run.
	Trigger TriggerContext `json:"trigger"`

	// Status is the overall run status, derived by the fan-in job.
	Status JobStatus `json:"status"`

	// Jobs holds the terminal result of every job in the run.
	Jobs []JobResult `json:"jobs"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the run finished.
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// Result returns the recorded result for the named job, if present.
func (p *PipelineRun) Result(name string) (JobResult, bool) {
	for _, r := range p.Jobs {
		if r.Name == name {
			return r, true
		}
	}
	return JobResult{}, false
}
