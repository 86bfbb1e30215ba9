// Package domain provides canonical type definitions for the ontora-ai pipeline platform.
package domain

// ReleaseType classifies the semantic impact of changes since the last release.
// It is computed once per run, either from operator input on manual dispatch or
// from conventional-commit analysis of the history since the latest tag.
type ReleaseType string

const (
	// ReleaseTypeMajor indicates a breaking change requiring a major version bump.
	ReleaseTypeMajor ReleaseType = "major"

	// ReleaseTypeMinor indicates new functionality requiring a minor version bump.
	ReleaseTypeMinor ReleaseType = "minor"

	// ReleaseTypePatch indicates a fix-level change requiring a patch version bump.
	ReleaseTypePatch ReleaseType = "patch"

	// ReleaseTypeNone indicates no qualifying change; build and publish jobs
	// must not execute when this is the decision for a run.
	ReleaseTypeNone ReleaseType = "none"
)

// String returns the string representation of the ReleaseType.
func (t ReleaseType) String() string {
	return string(t)
}

// Valid reports whether the value is one of the defined release types.
func (t ReleaseType) Valid() bool {
	switch t {
	case ReleaseTypeMajor, ReleaseTypeMinor, ReleaseTypePatch, ReleaseTypeNone:
		return true
	}
	return false
}

// Component identifies one of the independent build tracks.
type Component string

const (
	// ComponentRust is the Rust build track (cargo toolchain).
	ComponentRust Component = "rust"

	// ComponentPython is the Python build track (pip toolchain).
	ComponentPython Component = "python"

	// ComponentGo is the Go build track.
	ComponentGo Component = "go"

	// ComponentTypeScript is the TypeScript/frontend build track (npm toolchain).
	ComponentTypeScript Component = "typescript"
)

// String returns the string representation of the Component.
func (c Component) String() string {
	return string(c)
}

// Components lists all build tracks in their canonical order.
func Components() []Component {
	return []Component{ComponentRust, ComponentPython, ComponentGo, ComponentTypeScript}
}

// JobStatus represents the execution status of a pipeline job.
type JobStatus string

const (
	// JobStatusPending indicates the job is queued but not yet started.
	JobStatusPending JobStatus = "PENDING"

	// JobStatusRunning indicates the job is currently in progress.
	JobStatusRunning JobStatus = "RUNNING"

	// JobStatusSuccess indicates the job completed successfully.
	JobStatusSuccess JobStatus = "SUCCESS"

	// JobStatusFailed indicates the job completed with errors.
	JobStatusFailed JobStatus = "FAILED"

	// JobStatusSkipped indicates the job did not run because its gate was
	// false or an upstream dependency did not succeed.
	JobStatusSkipped JobStatus = "SKIPPED"
)

// String returns the string representation of the JobStatus.
func (s JobStatus) String() string {
	return string(s)
}

// Terminal reports whether the status is a terminal state.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusSuccess, JobStatusFailed, JobStatusSkipped:
		return true
	}
	return false
}

// ResultKind distinguishes why a job ended in its terminal status. The scan
// pipeline uses it to separate tool findings from tool crashes, which warrant
// different operator responses even though both fail the run.
type ResultKind string

const (
	// ResultKindOK indicates the job completed with nothing to report.
	ResultKindOK ResultKind = "OK"

	// ResultKindFindingsReported indicates a scan tool ran to completion and
	// reported findings at or above the configured severity threshold.
	ResultKindFindingsReported ResultKind = "FINDINGS_REPORTED"

	// ResultKindToolExecutionError indicates the underlying tool crashed,
	// was missing, or otherwise failed to produce a result.
	ResultKindToolExecutionError ResultKind = "TOOL_EXECUTION_ERROR"

	// ResultKindSkipped indicates the job was gated off or an input was
	// missing and the job degraded to a no-op.
	ResultKindSkipped ResultKind = "SKIPPED"
)

// String returns the string representation of the ResultKind.
func (k ResultKind) String() string {
	return string(k)
}

// TriggerType indicates how a pipeline run was initiated.
type TriggerType string

const (
	// TriggerPush is a push to a watched branch.
	TriggerPush TriggerType = "push"

	// TriggerPullRequest is a pull-request event against a watched branch.
	TriggerPullRequest TriggerType = "pull_request"

	// TriggerSchedule is the periodic (weekly) scheduled run.
	TriggerSchedule TriggerType = "schedule"

	// TriggerManual is an operator-initiated run with typed parameters.
	TriggerManual TriggerType = "manual"
)

// String returns the string representation of the TriggerType.
func (t TriggerType) String() string {
	return string(t)
}

// Severity ranks scan findings. The ordering is used to compare findings
// against a configured threshold.
type Severity string

const (
	// SeverityLow is informational or low-impact.
	SeverityLow Severity = "LOW"

	// SeverityMedium warrants review but is not blocking by default.
	SeverityMedium Severity = "MEDIUM"

	// SeverityHigh should block a release until addressed.
	SeverityHigh Severity = "HIGH"

	// SeverityCritical requires immediate attention.
	SeverityCritical Severity = "CRITICAL"
)

// severityRank orders severities for threshold comparison.
var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// AtLeast reports whether the severity is at or above the threshold.
// Unknown severities rank below LOW.
func (s Severity) AtLeast(threshold Severity) bool {
	return severityRank[s] >= severityRank[threshold]
}

// String returns the string representation of the Severity.
func (s Severity) String() string {
	return string(s)
}
