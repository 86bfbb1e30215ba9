// Package domain provides canonical type definitions for the ontora-ai pipeline platform.
package domain

import "time"

// PipelineEvent is emitted when a pipeline run changes status. Events are
// serialized to JSON for notification payloads and run summaries.
type PipelineEvent struct {
	// EventID is the unique identifier for this event (UUID).
	EventID string `json:"event_id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// PipelineRunID references the run this event belongs to.
	PipelineRunID string `json:"pipeline_run_id"`

	// Pipeline is the pipeline name.
	Pipeline string `json:"pipeline"`

	// Status is the run status at the time of the event.
	Status JobStatus `json:"status"`

	// FailedJobs lists the names of jobs that did not succeed, if any.
	FailedJobs []string `json:"failed_jobs,omitempty"`
}

// ReleaseEvent is emitted when a release is published or publication fails.
type ReleaseEvent struct {
	// EventID is the unique identifier for this event (UUID).
	EventID string `json:"event_id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Decision is the release decision the run executed under.
	Decision ReleaseDecision `json:"decision"`

	// Published reports whether the release record was created.
	Published bool `json:"published"`

	// Artifacts lists the archives attached to the release.
	Artifacts []BuildArtifact `json:"artifacts,omitempty"`

	// Error carries the failure reason when Published is false.
	Error string `json:"error,omitempty"`
}
