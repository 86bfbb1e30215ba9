// Package domain provides canonical type definitions for the ontora-ai pipeline platform.
//
// This package is Layer 0 of the module - a zero-dependency library containing
// pure data structures shared by the orchestration engine, the security-scan
// pipeline, and the release coordinator. It defines the domain model once so
// that jobs exchange typed values instead of ambient environment variables.
//
// # Design Principles
//
//   - Zero dependencies (standard library only)
//   - Pure data structures (no business logic)
//   - Type-safe enumerations for domain concepts
//   - Struct tags for JSON serialization of reports and events
//
// # Domain Model
//
// The package organizes types into three domains:
//
//   - Pipeline Execution: PipelineRun, JobResult, TriggerContext
//   - Release Management: ReleaseDecision, BuildArtifact
//   - Scan Reporting: result kinds shared with the scan packages
//
// A ReleaseDecision is produced exactly once per release run and is consumed
// read-only by every downstream job. BuildArtifact names are deterministic
// functions of component and version so the fan-in job can locate archives
// without a side-channel registry.
package domain
