// Package pipeline provides the orchestration engine for ontora-ai pipeline
// runs. A pipeline is a directed acyclic graph of jobs; independent jobs in
// the same wave run concurrently, and barrier jobs block until every
// dependency has reached a terminal status. Jobs exchange data exclusively
// through the typed RunContext, never through ambient process state.
package pipeline

import (
	"context"
	stderrors "errors"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/errors"
)

// Job is a single schedulable unit of a pipeline.
type Job interface {
	// Name returns the job's unique name within its pipeline.
	Name() string

	// Needs returns the names of jobs that must reach a terminal status
	// before this job is scheduled.
	Needs() []string

	// AlwaysRun reports whether the job runs even when a dependency did not
	// succeed. Barrier jobs use this so they can inspect upstream results
	// and still fire reporting/notification steps after a failure.
	AlwaysRun() bool

	// Run executes the job. A nil return records success. Use Skip to
	// record a deliberate no-op; any other error records failure.
	Run(ctx context.Context, rc *RunContext) error
}

// BaseJob provides the common parts of Job. Embed it and override Run.
type BaseJob struct {
	JobName   string
	JobNeeds  []string
	RunAlways bool
}

// Name returns the job's unique name.
func (b *BaseJob) Name() string { return b.JobName }

// Needs returns the job's dependencies.
func (b *BaseJob) Needs() []string { return b.JobNeeds }

// AlwaysRun reports whether the job ignores upstream failure.
func (b *BaseJob) AlwaysRun() bool { return b.RunAlways }

// Run must be overridden by concrete jobs.
func (b *BaseJob) Run(_ context.Context, _ *RunContext) error {
	return errors.Newf(errors.CodeInternal, "job %s does not implement Run", b.JobName)
}

// JobFunc adapts a function to the Job interface.
type JobFunc struct {
	BaseJob
	Fn func(ctx context.Context, rc *RunContext) error
}

// NewJob creates a function-backed job.
func NewJob(name string, needs []string, fn func(ctx context.Context, rc *RunContext) error) *JobFunc {
	return &JobFunc{BaseJob: BaseJob{JobName: name, JobNeeds: needs}, Fn: fn}
}

// Run executes the wrapped function.
func (j *JobFunc) Run(ctx context.Context, rc *RunContext) error {
	return j.Fn(ctx, rc)
}

// skipError marks a job as deliberately skipped rather than failed.
type skipError struct {
	reason string
}

func (e *skipError) Error() string {
	return "skipped: " + e.reason
}

// Skip returns an error that records the job as skipped with the given
// reason. Missing optional inputs and false gates use this instead of
// failing.
func Skip(reason string) error {
	return &skipError{reason: reason}
}

// IsSkip reports whether err marks a deliberate skip.
func IsSkip(err error) bool {
	var se *skipError
	return stderrors.As(err, &se)
}

// Pipeline is a validated, immutable job graph.
type Pipeline struct {
	name string
	jobs map[string]Job
	// order lists job names in insertion order for deterministic reporting.
	order []string
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Jobs returns the job names in insertion order.
func (p *Pipeline) Jobs() []string {
	return append([]string{}, p.order...)
}

// Builder constructs a Pipeline with validation. Dependencies must exist and
// the graph must be acyclic; violations are reported by Build.
type Builder struct {
	name string
	jobs map[string]Job
	order []string
	errs []error
}

// NewBuilder creates a builder for a named pipeline.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, jobs: make(map[string]Job)}
}

// Add registers a job. Duplicate names are recorded as build errors.
func (b *Builder) Add(job Job) *Builder {
	if job == nil {
		b.errs = append(b.errs, errors.New(errors.CodeInvalidInput, "job cannot be nil"))
		return b
	}
	if _, exists := b.jobs[job.Name()]; exists {
		b.errs = append(b.errs, errors.Newf(errors.CodeAlreadyExists, "duplicate job %q", job.Name()))
		return b
	}
	b.jobs[job.Name()] = job
	b.order = append(b.order, job.Name())
	return b
}

// Build validates the graph and returns the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if len(b.errs) > 0 {
		return nil, stderrors.Join(b.errs...)
	}
	if len(b.jobs) == 0 {
		return nil, errors.Newf(errors.CodeInvalidInput, "pipeline %q has no jobs", b.name)
	}

	for name, job := range b.jobs {
		for _, dep := range job.Needs() {
			if _, ok := b.jobs[dep]; !ok {
				return nil, errors.Newf(errors.CodeInvalidInput,
					"job %q depends on unknown job %q", name, dep)
			}
		}
	}

	if err := b.checkAcyclic(); err != nil {
		return nil, err
	}

	return &Pipeline{name: b.name, jobs: b.jobs, order: b.order}, nil
}

// checkAcyclic runs Kahn's algorithm over the dependency graph.
func (b *Builder) checkAcyclic() error {
	indegree := make(map[string]int, len(b.jobs))
	dependents := make(map[string][]string, len(b.jobs))
	for name, job := range b.jobs {
		indegree[name] += 0
		for _, dep := range job.Needs() {
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}

	visited := 0
	for len(ready) > 0 {
		name := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		visited++
		for _, next := range dependents[name] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if visited != len(b.jobs) {
		return errors.Newf(errors.CodeInvalidInput, "pipeline %q contains a dependency cycle", b.name)
	}
	return nil
}

// kindOf derives the ResultKind recorded for a job error.
func kindOf(err error) domain.ResultKind {
	switch {
	case err == nil:
		return domain.ResultKindOK
	case IsSkip(err):
		return domain.ResultKindSkipped
	case errors.HasCode(err, errors.CodeFindings):
		return domain.ResultKindFindingsReported
	case errors.HasCode(err, errors.CodeToolMissing),
		errors.HasCode(err, errors.CodeExecutionFailed),
		errors.HasCode(err, errors.CodeBuildFailed):
		return domain.ResultKindToolExecutionError
	default:
		return domain.ResultKindOK
	}
}
