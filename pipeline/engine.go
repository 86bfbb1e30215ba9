package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ontora-ai/pipelines/domain"
)

// Engine executes pipelines. It is safe for concurrent use; multiple runs
// can execute on the same Engine.
type Engine struct {
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time

	// maxParallel bounds how many jobs run concurrently within a wave.
	// Zero means unbounded.
	maxParallel int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the engine's metrics recorder.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithMaxParallel bounds wave concurrency.
func WithMaxParallel(n int) EngineOption {
	return func(e *Engine) {
		e.maxParallel = n
	}
}

// WithClock overrides the engine clock (used by tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a pipeline engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the pipeline to completion and returns the run record.
//
// Jobs whose dependencies are all terminal are scheduled in waves; jobs in
// the same wave run concurrently. A job with a failed or skipped dependency
// is recorded as skipped without running, unless it declares AlwaysRun.
// Cancellation is at run granularity: cancelling ctx aborts the whole run.
//
// The returned error is non-nil only for engine-level failures (context
// cancellation). Job failures are reported through the run's Status.
func (e *Engine) Run(ctx context.Context, p *Pipeline, trigger domain.TriggerContext) (*domain.PipelineRun, *RunContext, error) {
	run := &domain.PipelineRun{
		ID:        uuid.NewString(),
		Pipeline:  p.Name(),
		Trigger:   trigger,
		Status:    domain.JobStatusRunning,
		StartedAt: e.now(),
	}

	logger := e.logger.With("pipeline", p.Name(), "run_id", run.ID)
	rc := newRunContext(run.ID, p.Name(), trigger, logger)

	logger.Info("pipeline run started", "jobs", len(p.jobs), "trigger", trigger.Type.String())

	pending := make(map[string]Job, len(p.jobs))
	for name, job := range p.jobs {
		pending[name] = job
	}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return e.finishCancelled(run, rc, logger), rc, err
		}

		wave := e.readyJobs(pending, rc)
		if len(wave) == 0 {
			// Cannot happen on a validated DAG; guard against scheduling bugs.
			logger.Error("no schedulable jobs remain", "pending", len(pending))
			break
		}

		e.runWave(ctx, wave, rc, logger)
		for _, job := range wave {
			delete(pending, job.Name())
		}
	}

	e.finish(run, rc)
	logger.Info("pipeline run finished",
		"status", run.Status.String(),
		"duration", run.CompletedAt.Sub(run.StartedAt).String(),
		"event", e.runEvent(run),
	)
	return run, rc, nil
}

// runEvent builds the status-change event recorded with the final log line.
func (e *Engine) runEvent(run *domain.PipelineRun) domain.PipelineEvent {
	var failed []string
	for _, job := range run.Jobs {
		if job.Status == domain.JobStatusFailed {
			failed = append(failed, job.Name)
		}
	}
	sort.Strings(failed)

	return domain.PipelineEvent{
		EventID:       uuid.NewString(),
		Timestamp:     run.CompletedAt,
		PipelineRunID: run.ID,
		Pipeline:      run.Pipeline,
		Status:        run.Status,
		FailedJobs:    failed,
	}
}

// readyJobs returns the pending jobs whose dependencies are all terminal.
func (e *Engine) readyJobs(pending map[string]Job, rc *RunContext) []Job {
	var ready []Job
	for _, name := range orderOf(pending) {
		job := pending[name]
		schedulable := true
		for _, dep := range job.Needs() {
			if result, ok := rc.Result(dep); !ok || !result.Status.Terminal() {
				schedulable = false
				break
			}
		}
		if schedulable {
			ready = append(ready, job)
		}
	}
	return ready
}

// runWave executes one wave of jobs concurrently.
func (e *Engine) runWave(ctx context.Context, wave []Job, rc *RunContext, logger *slog.Logger) {
	g, gctx := errgroup.WithContext(ctx)
	if e.maxParallel > 0 {
		g.SetLimit(e.maxParallel)
	}

	for _, job := range wave {
		job := job
		g.Go(func() error {
			e.runJob(gctx, job, rc, logger)
			return nil
		})
	}
	_ = g.Wait()
}

// runJob executes one job, recording its terminal result.
func (e *Engine) runJob(ctx context.Context, job Job, rc *RunContext, logger *slog.Logger) {
	result := domain.JobResult{
		Name:      job.Name(),
		StartedAt: e.now(),
	}

	if reason, blocked := e.blockedBy(job, rc); blocked && !job.AlwaysRun() {
		result.Status = domain.JobStatusSkipped
		result.Kind = domain.ResultKindSkipped
		result.Message = reason
		result.CompletedAt = e.now()
		rc.recordResult(result)
		e.metrics.observeJob(rc, result)
		logger.Info("job skipped", "job", job.Name(), "reason", reason)
		return
	}

	logger.Info("job started", "job", job.Name())
	err := job.Run(ctx, rc)
	result.CompletedAt = e.now()
	result.Kind = kindOf(err)

	switch {
	case err == nil:
		result.Status = domain.JobStatusSuccess
		logger.Info("job succeeded", "job", job.Name())
	case IsSkip(err):
		result.Status = domain.JobStatusSkipped
		result.Message = err.Error()
		logger.Info("job skipped", "job", job.Name(), "reason", err.Error())
	default:
		result.Status = domain.JobStatusFailed
		result.Message = err.Error()
		logger.Error("job failed", "job", job.Name(), "kind", result.Kind.String(), "error", err)
	}

	rc.recordResult(result)
	e.metrics.observeJob(rc, result)
}

// blockedBy reports whether any dependency of job did not succeed.
func (e *Engine) blockedBy(job Job, rc *RunContext) (string, bool) {
	for _, dep := range job.Needs() {
		result, ok := rc.Result(dep)
		if !ok {
			return "dependency " + dep + " has no result", true
		}
		if !result.Succeeded() {
			return "dependency " + dep + " " + string(result.Status), true
		}
	}
	return "", false
}

// finish derives the overall run status from the recorded job results.
func (e *Engine) finish(run *domain.PipelineRun, rc *RunContext) {
	run.CompletedAt = e.now()
	run.Status = domain.JobStatusSuccess
	for _, result := range rc.Results() {
		run.Jobs = append(run.Jobs, result)
		if result.Status == domain.JobStatusFailed {
			run.Status = domain.JobStatusFailed
		}
	}
}

func (e *Engine) finishCancelled(run *domain.PipelineRun, rc *RunContext, logger *slog.Logger) *domain.PipelineRun {
	e.finish(run, rc)
	run.Status = domain.JobStatusFailed
	logger.Warn("pipeline run cancelled")
	return run
}

// orderOf returns map keys sorted for deterministic scheduling.
func orderOf(jobs map[string]Job) []string {
	names := make([]string, 0, len(jobs))
	for name := range jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
