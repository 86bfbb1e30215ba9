package pipeline

import (
	"log/slog"
	"sync"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/errors"
)

// RunContext carries all data exchanged between jobs in one pipeline run:
// the trigger, declared job outputs, and per-job results. It is the explicit
// replacement for environment-variable propagation; jobs never read ambient
// process state to learn upstream decisions.
//
// RunContext is safe for concurrent use by jobs in the same wave.
type RunContext struct {
	runID    string
	pipeline string
	trigger  domain.TriggerContext
	logger   *slog.Logger

	mu      sync.RWMutex
	outputs map[string]any
	results map[string]domain.JobResult
}

func newRunContext(runID, pipeline string, trigger domain.TriggerContext, logger *slog.Logger) *RunContext {
	return &RunContext{
		runID:    runID,
		pipeline: pipeline,
		trigger:  trigger,
		logger:   logger,
		outputs:  make(map[string]any),
		results:  make(map[string]domain.JobResult),
	}
}

// RunID returns the unique identifier of this run.
func (rc *RunContext) RunID() string { return rc.runID }

// Pipeline returns the name of the pipeline being run.
func (rc *RunContext) Pipeline() string { return rc.pipeline }

// Trigger returns the typed trigger context, read-only by convention.
func (rc *RunContext) Trigger() domain.TriggerContext { return rc.trigger }

// Logger returns the run's logger.
func (rc *RunContext) Logger() *slog.Logger { return rc.logger }

// SetOutput declares an output value visible to downstream jobs.
func (rc *RunContext) SetOutput(key string, value any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.outputs[key] = value
}

// Output returns a declared output value.
func (rc *RunContext) Output(key string) (any, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	v, ok := rc.outputs[key]
	return v, ok
}

// decisionKey is the well-known output slot for the run's ReleaseDecision.
const decisionKey = "release/decision"

// SetDecision publishes the run's ReleaseDecision. It may be set exactly
// once; the decision is immutable for the remainder of the run.
func (rc *RunContext) SetDecision(d domain.ReleaseDecision) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if _, exists := rc.outputs[decisionKey]; exists {
		return errors.New(errors.CodeAlreadyExists, "release decision already set for this run")
	}
	rc.outputs[decisionKey] = d
	return nil
}

// Decision returns the run's ReleaseDecision, if one has been published.
func (rc *RunContext) Decision() (domain.ReleaseDecision, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	v, ok := rc.outputs[decisionKey]
	if !ok {
		return domain.ReleaseDecision{}, false
	}
	d, ok := v.(domain.ReleaseDecision)
	return d, ok
}

// Result returns the recorded terminal result for a job. Barrier jobs use
// this to re-check each dependency explicitly instead of relying on implicit
// scheduling behavior.
func (rc *RunContext) Result(job string) (domain.JobResult, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	r, ok := rc.results[job]
	return r, ok
}

// Results returns a snapshot of all recorded job results.
func (rc *RunContext) Results() map[string]domain.JobResult {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	out := make(map[string]domain.JobResult, len(rc.results))
	for k, v := range rc.results {
		out[k] = v
	}
	return out
}

func (rc *RunContext) recordResult(r domain.JobResult) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.results[r.Name] = r
}
