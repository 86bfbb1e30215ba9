package pipeline

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/errors"
)

// recorder tracks job execution order across goroutines.
type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) mark(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

func (r *recorder) indexOf(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.order {
		if n == name {
			return i
		}
	}
	return -1
}

func okJob(name string, needs []string, rec *recorder) Job {
	return NewJob(name, needs, func(_ context.Context, _ *RunContext) error {
		if rec != nil {
			rec.mark(name)
		}
		return nil
	})
}

func failJob(name string, needs []string) Job {
	return NewJob(name, needs, func(_ context.Context, _ *RunContext) error {
		return errors.New(errors.CodeExecutionFailed, "boom")
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustBuild(t *testing.T, b *Builder) *Pipeline {
	t.Helper()
	p, err := b.Build()
	require.NoError(t, err)
	return p
}

func TestBuilderValidation(t *testing.T) {
	tests := []struct {
		name    string
		builder func() *Builder
		wantErr string
	}{
		{
			name: "empty pipeline rejected",
			builder: func() *Builder {
				return NewBuilder("empty")
			},
			wantErr: "no jobs",
		},
		{
			name: "duplicate job rejected",
			builder: func() *Builder {
				return NewBuilder("dup").
					Add(okJob("a", nil, nil)).
					Add(okJob("a", nil, nil))
			},
			wantErr: "duplicate",
		},
		{
			name: "unknown dependency rejected",
			builder: func() *Builder {
				return NewBuilder("missing").Add(okJob("a", []string{"ghost"}, nil))
			},
			wantErr: "unknown job",
		},
		{
			name: "cycle rejected",
			builder: func() *Builder {
				return NewBuilder("cycle").
					Add(okJob("a", []string{"b"}, nil)).
					Add(okJob("b", []string{"a"}, nil))
			},
			wantErr: "cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder().Build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEngineFanOutFanIn(t *testing.T) {
	rec := &recorder{}
	p := mustBuild(t, NewBuilder("release").
		Add(okJob("determine-version", nil, rec)).
		Add(okJob("build-rust", []string{"determine-version"}, rec)).
		Add(okJob("build-python", []string{"determine-version"}, rec)).
		Add(okJob("build-go", []string{"determine-version"}, rec)).
		Add(okJob("build-typescript", []string{"determine-version"}, rec)).
		Add(okJob("create-release", []string{"build-rust", "build-python", "build-go", "build-typescript"}, rec)))

	engine := NewEngine()
	run, rc, err := engine.Run(context.Background(), p, domain.TriggerContext{Type: domain.TriggerPush})

	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusSuccess, run.Status)
	assert.Len(t, run.Jobs, 6)

	// The decision point runs before every track; the barrier runs last.
	for _, track := range []string{"build-rust", "build-python", "build-go", "build-typescript"} {
		assert.Less(t, rec.indexOf("determine-version"), rec.indexOf(track))
		assert.Less(t, rec.indexOf(track), rec.indexOf("create-release"))
	}

	for name := range rc.Results() {
		result, ok := rc.Result(name)
		require.True(t, ok)
		assert.True(t, result.Succeeded(), name)
	}
}

func TestEngineSkipsDependentsOfFailedJob(t *testing.T) {
	p := mustBuild(t, NewBuilder("release").
		Add(failJob("determine-version", nil)).
		Add(okJob("build-rust", []string{"determine-version"}, nil)).
		Add(okJob("create-release", []string{"build-rust"}, nil)))

	engine := NewEngine()
	run, rc, err := engine.Run(context.Background(), p, domain.TriggerContext{Type: domain.TriggerPush})

	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, run.Status)

	result, ok := rc.Result("build-rust")
	require.True(t, ok)
	assert.Equal(t, domain.JobStatusSkipped, result.Status)

	result, ok = rc.Result("create-release")
	require.True(t, ok)
	assert.Equal(t, domain.JobStatusSkipped, result.Status)
}

func TestEngineAlwaysRunBarrierObservesFailure(t *testing.T) {
	var sawFailure bool
	barrier := &JobFunc{
		BaseJob: BaseJob{
			JobName:   "security-summary",
			JobNeeds:  []string{"trivy-scan", "semgrep-scan"},
			RunAlways: true,
		},
		Fn: func(_ context.Context, rc *RunContext) error {
			result, ok := rc.Result("trivy-scan")
			sawFailure = ok && result.Status == domain.JobStatusFailed
			return errors.New(errors.CodeExecutionFailed, "upstream scan failed")
		},
	}

	p := mustBuild(t, NewBuilder("security-scan").
		Add(failJob("trivy-scan", nil)).
		Add(okJob("semgrep-scan", nil, nil)).
		Add(barrier))

	engine := NewEngine()
	run, _, err := engine.Run(context.Background(), p, domain.TriggerContext{Type: domain.TriggerPush})

	require.NoError(t, err)
	assert.True(t, sawFailure, "barrier should run and observe the upstream failure")
	assert.Equal(t, domain.JobStatusFailed, run.Status)
}

func TestEngineRecordsSkipFromJob(t *testing.T) {
	p := mustBuild(t, NewBuilder("release").
		Add(NewJob("build-typescript", nil, func(_ context.Context, _ *RunContext) error {
			return Skip("no frontend directory")
		})))

	engine := NewEngine()
	run, rc, err := engine.Run(context.Background(), p, domain.TriggerContext{Type: domain.TriggerPush})

	require.NoError(t, err)
	// A deliberate skip does not fail the run.
	assert.Equal(t, domain.JobStatusSuccess, run.Status)

	result, _ := rc.Result("build-typescript")
	assert.Equal(t, domain.JobStatusSkipped, result.Status)
	assert.Equal(t, domain.ResultKindSkipped, result.Kind)
	assert.Contains(t, result.Message, "no frontend directory")
}

func TestEngineResultKinds(t *testing.T) {
	p := mustBuild(t, NewBuilder("security-scan").
		Add(NewJob("semgrep-scan", nil, func(_ context.Context, _ *RunContext) error {
			return errors.New(errors.CodeFindings, "3 blocking findings")
		})).
		Add(NewJob("trivy-scan", nil, func(_ context.Context, _ *RunContext) error {
			return errors.New(errors.CodeToolMissing, "trivy not on PATH")
		})))

	engine := NewEngine()
	_, rc, err := engine.Run(context.Background(), p, domain.TriggerContext{Type: domain.TriggerSchedule})
	require.NoError(t, err)

	semgrep, _ := rc.Result("semgrep-scan")
	assert.Equal(t, domain.ResultKindFindingsReported, semgrep.Kind)

	trivy, _ := rc.Result("trivy-scan")
	assert.Equal(t, domain.ResultKindToolExecutionError, trivy.Kind)
}

func TestRunContextDecisionImmutable(t *testing.T) {
	rc := newRunContext("run-1", "release", domain.TriggerContext{}, discardLogger())

	decision := domain.ReleaseDecision{Type: domain.ReleaseTypePatch, NewVersion: "v1.0.1"}
	require.NoError(t, rc.SetDecision(decision))

	err := rc.SetDecision(domain.ReleaseDecision{Type: domain.ReleaseTypeMajor})
	require.Error(t, err)

	got, ok := rc.Decision()
	require.True(t, ok)
	assert.Equal(t, decision, got)
}

func TestEngineWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	p := mustBuild(t, NewBuilder("security-scan").Add(okJob("dependency-check", nil, nil)))
	engine := NewEngine(WithMetrics(metrics))

	_, _, err := engine.Run(context.Background(), p, domain.TriggerContext{Type: domain.TriggerSchedule})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() == "ontora_pipeline_jobs_total" {
			found = true
		}
	}
	assert.True(t, found, "jobs_total metric should be registered and populated")
}

func TestEngineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := mustBuild(t, NewBuilder("release").Add(okJob("determine-version", nil, nil)))
	engine := NewEngine()

	run, _, err := engine.Run(ctx, p, domain.TriggerContext{Type: domain.TriggerPush})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.Equal(t, domain.JobStatusFailed, run.Status)
}
