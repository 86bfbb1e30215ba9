package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ontora-ai/pipelines/domain"
)

// Metrics records in-process execution metrics for pipeline runs. The
// embedding binary decides whether and where to expose them; the engine
// only observes.
type Metrics struct {
	jobsTotal   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontora",
			Subsystem: "pipeline",
			Name:      "jobs_total",
			Help:      "Terminal job results by pipeline, job, and status.",
		}, []string{"pipeline", "job", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ontora",
			Subsystem: "pipeline",
			Name:      "job_duration_seconds",
			Help:      "Wall-clock duration of job executions.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"pipeline", "job"}),
	}
	if reg != nil {
		reg.MustRegister(m.jobsTotal, m.jobDuration)
	}
	return m
}

// observeJob records one terminal job result. Nil receivers are no-ops so
// the engine works without metrics wired.
func (m *Metrics) observeJob(rc *RunContext, result domain.JobResult) {
	if m == nil {
		return
	}
	pipelineName := ""
	if rc != nil {
		pipelineName = rc.pipeline
	}
	m.jobsTotal.WithLabelValues(pipelineName, result.Name, result.Status.String()).Inc()
	if !result.StartedAt.IsZero() && !result.CompletedAt.IsZero() {
		m.jobDuration.WithLabelValues(pipelineName, result.Name).
			Observe(result.CompletedAt.Sub(result.StartedAt).Seconds())
	}
}
