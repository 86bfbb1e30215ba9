package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/errors"
	"github.com/ontora-ai/pipelines/pipeline"
)

// renderRun writes the run report in the requested format and returns a
// non-nil error when the run failed, so the process exit code carries the
// pipeline's pass/fail signal.
func renderRun(w io.Writer, format string, run *domain.PipelineRun) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(run); err != nil {
			return err
		}
	case "text":
		fmt.Fprintf(w, "%s run %s: %s\n", run.Pipeline, run.ID, run.Status)
		for _, job := range run.Jobs {
			line := fmt.Sprintf("  %-20s %s", job.Name, job.Status)
			if job.Message != "" {
				line += "  (" + job.Message + ")"
			}
			fmt.Fprintln(w, line)
		}
	default:
		return errors.Newf(errors.CodeInvalidInput, "unknown output format %q", format)
	}

	if run.Status == domain.JobStatusFailed {
		return errors.Newf(errors.CodeExecutionFailed, "%s pipeline failed", run.Pipeline)
	}
	return nil
}

// renderPlan prints the pipeline's job graph without executing it.
func renderPlan(w io.Writer, p *pipeline.Pipeline) {
	fmt.Fprintf(w, "%s pipeline plan:\n", p.Name())
	for _, name := range p.Jobs() {
		fmt.Fprintf(w, "  %s\n", name)
	}
}
