package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/errors"
	"github.com/ontora-ai/pipelines/notify"
	"github.com/ontora-ai/pipelines/pipeline"
)

// SummaryJobName is the name of the aggregation barrier job.
const SummaryJobName = "security-summary"

// NewScanJob wraps a Scanner in a pipeline job. The job fails with a
// findings error when the report contains findings at or above the
// threshold, and with a tool error when the scanner itself breaks. Reports
// are written in both structured and human-readable form under reportDir.
func NewScanJob(scanner Scanner, target Target, threshold domain.Severity, reportDir string) *pipeline.JobFunc {
	return pipeline.NewJob(scanner.Name(), nil, func(ctx context.Context, rc *pipeline.RunContext) error {
		logger := rc.Logger().With("scanner", scanner.Name())

		report, err := scanner.Scan(ctx, target)
		if err != nil {
			return err
		}

		if reportDir != "" {
			if werr := writeReportArtifacts(reportDir, report); werr != nil {
				logger.Warn("failed to write report artifacts", "error", werr)
			}
		}

		rc.SetOutput("scan/"+scanner.Name(), len(report.Findings))

		blocking := report.AtOrAbove(threshold)
		logger.Info("scan complete",
			"findings", len(report.Findings),
			"blocking", len(blocking))

		if len(blocking) > 0 {
			return errors.Newf(errors.CodeFindings,
				"%s reported %d findings at or above %s",
				scanner.Name(), len(blocking), threshold)
		}
		return nil
	})
}

// writeReportArtifacts emits the two report formats for a scan: the full
// findings as JSON and a plain-text listing.
func writeReportArtifacts(dir string, report *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	structured, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, report.Tool+".json"), structured, 0o644); err != nil {
		return err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%s: %d findings\n", report.Tool, len(report.Findings))
	for _, f := range report.Findings {
		fmt.Fprintf(&text, "  [%s] %s %s %s\n", f.Severity, f.ID, f.Package, f.Description)
	}
	return os.WriteFile(filepath.Join(dir, report.Tool+".txt"), []byte(text.String()), 0o644)
}

// NewSummaryJob creates the aggregation barrier. It always runs, re-checks
// every scan job's recorded result, and succeeds only when all succeeded.
// On failure it makes exactly one notification attempt, except for manual
// runs where the operator is already watching.
func NewSummaryJob(scanJobs []string, notifier notify.Notifier, channel string) *pipeline.JobFunc {
	job := pipeline.NewJob(SummaryJobName, scanJobs, func(ctx context.Context, rc *pipeline.RunContext) error {
		var failed []string
		findingsOnly := true
		for _, name := range scanJobs {
			result, ok := rc.Result(name)
			if !ok || !result.Succeeded() {
				failed = append(failed, name)
				if result.Kind != domain.ResultKindFindingsReported {
					findingsOnly = false
				}
			}
		}

		if len(failed) == 0 {
			rc.Logger().Info("all security scans passed")
			return nil
		}

		sort.Strings(failed)
		summary := fmt.Sprintf("security scan failed: %s", strings.Join(failed, ", "))

		if !rc.Trigger().Manual() {
			notify.BestEffort(ctx, notifier, rc.Logger(), notify.Message{
				Channel: channel,
				Title:   "Security scan failed",
				Text:    summary,
				Success: false,
			})
		}

		// Findings and broken tooling both fail the pipeline, but the
		// recorded kinds stay distinct so the failure reads correctly.
		code := errors.CodeExecutionFailed
		if findingsOnly {
			code = errors.CodeFindings
		}
		return errors.New(code, summary)
	})
	job.RunAlways = true
	return job
}

// NewPipeline assembles the security scan pipeline: every scanner as an
// independent leaf job fanning into the summary barrier.
func NewPipeline(scanners []Scanner, target Target, threshold domain.Severity, reportDir string, notifier notify.Notifier, channel string) (*pipeline.Pipeline, error) {
	builder := pipeline.NewBuilder("security-scan")

	names := make([]string, 0, len(scanners))
	for _, s := range scanners {
		builder.Add(NewScanJob(s, target, threshold, reportDir))
		names = append(names, s.Name())
	}
	builder.Add(NewSummaryJob(names, notifier, channel))

	return builder.Build()
}
