// Package scan implements the security scan pipeline: four independent
// scanner jobs fanning into a summary barrier. Each scanner wraps an
// external tool through the executor package and reduces the tool's output
// to a Report; the summary job aggregates the four results into the
// pipeline's single pass/fail signal.
package scan

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/errors"
	"github.com/ontora-ai/pipelines/executor"
)

// Target describes what a scanner inspects.
type Target struct {
	// Dir is the repository root to scan.
	Dir string

	// Image is an optional container image reference. Scanners that do not
	// scan images ignore it.
	Image string
}

// Finding is a single issue reported by a scanner.
type Finding struct {
	// ID is the tool's identifier for the issue (CVE, rule ID, PR number).
	ID string `json:"id"`

	// Severity ranks the finding.
	Severity domain.Severity `json:"severity"`

	// Package names the affected package or file, when known.
	Package string `json:"package,omitempty"`

	// Description is the tool's summary of the issue.
	Description string `json:"description,omitempty"`
}

// Report is the reduced result of one scanner invocation.
type Report struct {
	// Tool is the name of the scanner that produced the report.
	Tool string `json:"tool"`

	// Findings lists every issue the tool reported.
	Findings []Finding `json:"findings"`

	// Output is the tool's human-readable output, kept for the report
	// artifact.
	Output string `json:"-"`
}

// AtOrAbove returns the findings ranked at or above the threshold.
func (r *Report) AtOrAbove(threshold domain.Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity.AtLeast(threshold) {
			out = append(out, f)
		}
	}
	return out
}

// Scanner runs one external security tool against a target.
type Scanner interface {
	// Name returns the scanner's job name within the security pipeline.
	Name() string

	// Scan runs the tool. A non-nil Report with findings is a successful
	// scan; errors are reserved for the tool itself failing.
	Scan(ctx context.Context, target Target) (*Report, error)
}

// toolError classifies a tool invocation failure. A binary missing from
// PATH and a crashed tool both fail the job, but they carry distinct codes
// so the recorded result kind separates "tool broken" from "issues found".
func toolError(tool string, err error) error {
	if stderrors.Is(err, executor.ErrToolMissing) {
		return errors.WrapWithContext(err, errors.CodeToolMissing, "scanner binary not found",
			map[string]interface{}{"tool": tool})
	}
	return errors.WrapWithContext(err, errors.CodeExecutionFailed, "scanner execution failed",
		map[string]interface{}{"tool": tool})
}

// parseSeverity normalizes a tool's severity string. Unknown values rank
// low so they never trip the blocking threshold on their own.
func parseSeverity(s string) domain.Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return domain.SeverityCritical
	case "HIGH", "ERROR":
		return domain.SeverityHigh
	case "MEDIUM", "MODERATE", "WARNING":
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
