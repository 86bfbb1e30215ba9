package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/executor"
)

const ghTool = "gh"

// Dependabot reports open bot-authored dependency update requests and
// posts an advisory comment on each. The findings are advisory: they rank
// low so they surface in the report without blocking the pipeline.
type Dependabot struct {
	runner executor.Runner
	logger *slog.Logger
}

// NewDependabot creates the update-request advisory scanner.
func NewDependabot(runner executor.Runner, logger *slog.Logger) *Dependabot {
	return &Dependabot{runner: runner, logger: logger}
}

// Name implements Scanner.
func (d *Dependabot) Name() string { return "dependabot-alerts" }

type botPullRequest struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// Scan implements Scanner.
func (d *Dependabot) Scan(ctx context.Context, target Target) (*Report, error) {
	result, err := d.runner.Run(ctx, executor.Command{
		Program: ghTool,
		Args: []string{
			"pr", "list",
			"--author", "app/dependabot",
			"--state", "open",
			"--json", "number,title",
		},
		Dir: target.Dir,
	})
	if err != nil {
		return nil, toolError(ghTool, err)
	}

	var prs []botPullRequest
	if jsonErr := json.Unmarshal([]byte(result.Stdout), &prs); jsonErr != nil {
		return nil, toolError(ghTool, jsonErr)
	}

	report := &Report{Tool: d.Name(), Output: result.Stdout}
	for _, pr := range prs {
		report.Findings = append(report.Findings, Finding{
			ID:          "PR-" + strconv.Itoa(pr.Number),
			Severity:    domain.SeverityLow,
			Description: pr.Title,
		})
		d.advise(ctx, target.Dir, pr)
	}
	return report, nil
}

// advise posts the advisory comment. Delivery is best effort: a failed
// comment never fails the scan.
func (d *Dependabot) advise(ctx context.Context, dir string, pr botPullRequest) {
	body := fmt.Sprintf("Open dependency update pending review: %s. "+
		"Please review and merge or close before the next release.", pr.Title)
	_, err := d.runner.Run(ctx, executor.Command{
		Program: ghTool,
		Args:    []string{"pr", "comment", strconv.Itoa(pr.Number), "--body", body},
		Dir:     dir,
	})
	if err != nil {
		d.logger.Warn("failed to post advisory comment",
			"pr", pr.Number,
			"error", err)
	}
}
