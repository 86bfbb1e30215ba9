package scan

import (
	"context"
	"encoding/json"

	"github.com/ontora-ai/pipelines/executor"
	"github.com/ontora-ai/pipelines/secrets"
)

const semgrepTool = "semgrep"

// Semgrep runs static rule-based analysis. With a service token the scan
// uses the hosted policy; without one it falls back to the public registry
// ruleset, so the job runs either way.
type Semgrep struct {
	runner executor.Runner
	token  string
}

// NewSemgrep creates the static analysis scanner. The token may be empty.
func NewSemgrep(runner executor.Runner, token string) *Semgrep {
	return &Semgrep{runner: runner, token: token}
}

// Name implements Scanner.
func (s *Semgrep) Name() string { return "semgrep-scan" }

type semgrepOutput struct {
	Results []struct {
		CheckID string `json:"check_id"`
		Path    string `json:"path"`
		Extra   struct {
			Severity string `json:"severity"`
			Message  string `json:"message"`
		} `json:"extra"`
	} `json:"results"`
}

// Scan implements Scanner.
func (s *Semgrep) Scan(ctx context.Context, target Target) (*Report, error) {
	cmd := executor.Command{
		Program: semgrepTool,
		Args:    []string{"scan", "--config", "auto", "--json", target.Dir},
	}
	if s.token != "" {
		cmd.Env = map[string]string{secrets.SemgrepToken: s.token}
	}

	result, err := s.runner.Run(ctx, cmd)
	if err != nil {
		return nil, toolError(semgrepTool, err)
	}

	var parsed semgrepOutput
	if jsonErr := json.Unmarshal([]byte(result.Stdout), &parsed); jsonErr != nil {
		return nil, toolError(semgrepTool, jsonErr)
	}

	report := &Report{Tool: s.Name(), Output: result.Stdout}
	for _, res := range parsed.Results {
		report.Findings = append(report.Findings, Finding{
			ID:          res.CheckID,
			Severity:    parseSeverity(res.Extra.Severity),
			Package:     res.Path,
			Description: res.Extra.Message,
		})
	}
	return report, nil
}
