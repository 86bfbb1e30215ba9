package scan

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ontora-ai/pipelines/executor"
)

const trivyTool = "trivy"

// Trivy runs filesystem, secret, and misconfiguration scans over the
// repository, plus an optional container image scan when the target names
// an image. An unavailable image is tolerated: the filesystem results stand
// on their own.
type Trivy struct {
	runner executor.Runner
	logger *slog.Logger
}

// NewTrivy creates the filesystem/image scanner.
func NewTrivy(runner executor.Runner, logger *slog.Logger) *Trivy {
	return &Trivy{runner: runner, logger: logger}
}

// Name implements Scanner.
func (t *Trivy) Name() string { return "trivy-scan" }

type trivyOutput struct {
	Results []struct {
		Target          string `json:"Target"`
		Vulnerabilities []struct {
			VulnerabilityID string `json:"VulnerabilityID"`
			PkgName         string `json:"PkgName"`
			Severity        string `json:"Severity"`
			Title           string `json:"Title"`
		} `json:"Vulnerabilities"`
		Secrets []struct {
			RuleID   string `json:"RuleID"`
			Severity string `json:"Severity"`
			Title    string `json:"Title"`
		} `json:"Secrets"`
		Misconfigurations []struct {
			ID       string `json:"ID"`
			Severity string `json:"Severity"`
			Title    string `json:"Title"`
		} `json:"Misconfigurations"`
	} `json:"Results"`
}

// Scan implements Scanner.
func (t *Trivy) Scan(ctx context.Context, target Target) (*Report, error) {
	report := &Report{Tool: t.Name()}

	fsResult, err := t.runner.Run(ctx, executor.Command{
		Program: trivyTool,
		Args: []string{
			"fs",
			"--scanners", "vuln,secret,misconfig",
			"--format", "json",
			"--exit-code", "0",
			target.Dir,
		},
	})
	if err != nil {
		return nil, toolError(trivyTool, err)
	}
	if err := t.collect(report, fsResult.Stdout); err != nil {
		return nil, err
	}
	report.Output = fsResult.Stdout

	if target.Image == "" {
		return report, nil
	}

	imgResult, err := t.runner.Run(ctx, executor.Command{
		Program: trivyTool,
		Args:    []string{"image", "--format", "json", "--exit-code", "0", target.Image},
	})
	if err != nil {
		// The image may not have been built for this ref. The filesystem
		// scan already succeeded, so record the gap and move on.
		t.logger.Warn("container image scan unavailable",
			"image", target.Image,
			"error", err)
		return report, nil
	}
	if err := t.collect(report, imgResult.Stdout); err != nil {
		return nil, err
	}
	report.Output += imgResult.Stdout
	return report, nil
}

func (t *Trivy) collect(report *Report, output string) error {
	var parsed trivyOutput
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		return toolError(trivyTool, err)
	}

	for _, res := range parsed.Results {
		for _, v := range res.Vulnerabilities {
			report.Findings = append(report.Findings, Finding{
				ID:          v.VulnerabilityID,
				Severity:    parseSeverity(v.Severity),
				Package:     v.PkgName,
				Description: v.Title,
			})
		}
		for _, s := range res.Secrets {
			report.Findings = append(report.Findings, Finding{
				ID:          s.RuleID,
				Severity:    parseSeverity(s.Severity),
				Package:     res.Target,
				Description: s.Title,
			})
		}
		for _, m := range res.Misconfigurations {
			report.Findings = append(report.Findings, Finding{
				ID:          m.ID,
				Severity:    parseSeverity(m.Severity),
				Package:     res.Target,
				Description: m.Title,
			})
		}
	}
	return nil
}
