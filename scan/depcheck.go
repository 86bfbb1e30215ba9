package scan

import (
	"context"
	"encoding/json"

	"github.com/ontora-ai/pipelines/executor"
)

const depCheckTool = "osv-scanner"

// DependencyCheck scans dependency manifests and lockfiles for known
// vulnerabilities using osv-scanner.
type DependencyCheck struct {
	runner executor.Runner
}

// NewDependencyCheck creates the manifest vulnerability scanner.
func NewDependencyCheck(runner executor.Runner) *DependencyCheck {
	return &DependencyCheck{runner: runner}
}

// Name implements Scanner.
func (d *DependencyCheck) Name() string { return "dependency-check" }

type osvOutput struct {
	Results []struct {
		Packages []struct {
			Package struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"package"`
			Vulnerabilities []struct {
				ID               string `json:"id"`
				Summary          string `json:"summary"`
				DatabaseSpecific struct {
					Severity string `json:"severity"`
				} `json:"database_specific"`
			} `json:"vulnerabilities"`
		} `json:"packages"`
	} `json:"results"`
}

// Scan implements Scanner.
func (d *DependencyCheck) Scan(ctx context.Context, target Target) (*Report, error) {
	result, err := d.runner.Run(ctx, executor.Command{
		Program: depCheckTool,
		Args:    []string{"--format", "json", "--recursive", target.Dir},
	})
	// osv-scanner exits 1 when it finds vulnerabilities; that is a
	// successful scan, not a tool failure.
	if err != nil && (result == nil || result.ExitCode != 1) {
		return nil, toolError(depCheckTool, err)
	}

	var parsed osvOutput
	if jsonErr := json.Unmarshal([]byte(result.Stdout), &parsed); jsonErr != nil {
		return nil, toolError(depCheckTool, jsonErr)
	}

	report := &Report{Tool: d.Name(), Output: result.Stdout}
	for _, res := range parsed.Results {
		for _, pkg := range res.Packages {
			for _, vuln := range pkg.Vulnerabilities {
				report.Findings = append(report.Findings, Finding{
					ID:          vuln.ID,
					Severity:    parseSeverity(vuln.DatabaseSpecific.Severity),
					Package:     pkg.Package.Name,
					Description: vuln.Summary,
				})
			}
		}
	}
	return report, nil
}
