package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/errors"
	"github.com/ontora-ai/pipelines/executor"
	"github.com/ontora-ai/pipelines/logging"
)

func TestDependencyCheckParsesFindings(t *testing.T) {
	fake := executor.NewFake()
	fake.Script("osv-scanner", executor.FakeResponse{
		ExitCode: 1,
		Stdout: `{
			"results": [{
				"packages": [{
					"package": {"name": "left-pad", "version": "1.0.0"},
					"vulnerabilities": [
						{"id": "GHSA-abcd", "summary": "prototype pollution", "database_specific": {"severity": "HIGH"}},
						{"id": "GHSA-efgh", "summary": "minor leak", "database_specific": {"severity": "LOW"}}
					]
				}]
			}]
		}`,
	})

	scanner := NewDependencyCheck(fake)
	report, err := scanner.Scan(context.Background(), Target{Dir: "/repo"})
	require.NoError(t, err)

	require.Len(t, report.Findings, 2)
	assert.Equal(t, "GHSA-abcd", report.Findings[0].ID)
	assert.Equal(t, domain.SeverityHigh, report.Findings[0].Severity)
	assert.Equal(t, "left-pad", report.Findings[0].Package)

	blocking := report.AtOrAbove(domain.SeverityHigh)
	require.Len(t, blocking, 1)
	assert.Equal(t, "GHSA-abcd", blocking[0].ID)
}

func TestDependencyCheckCleanScan(t *testing.T) {
	fake := executor.NewFake()
	fake.Script("osv-scanner", executor.FakeResponse{Stdout: `{"results": []}`})

	report, err := NewDependencyCheck(fake).Scan(context.Background(), Target{Dir: "/repo"})
	require.NoError(t, err)
	assert.Empty(t, report.Findings)
}

func TestDependencyCheckMissingTool(t *testing.T) {
	fake := executor.NewFake()

	_, err := NewDependencyCheck(fake).Scan(context.Background(), Target{Dir: "/repo"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeToolMissing))
}

func TestDependencyCheckCrash(t *testing.T) {
	fake := executor.NewFake()
	fake.Script("osv-scanner", executor.FakeResponse{ExitCode: 127, Stderr: "segfault"})

	_, err := NewDependencyCheck(fake).Scan(context.Background(), Target{Dir: "/repo"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeExecutionFailed))
}

func TestTrivyCollectsAllResultTypes(t *testing.T) {
	fake := executor.NewFake()
	fake.Script("trivy", executor.FakeResponse{
		Stdout: `{
			"Results": [{
				"Target": "go.mod",
				"Vulnerabilities": [{"VulnerabilityID": "CVE-2024-0001", "PkgName": "stdlib", "Severity": "CRITICAL", "Title": "bad"}],
				"Secrets": [{"RuleID": "aws-key", "Severity": "HIGH", "Title": "AWS key in source"}],
				"Misconfigurations": [{"ID": "DS002", "Severity": "MEDIUM", "Title": "root user"}]
			}]
		}`,
	})

	report, err := NewTrivy(fake, logging.Discard()).Scan(context.Background(), Target{Dir: "/repo"})
	require.NoError(t, err)

	require.Len(t, report.Findings, 3)
	assert.Equal(t, domain.SeverityCritical, report.Findings[0].Severity)
	assert.Equal(t, "aws-key", report.Findings[1].ID)
	assert.Equal(t, "DS002", report.Findings[2].ID)
}

func TestTrivyImageScanAppendsFindings(t *testing.T) {
	fake := executor.NewFake()
	fake.Script("trivy", executor.FakeResponse{
		Stdout: `{"Results": [{"Target": "app", "Vulnerabilities": [{"VulnerabilityID": "CVE-2024-0002", "PkgName": "openssl", "Severity": "HIGH", "Title": "heap overflow"}]}]}`,
	})

	report, err := NewTrivy(fake, logging.Discard()).Scan(context.Background(),
		Target{Dir: "/repo", Image: "ghcr.io/ontora-ai/app:latest"})
	require.NoError(t, err)

	// Same scripted response for both invocations.
	assert.Len(t, report.Findings, 2)
	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "fs", calls[0].Args[0])
	assert.Equal(t, "image", calls[1].Args[0])
}

func TestSemgrepSeverityMapping(t *testing.T) {
	fake := executor.NewFake()
	fake.Script("semgrep", executor.FakeResponse{
		Stdout: `{
			"results": [
				{"check_id": "go.lang.security.audit", "path": "main.go", "extra": {"severity": "ERROR", "message": "sql injection"}},
				{"check_id": "go.lang.style", "path": "util.go", "extra": {"severity": "WARNING", "message": "shadowed var"}}
			]
		}`,
	})

	report, err := NewSemgrep(fake, "").Scan(context.Background(), Target{Dir: "/repo"})
	require.NoError(t, err)

	require.Len(t, report.Findings, 2)
	assert.Equal(t, domain.SeverityHigh, report.Findings[0].Severity)
	assert.Equal(t, domain.SeverityMedium, report.Findings[1].Severity)
}

func TestSemgrepTokenInjectedIntoEnvironment(t *testing.T) {
	fake := executor.NewFake()
	fake.Script("semgrep", executor.FakeResponse{Stdout: `{"results": []}`})

	_, err := NewSemgrep(fake, "sgp-token").Scan(context.Background(), Target{Dir: "/repo"})
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "sgp-token", calls[0].Env["SEMGREP_APP_TOKEN"])
}

func TestDependabotReportsOpenUpdates(t *testing.T) {
	fake := executor.NewFake()
	fake.Script("gh", executor.FakeResponse{
		Stdout: `[{"number": 42, "title": "Bump serde from 1.0.1 to 1.0.2"}]`,
	})

	report, err := NewDependabot(fake, logging.Discard()).Scan(context.Background(), Target{Dir: "/repo"})
	require.NoError(t, err)

	require.Len(t, report.Findings, 1)
	assert.Equal(t, "PR-42", report.Findings[0].ID)
	assert.Equal(t, domain.SeverityLow, report.Findings[0].Severity)

	// One list call plus one advisory comment per open request.
	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"pr", "list", "--author", "app/dependabot", "--state", "open", "--json", "number,title"}, calls[0].Args)
	assert.Equal(t, "comment", calls[1].Args[1])
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  domain.Severity
	}{
		{"CRITICAL", domain.SeverityCritical},
		{"high", domain.SeverityHigh},
		{"ERROR", domain.SeverityHigh},
		{"MODERATE", domain.SeverityMedium},
		{"WARNING", domain.SeverityMedium},
		{"INFO", domain.SeverityLow},
		{"", domain.SeverityLow},
		{"bogus", domain.SeverityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseSeverity(tt.input), "input %q", tt.input)
	}
}
