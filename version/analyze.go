package version

import (
	"strings"

	"github.com/leodido/go-conventionalcommits"
	ccparser "github.com/leodido/go-conventionalcommits/parser"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/git"
)

// PreReleaseMarker is the token that flags a run as a pre-release when it
// appears in any commit message since the last tag.
const PreReleaseMarker = "[pre-release]"

// Analysis is the outcome of classifying the commits since the last release.
type Analysis struct {
	// Type is the strongest release classification found in the history.
	Type domain.ReleaseType

	// PreRelease reports whether the pre-release marker token was seen.
	PreRelease bool

	// Qualifying counts the commits that carried a release signal.
	Qualifying int
}

// Analyzer classifies commit messages using the conventional-commit
// convention. Commits that do not parse carry no signal; an ambiguous or
// empty history therefore yields ReleaseTypeNone, which short-circuits all
// downstream build and publish work.
type Analyzer struct {
	machine conventionalcommits.Machine
}

// NewAnalyzer creates an Analyzer accepting the standard conventional types.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		machine: ccparser.NewMachine(
			conventionalcommits.WithTypes(conventionalcommits.TypesConventional),
			conventionalcommits.WithBestEffort(),
		),
	}
}

// Analyze reduces a commit history to a single release classification.
// Precedence: breaking change > feat > fix/perf > none.
func (a *Analyzer) Analyze(commits []git.Commit) Analysis {
	analysis := Analysis{Type: domain.ReleaseTypeNone}

	for _, commit := range commits {
		if strings.Contains(commit.Message, PreReleaseMarker) {
			analysis.PreRelease = true
		}

		t := a.classify(commit.Message)
		if t == domain.ReleaseTypeNone {
			continue
		}
		analysis.Qualifying++
		analysis.Type = strongest(analysis.Type, t)
	}

	return analysis
}

// classify maps one commit message to a release type.
func (a *Analyzer) classify(message string) domain.ReleaseType {
	msg, err := a.machine.Parse([]byte(strings.TrimSpace(message)))
	if err != nil || msg == nil || !msg.Ok() {
		return domain.ReleaseTypeNone
	}

	cc, ok := msg.(*conventionalcommits.ConventionalCommit)
	if !ok {
		return domain.ReleaseTypeNone
	}

	switch {
	case cc.IsBreakingChange():
		return domain.ReleaseTypeMajor
	case cc.IsFeat():
		return domain.ReleaseTypeMinor
	case cc.IsFix(), cc.Type == "perf":
		return domain.ReleaseTypePatch
	default:
		return domain.ReleaseTypeNone
	}
}

// rank orders release types by strength for precedence comparison.
var rank = map[domain.ReleaseType]int{
	domain.ReleaseTypeNone:  0,
	domain.ReleaseTypePatch: 1,
	domain.ReleaseTypeMinor: 2,
	domain.ReleaseTypeMajor: 3,
}

func strongest(a, b domain.ReleaseType) domain.ReleaseType {
	if rank[b] > rank[a] {
		return b
	}
	return a
}
