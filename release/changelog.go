package release

import (
	"fmt"
	"strings"

	"github.com/leodido/go-conventionalcommits"
	ccparser "github.com/leodido/go-conventionalcommits/parser"

	"github.com/ontora-ai/pipelines/git"
)

// changelogSection groups rendered entries under a heading.
type changelogSection struct {
	heading string
	entries []string
}

// ChangelogGenerator renders release notes from the commits since the last
// tag, grouped by conventional-commit type.
type ChangelogGenerator struct {
	machine conventionalcommits.Machine
}

// NewChangelogGenerator creates a generator accepting the standard
// conventional types.
func NewChangelogGenerator() *ChangelogGenerator {
	return &ChangelogGenerator{
		machine: ccparser.NewMachine(
			conventionalcommits.WithTypes(conventionalcommits.TypesConventional),
			conventionalcommits.WithBestEffort(),
		),
	}
}

// Generate renders the changelog body for a release. When no commit carries
// a usable entry the result falls back to a templated one-liner, so the
// published release never has an empty body.
func (g *ChangelogGenerator) Generate(version string, commits []git.Commit) string {
	sections := []changelogSection{
		{heading: "Breaking Changes"},
		{heading: "Features"},
		{heading: "Bug Fixes"},
		{heading: "Performance"},
	}

	for _, commit := range commits {
		cc := g.parse(commit.Message)
		if cc == nil {
			continue
		}

		entry := fmt.Sprintf("- %s (%s)", cc.Description, shortHash(commit.Hash))
		switch {
		case cc.IsBreakingChange():
			sections[0].entries = append(sections[0].entries, entry)
		case cc.IsFeat():
			sections[1].entries = append(sections[1].entries, entry)
		case cc.IsFix():
			sections[2].entries = append(sections[2].entries, entry)
		case cc.Type == "perf":
			sections[3].entries = append(sections[3].entries, entry)
		}
	}

	var body strings.Builder
	for _, section := range sections {
		if len(section.entries) == 0 {
			continue
		}
		fmt.Fprintf(&body, "## %s\n\n", section.heading)
		for _, entry := range section.entries {
			body.WriteString(entry)
			body.WriteString("\n")
		}
		body.WriteString("\n")
	}

	if body.Len() == 0 {
		return fmt.Sprintf("Release %s. See commit history for details.", version)
	}
	return strings.TrimRight(body.String(), "\n") + "\n"
}

func (g *ChangelogGenerator) parse(message string) *conventionalcommits.ConventionalCommit {
	msg, err := g.machine.Parse([]byte(strings.TrimSpace(message)))
	if err != nil || msg == nil || !msg.Ok() {
		return nil
	}
	cc, ok := msg.(*conventionalcommits.ConventionalCommit)
	if !ok {
		return nil
	}
	return cc
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
