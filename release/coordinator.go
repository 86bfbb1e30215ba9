package release

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ontora-ai/pipelines/artifact"
	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/errors"
	"github.com/ontora-ai/pipelines/executor"
	"github.com/ontora-ai/pipelines/git"
	"github.com/ontora-ai/pipelines/notify"
	"github.com/ontora-ai/pipelines/pipeline"
	"github.com/ontora-ai/pipelines/version"
)

// ReleaseJobName is the name of the fan-in publication job.
const ReleaseJobName = "create-release"

// GitService is the repository surface the coordinator needs: tag history
// for the version decision and changelog, tag writes for publication.
type GitService interface {
	version.HistorySource
	Head(ctx context.Context) (string, error)
	CreateTag(ctx context.Context, name, target, message string) error
	PushTag(ctx context.Context, remote, name string) error
}

// CoordinatorConfig carries the collaborators of a release pipeline.
type CoordinatorConfig struct {
	// Repo is the project repository.
	Repo GitService

	// Resolver produces the run's ReleaseDecision.
	Resolver *version.Resolver

	// Store holds build artifacts between the tracks and the fan-in job.
	Store artifact.Store

	// Publisher publishes the release record.
	Publisher Publisher

	// Notifier receives success and failure notifications.
	Notifier notify.Notifier

	// Runner executes build commands.
	Runner executor.Runner

	// Toolchains lists the build tracks. Defaults to DefaultToolchains.
	Toolchains []Toolchain

	// RepoDir is the repository root on disk.
	RepoDir string

	// Remote is the git remote tags are pushed to. Defaults to "origin".
	Remote string

	// Channel is the notification channel.
	Channel string
}

// Coordinator assembles and owns the release pipeline.
type Coordinator struct {
	cfg       CoordinatorConfig
	changelog *ChangelogGenerator
}

// NewCoordinator validates the configuration and creates a coordinator.
func NewCoordinator(cfg CoordinatorConfig) (*Coordinator, error) {
	if cfg.Repo == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "repository is required")
	}
	if cfg.Resolver == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "version resolver is required")
	}
	if cfg.Store == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "artifact store is required")
	}
	if cfg.Publisher == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "publisher is required")
	}
	if cfg.Runner == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "command runner is required")
	}
	if len(cfg.Toolchains) == 0 {
		cfg.Toolchains = DefaultToolchains()
	}
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}

	return &Coordinator{cfg: cfg, changelog: NewChangelogGenerator()}, nil
}

// Pipeline builds the release pipeline graph: determine-version fanning out
// to one track per toolchain, fanning back in at create-release.
func (c *Coordinator) Pipeline() (*pipeline.Pipeline, error) {
	builder := pipeline.NewBuilder("release")

	builder.Add(pipeline.NewJob(VersionJobName, nil, c.determineVersion))

	trackNames := make([]string, 0, len(c.cfg.Toolchains))
	for _, tc := range c.cfg.Toolchains {
		builder.Add(NewTrackJob(tc, c.cfg.Runner, c.cfg.RepoDir, c.cfg.Store))
		trackNames = append(trackNames, TrackJobName(tc.Component()))
	}

	builder.Add(pipeline.NewJob(ReleaseJobName, trackNames, c.createRelease))

	return builder.Build()
}

// determineVersion publishes the run's single ReleaseDecision. A "none"
// decision is a successful outcome: every downstream job gates on it and
// skips.
func (c *Coordinator) determineVersion(ctx context.Context, rc *pipeline.RunContext) error {
	decision, err := c.cfg.Resolver.Resolve(ctx, rc.Trigger())
	if err != nil {
		return err
	}
	if err := rc.SetDecision(decision); err != nil {
		return err
	}

	rc.Logger().Info("release decision",
		"type", decision.Type.String(),
		"version", decision.NewVersion,
		"pre_release", decision.PreRelease)
	return nil
}

// createRelease is the fan-in job: it collects the four archives, renders
// the changelog, publishes the release record, and creates and pushes the
// version tag. Any step failing aborts the publication; there is no partial
// release. Success and failure notifications are independent and best
// effort.
func (c *Coordinator) createRelease(ctx context.Context, rc *pipeline.RunContext) error {
	decision, ok := rc.Decision()
	if !ok {
		return errors.New(errors.CodeInternal, "no release decision available")
	}
	if !decision.ShouldRelease() {
		return pipeline.Skip("release type is none")
	}

	err := c.publish(ctx, rc, decision)

	event := domain.ReleaseEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now(),
		Decision:  decision,
		Published: err == nil,
		Artifacts: c.builtArtifacts(rc),
	}
	if err != nil {
		event.Error = err.Error()
	}
	rc.SetOutput(releaseEventKey, event)

	if err != nil {
		notify.BestEffort(ctx, c.cfg.Notifier, rc.Logger(), notify.Message{
			Channel: c.cfg.Channel,
			Title:   fmt.Sprintf("Release %s failed", decision.NewVersion),
			Text:    err.Error(),
			Success: false,
		})
		return err
	}

	notify.BestEffort(ctx, c.cfg.Notifier, rc.Logger(), notify.Message{
		Channel: c.cfg.Channel,
		Title:   fmt.Sprintf("Release %s published", decision.NewVersion),
		Text:    fmt.Sprintf("%d artifacts attached.", len(event.Artifacts)),
		Success: true,
	})
	return nil
}

// releaseEventKey is the RunContext output slot for the run's ReleaseEvent.
const releaseEventKey = "release/event"

// builtArtifacts collects the BuildArtifact outputs the tracks declared.
func (c *Coordinator) builtArtifacts(rc *pipeline.RunContext) []domain.BuildArtifact {
	var out []domain.BuildArtifact
	for _, tc := range c.cfg.Toolchains {
		if v, ok := rc.Output(artifactKey(tc.Component())); ok {
			if a, ok := v.(domain.BuildArtifact); ok {
				out = append(out, a)
			}
		}
	}
	return out
}

func (c *Coordinator) publish(ctx context.Context, rc *pipeline.RunContext, decision domain.ReleaseDecision) error {
	// Re-check every track explicitly. Scheduling already blocks this job
	// on its dependencies; this guards the no-partial-release contract
	// against future graph edits.
	for _, tc := range c.cfg.Toolchains {
		result, ok := rc.Result(TrackJobName(tc.Component()))
		if !ok || !result.Succeeded() {
			return errors.Newf(errors.CodeInternal,
				"track %s did not succeed", TrackJobName(tc.Component()))
		}
	}

	staging, err := os.MkdirTemp("", "ontora-release-")
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "failed to create staging directory")
	}
	defer os.RemoveAll(staging)

	assets := make([]string, 0, len(c.cfg.Toolchains))
	for _, tc := range c.cfg.Toolchains {
		name := domain.ArchiveName(tc.Component(), decision.NewVersion)
		dest := filepath.Join(staging, name)
		if err := c.cfg.Store.Get(ctx, name, dest); err != nil {
			return err
		}
		assets = append(assets, dest)
	}

	body, err := c.changelogBody(ctx, decision.NewVersion)
	if err != nil {
		return err
	}

	release := Release{
		TagName:    decision.NewVersion,
		Title:      fmt.Sprintf("%s %s", domain.ProjectName, decision.NewVersion),
		Body:       body,
		PreRelease: decision.PreRelease,
		Draft:      false,
		Assets:     assets,
	}
	if err := c.cfg.Publisher.CreateRelease(ctx, release); err != nil {
		return err
	}

	head, err := c.cfg.Repo.Head(ctx)
	if err != nil {
		return err
	}
	tagMessage := fmt.Sprintf("Release %s", decision.NewVersion)
	if err := c.cfg.Repo.CreateTag(ctx, decision.NewVersion, head, tagMessage); err != nil {
		return err
	}
	if err := c.cfg.Repo.PushTag(ctx, c.cfg.Remote, decision.NewVersion); err != nil {
		return err
	}

	rc.Logger().Info("release published",
		"tag", decision.NewVersion,
		"assets", len(assets))
	return nil
}

// changelogBody renders the notes from the commits since the previous tag.
// The new tag is not created until after publication, so the latest tag
// still names the prior release here.
func (c *Coordinator) changelogBody(ctx context.Context, newVersion string) (string, error) {
	latest, err := c.cfg.Repo.LatestVersionTag(ctx)
	if err != nil {
		if !stderrors.Is(err, git.ErrNoTags) {
			return "", err
		}
		latest = ""
	}

	commits, err := c.cfg.Repo.CommitsSince(ctx, latest)
	if err != nil {
		return "", err
	}
	return c.changelog.Generate(newVersion, commits), nil
}
