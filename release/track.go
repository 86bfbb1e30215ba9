package release

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ontora-ai/pipelines/artifact"
	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/errors"
	"github.com/ontora-ai/pipelines/executor"
	"github.com/ontora-ai/pipelines/pipeline"
)

// VersionJobName is the name of the decision job every track depends on.
const VersionJobName = "determine-version"

// TrackJobName returns the job name for a component's build track.
func TrackJobName(component domain.Component) string {
	return "build-" + component.String()
}

// artifactKey is the RunContext output slot for a track's BuildArtifact.
func artifactKey(component domain.Component) string {
	return "artifact/" + component.String()
}

// NewTrackJob creates the build-track job for one toolchain. The track is
// gated on the run's release decision and follows a best-effort packaging
// policy: a missing source subtree or missing build output is logged and
// still produces a valid (possibly empty) archive, so one absent component
// never blocks the others. A failing build command is fatal for the track.
func NewTrackJob(tc Toolchain, runner executor.Runner, repoDir string, store artifact.Store) *pipeline.JobFunc {
	component := tc.Component()

	return pipeline.NewJob(TrackJobName(component), []string{VersionJobName},
		func(ctx context.Context, rc *pipeline.RunContext) error {
			decision, ok := rc.Decision()
			if !ok {
				return errors.New(errors.CodeInternal, "no release decision available")
			}
			if !decision.ShouldRelease() {
				return pipeline.Skip("release type is none")
			}

			logger := rc.Logger().With("component", component.String())
			srcDir := filepath.Join(repoDir, tc.SourceDir())

			if _, err := os.Stat(srcDir); err != nil {
				logger.Warn("source subtree missing, packaging empty archive", "dir", srcDir)
			} else {
				if err := buildComponent(ctx, tc, runner, srcDir, logger); err != nil {
					return err
				}
			}

			outputDir := filepath.Join(srcDir, tc.OutputDir())
			if _, err := os.Stat(outputDir); err != nil {
				logger.Warn("build output missing, archiving what exists", "dir", outputDir)
			}

			name := domain.ArchiveName(component, decision.NewVersion)
			archivePath := filepath.Join(os.TempDir(), rc.RunID()+"-"+name)
			defer os.Remove(archivePath)

			if err := createArchive(outputDir, archivePath); err != nil {
				return err
			}

			size, checksum, err := archiveDigest(archivePath)
			if err != nil {
				return err
			}

			location, err := store.Put(ctx, name, archivePath)
			if err != nil {
				return err
			}

			rc.SetOutput(artifactKey(component), domain.BuildArtifact{
				Component:   component,
				Version:     decision.NewVersion,
				ArchivePath: location,
				Size:        size,
				Checksum:    checksum,
			})

			logger.Info("artifact uploaded",
				"name", name,
				"location", location,
				"size", size)
			return nil
		})
}

// buildComponent runs the toolchain's setup and build steps with the
// dependency cache wired in. Cache preparation failures are logged and
// ignored; command failures are fatal.
func buildComponent(ctx context.Context, tc Toolchain, runner executor.Runner, srcDir string, logger *slog.Logger) error {
	var env map[string]string
	cache, err := cacheDir(tc.Component(), filepath.Join(srcDir, tc.LockFile()))
	if err != nil {
		logger.Warn("dependency cache unavailable", "error", err)
	} else {
		env = tc.CacheEnv(cache)
	}

	if err := tc.Setup(ctx, runner, srcDir, env); err != nil {
		return buildError(tc.Component(), "dependency setup failed", err)
	}
	if err := tc.Build(ctx, runner, srcDir, env); err != nil {
		return buildError(tc.Component(), "build failed", err)
	}
	return nil
}

func buildError(component domain.Component, msg string, err error) error {
	code := errors.CodeBuildFailed
	if stderrors.Is(err, executor.ErrToolMissing) {
		code = errors.CodeToolMissing
	}
	return errors.WrapWithContext(err, code, msg,
		map[string]interface{}{"component": component.String()})
}

func archiveDigest(path string) (int64, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, "", errors.Wrap(err, errors.CodeStorage, "failed to open archive")
	}
	defer file.Close()

	hash := sha256.New()
	size, err := io.Copy(hash, file)
	if err != nil {
		return 0, "", errors.Wrap(err, errors.CodeStorage, "failed to hash archive")
	}
	return size, hex.EncodeToString(hash.Sum(nil)), nil
}
