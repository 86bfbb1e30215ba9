// Package release implements the release coordinator pipeline: a version
// decision fanning out to four parallel build tracks, fanning back in at a
// single publication job. Build tracks are structurally identical and
// differ only in the Toolchain they drive.
package release

import (
	"context"

	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/executor"
)

// Toolchain describes one language-specific build stack. A Track drives
// the toolchain through setup and build; everything around those two steps
// (gating, caching, archiving, upload) is shared across components.
type Toolchain interface {
	// Component identifies the build track.
	Component() domain.Component

	// SourceDir is the component's source subtree, relative to the
	// repository root.
	SourceDir() string

	// LockFile is the dependency lockfile, relative to SourceDir. Its
	// content hash keys the dependency cache.
	LockFile() string

	// OutputDir is where build output lands, relative to SourceDir.
	OutputDir() string

	// CacheEnv returns the environment variables that point the toolchain's
	// dependency cache at dir.
	CacheEnv(dir string) map[string]string

	// Setup restores dependencies into the cache.
	Setup(ctx context.Context, runner executor.Runner, srcDir string, env map[string]string) error

	// Build compiles and packages the component.
	Build(ctx context.Context, runner executor.Runner, srcDir string, env map[string]string) error
}

// Cargo builds the Rust component.
type Cargo struct{}

func (Cargo) Component() domain.Component { return domain.ComponentRust }
func (Cargo) SourceDir() string           { return "rust" }
func (Cargo) LockFile() string            { return "Cargo.lock" }
func (Cargo) OutputDir() string           { return "target/release" }

func (Cargo) CacheEnv(dir string) map[string]string {
	return map[string]string{"CARGO_HOME": dir}
}

func (Cargo) Setup(ctx context.Context, runner executor.Runner, srcDir string, env map[string]string) error {
	_, err := runner.Run(ctx, executor.Command{
		Program: "cargo", Args: []string{"fetch"}, Dir: srcDir, Env: env,
	})
	return err
}

func (Cargo) Build(ctx context.Context, runner executor.Runner, srcDir string, env map[string]string) error {
	_, err := runner.Run(ctx, executor.Command{
		Program: "cargo", Args: []string{"build", "--release"}, Dir: srcDir, Env: env,
	})
	return err
}

// Pip builds the Python component.
type Pip struct{}

func (Pip) Component() domain.Component { return domain.ComponentPython }
func (Pip) SourceDir() string           { return "python" }
func (Pip) LockFile() string            { return "requirements.txt" }
func (Pip) OutputDir() string           { return "dist" }

func (Pip) CacheEnv(dir string) map[string]string {
	return map[string]string{"PIP_CACHE_DIR": dir}
}

func (Pip) Setup(ctx context.Context, runner executor.Runner, srcDir string, env map[string]string) error {
	_, err := runner.Run(ctx, executor.Command{
		Program: "pip", Args: []string{"install", "-r", "requirements.txt"}, Dir: srcDir, Env: env,
	})
	return err
}

func (Pip) Build(ctx context.Context, runner executor.Runner, srcDir string, env map[string]string) error {
	_, err := runner.Run(ctx, executor.Command{
		Program: "python", Args: []string{"-m", "build"}, Dir: srcDir, Env: env,
	})
	return err
}

// Gomod builds the Go component.
type Gomod struct{}

func (Gomod) Component() domain.Component { return domain.ComponentGo }
func (Gomod) SourceDir() string           { return "go" }
func (Gomod) LockFile() string            { return "go.sum" }
func (Gomod) OutputDir() string           { return "bin" }

func (Gomod) CacheEnv(dir string) map[string]string {
	return map[string]string{"GOMODCACHE": dir}
}

func (Gomod) Setup(ctx context.Context, runner executor.Runner, srcDir string, env map[string]string) error {
	_, err := runner.Run(ctx, executor.Command{
		Program: "go", Args: []string{"mod", "download"}, Dir: srcDir, Env: env,
	})
	return err
}

func (Gomod) Build(ctx context.Context, runner executor.Runner, srcDir string, env map[string]string) error {
	_, err := runner.Run(ctx, executor.Command{
		Program: "go", Args: []string{"build", "-o", "bin/", "./..."}, Dir: srcDir, Env: env,
	})
	return err
}

// Npm builds the TypeScript component.
type Npm struct{}

func (Npm) Component() domain.Component { return domain.ComponentTypeScript }
func (Npm) SourceDir() string           { return "typescript" }
func (Npm) LockFile() string            { return "package-lock.json" }
func (Npm) OutputDir() string           { return "dist" }

func (Npm) CacheEnv(dir string) map[string]string {
	return map[string]string{"npm_config_cache": dir}
}

func (Npm) Setup(ctx context.Context, runner executor.Runner, srcDir string, env map[string]string) error {
	_, err := runner.Run(ctx, executor.Command{
		Program: "npm", Args: []string{"ci"}, Dir: srcDir, Env: env,
	})
	return err
}

func (Npm) Build(ctx context.Context, runner executor.Runner, srcDir string, env map[string]string) error {
	_, err := runner.Run(ctx, executor.Command{
		Program: "npm", Args: []string{"run", "build"}, Dir: srcDir, Env: env,
	})
	return err
}

// DefaultToolchains returns the four build stacks in component order.
func DefaultToolchains() []Toolchain {
	return []Toolchain{Cargo{}, Pip{}, Gomod{}, Npm{}}
}
