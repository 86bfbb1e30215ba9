// Package executor provides external command execution for pipeline jobs,
// with output capture, environment management, retry logic, and context
// support for cancellation and timeouts. Every scanner and build toolchain
// invokes its tool through this package so tests can substitute a fake Runner.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrToolMissing is returned when the requested program cannot be found on
// PATH. Callers map it to a distinct result kind so a missing scanner binary
// is reported as a tool execution error rather than findings.
var ErrToolMissing = errors.New("tool not found")

// Result holds the output and exit state from a command execution.
type Result struct {
	Stdout   string
	Stderr   string
	Combined string
	ExitCode int
	Duration time.Duration
}

// Command describes a single external tool invocation.
type Command struct {
	// Program is the executable name or path.
	Program string

	// Args are the program arguments.
	Args []string

	// Dir is the working directory. Empty means the process default.
	Dir string

	// Env holds extra environment variables appended to the current env.
	Env map[string]string

	// Stdin is optional input piped to the process.
	Stdin string
}

// Runner executes external commands. The production implementation shells out
// via os/exec; tests substitute a fake that scripts tool behavior.
type Runner interface {
	// Run executes the command and returns its captured result. A non-zero
	// exit status yields both a Result (with output and exit code) and a
	// non-nil error.
	Run(ctx context.Context, cmd Command, opts ...Option) (*Result, error)

	// LookPath reports whether the program can be resolved for execution.
	// Returns ErrToolMissing when it cannot.
	LookPath(program string) error
}

// Options configures command execution behavior.
type Options struct {
	// MaxRetries is the number of additional attempts after a failure.
	MaxRetries int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration

	// RetryOn is an optional predicate deciding whether an error is retryable.
	RetryOn func(error) bool

	// StdoutWriter and StderrWriter receive streamed output in addition to
	// the captured buffers (used for verbose mode).
	StdoutWriter io.Writer
	StderrWriter io.Writer
}

// Option mutates Options.
type Option func(*Options)

// WithRetry configures retry behavior.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(o *Options) {
		o.MaxRetries = maxRetries
		o.RetryDelay = delay
	}
}

// WithRetryCondition sets a custom retry condition.
func WithRetryCondition(fn func(error) bool) Option {
	return func(o *Options) {
		o.RetryOn = fn
	}
}

// WithStdoutWriter streams stdout to w while still capturing it.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StdoutWriter = w
	}
}

// WithStderrWriter streams stderr to w while still capturing it.
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StderrWriter = w
	}
}

// Local runs commands on the host via os/exec.
type Local struct{}

// NewLocal creates a host-backed Runner.
func NewLocal() *Local {
	return &Local{}
}

// LookPath implements Runner.
func (l *Local) LookPath(program string) error {
	if _, err := exec.LookPath(program); err != nil {
		return fmt.Errorf("%w: %s", ErrToolMissing, program)
	}
	return nil
}

// Run implements Runner.
func (l *Local) Run(ctx context.Context, cmd Command, opts ...Option) (*Result, error) {
	options := &Options{RetryDelay: time.Second}
	for _, opt := range opts {
		opt(options)
	}

	maxAttempts := options.MaxRetries + 1
	var lastResult *Result
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := l.runOnce(ctx, cmd, options)
		lastResult, lastErr = result, err

		if err == nil || attempt == maxAttempts {
			return result, err
		}
		if options.RetryOn != nil && !options.RetryOn(err) {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(options.RetryDelay):
		}
	}

	return lastResult, lastErr
}

func (l *Local) runOnce(ctx context.Context, cmd Command, options *Options) (*Result, error) {
	execCmd := exec.CommandContext(ctx, cmd.Program, cmd.Args...)

	if cmd.Dir != "" {
		execCmd.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		execCmd.Env = os.Environ()
		for k, v := range cmd.Env {
			execCmd.Env = append(execCmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}
	if cmd.Stdin != "" {
		execCmd.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdoutBuf, stderrBuf, combinedBuf bytes.Buffer

	stdoutWriters := []io.Writer{&stdoutBuf, &combinedBuf}
	if options.StdoutWriter != nil {
		stdoutWriters = append(stdoutWriters, options.StdoutWriter)
	}
	execCmd.Stdout = io.MultiWriter(stdoutWriters...)

	stderrWriters := []io.Writer{&stderrBuf, &combinedBuf}
	if options.StderrWriter != nil {
		stderrWriters = append(stderrWriters, options.StderrWriter)
	}
	execCmd.Stderr = io.MultiWriter(stderrWriters...)

	start := time.Now()
	err := execCmd.Run()
	duration := time.Since(start)

	result := &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Combined: combinedBuf.String(),
		Duration: duration,
	}

	var exitErr *exec.ExitError
	switch {
	case err != nil && errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err == nil:
		result.ExitCode = 0
	default:
		result.ExitCode = -1
		if errors.Is(err, exec.ErrNotFound) {
			return result, fmt.Errorf("%w: %s", ErrToolMissing, cmd.Program)
		}
	}

	if err != nil {
		return result, fmt.Errorf("command %q failed: %w", cmd.Program, err)
	}
	return result, nil
}
