package executor

import (
	"context"
	"fmt"
	"sync"
)

// FakeResponse scripts the behavior of one program in a Fake runner.
type FakeResponse struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Fake is a scripted Runner for tests. Responses are keyed by program name;
// an unscripted program behaves as missing from PATH.
type Fake struct {
	mu        sync.Mutex
	responses map[string]FakeResponse
	calls     []Command
}

// NewFake creates an empty scripted runner.
func NewFake() *Fake {
	return &Fake{responses: make(map[string]FakeResponse)}
}

// Script registers the response returned when program is run.
func (f *Fake) Script(program string, resp FakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[program] = resp
}

// Calls returns a copy of every command run so far.
func (f *Fake) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command{}, f.calls...)
}

// LookPath implements Runner.
func (f *Fake) LookPath(program string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.responses[program]; !ok {
		return fmt.Errorf("%w: %s", ErrToolMissing, program)
	}
	return nil
}

// Run implements Runner.
func (f *Fake) Run(ctx context.Context, cmd Command, _ ...Option) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	resp, ok := f.responses[cmd.Program]
	f.mu.Unlock()

	if !ok {
		return &Result{ExitCode: -1}, fmt.Errorf("%w: %s", ErrToolMissing, cmd.Program)
	}

	result := &Result{
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
		Combined: resp.Stdout + resp.Stderr,
		ExitCode: resp.ExitCode,
	}

	if resp.Err != nil {
		return result, resp.Err
	}
	if resp.ExitCode != 0 {
		return result, fmt.Errorf("command %q failed: exit status %d", cmd.Program, resp.ExitCode)
	}
	return result, nil
}
