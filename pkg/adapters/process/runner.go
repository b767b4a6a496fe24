package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// ErrNotRegistered is returned when a call names a process outside the allow-list.
var ErrNotRegistered = errors.New("process not registered")

// Runner executes local processes.
// It follows a Strict Registry pattern for security (Allow-Listing).
type Runner struct {
	mu          sync.RWMutex
	registry    map[string]RegisteredProcess
	allowInline bool
	baseDir     string
}

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Command string
	Args    []string // Default/Template args
	Env     map[string]string
}

// Call describes one execution request.
type Call struct {
	Name string
	Args map[string]any // Exposed as CADENCE_ARG_<KEY> environment variables

	// Inline command, honoured only when inline execution is enabled.
	Command     string
	CommandArgs []string
}

// Result is the outcome of a finished process.
type Result struct {
	Output  any // Parsed JSON when stdout looks like JSON, otherwise the trimmed text
	Stderr  string
	IsError bool
	Error   string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(procs map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for name, p := range procs {
			r.registry[name] = RegisteredProcess{Command: p.Command, Args: p.Args, Env: p.Environment}
		}
	}
}

// WithInlineExecution enables ad-hoc execution (Dangerous).
func WithInlineExecution(allow bool) RunnerOption {
	return func(r *Runner) {
		r.allowInline = allow
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registry[name] = RegisteredProcess{
		Command: command,
		Args:    args,
	}
}

func (r *Runner) resolve(call Call) (RegisteredProcess, error) {
	r.mu.RLock()
	proc, ok := r.registry[call.Name]
	r.mu.RUnlock()
	if ok {
		return proc, nil
	}
	if r.allowInline && call.Command != "" {
		return RegisteredProcess{Command: call.Command, Args: call.CommandArgs}, nil
	}
	return RegisteredProcess{}, fmt.Errorf("%w: %s (and inline execution not enabled/found)", ErrNotRegistered, call.Name)
}

// Execute runs the process and waits for it to exit.
// A process that fails to run or exits non-zero yields a Result with IsError set;
// the returned error is reserved for calls that cannot be resolved.
func (r *Runner) Execute(ctx context.Context, call Call) (Result, error) {
	proc, err := r.resolve(call)
	if err != nil {
		return Result{}, err
	}

	// Security: args are never appended to the command line.
	// They are passed as environment variables to prevent flag injection.
	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir

	env := cmd.Environ()
	for k, v := range proc.Env {
		env = append(env, k+"="+v)
	}
	for k, v := range call.Args {
		env = append(env, fmt.Sprintf("CADENCE_ARG_%s=%s", strings.ToUpper(k), envValue(v)))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Result{
			Stderr:  stderr.String(),
			IsError: true,
			Error:   fmt.Sprintf("execution failed: %v. Stderr: %s", err, strings.TrimSpace(stderr.String())),
		}, nil
	}

	return Result{Output: parseOutput(stdout.String()), Stderr: stderr.String()}, nil
}

// envValue formats primitives as is and complex values as JSON.
func envValue(v any) string {
	switch v.(type) {
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}

func parseOutput(output string) any {
	trimmed := strings.TrimSpace(output)
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var parsed any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			return parsed
		}
	}
	return trimmed
}
