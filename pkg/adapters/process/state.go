package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/aretw0/cadence/pkg/plan"
	"github.com/aretw0/cadence/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// Kind is the plan kind of process states.
const Kind = "exec"

// params is the shape of the Params of an exec node.
type params struct {
	Process string         `mapstructure:"process"` // Registered name, defaults to the node name
	Command string         `mapstructure:"command"`
	Args    []string       `mapstructure:"args"`
	Env     map[string]any `mapstructure:"env"`
}

// Install adds the exec kind to reg.
func (r *Runner) Install(reg *registry.Registry, logger *slog.Logger) {
	reg.Register(Kind, r.Factory(logger))
}

// Factory builds states that run a process when started and become ready to end once
// it exits. A positive duration is a timeout: the process is killed when it elapses.
func (r *Runner) Factory(logger *slog.Logger) registry.Factory {
	return func(def plan.Definition) (fsm.Hooks, error) {
		var p params
		if err := mapstructure.Decode(def.Params, &p); err != nil {
			return nil, fmt.Errorf("invalid exec params: %w", err)
		}
		if p.Process == "" && p.Command == "" {
			p.Process = def.Name
		}
		return &execHooks{
			runner:  r,
			logger:  logger,
			timeout: def.Duration,
			call: Call{
				Name:        p.Process,
				Args:        p.Env,
				Command:     p.Command,
				CommandArgs: p.Args,
			},
		}, nil
	}
}

type execHooks struct {
	runner  *Runner
	logger  *slog.Logger
	timeout time.Duration
	call    Call

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	result Result
	err    error
}

func (h *execHooks) OnStart() error {
	if _, err := h.runner.resolve(h.call); err != nil {
		return err
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if h.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), h.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	h.mu.Lock()
	h.cancel = cancel
	h.done = make(chan struct{})
	h.mu.Unlock()

	go func() {
		defer close(h.done)
		res, err := h.runner.Execute(ctx, h.call)
		h.mu.Lock()
		h.result, h.err = res, err
		h.mu.Unlock()
		h.logger.Debug("process exited", "process", h.call.Name, "is_error", res.IsError)
	}()
	return nil
}

func (h *execHooks) OnUpdate() error { return nil }

// OnEnd stops a process still running and reports a failed exit.
func (h *execHooks) OnEnd() error {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.mu.Unlock()
	if done == nil {
		return nil
	}
	cancel()
	<-done

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	if h.result.IsError {
		return errors.New(h.result.Error)
	}
	return nil
}

// ShouldEnd reports whether the process has exited. A state whose process never
// launched is ready immediately.
func (h *execHooks) ShouldEnd() bool {
	h.mu.Lock()
	done := h.done
	h.mu.Unlock()
	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	default:
		return false
	}
}

func (h *execHooks) Duration() time.Duration { return h.timeout }

// Result returns the outcome once the process has exited.
func (h *execHooks) Result() (Result, bool) {
	if !h.ShouldEnd() {
		return Result{}, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, true
}
