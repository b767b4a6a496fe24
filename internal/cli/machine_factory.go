package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/pkg/adapters/memory"
	"github.com/aretw0/cadence/pkg/adapters/process"
	"github.com/aretw0/cadence/pkg/adapters/redis"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/observability"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
)

// createRegistry builds the leaf registry with the exec kind installed.
func createRegistry(opts RunOptions, logger *slog.Logger) (*registry.Registry, error) {
	reg := registry.NewRegistry(registry.WithLogger(logger))

	procs := map[string]process.ProcessConfig{}
	if path := opts.processesPath(); path != "" {
		loaded, err := process.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		procs = loaded
		logger.Debug("Processes loaded", "path", path, "count", len(procs))
	}

	runner := process.NewRunner(
		process.WithRegistry(procs),
		process.WithInlineExecution(opts.UnsafeInline),
		process.WithBaseDir(filepath.Dir(opts.PlanPath)),
	)
	runner.Install(reg, logger)
	return reg, nil
}

// createMachine loads the plan with standard CLI conventions.
// The returned registry gathers the runtime metrics.
func createMachine(opts RunOptions, logger *slog.Logger) (*cadence.Machine, *prometheus.Registry, error) {
	// 1. Leaf kinds
	reg, err := createRegistry(opts, logger)
	if err != nil {
		return nil, nil, err
	}

	// 2. Metrics & Hooks
	promReg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(promReg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	hooks := metrics.Hooks()
	if opts.Debug {
		hooks = domain.MergeHooks(hooks, createDebugHooks(logger))
	}

	// 3. Initialize
	machine, err := cadence.Load(opts.PlanPath,
		cadence.WithLogger(logger),
		cadence.WithRegistry(reg),
		cadence.WithReporter(observability.Reporter(logger, metrics)),
		cadence.WithLifecycleHooks(hooks),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing machine: %w", err)
	}
	return machine, promReg, nil
}

// createStore returns the snapshot store selected by the options. Without a Redis
// address snapshots stay in memory.
func createStore(ctx context.Context, opts RunOptions) (ports.SnapshotStore, func() error, error) {
	if opts.RedisAddr == "" {
		return memory.NewStore(), func() error { return nil }, nil
	}

	store := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, redis.WithTTL(opts.RedisTTL))
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.RedisAddr, err)
	}
	return store, store.Close, nil
}

// snapshotKey resolves the key a run publishes under.
func snapshotKey(opts RunOptions, machine *cadence.Machine) string {
	if opts.Key != "" {
		return opts.Key
	}
	return machine.Name
}

// resetSnapshot deletes the stored snapshot of the run.
func resetSnapshot(ctx context.Context, store ports.SnapshotStore, key string, logger *slog.Logger) {
	if err := store.Delete(ctx, key); err != nil {
		logger.Warn("Failed to reset snapshot", "key", key, "err", err)
		return
	}
	logger.Info("Snapshot reset", "key", key)
}
