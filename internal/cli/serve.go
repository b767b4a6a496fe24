package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/cadence"
	httpAdapter "github.com/aretw0/cadence/pkg/adapters/http"
	"github.com/aretw0/cadence/pkg/adapters/mcp"
	"github.com/aretw0/cadence/pkg/runner"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the plan behind the HTTP control API on addr until ctx is cancelled.
func Serve(ctx context.Context, opts RunOptions, logger *slog.Logger, out io.Writer, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return serveOn(ctx, opts, logger, out, ln)
}

func serveOn(ctx context.Context, opts RunOptions, logger *slog.Logger, out io.Writer, ln net.Listener) error {
	machine, gatherer, err := createMachine(opts, logger)
	if err != nil {
		_ = ln.Close()
		return err
	}

	// The run stops with the server, whichever ends first
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	streams := httpAdapter.NewStreamManager()
	srv := &http.Server{
		Handler: httpAdapter.NewHandler(machine,
			httpAdapter.WithMetrics(gatherer),
			httpAdapter.WithStreams(streams),
			httpAdapter.WithLogger(logger),
		),
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting Cadence Server", "address", ln.Addr().String(), "plan", opts.PlanPath)
		serverErrors <- srv.Serve(ln)
	}()

	runErrors := make(chan error, 1)
	go func() {
		runErrors <- drive(ctx, opts, logger, out, machine, runner.WithOnChange(streams.BroadcastDiff))
	}()

	var result error
	select {
	case err := <-serverErrors:
		result = fmt.Errorf("server error: %w", err)
	case err := <-runErrors:
		result = err
	case <-ctx.Done():
		logger.Info("Start shutdown...")
	}
	cancel()

	// Give outstanding requests a deadline for completion.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
		_ = srv.Close()
	}
	machine.End()
	logger.Info("Cadence Server stopped gracefully")

	if errors.Is(result, http.ErrServerClosed) {
		return nil
	}
	return handleExecutionError(result)
}

// drive runs the machine in the background of a long-lived server. A finished plan
// keeps its final snapshot and is run again once restarted by a client.
func drive(ctx context.Context, opts RunOptions, logger *slog.Logger, out io.Writer, machine *cadence.Machine, extra ...runner.Option) error {
	store, closeStore, err := createStore(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	key := snapshotKey(opts, machine)
	if opts.Fresh {
		resetSnapshot(ctx, store, key, logger)
	}

	for {
		if err := runMachine(ctx, opts, logger, out, machine, store, key, extra...); err != nil {
			return err
		}
		logger.Info("Plan finished, waiting for restart")

		if err := waitUntil(ctx, opts.Interval, func() bool { return !machine.Done() }); err != nil {
			return err
		}
	}
}

func waitUntil(ctx context.Context, every time.Duration, cond func() bool) error {
	if every <= 0 {
		every = runner.DefaultInterval
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for !cond() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Transports supported by ServeMCP.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ServeMCP runs the plan and exposes it to AI agents over the Model Context Protocol.
func ServeMCP(ctx context.Context, opts RunOptions, logger *slog.Logger, transport string, port int) error {
	machine, _, err := createMachine(opts, logger)
	if err != nil {
		return err
	}
	defer machine.End()

	srv := mcp.NewServer(machine)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		// Stdout carries JSON-RPC: the run only reports through the logger
		quiet := opts
		quiet.Quiet = true
		if err := drive(ctx, quiet, logger, io.Discard, machine); handleExecutionError(err) != nil {
			logger.Error("Plan execution failed", "err", err)
		}
	}()

	switch transport {
	case TransportStdio:
		logger.Info("Starting Cadence MCP Server (Stdio)...")
		return srv.ServeStdio()
	case TransportSSE:
		logger.Info("Starting Cadence MCP Server (SSE)", "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
