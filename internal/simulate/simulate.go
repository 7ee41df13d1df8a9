// Package simulate runs a whole library simulation: the server, then the
// workload generator against it, then an orderly server stop. Every step is
// written to the shared activity log under the BUILDER tag.
package simulate

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/dmitrijs2005/librarian/internal/activity"
	"github.com/dmitrijs2005/librarian/internal/logging"
)

// Header starts every fresh activity log.
const Header = "=== Library Management System Simulation ==="

type Options struct {
	ServerBin       string
	ServerArgs      []string
	ClientBin       string
	ClientArgs      []string
	ScenarioFiles   []string
	ActivityLogPath string
	// StartupDelay gives the server time to bind before the client starts.
	StartupDelay time.Duration
	// GracePeriod lets in-flight requests finish before the server is told
	// to stop.
	GracePeriod time.Duration
}

// DefaultOptions mirrors the layout of a build directory holding the server
// and client binaries next to the scenario files.
func DefaultOptions() Options {
	return Options{
		ServerBin:       "./server",
		ClientBin:       "./client",
		ScenarioFiles:   []string{"user1.txt", "user2.txt"},
		ActivityLogPath: "log.txt",
		StartupDelay:    2 * time.Second,
		GracePeriod:     time.Second,
	}
}

type Orchestrator struct {
	opts     Options
	logger   logging.Logger
	activity activity.Recorder
}

func New(opts Options, logger logging.Logger, act activity.Recorder) *Orchestrator {
	return &Orchestrator{opts: opts, logger: logger.With("module", "simulate"), activity: act}
}

// Run resets the activity log and drives one simulation to completion. It
// fails only when a child cannot be started or the log cannot be reset; how
// the children exit is recorded, not returned.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := activity.Reset(o.opts.ActivityLogPath, Header); err != nil {
		return fmt.Errorf("reset activity log: %w", err)
	}

	o.record("Simulation Started.")

	server, err := startProcess(o.opts.ServerBin, o.opts.ServerArgs...)
	if err != nil {
		return fmt.Errorf("start server %s: %w", o.opts.ServerBin, err)
	}
	o.logger.Info(ctx, "server started", "bin", o.opts.ServerBin)

	if err := sleep(ctx, o.opts.StartupDelay); err != nil {
		o.stopServer(ctx, server)
		return err
	}

	clientArgs := append(append([]string(nil), o.opts.ClientArgs...), o.opts.ScenarioFiles...)
	client, err := startProcess(o.opts.ClientBin, clientArgs...)
	if err != nil {
		o.stopServer(ctx, server)
		return fmt.Errorf("start client %s: %w", o.opts.ClientBin, err)
	}
	o.logger.Info(ctx, "client started", "bin", o.opts.ClientBin, "scenarios", len(o.opts.ScenarioFiles))

	if err := client.Wait(); err != nil {
		o.logger.Warn(ctx, "client exited with error", "error", err)
		o.record("Client process terminated abnormally.")
	} else {
		o.record("Client process exited successfully.")
	}

	// A cancelled ctx only skips the grace period.
	_ = sleep(ctx, o.opts.GracePeriod)

	o.stopServer(ctx, server)
	o.record("Simulation Finished.")

	return nil
}

func (o *Orchestrator) stopServer(ctx context.Context, server Process) {
	if err := server.Signal(syscall.SIGTERM); err != nil {
		o.logger.Warn(ctx, "signal server failed", "error", err)
	}

	if err := server.Wait(); err != nil {
		o.logger.Warn(ctx, "server exited with error", "error", err)
		o.record("Library process terminated.")
		return
	}
	o.record("Library process exited successfully.")
}

func (o *Orchestrator) record(msg string) {
	o.activity.Record(activity.SourceBuilder, msg)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
