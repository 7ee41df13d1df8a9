package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/librarian/internal/activity"
	"github.com/dmitrijs2005/librarian/internal/flagx"
	"github.com/dmitrijs2005/librarian/internal/logging"
	"github.com/dmitrijs2005/librarian/internal/simulate"
)

var valueFlags = []string{"-s", "-b", "-l", "-d", "-w"}

// parseOptions reads:
//
//	-s string   server binary
//	-b string   client (workload generator) binary
//	-l string   activity log path, passed on to both children
//	-d int      startup delay, milliseconds
//	-w int      grace period before stopping the server, milliseconds
//
// Remaining arguments replace the default scenario files.
func parseOptions(args []string) (simulate.Options, error) {
	opts := simulate.DefaultOptions()

	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	fs.StringVar(&opts.ServerBin, "s", opts.ServerBin, "server binary")
	fs.StringVar(&opts.ClientBin, "b", opts.ClientBin, "client binary")
	fs.StringVar(&opts.ActivityLogPath, "l", opts.ActivityLogPath, "activity log path")
	startup := fs.Int("d", int(opts.StartupDelay.Milliseconds()), "startup delay (in milliseconds)")
	grace := fs.Int("w", int(opts.GracePeriod.Milliseconds()), "grace period (in milliseconds)")

	if err := fs.Parse(flagx.FilterArgs(args, valueFlags)); err != nil {
		return opts, err
	}

	opts.StartupDelay = time.Duration(*startup) * time.Millisecond
	opts.GracePeriod = time.Duration(*grace) * time.Millisecond
	opts.ServerArgs = []string{"-l", opts.ActivityLogPath}
	opts.ClientArgs = []string{"-l", opts.ActivityLogPath}

	if files := flagx.Positional(args, valueFlags); len(files) > 0 {
		opts.ScenarioFiles = files
	}

	return opts, nil
}

func main() {

	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, slog.LevelInfo)
	act := activity.NewFileLog(opts.ActivityLogPath, logger)

	if err := simulate.New(opts, logger, act).Run(ctx); err != nil {
		logger.Error(ctx, "simulation failed", "error", err)
		stop()
		os.Exit(1)
	}

	fmt.Printf("Simulation complete. Check %s for details.\n", opts.ActivityLogPath)
}
