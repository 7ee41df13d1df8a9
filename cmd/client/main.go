package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/librarian/internal/activity"
	"github.com/dmitrijs2005/librarian/internal/client/config"
	"github.com/dmitrijs2005/librarian/internal/client/workload"
	"github.com/dmitrijs2005/librarian/internal/flagx"
	"github.com/dmitrijs2005/librarian/internal/logging"
)

func main() {

	files := flagx.Positional(os.Args[1:], config.ValueFlags)
	if len(files) == 0 {
		fmt.Printf("Usage: %s [-a addr] [-l log] [-t seconds] <file1> <file2> ...\n", os.Args[0])
		os.Exit(1)
	}

	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, slog.LevelInfo)
	act := activity.NewFileLog(cfg.ActivityLogPath, logger)

	runner := workload.NewRunner(cfg.ServerEndpointAddr, cfg.DialTimeout, logger, act)

	results, err := runner.Run(ctx, files)
	for _, r := range results {
		logger.Info(ctx, "user finished", "user", r.User, "sent", r.Sent, "failures", r.Failures, "rejected", r.Rejected)
	}
	if err != nil {
		logger.Error(ctx, "workload failed", "error", err)
		stop()
		os.Exit(1)
	}

}
