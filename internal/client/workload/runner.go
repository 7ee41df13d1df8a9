// Package workload drives a library server with simulated users. Each user
// replays a scenario file on its own goroutine, opening one connection per
// request the same way a real client would.
package workload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/librarian/internal/activity"
	"github.com/dmitrijs2005/librarian/internal/logging"
	"github.com/dmitrijs2005/librarian/internal/netx"
	"github.com/dmitrijs2005/librarian/internal/server/protocol"
)

var ErrNoScenarios = errors.New("no scenario files")

// exchange is swapped in tests.
var exchange = netx.Exchange

// Result summarizes one simulated user. Failures counts requests that got
// no reply; Rejected counts "failure (...)" replies.
type Result struct {
	User     string
	Sent     int
	Failures int
	Rejected int
}

type Runner struct {
	addr        string
	dialTimeout time.Duration
	logger      logging.Logger
	activity    activity.Recorder
}

func NewRunner(addr string, dialTimeout time.Duration, logger logging.Logger, act activity.Recorder) *Runner {
	return &Runner{addr: addr, dialTimeout: dialTimeout, logger: logger, activity: act}
}

// UserTag names the simulated user behind a scenario file in the activity
// log: "users/user1.txt" becomes "USER_user1".
func UserTag(path string) string {
	base := filepath.Base(path)
	return "USER_" + strings.TrimSuffix(base, filepath.Ext(base))
}

// Run replays every file concurrently and waits for all of them. A user whose
// scenario cannot be loaded does not stop the others; the first such error is
// returned after everyone finished.
func (r *Runner) Run(ctx context.Context, files []string) ([]Result, error) {
	if len(files) == 0 {
		return nil, ErrNoScenarios
	}

	r.activity.Record(activity.SourceClient, fmt.Sprintf("Starting %d client threads...", len(files)))

	results := make([]Result, len(files))

	var g errgroup.Group
	for i, path := range files {
		g.Go(func() error {
			res, err := r.runUser(ctx, path)
			results[i] = res
			return err
		})
	}
	err := g.Wait()

	r.activity.Record(activity.SourceClient, "All user threads finished.")

	return results, err
}

func (r *Runner) runUser(ctx context.Context, path string) (Result, error) {
	tag := UserTag(path)
	res := Result{User: tag}
	logger := r.logger.With("user", tag)

	steps, err := LoadScenario(path)
	if err != nil {
		r.activity.Record(tag, "Could not load scenario: "+err.Error())
		logger.Error(ctx, "scenario load failed", "path", path, "error", err)
		return res, err
	}

	for _, step := range steps {
		if step.IsSleep() {
			if err := sleep(ctx, step.Delay); err != nil {
				return res, nil
			}
			continue
		}

		r.activity.Record(tag, "Sending: "+step.Request)
		res.Sent++

		resp, err := exchange(ctx, r.addr, step.Request, r.dialTimeout)
		if err != nil {
			res.Failures++
			r.activity.Record(tag, "Connection failed: "+err.Error())
			logger.Warn(ctx, "request failed", "request", step.Request, "error", err)
			continue
		}

		r.activity.Record(tag, "Received: "+resp)
		if reply := protocol.ParseResponse(resp); !reply.OK {
			res.Rejected++
			logger.Debug(ctx, "request rejected", "request", step.Request, "reason", reply.Reason)
			continue
		}
		logger.Debug(ctx, "response", "request", step.Request, "response", resp)
	}

	return res, nil
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
