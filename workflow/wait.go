package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/randalmurphal/visualflow/napkin"
)

// Default polling parameters.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxWait      = 3 * time.Minute
)

// StatusPoller fetches status snapshots for a generation request.
// *napkin.Client satisfies it.
type StatusPoller interface {
	GetStatus(ctx context.Context, requestID string) (*napkin.StatusResponse, error)
}

// SleepFunc suspends for the given duration, returning early with the
// context error if the context is canceled.
type SleepFunc func(ctx context.Context, d time.Duration) error

// WaitConfig configures one Wait call.
type WaitConfig struct {
	// PollInterval is the suspension between status calls.
	// Defaults to DefaultPollInterval.
	PollInterval time.Duration

	// MaxWait bounds the total wall-clock time spent polling.
	// Defaults to DefaultMaxWait.
	MaxWait time.Duration

	// OnProgress, when set, is invoked synchronously with every
	// non-terminal snapshot obtained by the polling loop.
	OnProgress func(*napkin.StatusResponse)

	// Sleep overrides the suspension primitive. Defaults to a timer
	// that honors context cancellation.
	Sleep SleepFunc
}

func (c *WaitConfig) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return c.PollInterval
}

func (c *WaitConfig) maxWait() time.Duration {
	if c.MaxWait <= 0 {
		return DefaultMaxWait
	}
	return c.MaxWait
}

func (c *WaitConfig) sleep() SleepFunc {
	if c.Sleep != nil {
		return c.Sleep
	}
	return func(ctx context.Context, d time.Duration) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
			return nil
		}
	}
}

// GenerationError reports a request that reached the failed status.
type GenerationError struct {
	// RequestID is the generation handle.
	RequestID string

	// Message is the error reported by the API.
	Message string

	// Snapshot is the terminal failed snapshot.
	Snapshot *napkin.StatusResponse
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s failed: %s", e.RequestID, e.Message)
}

// TimeoutError reports a request that did not reach a terminal status
// within the configured maximum wait.
type TimeoutError struct {
	// RequestID is the generation handle.
	RequestID string

	// MaxWait is the bound that was exceeded.
	MaxWait time.Duration

	// LastSnapshot is the most recent snapshot observed, if any.
	LastSnapshot *napkin.StatusResponse
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	last := "none"
	if e.LastSnapshot != nil {
		last = string(e.LastSnapshot.Status)
	}
	return fmt.Sprintf("generation %s did not complete within %s (last status: %s)", e.RequestID, e.MaxWait, last)
}

// Wait polls a submitted request until it completes, fails, or the
// maximum wait elapses. Exactly one of three outcomes is possible: a
// completed snapshot, a *GenerationError, or a *TimeoutError (or the
// poller's own error, which propagates as-is).
//
// The deadline is monotonic (elapsed = now - start), so variable latency
// per poll does not extend the bound. Each iteration suspends for the
// poll interval before the next status call; the snapshot returned by
// submission is not re-delivered to OnProgress.
func Wait(ctx context.Context, poller StatusPoller, requestID string, cfg WaitConfig) (*napkin.StatusResponse, error) {
	interval := cfg.pollInterval()
	maxWait := cfg.maxWait()
	sleep := cfg.sleep()

	start := time.Now()
	var last *napkin.StatusResponse

	for {
		if time.Since(start) > maxWait {
			return nil, &TimeoutError{RequestID: requestID, MaxWait: maxWait, LastSnapshot: last}
		}

		if err := sleep(ctx, interval); err != nil {
			return nil, err
		}

		snapshot, err := poller.GetStatus(ctx, requestID)
		if err != nil {
			return nil, err
		}
		last = snapshot

		switch snapshot.Status {
		case napkin.StatusCompleted:
			return snapshot, nil
		case napkin.StatusFailed:
			msg := snapshot.Error
			if msg == "" {
				msg = "no error message provided"
			}
			return nil, &GenerationError{RequestID: requestID, Message: msg, Snapshot: snapshot}
		default:
			if cfg.OnProgress != nil {
				cfg.OnProgress(snapshot)
			}
		}
	}
}
