package visualflow

import (
	"context"
	"time"

	"github.com/randalmurphal/visualflow/napkin"
	"github.com/randalmurphal/visualflow/workflow"
)

// GenerateResult is the outcome of a submit-only generate operation.
type GenerateResult struct {
	// RequestID is the handle for subsequent status and download calls.
	RequestID string `json:"request_id"`

	// Status is the initial status, normally pending.
	Status napkin.Status `json:"status"`

	// Warning carries a non-fatal notice from the API, if any.
	Warning string `json:"warning,omitempty"`
}

// Generate validates and submits a generation request without waiting
// for the result.
func (s *Service) Generate(ctx context.Context, req *napkin.Request) (*GenerateResult, error) {
	r, err := s.applyDefaults(req)
	if err != nil {
		return nil, err
	}

	sub, err := s.client.Submit(ctx, r)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("generation submitted", "request_id", sub.ID, "format", r.Format)

	return &GenerateResult{
		RequestID: sub.ID,
		Status:    sub.Status,
		Warning:   sub.Warning,
	}, nil
}

// CheckStatus fetches a fresh status snapshot for a generation request.
func (s *Service) CheckStatus(ctx context.Context, requestID string) (*napkin.StatusResponse, error) {
	return s.client.GetStatus(ctx, requestID)
}

// WaitOptions are per-call overrides for a wait operation. Zero values
// use the configured defaults; non-zero values are clamped to the valid
// configuration bounds.
type WaitOptions struct {
	// PollInterval overrides the suspension between status polls.
	PollInterval time.Duration

	// MaxWait overrides the bound on the total polling time.
	MaxWait time.Duration

	// OnProgress, when set, receives every non-terminal snapshot
	// observed by the polling loop.
	OnProgress func(*napkin.StatusResponse)
}

// GenerateAndWait submits a generation request and polls until it
// completes, fails, or the maximum wait elapses. On success the returned
// snapshot carries the generated files.
func (s *Service) GenerateAndWait(ctx context.Context, req *napkin.Request, opts *WaitOptions) (*napkin.StatusResponse, error) {
	r, err := s.applyDefaults(req)
	if err != nil {
		return nil, err
	}

	sub, err := s.client.Submit(ctx, r)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("generation submitted, polling", "request_id", sub.ID)

	if opts == nil {
		opts = &WaitOptions{}
	}

	status, err := workflow.Wait(ctx, s.client, sub.ID, workflow.WaitConfig{
		PollInterval: s.cfg.ClampPollInterval(opts.PollInterval),
		MaxWait:      s.cfg.ClampMaxWait(opts.MaxWait),
		OnProgress:   opts.OnProgress,
		Sleep:        s.sleep,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("generation completed",
		"request_id", sub.ID,
		"files", len(status.GeneratedFiles),
	)
	return status, nil
}
