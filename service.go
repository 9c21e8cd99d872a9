package visualflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/randalmurphal/visualflow/config"
	"github.com/randalmurphal/visualflow/napkin"
	"github.com/randalmurphal/visualflow/storage"
	"github.com/randalmurphal/visualflow/workflow"
)

// Errors returned by the tool surface.
var (
	// ErrNoFilesGenerated indicates a completed generation reported zero
	// files; save operations treat this as fatal, not as empty success.
	ErrNoFilesGenerated = errors.New("no files generated")

	// ErrFileNotFound indicates the requested file is not part of the
	// generation's completed snapshot.
	ErrFileNotFound = errors.New("file not found in generation result")

	// ErrNotCompleted indicates a download was attempted before the
	// generation reached the completed status.
	ErrNotCompleted = errors.New("generation is not completed")
)

// Service exposes the tool operations. It holds immutable configuration
// and stateless collaborators, so one instance serves concurrent calls.
type Service struct {
	client *napkin.Client
	store  storage.Store // nil when no destination is configured
	cfg    *config.Config
	logger *slog.Logger
	sleep  workflow.SleepFunc // test override; nil means real timers
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithStore overrides the storage backend built from the configuration.
func WithStore(store storage.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithSleep overrides the polling suspension primitive (for tests).
func WithSleep(fn workflow.SleepFunc) Option {
	return func(s *Service) { s.sleep = fn }
}

// New builds a Service from a validated configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := napkin.NewClient(napkin.ClientConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	s := &Service{
		client: client,
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil && cfg.Storage != nil {
		store, err := storage.New(*cfg.Storage)
		if err != nil {
			return nil, err
		}
		s.store = store
	}

	return s, nil
}

// VerifyAPIKey probes the API with the configured key. It reports the
// outcome in the result and never returns an error.
func (s *Service) VerifyAPIKey(ctx context.Context) napkin.VerifyResult {
	return s.client.VerifyAPIKey(ctx)
}

// ListStyles returns the style catalog, optionally filtered by category.
func (s *Service) ListStyles(category string) []napkin.Style {
	return napkin.Styles(category)
}

// applyDefaults fills empty request fields from the configured defaults
// and returns a validated copy. The caller's request is not mutated.
func (s *Service) applyDefaults(req *napkin.Request) (*napkin.Request, error) {
	r := *req
	d := s.cfg.Defaults

	if r.Format == "" {
		r.Format = d.Format
	}
	if r.Language == "" {
		r.Language = d.Language
	}
	if r.StyleID == "" {
		r.StyleID = d.StyleID
	}
	if r.NumberOfVisuals == 0 {
		r.NumberOfVisuals = d.NumberOfVisuals
	}
	if r.ColorMode == "" {
		r.ColorMode = d.ColorMode
	}
	if r.Orientation == "" {
		r.Orientation = d.Orientation
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
