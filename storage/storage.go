package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Kind identifies a storage backend.
type Kind string

// Backend kinds.
const (
	KindFilesystem Kind = "filesystem"
	KindS3         Kind = "s3"
	KindDrive      Kind = "drive"
	KindSlack      Kind = "slack"
	KindNotion     Kind = "notion"
	KindTelegram   Kind = "telegram"
	KindWebhook    Kind = "webhook"
)

// Common storage errors.
var (
	// ErrNotConfigured indicates no usable storage destination is set.
	ErrNotConfigured = errors.New("storage not configured")

	// ErrUnknownKind indicates an unrecognized destination kind.
	ErrUnknownKind = errors.New("unknown storage kind")
)

// Result reports where a store operation put the bytes.
type Result struct {
	// Backend is the kind that handled the store.
	Backend Kind `json:"backend"`

	// Location is a backend-specific location token: an absolute file
	// path, an s3:// URI, a provider file ID, a message ID.
	Location string `json:"location"`

	// URL is an externally-reachable URL for the stored bytes, when the
	// backend provides one.
	URL string `json:"url,omitempty"`

	// Metadata carries backend-specific details (bucket/key, file id,
	// message id, etc.).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Store is the single storage capability: put bytes under a name.
type Store interface {
	// Store writes content under filename and returns its location.
	// contentType may be empty; metadata is free-form and optional.
	// Backend failures propagate wrapped with backend identification;
	// a store never returns a partial result.
	Store(ctx context.Context, content []byte, filename, contentType string, metadata map[string]string) (*Result, error)

	// Configured reports whether the store has everything it needs.
	// It is a pure readiness check and performs no I/O.
	Configured() bool

	// Kind identifies the backend.
	Kind() Kind
}

// Destination selects and parameterizes one backend. It is configuration,
// never mutated at runtime; exactly the field matching Kind is consulted.
type Destination struct {
	Kind       Kind              `yaml:"kind" json:"kind"`
	Filesystem *FilesystemConfig `yaml:"filesystem,omitempty" json:"filesystem,omitempty"`
	S3         *S3Config         `yaml:"s3,omitempty" json:"s3,omitempty"`
	Drive      *DriveConfig      `yaml:"drive,omitempty" json:"drive,omitempty"`
	Slack      *SlackConfig      `yaml:"slack,omitempty" json:"slack,omitempty"`
	Notion     *NotionConfig     `yaml:"notion,omitempty" json:"notion,omitempty"`
	Telegram   *TelegramConfig   `yaml:"telegram,omitempty" json:"telegram,omitempty"`
	Webhook    *WebhookConfig    `yaml:"webhook,omitempty" json:"webhook,omitempty"`
}

// EnvLookup resolves an environment variable. Tests substitute their own.
type EnvLookup func(key string) (string, bool)

// ResolveToken returns explicit if non-empty, otherwise the first
// environment variable that resolves to a non-empty value. It is called
// once at construction time so a store's state is immutable afterwards.
func ResolveToken(explicit string, lookup EnvLookup, envKeys ...string) string {
	if explicit != "" {
		return explicit
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range envKeys {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
	}
	return ""
}

// Option configures store construction.
type Option func(*options)

type options struct {
	env        EnvLookup
	httpClient *http.Client
}

// WithEnvLookup overrides environment-variable resolution for credential
// fallbacks.
func WithEnvLookup(fn EnvLookup) Option {
	return func(o *options) { o.env = fn }
}

// WithHTTPClient overrides the HTTP client used by HTTP-backed stores.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func buildOptions(opts []Option) options {
	o := options{
		env:        os.LookupEnv,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New constructs the store selected by the destination. The switch over
// kinds is exhaustive; an unrecognized kind or a missing per-kind config
// block is an error.
func New(dst Destination, opts ...Option) (Store, error) {
	o := buildOptions(opts)

	switch dst.Kind {
	case KindFilesystem:
		if dst.Filesystem == nil {
			return nil, fmt.Errorf("storage: filesystem destination missing config")
		}
		return newFilesystemStore(*dst.Filesystem), nil
	case KindS3:
		if dst.S3 == nil {
			return nil, fmt.Errorf("storage: s3 destination missing config")
		}
		return newS3Store(*dst.S3), nil
	case KindDrive:
		if dst.Drive == nil {
			return nil, fmt.Errorf("storage: drive destination missing config")
		}
		return newDriveStore(*dst.Drive, o.httpClient), nil
	case KindSlack:
		if dst.Slack == nil {
			return nil, fmt.Errorf("storage: slack destination missing config")
		}
		return newSlackStore(*dst.Slack, o.env, o.httpClient), nil
	case KindNotion:
		if dst.Notion == nil {
			return nil, fmt.Errorf("storage: notion destination missing config")
		}
		return newNotionStore(*dst.Notion, o.env, o.httpClient), nil
	case KindTelegram:
		if dst.Telegram == nil {
			return nil, fmt.Errorf("storage: telegram destination missing config")
		}
		return newTelegramStore(*dst.Telegram, o.env, o.httpClient), nil
	case KindWebhook:
		if dst.Webhook == nil {
			return nil, fmt.Errorf("storage: webhook destination missing config")
		}
		return newWebhookStore(*dst.Webhook, o.httpClient), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, dst.Kind)
	}
}
