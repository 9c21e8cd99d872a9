package visualflow

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/randalmurphal/visualflow/config"
	"github.com/randalmurphal/visualflow/napkin"
	"github.com/randalmurphal/visualflow/storage"
	"github.com/randalmurphal/visualflow/testutil"
	"github.com/randalmurphal/visualflow/workflow"
)

// instantSleep keeps polling loops from waiting in tests.
func instantSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func newTestService(t *testing.T, server *testutil.GenerationServer, opts ...Option) *Service {
	t.Helper()

	cfg := config.Default()
	cfg.APIKey = "sk-test"
	cfg.BaseURL = server.URL

	opts = append([]Option{WithSleep(instantSleep)}, opts...)
	s, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestGenerate(t *testing.T) {
	server := testutil.NewGenerationServer(t, testutil.GenerationScript{
		SubmitID: "req-42",
	})
	s := newTestService(t, server)

	result, err := s.Generate(context.Background(), &napkin.Request{
		Content: "Plan, build, ship",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if result.RequestID != "req-42" {
		t.Errorf("RequestID = %q, want req-42", result.RequestID)
	}
	if result.Status != napkin.StatusPending {
		t.Errorf("Status = %q, want pending", result.Status)
	}
	if server.SubmitCalls() != 1 {
		t.Errorf("submit calls = %d, want 1", server.SubmitCalls())
	}
}

func TestGenerateInvalidRequest(t *testing.T) {
	server := testutil.NewGenerationServer(t, testutil.GenerationScript{})
	s := newTestService(t, server)

	_, err := s.Generate(context.Background(), &napkin.Request{
		Content:         "x",
		NumberOfVisuals: 9,
	})

	var vErr *napkin.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Generate() error = %T (%v), want *ValidationError", err, err)
	}
	if server.SubmitCalls() != 0 {
		t.Errorf("submit calls = %d, want 0 for an invalid request", server.SubmitCalls())
	}
}

func TestGenerateAppliesConfiguredDefaults(t *testing.T) {
	server := testutil.NewGenerationServer(t, testutil.GenerationScript{})

	cfg := config.Default()
	cfg.APIKey = "sk-test"
	cfg.BaseURL = server.URL
	cfg.Defaults.Format = ""

	s, err := New(cfg, WithSleep(instantSleep))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// With no request format and no configured default the request is
	// invalid, proving the default was what made the earlier calls pass.
	_, err = s.Generate(context.Background(), &napkin.Request{Content: "x"})

	var vErr *napkin.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Generate() error = %T (%v), want *ValidationError", err, err)
	}
	if vErr.Field != "format" {
		t.Errorf("Field = %q, want format", vErr.Field)
	}
}

func TestCheckStatus(t *testing.T) {
	server := testutil.NewGenerationServer(t, testutil.GenerationScript{
		SubmitID: "req-42",
		Statuses: []napkin.StatusResponse{
			{ID: "req-42", Status: napkin.StatusProcessing},
		},
	})
	s := newTestService(t, server)

	status, err := s.CheckStatus(context.Background(), "req-42")
	if err != nil {
		t.Fatalf("CheckStatus() error = %v", err)
	}
	if status.Status != napkin.StatusProcessing {
		t.Errorf("Status = %q, want processing", status.Status)
	}
}

func TestGenerateAndWait(t *testing.T) {
	script := testutil.GenerationScript{
		SubmitID: "req-42",
		Statuses: []napkin.StatusResponse{
			{ID: "req-42", Status: napkin.StatusPending},
			{ID: "req-42", Status: napkin.StatusProcessing},
			{ID: "req-42", Status: napkin.StatusCompleted},
		},
	}
	server := testutil.NewGenerationServer(t, script)
	s := newTestService(t, server)

	var progress int
	status, err := s.GenerateAndWait(context.Background(),
		&napkin.Request{Content: "Quarterly roadmap as a mindmap"},
		&WaitOptions{OnProgress: func(*napkin.StatusResponse) { progress++ }})
	if err != nil {
		t.Fatalf("GenerateAndWait() error = %v", err)
	}

	if status.Status != napkin.StatusCompleted {
		t.Errorf("Status = %q, want completed", status.Status)
	}
	if progress != 2 {
		t.Errorf("progress callbacks = %d, want 2", progress)
	}
	if server.StatusCalls() != 3 {
		t.Errorf("status calls = %d, want 3", server.StatusCalls())
	}
}

func TestGenerateAndWaitFailure(t *testing.T) {
	server := testutil.NewGenerationServer(t, testutil.GenerationScript{
		SubmitID: "req-42",
		Statuses: []napkin.StatusResponse{
			{ID: "req-42", Status: napkin.StatusFailed, Error: "content too short"},
		},
	})
	s := newTestService(t, server)

	_, err := s.GenerateAndWait(context.Background(), &napkin.Request{Content: "x"}, nil)

	var genErr *workflow.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("GenerateAndWait() error = %T (%v), want *GenerationError", err, err)
	}
	if genErr.Message != "content too short" {
		t.Errorf("Message = %q", genErr.Message)
	}
}

func TestDownloadVisual(t *testing.T) {
	content := []byte("<svg>mindmap</svg>")
	server := testutil.NewGenerationServer(t, testutil.GenerationScript{
		SubmitID: "req-42",
		Files:    map[string][]byte{"/files/out.svg": content},
	})
	server.SetStatuses([]napkin.StatusResponse{
		{
			ID:     "req-42",
			Status: napkin.StatusCompleted,
			GeneratedFiles: []napkin.GeneratedFile{
				{URL: server.FileURL("/files/out.svg"), VisualID: "v-1"},
			},
		},
	})
	s := newTestService(t, server)

	tests := []struct {
		name    string
		fileRef string
	}{
		{"by url", server.FileURL("/files/out.svg")},
		{"by visual id", "v-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.DownloadVisual(context.Background(), "req-42", tt.fileRef)
			if err != nil {
				t.Fatalf("DownloadVisual() error = %v", err)
			}

			decoded, err := base64.StdEncoding.DecodeString(result.ContentBase64)
			if err != nil {
				t.Fatalf("decode content: %v", err)
			}
			if string(decoded) != string(content) {
				t.Errorf("content = %q, want %q", decoded, content)
			}
			if result.ByteCount != len(content) {
				t.Errorf("ByteCount = %d, want %d", result.ByteCount, len(content))
			}
			if result.ContentType != "image/svg+xml" {
				t.Errorf("ContentType = %q", result.ContentType)
			}
			if result.VisualID != "v-1" {
				t.Errorf("VisualID = %q", result.VisualID)
			}
		})
	}

	if _, err := s.DownloadVisual(context.Background(), "req-42", "v-missing"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("DownloadVisual(missing) error = %v, want ErrFileNotFound", err)
	}
}

func TestDownloadVisualNotCompleted(t *testing.T) {
	server := testutil.NewGenerationServer(t, testutil.GenerationScript{
		SubmitID: "req-42",
		Statuses: []napkin.StatusResponse{
			{ID: "req-42", Status: napkin.StatusProcessing},
		},
	})
	s := newTestService(t, server)

	_, err := s.DownloadVisual(context.Background(), "req-42", "v-1")
	if !errors.Is(err, ErrNotCompleted) {
		t.Errorf("DownloadVisual() error = %v, want ErrNotCompleted", err)
	}
	if server.DownloadCalls() != 0 {
		t.Errorf("download calls = %d, want 0", server.DownloadCalls())
	}
}

func TestGenerateAndSave(t *testing.T) {
	contentA := []byte("<svg>variant one</svg>")
	contentB := []byte("<svg>variant two</svg>")
	server := testutil.NewGenerationServer(t, testutil.GenerationScript{
		SubmitID: "req-42",
		Files: map[string][]byte{
			"/files/a.svg": contentA,
			"/files/b.svg": contentB,
		},
	})
	server.SetStatuses([]napkin.StatusResponse{
		{ID: "req-42", Status: napkin.StatusProcessing},
		{
			ID:     "req-42",
			Status: napkin.StatusCompleted,
			GeneratedFiles: []napkin.GeneratedFile{
				{URL: server.FileURL("/files/a.svg"), VisualID: "v-1"},
				{URL: server.FileURL("/files/b.svg"), VisualID: "v-2"},
			},
		},
	})

	dir := t.TempDir()
	store, err := storage.New(storage.Destination{
		Kind:       storage.KindFilesystem,
		Filesystem: &storage.FilesystemConfig{Directory: dir},
	})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}

	s := newTestService(t, server, WithStore(store))

	result, err := s.GenerateAndSave(context.Background(),
		&napkin.Request{Content: "Release timeline", NumberOfVisuals: 2},
		&SaveOptions{Filename: "timeline.svg"})
	if err != nil {
		t.Fatalf("GenerateAndSave() error = %v", err)
	}

	if result.RequestID != "req-42" {
		t.Errorf("RequestID = %q", result.RequestID)
	}
	if result.Backend != storage.KindFilesystem {
		t.Errorf("Backend = %q", result.Backend)
	}
	if len(result.Files) != 2 {
		t.Fatalf("Files = %d, want 2", len(result.Files))
	}

	wantNames := []string{"timeline-1.svg", "timeline-2.svg"}
	wantContent := [][]byte{contentA, contentB}
	for i, f := range result.Files {
		if f.Filename != wantNames[i] {
			t.Errorf("Files[%d].Filename = %q, want %q", i, f.Filename, wantNames[i])
		}
		got, err := os.ReadFile(filepath.Join(dir, f.Filename))
		if err != nil {
			t.Fatalf("read stored file: %v", err)
		}
		if string(got) != string(wantContent[i]) {
			t.Errorf("stored %q = %q, want %q", f.Filename, got, wantContent[i])
		}
	}
}

func TestGenerateAndSaveWithoutStorage(t *testing.T) {
	server := testutil.NewGenerationServer(t, testutil.GenerationScript{})
	s := newTestService(t, server)

	_, err := s.GenerateAndSave(context.Background(), &napkin.Request{Content: "x"}, nil)
	if !errors.Is(err, storage.ErrNotConfigured) {
		t.Fatalf("GenerateAndSave() error = %v, want ErrNotConfigured", err)
	}

	// The failure happens before any API traffic.
	if server.SubmitCalls() != 0 {
		t.Errorf("submit calls = %d, want 0", server.SubmitCalls())
	}
	if server.StatusCalls() != 0 {
		t.Errorf("status calls = %d, want 0", server.StatusCalls())
	}
}

func TestGenerateAndSaveZeroFiles(t *testing.T) {
	server := testutil.NewGenerationServer(t, testutil.GenerationScript{
		SubmitID: "req-42",
		Statuses: []napkin.StatusResponse{
			{ID: "req-42", Status: napkin.StatusCompleted},
		},
	})

	store, err := storage.New(storage.Destination{
		Kind:       storage.KindFilesystem,
		Filesystem: &storage.FilesystemConfig{Directory: t.TempDir()},
	})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}

	s := newTestService(t, server, WithStore(store))

	_, err = s.GenerateAndSave(context.Background(), &napkin.Request{Content: "x"}, nil)
	if !errors.Is(err, ErrNoFilesGenerated) {
		t.Errorf("GenerateAndSave() error = %v, want ErrNoFilesGenerated", err)
	}
}

func TestListStyles(t *testing.T) {
	server := testutil.NewGenerationServer(t, testutil.GenerationScript{})
	s := newTestService(t, server)

	all := s.ListStyles("")
	if len(all) == 0 {
		t.Fatal("ListStyles(\"\") returned no styles")
	}

	formal := s.ListStyles(napkin.StyleCategoryFormal)
	if len(formal) == 0 || len(formal) >= len(all) {
		t.Errorf("ListStyles(formal) = %d styles, want a proper subset of %d", len(formal), len(all))
	}
}

func TestVerifyAPIKey(t *testing.T) {
	server := testutil.NewGenerationServer(t, testutil.GenerationScript{})
	s := newTestService(t, server)

	result := s.VerifyAPIKey(context.Background())
	if !result.Valid {
		t.Errorf("VerifyAPIKey() = %+v, want valid against the fake API", result)
	}
}
