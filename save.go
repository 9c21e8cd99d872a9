package visualflow

import (
	"context"
	"fmt"

	"github.com/randalmurphal/visualflow/napkin"
	"github.com/randalmurphal/visualflow/storage"
)

// SaveOptions configure a generate-and-save operation.
type SaveOptions struct {
	// Filename overrides the generated filename. With multiple files a
	// 1-based index is inserted before the extension.
	Filename string

	// Wait carries the per-call polling overrides.
	Wait WaitOptions
}

// SavedFile reports where one generated file was stored.
type SavedFile struct {
	// Filename is the name the file was stored under.
	Filename string `json:"filename"`

	// VisualID identifies the visual that produced the file.
	VisualID string `json:"visual_id,omitempty"`

	// Location is the backend-specific location token.
	Location string `json:"location"`

	// URL is the externally-reachable URL, when the backend has one.
	URL string `json:"url,omitempty"`

	// Metadata carries backend-specific details.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SaveResult is the outcome of a generate-and-save operation.
type SaveResult struct {
	// RequestID is the generation handle.
	RequestID string `json:"request_id"`

	// Backend is the storage backend that handled the files.
	Backend storage.Kind `json:"backend"`

	// Files lists every stored file, in generation order.
	Files []SavedFile `json:"files"`
}

// GenerateAndSave generates visuals, waits for completion, downloads
// every generated file, and stores each via the configured destination.
// It either returns all requested file results or fails entirely: a
// failure while downloading or storing any file aborts the operation,
// and a completed generation with zero files is a fatal error.
//
// When no storage destination is configured the operation fails before
// any network call is made.
func (s *Service) GenerateAndSave(ctx context.Context, req *napkin.Request, opts *SaveOptions) (*SaveResult, error) {
	if s.store == nil || !s.store.Configured() {
		return nil, storage.ErrNotConfigured
	}

	if opts == nil {
		opts = &SaveOptions{}
	}

	r, err := s.applyDefaults(req)
	if err != nil {
		return nil, err
	}

	status, err := s.GenerateAndWait(ctx, r, &opts.Wait)
	if err != nil {
		return nil, err
	}

	if len(status.GeneratedFiles) == 0 {
		return nil, fmt.Errorf("%w for generation %s", ErrNoFilesGenerated, status.ID)
	}

	contentType := ContentTypeFor(r.Format)
	files := make([]SavedFile, 0, len(status.GeneratedFiles))

	for i, file := range status.GeneratedFiles {
		name, err := buildFilename(opts.Filename, r.Format, i, len(status.GeneratedFiles))
		if err != nil {
			return nil, err
		}

		content, err := s.client.DownloadFile(ctx, file.URL)
		if err != nil {
			return nil, err
		}

		result, err := s.store.Store(ctx, content, name, contentType, map[string]string{
			"request_id": status.ID,
			"visual_id":  file.VisualID,
		})
		if err != nil {
			return nil, err
		}

		s.logger.Info("stored generated file",
			"request_id", status.ID,
			"filename", name,
			"backend", result.Backend,
			"location", result.Location,
		)

		files = append(files, SavedFile{
			Filename: name,
			VisualID: file.VisualID,
			Location: result.Location,
			URL:      result.URL,
			Metadata: result.Metadata,
		})
	}

	return &SaveResult{
		RequestID: status.ID,
		Backend:   s.store.Kind(),
		Files:     files,
	}, nil
}
