package visualflow

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/randalmurphal/visualflow/napkin"
)

// DownloadResult carries a generated file's bytes as base64.
type DownloadResult struct {
	// RequestID is the generation the file belongs to.
	RequestID string `json:"request_id"`

	// VisualID identifies the visual that produced the file.
	VisualID string `json:"visual_id,omitempty"`

	// ContentBase64 is the file content, base64-encoded.
	ContentBase64 string `json:"content_base64"`

	// ByteCount is the decoded size in bytes.
	ByteCount int `json:"byte_count"`

	// ContentType is the inferred MIME type.
	ContentType string `json:"content_type,omitempty"`
}

// DownloadVisual downloads one generated file of a completed request,
// identified by its download URL or its visual ID.
func (s *Service) DownloadVisual(ctx context.Context, requestID, fileRef string) (*DownloadResult, error) {
	if fileRef == "" {
		return nil, fmt.Errorf("visualflow: file reference is required")
	}

	status, err := s.client.GetStatus(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if status.Status != napkin.StatusCompleted {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotCompleted, requestID, status.Status)
	}

	file, ok := findFile(status.GeneratedFiles, fileRef)
	if !ok {
		return nil, fmt.Errorf("%w: %q in generation %s", ErrFileNotFound, fileRef, requestID)
	}

	content, err := s.client.DownloadFile(ctx, file.URL)
	if err != nil {
		return nil, err
	}

	return &DownloadResult{
		RequestID:     requestID,
		VisualID:      file.VisualID,
		ContentBase64: base64.StdEncoding.EncodeToString(content),
		ByteCount:     len(content),
		ContentType:   contentTypeForURL(file.URL),
	}, nil
}

// findFile matches a generated file by download URL or visual ID.
func findFile(files []napkin.GeneratedFile, ref string) (napkin.GeneratedFile, bool) {
	for _, f := range files {
		if f.URL == ref || f.VisualID == ref {
			return f, true
		}
	}
	return napkin.GeneratedFile{}, false
}
