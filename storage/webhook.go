package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// WebhookConfig targets a Discord-style webhook.
type WebhookConfig struct {
	// URL is the webhook endpoint. Required.
	URL string `yaml:"url" json:"url"`

	// Username overrides the display name on posted messages.
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
}

type webhookStore struct {
	url        string
	username   string
	httpClient *http.Client
}

func newWebhookStore(cfg WebhookConfig, httpClient *http.Client) *webhookStore {
	return &webhookStore{
		url:        cfg.URL,
		username:   cfg.Username,
		httpClient: httpClient,
	}
}

func (s *webhookStore) Kind() Kind { return KindWebhook }

func (s *webhookStore) Configured() bool { return s.url != "" }

// Store posts the file as a webhook message attachment. The wait flag
// asks the webhook to return the created message so the attachment URL
// can be reported.
func (s *webhookStore) Store(ctx context.Context, content []byte, filename, contentType string, metadata map[string]string) (*Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	payload := map[string]any{}
	if s.username != "" {
		payload["username"] = s.username
	}
	if caption := metadata["caption"]; caption != "" {
		payload["content"] = caption
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("webhook: marshal payload: %w", err)
	}
	if err := mw.WriteField("payload_json", string(payloadJSON)); err != nil {
		return nil, fmt.Errorf("webhook: build request body: %w", err)
	}

	part, err := mw.CreateFormFile("files[0]", filename)
	if err != nil {
		return nil, fmt.Errorf("webhook: build request body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("webhook: build request body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("webhook: build request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"?wait=true", &buf)
	if err != nil {
		return nil, fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("webhook: post returned %d: %s", resp.StatusCode, body)
	}

	var message struct {
		ID          string `json:"id"`
		Attachments []struct {
			URL string `json:"url"`
		} `json:"attachments"`
	}
	// Some webhook providers return an empty body; the post itself
	// succeeded, so only enrich the result when a message came back.
	_ = json.Unmarshal(body, &message)

	result := &Result{
		Backend:  KindWebhook,
		Location: message.ID,
		Metadata: map[string]string{"filename": filename},
	}
	if len(message.Attachments) > 0 {
		result.URL = message.Attachments[0].URL
	}
	return result, nil
}
