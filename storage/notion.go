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

// NotionConfig targets a Notion page via an integration token.
type NotionConfig struct {
	// PageID is the page the file block is appended to. Required.
	PageID string `yaml:"page_id" json:"page_id"`

	// Token is the integration token. Falls back to NOTION_TOKEN.
	Token string `yaml:"token,omitempty" json:"token,omitempty"`
}

// NotionTokenEnv is the environment fallback for the integration token.
const NotionTokenEnv = "NOTION_TOKEN"

const (
	notionAPIBase = "https://api.notion.com"
	notionVersion = "2022-06-28"
)

type notionStore struct {
	pageID     string
	token      string
	apiBase    string
	httpClient *http.Client
}

func newNotionStore(cfg NotionConfig, env EnvLookup, httpClient *http.Client) *notionStore {
	return &notionStore{
		pageID:     cfg.PageID,
		token:      ResolveToken(cfg.Token, env, NotionTokenEnv),
		apiBase:    notionAPIBase,
		httpClient: httpClient,
	}
}

func (s *notionStore) Kind() Kind { return KindNotion }

func (s *notionStore) Configured() bool {
	return s.pageID != "" && s.token != ""
}

// Store uploads the file through the file-upload API and appends a file
// block referencing it to the configured page.
func (s *notionStore) Store(ctx context.Context, content []byte, filename, contentType string, metadata map[string]string) (*Result, error) {
	uploadID, err := s.createUpload(ctx, filename, contentType)
	if err != nil {
		return nil, err
	}

	if err := s.sendUpload(ctx, uploadID, filename, contentType, content); err != nil {
		return nil, err
	}

	blockID, err := s.appendFileBlock(ctx, uploadID, filename)
	if err != nil {
		return nil, err
	}

	return &Result{
		Backend:  KindNotion,
		Location: uploadID,
		Metadata: map[string]string{"page_id": s.pageID, "block_id": blockID},
	}, nil
}

func (s *notionStore) createUpload(ctx context.Context, filename, contentType string) (string, error) {
	payload := map[string]string{"filename": filename}
	if contentType != "" {
		payload["content_type"] = contentType
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := s.doJSON(ctx, http.MethodPost, "/v1/file_uploads", payload, &result); err != nil {
		return "", fmt.Errorf("notion: create file upload: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("notion: create file upload: missing id in response")
	}
	return result.ID, nil
}

func (s *notionStore) sendUpload(ctx context.Context, uploadID, filename, contentType string, content []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("notion: build upload body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("notion: build upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("notion: build upload body: %w", err)
	}

	url := fmt.Sprintf("%s/v1/file_uploads/%s/send", s.apiBase, uploadID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("notion: create send request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	s.setAuthHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notion: send file upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notion: send file upload returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

func (s *notionStore) appendFileBlock(ctx context.Context, uploadID, filename string) (string, error) {
	payload := map[string]any{
		"children": []map[string]any{
			{
				"object": "block",
				"type":   "file",
				"file": map[string]any{
					"type":        "file_upload",
					"file_upload": map[string]string{"id": uploadID},
					"name":        filename,
				},
			},
		},
	}

	var result struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	path := fmt.Sprintf("/v1/blocks/%s/children", s.pageID)
	if err := s.doJSON(ctx, http.MethodPatch, path, payload, &result); err != nil {
		return "", fmt.Errorf("notion: append file block: %w", err)
	}
	if len(result.Results) == 0 {
		return "", nil
	}
	return result.Results[0].ID, nil
}

func (s *notionStore) doJSON(ctx context.Context, method, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.apiBase+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.setAuthHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, respBody)
	}
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func (s *notionStore) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Notion-Version", notionVersion)
}
