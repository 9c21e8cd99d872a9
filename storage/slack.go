package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// SlackConfig targets a Slack channel via a bot token.
type SlackConfig struct {
	// ChannelID is the channel files are shared into. Required.
	ChannelID string `yaml:"channel_id" json:"channel_id"`

	// Token is the bot token. Falls back to SLACK_BOT_TOKEN when empty.
	Token string `yaml:"token,omitempty" json:"token,omitempty"`
}

// SlackTokenEnv is the environment fallback for the bot token.
const SlackTokenEnv = "SLACK_BOT_TOKEN"

const slackAPIBase = "https://slack.com/api"

type slackStore struct {
	channelID  string
	token      string
	apiBase    string
	httpClient *http.Client
}

func newSlackStore(cfg SlackConfig, env EnvLookup, httpClient *http.Client) *slackStore {
	return &slackStore{
		channelID:  cfg.ChannelID,
		token:      ResolveToken(cfg.Token, env, SlackTokenEnv),
		apiBase:    slackAPIBase,
		httpClient: httpClient,
	}
}

func (s *slackStore) Kind() Kind { return KindSlack }

func (s *slackStore) Configured() bool {
	return s.channelID != "" && s.token != ""
}

// Store uploads the file with the external-upload flow: reserve an upload
// URL, push the bytes, then complete the upload into the channel.
func (s *slackStore) Store(ctx context.Context, content []byte, filename, contentType string, metadata map[string]string) (*Result, error) {
	uploadURL, fileID, err := s.getUploadURL(ctx, filename, len(content))
	if err != nil {
		return nil, err
	}

	if err := s.pushBytes(ctx, uploadURL, content, contentType); err != nil {
		return nil, err
	}

	permalink, err := s.completeUpload(ctx, fileID, filename)
	if err != nil {
		return nil, err
	}

	return &Result{
		Backend:  KindSlack,
		Location: fileID,
		URL:      permalink,
		Metadata: map[string]string{"channel_id": s.channelID, "file_id": fileID},
	}, nil
}

func (s *slackStore) getUploadURL(ctx context.Context, filename string, length int) (uploadURL, fileID string, err error) {
	form := url.Values{
		"filename": {filename},
		"length":   {strconv.Itoa(length)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.apiBase+"/files.getUploadURLExternal", strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.token)

	var result struct {
		OK        bool   `json:"ok"`
		Error     string `json:"error"`
		UploadURL string `json:"upload_url"`
		FileID    string `json:"file_id"`
	}
	if err := s.doJSON(req, &result); err != nil {
		return "", "", err
	}
	if !result.OK {
		return "", "", fmt.Errorf("slack: get upload URL: %s", result.Error)
	}
	return result.UploadURL, result.FileID, nil
}

func (s *slackStore) pushBytes(ctx context.Context, uploadURL string, content []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("slack: create upload request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack: upload bytes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack: upload returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

func (s *slackStore) completeUpload(ctx context.Context, fileID, filename string) (string, error) {
	payload := map[string]any{
		"files":      []map[string]string{{"id": fileID, "title": filename}},
		"channel_id": s.channelID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("slack: marshal complete request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.apiBase+"/files.completeUploadExternal", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	var result struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		Files []struct {
			ID        string `json:"id"`
			Permalink string `json:"permalink"`
		} `json:"files"`
	}
	if err := s.doJSON(req, &result); err != nil {
		return "", err
	}
	if !result.OK {
		return "", fmt.Errorf("slack: complete upload: %s", result.Error)
	}
	if len(result.Files) > 0 {
		return result.Files[0].Permalink, nil
	}
	return "", nil
}

func (s *slackStore) doJSON(req *http.Request, result any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack: %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("slack: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("slack: %s returned %d: %s", req.URL.Path, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("slack: parse response: %w", err)
	}
	return nil
}
