package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
)

// TelegramConfig targets a Telegram chat via a bot token.
type TelegramConfig struct {
	// ChatID is the chat documents are sent to. Required.
	ChatID string `yaml:"chat_id" json:"chat_id"`

	// BotToken is the bot token. Falls back to TELEGRAM_BOT_TOKEN.
	BotToken string `yaml:"bot_token,omitempty" json:"bot_token,omitempty"`
}

// TelegramTokenEnv is the environment fallback for the bot token.
const TelegramTokenEnv = "TELEGRAM_BOT_TOKEN"

const telegramAPIBase = "https://api.telegram.org"

type telegramStore struct {
	chatID     string
	botToken   string
	apiBase    string
	httpClient *http.Client
}

func newTelegramStore(cfg TelegramConfig, env EnvLookup, httpClient *http.Client) *telegramStore {
	return &telegramStore{
		chatID:     cfg.ChatID,
		botToken:   ResolveToken(cfg.BotToken, env, TelegramTokenEnv),
		apiBase:    telegramAPIBase,
		httpClient: httpClient,
	}
}

func (s *telegramStore) Kind() Kind { return KindTelegram }

func (s *telegramStore) Configured() bool {
	return s.chatID != "" && s.botToken != ""
}

// Store sends the file to the chat as a document.
func (s *telegramStore) Store(ctx context.Context, content []byte, filename, contentType string, metadata map[string]string) (*Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("chat_id", s.chatID); err != nil {
		return nil, fmt.Errorf("telegram: build request body: %w", err)
	}
	if caption := metadata["caption"]; caption != "" {
		if err := mw.WriteField("caption", caption); err != nil {
			return nil, fmt.Errorf("telegram: build request body: %w", err)
		}
	}

	part, err := mw.CreateFormFile("document", filename)
	if err != nil {
		return nil, fmt.Errorf("telegram: build request body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("telegram: build request body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("telegram: build request body: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendDocument", s.apiBase, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: send document: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telegram: read response: %w", err)
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
		Result      struct {
			MessageID int `json:"message_id"`
			Document  struct {
				FileID string `json:"file_id"`
			} `json:"document"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("telegram: parse response: %s", body)
	}
	if !result.OK {
		return nil, fmt.Errorf("telegram: send document: %s", result.Description)
	}

	return &Result{
		Backend:  KindTelegram,
		Location: result.Result.Document.FileID,
		Metadata: map[string]string{
			"chat_id":    s.chatID,
			"message_id": strconv.Itoa(result.Result.MessageID),
		},
	}, nil
}
