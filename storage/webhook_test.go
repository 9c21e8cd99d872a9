package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebhookStore(t *testing.T) {
	var gotWait string
	var gotPayload map[string]any
	var gotBytes []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotWait = r.URL.Query().Get("wait")

		if err := json.Unmarshal([]byte(r.FormValue("payload_json")), &gotPayload); err != nil {
			t.Fatalf("decode payload_json: %v", err)
		}

		file, _, err := r.FormFile("files[0]")
		if err != nil {
			t.Fatalf("read multipart attachment: %v", err)
		}
		defer file.Close()
		gotBytes, _ = io.ReadAll(file)

		json.NewEncoder(w).Encode(map[string]any{
			"id": "msg-1",
			"attachments": []map[string]string{
				{"url": "https://cdn.example/visual.svg"},
			},
		})
	}))
	defer server.Close()

	store := newWebhookStore(WebhookConfig{URL: server.URL, Username: "visualflow"}, server.Client())

	content := []byte("<svg>diagram</svg>")
	result, err := store.Store(context.Background(), content, "visual.svg", "image/svg+xml",
		map[string]string{"caption": "Quarterly roadmap"})
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if gotWait != "true" {
		t.Errorf("wait = %q, want true", gotWait)
	}
	if gotPayload["username"] != "visualflow" {
		t.Errorf("payload username = %v", gotPayload["username"])
	}
	if gotPayload["content"] != "Quarterly roadmap" {
		t.Errorf("payload content = %v", gotPayload["content"])
	}
	if string(gotBytes) != string(content) {
		t.Errorf("attachment bytes = %q, want %q", gotBytes, content)
	}
	if result.Location != "msg-1" {
		t.Errorf("Location = %q, want msg-1", result.Location)
	}
	if result.URL != "https://cdn.example/visual.svg" {
		t.Errorf("URL = %q", result.URL)
	}
}

func TestWebhookStoreEmptyResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	store := newWebhookStore(WebhookConfig{URL: server.URL}, server.Client())

	result, err := store.Store(context.Background(), []byte("x"), "a.svg", "image/svg+xml", nil)
	if err != nil {
		t.Fatalf("Store() error = %v, want empty-body success", err)
	}
	if result.Backend != KindWebhook {
		t.Errorf("Backend = %q", result.Backend)
	}
}

func TestWebhookStoreHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid Webhook Token"}`))
	}))
	defer server.Close()

	store := newWebhookStore(WebhookConfig{URL: server.URL}, server.Client())

	_, err := store.Store(context.Background(), []byte("x"), "a.svg", "image/svg+xml", nil)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("Store() error = %v, want 401 surfaced", err)
	}
}
