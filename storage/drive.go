package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DriveConfig targets a Google Drive folder via a service account.
type DriveConfig struct {
	// FolderID is the target folder. Required.
	FolderID string `yaml:"folder_id" json:"folder_id"`

	// CredentialsJSON is the inline service-account key JSON.
	// Takes precedence over CredentialsFile when both are set.
	CredentialsJSON string `yaml:"credentials_json,omitempty" json:"credentials_json,omitempty"`

	// CredentialsFile is a path to the service-account key JSON.
	CredentialsFile string `yaml:"credentials_file,omitempty" json:"credentials_file,omitempty"`
}

const (
	driveUploadURL = "https://www.googleapis.com/upload/drive/v3/files"
	driveScope     = "https://www.googleapis.com/auth/drive.file"
	driveTokenTTL  = time.Hour
)

type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

type driveStore struct {
	cfg        DriveConfig
	httpClient *http.Client
	uploadURL  string

	// Cached access token; the store exclusively owns it.
	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func newDriveStore(cfg DriveConfig, httpClient *http.Client) *driveStore {
	return &driveStore{
		cfg:        cfg,
		httpClient: httpClient,
		uploadURL:  driveUploadURL,
	}
}

func (s *driveStore) Kind() Kind { return KindDrive }

func (s *driveStore) Configured() bool {
	return s.cfg.FolderID != "" && (s.cfg.CredentialsJSON != "" || s.cfg.CredentialsFile != "")
}

func (s *driveStore) credentials() (*serviceAccountKey, error) {
	raw := []byte(s.cfg.CredentialsJSON)
	if len(raw) == 0 {
		if s.cfg.CredentialsFile == "" {
			return nil, fmt.Errorf("drive: no service-account credentials configured")
		}
		data, err := os.ReadFile(s.cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("drive: read credentials file: %w", err)
		}
		raw = data
	}

	var key serviceAccountKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("drive: parse service-account key: %w", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("drive: service-account key missing client_email or private_key")
	}
	if key.TokenURI == "" {
		key.TokenURI = "https://oauth2.googleapis.com/token"
	}
	return &key, nil
}

// accessToken exchanges a signed service-account assertion for a bearer
// token, caching it until shortly before expiry.
func (s *driveStore) accessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.tokenExp) {
		return s.token, nil
	}

	key, err := s.credentials()
	if err != nil {
		return "", err
	}

	rsaKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("drive: parse private key: %w", err)
	}

	now := time.Now()
	assertion := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   key.ClientEmail,
		"scope": driveScope,
		"aud":   key.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(driveTokenTTL).Unix(),
	})
	signed, err := assertion.SignedString(rsaKey)
	if err != nil {
		return "", fmt.Errorf("drive: sign assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {signed},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, key.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("drive: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("drive: token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("drive: token exchange returned %d: %s", resp.StatusCode, body)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		return "", fmt.Errorf("drive: unexpected token response: %s", body)
	}

	s.token = token.AccessToken
	s.tokenExp = now.Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)
	return s.token, nil
}

// Store uploads the file into the configured folder using a multipart
// upload (metadata part + media part).
func (s *driveStore) Store(ctx context.Context, content []byte, filename, contentType string, metadata map[string]string) (*Result, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/json; charset=UTF-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("drive: build upload body: %w", err)
	}
	fileMeta := map[string]any{
		"name":    filename,
		"parents": []string{s.cfg.FolderID},
	}
	if len(metadata) > 0 {
		fileMeta["appProperties"] = metadata
	}
	if err := json.NewEncoder(metaPart).Encode(fileMeta); err != nil {
		return nil, fmt.Errorf("drive: encode file metadata: %w", err)
	}

	mediaHeader := textproto.MIMEHeader{}
	if contentType != "" {
		mediaHeader.Set("Content-Type", contentType)
	}
	mediaPart, err := mw.CreatePart(mediaHeader)
	if err != nil {
		return nil, fmt.Errorf("drive: build upload body: %w", err)
	}
	if _, err := mediaPart.Write(content); err != nil {
		return nil, fmt.Errorf("drive: build upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("drive: build upload body: %w", err)
	}

	uploadURL := s.uploadURL + "?uploadType=multipart&fields=id,webViewLink"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("drive: create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive: upload: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("drive: upload returned %d: %s", resp.StatusCode, body)
	}

	var file struct {
		ID          string `json:"id"`
		WebViewLink string `json:"webViewLink"`
	}
	if err := json.Unmarshal(body, &file); err != nil || file.ID == "" {
		return nil, fmt.Errorf("drive: unexpected upload response: %s", body)
	}

	return &Result{
		Backend:  KindDrive,
		Location: file.ID,
		URL:      file.WebViewLink,
		Metadata: map[string]string{"file_id": file.ID, "folder_id": s.cfg.FolderID},
	}, nil
}
