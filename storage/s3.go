package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config targets a bucket in S3 or an S3-compatible service.
type S3Config struct {
	// Bucket is the target bucket. Required.
	Bucket string `yaml:"bucket" json:"bucket"`

	// Region is the bucket region. Required unless Endpoint is set.
	Region string `yaml:"region,omitempty" json:"region,omitempty"`

	// Prefix is an optional key prefix inside the bucket.
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`

	// Endpoint overrides the AWS endpoint for S3-compatible services
	// (e.g., MinIO). A http:// scheme disables TLS; a bare host or
	// https:// scheme uses TLS.
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`

	// AccessKeyID and SecretAccessKey are optional static credentials.
	// When empty, ambient AWS environment credentials are used.
	AccessKeyID     string `yaml:"access_key_id,omitempty" json:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" json:"secret_access_key,omitempty"`
}

type s3Store struct {
	cfg S3Config

	once    sync.Once
	client  *minio.Client
	initErr error
}

func newS3Store(cfg S3Config) *s3Store {
	return &s3Store{cfg: cfg}
}

func (s *s3Store) Kind() Kind { return KindS3 }

func (s *s3Store) Configured() bool {
	return s.cfg.Bucket != "" && (s.cfg.Region != "" || s.cfg.Endpoint != "")
}

// connect lazily builds the backend handle. Construction is idempotent;
// the sync.Once makes concurrent first stores share one client.
func (s *s3Store) connect() (*minio.Client, error) {
	s.once.Do(func() {
		endpoint, secure := s.endpoint()

		var creds *credentials.Credentials
		if s.cfg.AccessKeyID != "" {
			creds = credentials.NewStaticV4(s.cfg.AccessKeyID, s.cfg.SecretAccessKey, "")
		} else {
			creds = credentials.NewEnvAWS()
		}

		s.client, s.initErr = minio.New(endpoint, &minio.Options{
			Creds:  creds,
			Secure: secure,
			Region: s.cfg.Region,
		})
	})
	return s.client, s.initErr
}

func (s *s3Store) endpoint() (host string, secure bool) {
	ep := s.cfg.Endpoint
	if ep == "" {
		return fmt.Sprintf("s3.%s.amazonaws.com", s.cfg.Region), true
	}
	if rest, ok := strings.CutPrefix(ep, "http://"); ok {
		return rest, false
	}
	return strings.TrimPrefix(ep, "https://"), true
}

// Store puts the object under {prefix}/{filename}. The PUT's success is
// authoritative; no separate existence check is made.
func (s *s3Store) Store(ctx context.Context, content []byte, filename, contentType string, metadata map[string]string) (*Result, error) {
	client, err := s.connect()
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}

	key := filename
	if s.cfg.Prefix != "" {
		key = path.Join(s.cfg.Prefix, filename)
	}

	_, err = client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: put %s/%s: %w", s.cfg.Bucket, key, err)
	}

	return &Result{
		Backend:  KindS3,
		Location: fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, key),
		URL:      s.publicURL(key),
		Metadata: map[string]string{"bucket": s.cfg.Bucket, "key": key},
	}, nil
}

func (s *s3Store) publicURL(key string) string {
	if s.cfg.Endpoint != "" {
		host, secure := s.endpoint()
		scheme := "https"
		if !secure {
			scheme = "http"
		}
		return fmt.Sprintf("%s://%s/%s/%s", scheme, host, s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
