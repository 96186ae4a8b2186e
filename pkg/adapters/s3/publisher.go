// Package s3 publishes exported HTML to S3-compatible object storage.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config describes the bucket and credentials.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Prefix is prepended to every object key.
	Prefix string
	// BaseURL, when set, is used to build returned URLs (e.g. a CDN).
	BaseURL string
}

// Publisher implements ports.Publisher with minio-go.
type Publisher struct {
	client *minio.Client
	cfg    Config
}

// New creates a Publisher.
func New(cfg Config) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &Publisher{client: client, cfg: cfg}, nil
}

// EnsureBucket creates the bucket if it is missing.
func (p *Publisher) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", p.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := p.client.MakeBucket(ctx, p.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", p.cfg.Bucket, err)
	}
	return nil
}

// ObjectKey returns the object key used for key.
func (p *Publisher) ObjectKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if !strings.HasSuffix(key, ".html") {
		key += ".html"
	}
	if p.cfg.Prefix == "" {
		return key
	}
	return strings.TrimSuffix(p.cfg.Prefix, "/") + "/" + key
}

// Publish uploads html as a text/html object and returns its URL.
func (p *Publisher) Publish(ctx context.Context, key string, html []byte) (string, error) {
	objectKey := p.ObjectKey(key)
	_, err := p.client.PutObject(ctx, p.cfg.Bucket, objectKey, bytes.NewReader(html), int64(len(html)),
		minio.PutObjectOptions{ContentType: "text/html; charset=utf-8"})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectKey, err)
	}
	return p.URL(objectKey), nil
}

// URL builds the public URL of an object key.
func (p *Publisher) URL(objectKey string) string {
	if p.cfg.BaseURL != "" {
		return strings.TrimSuffix(p.cfg.BaseURL, "/") + "/" + objectKey
	}
	u := *p.client.EndpointURL()
	u.Path = "/" + p.cfg.Bucket + "/" + objectKey
	return u.String()
}
