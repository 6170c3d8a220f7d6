package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/bargen/bargen-backend/pkg/config"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
	"google.golang.org/api/option"
)

const (
	pingTimeout  = 5 * time.Second
	maxBlobBytes = 20 << 20
)

// Client resolves product photo refs to URLs and bytes.
type Client struct {
	storage    *storage.Client
	bucket     string
	publicBase string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient builds the blob client. Without a bucket the client only builds
// URLs and Fetch reports a dependency error.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	client := &Client{
		bucket:     strings.TrimSpace(cfg.BucketName),
		publicBase: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
	}
	if !cfg.Enabled() {
		if logg != nil {
			logg.Warn(ctx, "gcs bucket not configured; photo bytes unavailable")
		}
		return client, nil
	}

	opts := []option.ClientOption{}
	if gcp.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	}
	sc, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	client.storage = sc

	if err := client.Ping(ctx); err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", client.bucket), "gcs client initialized")
	}
	return client, nil
}

// DirectURL returns the public URL for ref. Absolute URLs are returned unchanged.
func (c *Client) DirectURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || c == nil {
		return ref
	}
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return ref
	}
	object := escapeObject(strings.TrimLeft(ref, "/"))
	if c.bucket == "" {
		return c.publicBase + "/" + object
	}
	return c.publicBase + "/" + c.bucket + "/" + object
}

// Fetch reads the object bytes behind ref.
func (c *Client) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if c == nil || c.storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "photo storage is not configured")
	}
	object := strings.TrimLeft(strings.TrimSpace(ref), "/")
	if object == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo ref is required")
	}

	reader, err := c.storage.Bucket(c.bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open photo")
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxBlobBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read photo")
	}
	return data, nil
}

// Ping checks that the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.storage == nil {
		return errors.New("gcs client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if _, err := c.storage.Bucket(c.bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("bucket %s attrs: %w", c.bucket, err)
	}
	return nil
}

func (c *Client) Close() error {
	if c == nil || c.storage == nil {
		return nil
	}
	return c.storage.Close()
}

func escapeObject(object string) string {
	parts := strings.Split(object, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
