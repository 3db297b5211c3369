package labelarchive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/comfortlab/roomsense/internal/domain/label"
	"github.com/comfortlab/roomsense/internal/infra/config"
)

// S3Archive pushes exported datasets to S3-compatible object storage.
type S3Archive struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *slog.Logger
}

// NewS3Archive constructs the archive adapter.
func NewS3Archive(cfg config.ArchiveConfig, log *slog.Logger) (*S3Archive, error) {
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init archive client: %w", err)
	}
	return &S3Archive{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		log:       log.With("component", "labelarchive"),
	}, nil
}

func (a *S3Archive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err == nil && exists {
		return nil
	}
	err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

// Store uploads the dataset and returns where it can be fetched.
func (a *S3Archive) Store(ctx context.Context, name string, data []byte) (string, error) {
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}
	_, err := a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      "text/csv",
		DisableMultipart: true,
	})
	if err != nil {
		return "", err
	}
	a.log.Info("dataset uploaded", "bucket", a.bucket, "object", name, "bytes", len(data))
	if a.publicURL != "" {
		return a.publicURL + "/" + name, nil
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, name), nil
}

var _ label.Archive = (*S3Archive)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New
// expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
