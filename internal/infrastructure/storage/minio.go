package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"portfolio-cms/internal/config"
)

// AssetStore is the client for the remote asset host. Objects are addressed
// by key for deletion; the public URL embeds that key.
type AssetStore struct {
	client *minio.Client
	bucket string
	scheme string
}

func NewAssetStore(cfg config.MinIOConfig) (*AssetStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	return &AssetStore{
		client: client,
		bucket: cfg.Bucket,
		scheme: scheme,
	}, nil
}

// Upload stores data under key and returns the public URL.
// The caller bounds the operation through ctx.
func (s *AssetStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	// Format: http://host:9000/portfolio/projects/<id>/<uuid>.jpg
	url := fmt.Sprintf("%s://%s/%s/%s", s.scheme, s.client.EndpointURL().Host, s.bucket, key)
	return url, nil
}

// Remove deletes a single object by key.
func (s *AssetStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// ListKeys returns every object key under prefix. Used by the orphan sweep
// and full-record deletion.
func (s *AssetStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	objectsCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var keys []string
	for object := range objectsCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}

// RemoveBatch deletes many objects in one call. Individual failures are
// reported through the returned error; objects before the failure stay
// deleted.
func (s *AssetStore) RemoveBatch(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	go func() {
		defer close(objectsCh)
		for _, key := range keys {
			objectsCh <- minio.ObjectInfo{Key: key}
		}
	}()

	errorCh := s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{})
	for rmErr := range errorCh {
		if rmErr.Err != nil {
			return fmt.Errorf("failed to remove %s: %w", rmErr.ObjectName, rmErr.Err)
		}
	}
	return nil
}

// KeyFor resolves the storage key embedded in an asset URL previously issued
// by Upload. ok is false for URLs this store never issued (external links) -
// callers treat that as "nothing to delete".
func (s *AssetStore) KeyFor(assetURL string) (string, bool) {
	return KeyFromURL(assetURL, s.client.EndpointURL().Host, s.bucket)
}
