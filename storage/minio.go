package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"melodex/config"
	"melodex/core/catalog"
	"melodex/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var minioClient *minio.Client

// InitMinio initializes the object-store client used as an optional batch
// source. Callers that never pass --from-minio never reach this.
func InitMinio(cfg *config.Config) error {
	if cfg.MinioEndpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is not configured")
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", cfg.MinioBucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", cfg.MinioBucket)
	}

	minioClient = client
	logger.Info("MinIO batch source ready", logger.String("bucket", cfg.MinioBucket))
	return nil
}

// ListBatchObjects returns the keys of batch JSON objects under the given
// prefix, in listing order.
func ListBatchObjects(ctx context.Context, cfg *config.Config, prefix string) ([]string, error) {
	if minioClient == nil {
		return nil, fmt.Errorf("MinIO client not initialized")
	}

	var keys []string
	for obj := range minioClient.ListObjects(ctx, cfg.MinioBucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list batch objects: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			keys = append(keys, obj.Key)
		}
	}
	return keys, nil
}

// FetchBatchObject downloads and decodes one batch document.
func FetchBatchObject(ctx context.Context, cfg *config.Config, key string) (*catalog.BatchFile, error) {
	if minioClient == nil {
		return nil, fmt.Errorf("MinIO client not initialized")
	}

	obj, err := minioClient.GetObject(ctx, cfg.MinioBucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get batch object %q: %w", key, err)
	}
	defer obj.Close()

	var bf catalog.BatchFile
	if err := json.NewDecoder(obj).Decode(&bf); err != nil {
		return nil, fmt.Errorf("failed to decode batch object %q: %w", key, err)
	}
	return &bf, nil
}
