package infra

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tnqbao/gau-catalog-service/config"
)

type MinioClient struct {
	Client        *minio.Client
	Endpoint      string
	ArchiveBucket string
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	rootUser := cfg.Minio.RootUser
	if rootUser == "" {
		panic("MinIO root user is not configured")
	}

	rootPassword := cfg.Minio.RootPassword
	if rootPassword == "" {
		panic("MinIO root password is not configured")
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	client := &MinioClient{
		Client:        minioClient,
		Endpoint:      endpoint,
		ArchiveBucket: cfg.Minio.ArchiveBucket,
	}
	if err := client.EnsureBucket(context.Background(), client.ArchiveBucket); err != nil {
		panic(fmt.Sprintf("Failed to prepare archive bucket: %v", err))
	}

	return client
}

func (m *MinioClient) EnsureBucket(ctx context.Context, bucketName string) error {
	exists, err := m.Client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.Client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}
	return nil
}

// RevisionArchivePrefix is the key prefix shared by every archived revision
// of one catalog object.
func RevisionArchivePrefix(bucketName, objectName string) string {
	return fmt.Sprintf("%s/%s/", url.PathEscape(bucketName), url.PathEscape(objectName))
}

// RevisionArchiveKey is the object key of an archived revision payload.
func RevisionArchiveKey(bucketName, objectName string, commitID int64) string {
	return fmt.Sprintf("%s%d", RevisionArchivePrefix(bucketName, objectName), commitID)
}

// PutRevisionArchive stores a payload in the archive bucket with user metadata.
func (m *MinioClient) PutRevisionArchive(ctx context.Context, key, contentType string, payload []byte, metadata map[string]string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.Client.PutObject(ctx, m.ArchiveBucket, key, bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: metadata,
		})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	return nil
}

// DeleteObjectsWithPrefix removes every archived object under prefix.
func (m *MinioClient) DeleteObjectsWithPrefix(ctx context.Context, prefix string) error {
	objectsCh := make(chan minio.ObjectInfo)

	go func() {
		defer close(objectsCh)
		for object := range m.Client.ListObjects(ctx, m.ArchiveBucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		}) {
			if object.Err != nil {
				return
			}
			objectsCh <- object
		}
	}()

	for result := range m.Client.RemoveObjects(ctx, m.ArchiveBucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if result.Err != nil {
			return fmt.Errorf("failed to delete %s: %w", result.ObjectName, result.Err)
		}
	}
	return nil
}
