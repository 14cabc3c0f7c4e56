package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-catalog-service/entity"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func mustCreateBucket(t *testing.T, repo *Repository, name, owner string) *entity.Bucket {
	t.Helper()
	bucket := &entity.Bucket{Name: name, Owner: owner}
	require.NoError(t, repo.BucketRepo.Create(context.Background(), bucket))
	return bucket
}

func mustCreateObject(t *testing.T, repo *Repository, bucketID int64, name, kind, contentType string) *entity.Revision {
	t.Helper()
	revision, err := repo.RevisionRepo.CreateObject(context.Background(), CreateRevisionInput{
		BucketID:      bucketID,
		ObjectName:    name,
		Kind:          kind,
		ContentType:   contentType,
		CommitMessage: "initial",
		Username:      "alice",
		RawObject:     []byte("payload of " + name),
	})
	require.NoError(t, err)
	return revision
}

func strPtr(s string) *string { return &s }
