package repository

import (
	"context"
	"fmt"

	"github.com/tnqbao/gau-catalog-service/entity"
	"gorm.io/gorm"
)

type BucketRepository struct {
	db *gorm.DB
}

func NewBucketRepository(db *gorm.DB) *BucketRepository {
	return &BucketRepository{db: db}
}

func (r *BucketRepository) Create(ctx context.Context, bucket *entity.Bucket) error {
	if bucket == nil {
		return fmt.Errorf("bucket cannot be nil: %w", ErrInvalidInput)
	}
	return translateError(r.db.WithContext(ctx).Create(bucket).Error, "create bucket %q", bucket.Name)
}

func (r *BucketRepository) FindByName(ctx context.Context, name string) (*entity.Bucket, error) {
	var bucket entity.Bucket
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&bucket).Error; err != nil {
		return nil, translateError(err, "bucket %q", name)
	}
	return &bucket, nil
}

func (r *BucketRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Bucket{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes an empty bucket together with its grants.
func (r *BucketRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var objects int64
		if err := tx.Model(&entity.CatalogObject{}).Where("bucket_id = ?", id).Count(&objects).Error; err != nil {
			return err
		}
		if objects > 0 {
			return fmt.Errorf("bucket %d still holds %d objects: %w", id, objects, ErrConflict)
		}
		if err := tx.Where("bucket_id = ?", id).Delete(&entity.BucketGrant{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Bucket{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("bucket %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
