package repository

import (
	"context"
	"fmt"

	"github.com/tnqbao/gau-catalog-service/entity"
	"gorm.io/gorm"
)

type CatalogObjectRepository struct {
	db *gorm.DB
}

func NewCatalogObjectRepository(db *gorm.DB) *CatalogObjectRepository {
	return &CatalogObjectRepository{db: db}
}

func (r *CatalogObjectRepository) FindByBucketAndName(ctx context.Context, bucketID int64, name string) (*entity.CatalogObject, error) {
	var object entity.CatalogObject
	err := r.db.WithContext(ctx).
		Where("bucket_id = ? AND name = ?", bucketID, name).
		First(&object).Error
	if err != nil {
		return nil, translateError(err, "catalog object %q in bucket %d", name, bucketID)
	}
	return &object, nil
}

func (r *CatalogObjectRepository) CountByBucket(ctx context.Context, bucketID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.CatalogObject{}).Where("bucket_id = ?", bucketID).Count(&count).Error
	return count, err
}

// Delete removes the object with its whole history and its grants.
func (r *CatalogObjectRepository) Delete(ctx context.Context, objectID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("catalog_object_id = ?", objectID).Delete(&entity.ObjectGrant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("catalog_object_id = ?", objectID).Delete(&entity.Revision{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.CatalogObject{}, "id = ?", objectID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("catalog object %d: %w", objectID, ErrNotFound)
		}
		return nil
	})
}
