package repository

import (
	"context"
	"fmt"

	"github.com/tnqbao/gau-catalog-service/entity"
	"gorm.io/gorm"
)

type GrantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

func validateGrant(granteeType entity.GranteeType, grantee string, access entity.AccessType) error {
	if granteeType != entity.GranteeUser && granteeType != entity.GranteeGroup {
		return fmt.Errorf("unknown grantee type %q: %w", granteeType, ErrInvalidInput)
	}
	if grantee == "" {
		return fmt.Errorf("grantee is required: %w", ErrInvalidInput)
	}
	if !access.Valid() {
		return fmt.Errorf("unknown access type %q: %w", access, ErrInvalidInput)
	}
	return nil
}

func (r *GrantRepository) CreateBucketGrant(ctx context.Context, grant *entity.BucketGrant) error {
	if err := validateGrant(grant.GranteeType, grant.Grantee, grant.AccessType); err != nil {
		return err
	}
	return translateError(r.db.WithContext(ctx).Create(grant).Error, "create grant on bucket %d", grant.BucketID)
}

func (r *GrantRepository) ListBucketGrants(ctx context.Context, bucketID int64) ([]entity.BucketGrant, error) {
	var grants []entity.BucketGrant
	err := r.db.WithContext(ctx).Where("bucket_id = ?", bucketID).Order("id ASC").Find(&grants).Error
	return grants, err
}

func (r *GrantRepository) DeleteBucketGrant(ctx context.Context, bucketID, grantID int64) error {
	res := r.db.WithContext(ctx).Delete(&entity.BucketGrant{}, "id = ? AND bucket_id = ?", grantID, bucketID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("grant %d on bucket %d: %w", grantID, bucketID, ErrNotFound)
	}
	return nil
}

func (r *GrantRepository) CreateObjectGrant(ctx context.Context, grant *entity.ObjectGrant) error {
	if err := validateGrant(grant.GranteeType, grant.Grantee, grant.AccessType); err != nil {
		return err
	}
	return translateError(r.db.WithContext(ctx).Create(grant).Error, "create grant on object %d", grant.CatalogObjectID)
}

func (r *GrantRepository) ListObjectGrants(ctx context.Context, objectID int64) ([]entity.ObjectGrant, error) {
	var grants []entity.ObjectGrant
	err := r.db.WithContext(ctx).Where("catalog_object_id = ?", objectID).Order("id ASC").Find(&grants).Error
	return grants, err
}

func (r *GrantRepository) DeleteObjectGrant(ctx context.Context, objectID, grantID int64) error {
	res := r.db.WithContext(ctx).Delete(&entity.ObjectGrant{}, "id = ? AND catalog_object_id = ?", grantID, objectID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("grant %d on object %d: %w", grantID, objectID, ErrNotFound)
	}
	return nil
}

// granteeScope matches grants addressed to the user or to any of its groups.
func granteeScope(db *gorm.DB, user entity.AuthenticatedUser) *gorm.DB {
	scope := db.Where("grantee_type = ? AND grantee = ?", entity.GranteeUser, user.Name)
	if len(user.Groups) > 0 {
		scope = scope.Or("grantee_type = ? AND grantee IN ?", entity.GranteeGroup, user.Groups)
	}
	return scope
}

func (r *GrantRepository) FindBucketGrantsFor(ctx context.Context, bucketID int64, user entity.AuthenticatedUser) ([]entity.BucketGrant, error) {
	db := r.db.WithContext(ctx)
	var grants []entity.BucketGrant
	err := db.Where("bucket_id = ?", bucketID).
		Where(granteeScope(db.Session(&gorm.Session{NewDB: true}), user)).
		Order("id ASC").
		Find(&grants).Error
	return grants, err
}

func (r *GrantRepository) FindObjectGrantsFor(ctx context.Context, objectID int64, user entity.AuthenticatedUser) ([]entity.ObjectGrant, error) {
	db := r.db.WithContext(ctx)
	var grants []entity.ObjectGrant
	err := db.Where("catalog_object_id = ?", objectID).
		Where(granteeScope(db.Session(&gorm.Session{NewDB: true}), user)).
		Order("id ASC").
		Find(&grants).Error
	return grants, err
}
