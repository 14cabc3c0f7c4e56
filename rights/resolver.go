// Package rights computes the access level a caller holds on buckets and
// catalog objects from ownership and grants.
package rights

import (
	"context"

	"github.com/tnqbao/gau-catalog-service/entity"
)

type GrantStore interface {
	FindBucketGrantsFor(ctx context.Context, bucketID int64, user entity.AuthenticatedUser) ([]entity.BucketGrant, error)
	FindObjectGrantsFor(ctx context.Context, objectID int64, user entity.AuthenticatedUser) ([]entity.ObjectGrant, error)
}

type Resolver struct {
	grants GrantStore
}

func NewResolver(grants GrantStore) *Resolver {
	return &Resolver{grants: grants}
}

// BucketRights: owners are admins, public buckets are readable by everyone and
// any other caller gets the strongest of its bucket grants.
func (r *Resolver) BucketRights(ctx context.Context, user entity.AuthenticatedUser, bucket *entity.Bucket) (entity.AccessType, error) {
	if user.Owns(bucket.Owner) {
		return entity.AccessAdmin, nil
	}

	access := entity.AccessNone
	if bucket.Owner == entity.PublicObjectsOwner {
		access = entity.AccessRead
	}

	grants, err := r.grants.FindBucketGrantsFor(ctx, bucket.ID, user)
	if err != nil {
		return entity.AccessNone, err
	}
	for _, grant := range grants {
		access = access.Max(grant.AccessType)
	}
	return access, nil
}

// ObjectRights lets object grants override bucket level rights, except for
// bucket owners who stay admins.
func (r *Resolver) ObjectRights(ctx context.Context, user entity.AuthenticatedUser, bucket *entity.Bucket, object *entity.CatalogObject) (entity.AccessType, error) {
	if user.Owns(bucket.Owner) {
		return entity.AccessAdmin, nil
	}

	grants, err := r.grants.FindObjectGrantsFor(ctx, object.ID, user)
	if err != nil {
		return entity.AccessNone, err
	}
	if len(grants) > 0 {
		access := entity.AccessNone
		for _, grant := range grants {
			access = access.Max(grant.AccessType)
		}
		return access, nil
	}

	return r.BucketRights(ctx, user, bucket)
}
