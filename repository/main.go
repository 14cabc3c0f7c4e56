package repository

import (
	"github.com/tnqbao/gau-catalog-service/entity"
	"github.com/tnqbao/gau-catalog-service/infra"
	"gorm.io/gorm"
)

type Repository struct {
	BucketRepo   *BucketRepository
	ObjectRepo   *CatalogObjectRepository
	RevisionRepo *RevisionRepository
	GrantRepo    *GrantRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	if err := AutoMigrate(infra.Postgres.DB); err != nil {
		panic("failed to migrate catalog schema: " + err.Error())
	}
	repository = NewRepository(infra.Postgres.DB)
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		BucketRepo:   NewBucketRepository(db),
		ObjectRepo:   NewCatalogObjectRepository(db),
		RevisionRepo: NewRevisionRepository(db),
		GrantRepo:    NewGrantRepository(db),
	}
}

func (r *Repository) WithTransaction(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Bucket{},
		&entity.CatalogObject{},
		&entity.Revision{},
		&entity.BucketGrant{},
		&entity.ObjectGrant{},
	)
}
