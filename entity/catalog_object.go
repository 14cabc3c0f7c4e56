package entity

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// CatalogObject is a named, versioned artifact of a bucket. The *Lower fields mirror
// their display-case originals so that filters can use plain LIKE against an index.
type CatalogObject struct {
	ID               int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	BucketID         int64      `json:"bucket_id" gorm:"not null;uniqueIndex:idx_catalog_object_bucket_name,priority:1"`
	Name             string     `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_catalog_object_bucket_name,priority:2"`
	NameLower        string     `json:"-" gorm:"type:varchar(255);not null;index"`
	Kind             string     `json:"kind" gorm:"type:varchar(255);not null"`
	KindLower        string     `json:"-" gorm:"type:varchar(255);not null;index"`
	ContentType      string     `json:"content_type" gorm:"type:varchar(255)"`
	ContentTypeLower string     `json:"-" gorm:"type:varchar(255);index"`
	LastCommitID     *int64     `json:"last_commit_id,omitempty" gorm:"index"`
	CreatedAt        time.Time  `json:"created_at" gorm:"not null;autoCreateTime"`
	Revisions        []Revision `json:"-" gorm:"foreignKey:CatalogObjectID;constraint:OnDelete:CASCADE"`
}

func (o *CatalogObject) NormalizeSearchFields() {
	o.NameLower = strings.ToLower(o.Name)
	o.KindLower = strings.ToLower(o.Kind)
	o.ContentTypeLower = strings.ToLower(o.ContentType)
}

func (o *CatalogObject) BeforeSave(tx *gorm.DB) error {
	o.NormalizeSearchFields()
	return nil
}
