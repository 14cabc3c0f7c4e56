package entity

import "time"

// PublicObjectsOwner is the owner of buckets every user may read.
const PublicObjectsOwner = "GROUP:public-objects"

type Bucket struct {
	ID        int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string          `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Owner     string          `json:"owner" gorm:"type:varchar(255);not null;index"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null;autoCreateTime"`
	Objects   []CatalogObject `json:"objects,omitempty" gorm:"foreignKey:BucketID;constraint:OnDelete:CASCADE"`
}
