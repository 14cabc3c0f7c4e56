package entity

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TagLabelGeneral   = "General"
	TagLabelObjectTag = "object_tag"
	TagKeyProjectName = "project_name"
)

// KeyValue is one tag of a revision. Order is preserved.
type KeyValue struct {
	Label string `json:"label"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Revision is one immutable commit of a catalog object. BucketID duplicates the
// parent's bucket so that bucket-wide revision queries do not need the join.
type Revision struct {
	CommitID        int64                         `json:"commit_id" gorm:"primaryKey;autoIncrement"`
	CatalogObjectID int64                         `json:"catalog_object_id" gorm:"not null;index"`
	BucketID        int64                         `json:"bucket_id" gorm:"not null;index"`
	Name            string                        `json:"name" gorm:"type:varchar(255);not null;index"`
	Kind            string                        `json:"kind" gorm:"type:varchar(255);not null;index"`
	ContentType     string                        `json:"content_type" gorm:"type:varchar(255)"`
	CommitMessage   string                        `json:"commit_message" gorm:"type:text;not null"`
	Username        string                        `json:"username" gorm:"type:varchar(255)"`
	ProjectName     string                        `json:"project_name" gorm:"type:varchar(255)"`
	CommitDate      time.Time                     `json:"commit_date" gorm:"not null;index"`
	RawObject       []byte                        `json:"-" gorm:"not null"`
	Tags            datatypes.JSONSlice[KeyValue] `json:"tags"`
}

func (Revision) TableName() string { return "catalog_object_revisions" }
