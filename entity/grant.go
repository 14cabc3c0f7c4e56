package entity

import "time"

type AccessType string

const (
	AccessNone  AccessType = "noAccess"
	AccessRead  AccessType = "read"
	AccessWrite AccessType = "write"
	AccessAdmin AccessType = "admin"
)

var accessRank = map[AccessType]int{
	AccessNone:  0,
	AccessRead:  1,
	AccessWrite: 2,
	AccessAdmin: 3,
}

func (a AccessType) Valid() bool {
	_, ok := accessRank[a]
	return ok
}

// Satisfy reports whether a grants at least the required level.
func (a AccessType) Satisfy(required AccessType) bool {
	return accessRank[a] >= accessRank[required]
}

// Max returns the stronger of two access types.
func (a AccessType) Max(other AccessType) AccessType {
	if accessRank[other] > accessRank[a] {
		return other
	}
	return a
}

type GranteeType string

const (
	GranteeUser  GranteeType = "user"
	GranteeGroup GranteeType = "group"
)

type BucketGrant struct {
	ID          int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	BucketID    int64       `json:"bucket_id" gorm:"not null;index"`
	GranteeType GranteeType `json:"grantee_type" gorm:"type:varchar(16);not null"`
	Grantee     string      `json:"grantee" gorm:"type:varchar(255);not null;index"`
	AccessType  AccessType  `json:"access_type" gorm:"type:varchar(16);not null"`
	Creator     string      `json:"creator" gorm:"type:varchar(255)"`
	CreatedAt   time.Time   `json:"created_at" gorm:"not null;autoCreateTime"`
}

type ObjectGrant struct {
	ID              int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	BucketID        int64       `json:"bucket_id" gorm:"not null;index"`
	CatalogObjectID int64       `json:"catalog_object_id" gorm:"not null;index"`
	GranteeType     GranteeType `json:"grantee_type" gorm:"type:varchar(16);not null"`
	Grantee         string      `json:"grantee" gorm:"type:varchar(255);not null;index"`
	AccessType      AccessType  `json:"access_type" gorm:"type:varchar(16);not null"`
	Creator         string      `json:"creator" gorm:"type:varchar(255)"`
	CreatedAt       time.Time   `json:"created_at" gorm:"not null;autoCreateTime"`
}

func (ObjectGrant) TableName() string { return "catalog_object_grants" }
