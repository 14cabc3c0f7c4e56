package dto

import (
	"time"

	"github.com/tnqbao/gau-catalog-service/entity"
)

type CreateBucketRequestDTO struct {
	Name  string `json:"name" binding:"required,min=3,max=63"`
	Owner string `json:"owner" binding:"omitempty,max=255"`
}

type BucketResponseDTO struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Owner       string            `json:"owner"`
	ObjectCount int64             `json:"object_count"`
	CreatedAt   *time.Time        `json:"created_at,omitempty"`
	Rights      entity.AccessType `json:"rights,omitempty"`
}
