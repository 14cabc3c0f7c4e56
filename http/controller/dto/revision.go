package dto

import (
	"time"

	"github.com/tnqbao/gau-catalog-service/entity"
	"github.com/tnqbao/gau-catalog-service/utils"
)

type RevisionLinksDTO struct {
	Content  string `json:"content"`
	Relative string `json:"relative"`
}

type RevisionResponseDTO struct {
	BucketName    string            `json:"bucket_name"`
	Name          string            `json:"name"`
	Kind          string            `json:"kind"`
	ContentType   string            `json:"content_type"`
	CommitID      int64             `json:"commit_id"`
	CommitMessage string            `json:"commit_message"`
	Username      string            `json:"username"`
	ProjectName   string            `json:"project_name,omitempty"`
	CommitDate    time.Time         `json:"commit_date"`
	Tags          []entity.KeyValue `json:"tags"`
	Rights        entity.AccessType `json:"rights,omitempty"`
	Links         RevisionLinksDTO  `json:"links"`
}

func NewRevisionResponse(domainName, bucketName string, revision *entity.Revision, rights entity.AccessType) RevisionResponseDTO {
	relative := utils.RevisionPath(bucketName, revision.Name, revision.CommitID)
	tags := []entity.KeyValue(revision.Tags)
	if tags == nil {
		tags = []entity.KeyValue{}
	}

	return RevisionResponseDTO{
		BucketName:    bucketName,
		Name:          revision.Name,
		Kind:          revision.Kind,
		ContentType:   revision.ContentType,
		CommitID:      revision.CommitID,
		CommitMessage: revision.CommitMessage,
		Username:      revision.Username,
		ProjectName:   revision.ProjectName,
		CommitDate:    revision.CommitDate,
		Tags:          tags,
		Rights:        rights,
		Links: RevisionLinksDTO{
			Content:  utils.AbsoluteURL(domainName, relative),
			Relative: relative,
		},
	}
}
