package controller

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-catalog-service/entity"
	"github.com/tnqbao/gau-catalog-service/http/controller/dto"
	"github.com/tnqbao/gau-catalog-service/repository"
	"github.com/tnqbao/gau-catalog-service/utils"
)

func (ctrl *Controller) CreateBucket(c *gin.Context) {
	ctx := c.Request.Context()
	user := utils.CurrentUser(c)

	var req dto.CreateBucketRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Bucket] Invalid create request: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	owner := req.Owner
	if owner == "" {
		owner = user.Name
	}
	if ctrl.sessionsRequired() && !user.Owns(owner) {
		ctrl.respondError(c, "Bucket", fmt.Errorf("cannot create a bucket owned by %q: %w", owner, ErrPermissionDenied))
		return
	}

	exists, err := ctrl.Repository.BucketRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		ctrl.respondError(c, "Bucket", err)
		return
	}
	if exists {
		utils.JSON409(c, "Bucket with this name already exists")
		return
	}

	bucket := &entity.Bucket{Name: req.Name, Owner: owner}
	if err := ctrl.Repository.BucketRepo.Create(ctx, bucket); err != nil {
		ctrl.respondError(c, "Bucket", err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Bucket] Created bucket '%s' owned by '%s'", bucket.Name, bucket.Owner)
	utils.JSON201(c, dto.BucketResponseDTO{
		ID:        bucket.ID,
		Name:      bucket.Name,
		Owner:     bucket.Owner,
		CreatedAt: &bucket.CreatedAt,
		Rights:    ctrl.visibleRights(entity.AccessAdmin),
	})
}

// ListBuckets runs the filtered bucket summary query and keeps the buckets
// the caller may read.
func (ctrl *Controller) ListBuckets(c *gin.Context) {
	ctx := c.Request.Context()
	user := utils.CurrentUser(c)

	filter := repository.BucketFilter{Kinds: parseKinds(c)}
	if owner, ok := c.GetQuery("owner"); ok {
		filter.Owners = []string{owner}
	}
	if contentType, ok := c.GetQuery("contentType"); ok {
		filter.ContentType = &contentType
	}
	if objectName, ok := c.GetQuery("objectName"); ok {
		filter.ObjectName = &objectName
	}

	page, size, err := ctrl.parsePage(c)
	if err != nil {
		ctrl.respondError(c, "Bucket", err)
		return
	}

	rows, err := ctrl.Repository.BucketRepo.FindWithFilters(ctx, filter)
	if err != nil {
		ctrl.respondError(c, "Bucket", err)
		return
	}

	buckets := make([]dto.BucketResponseDTO, 0, len(rows))
	for _, row := range rows {
		bucket := &entity.Bucket{ID: row.BucketID, Name: row.BucketName, Owner: row.Owner}
		access, err := ctrl.bucketRights(ctx, user, bucket)
		if err != nil {
			ctrl.respondError(c, "Bucket", err)
			return
		}
		if !access.Satisfy(entity.AccessRead) {
			continue
		}
		buckets = append(buckets, dto.BucketResponseDTO{
			ID:          row.BucketID,
			Name:        row.BucketName,
			Owner:       row.Owner,
			ObjectCount: row.ObjectCount,
			Rights:      ctrl.visibleRights(access),
		})
	}

	utils.JSON200(c, gin.H{
		"buckets": repository.Paginate(buckets, page, size),
		"total":   len(buckets),
		"page":    page,
		"size":    size,
	})
}

func (ctrl *Controller) GetBucket(c *gin.Context) {
	ctx := c.Request.Context()

	bucket, access, err := ctrl.loadBucket(c, entity.AccessRead)
	if err != nil {
		ctrl.respondError(c, "Bucket", err)
		return
	}

	count, err := ctrl.Repository.ObjectRepo.CountByBucket(ctx, bucket.ID)
	if err != nil {
		ctrl.respondError(c, "Bucket", err)
		return
	}

	utils.JSON200(c, dto.BucketResponseDTO{
		ID:          bucket.ID,
		Name:        bucket.Name,
		Owner:       bucket.Owner,
		ObjectCount: count,
		CreatedAt:   &bucket.CreatedAt,
		Rights:      ctrl.visibleRights(access),
	})
}

func (ctrl *Controller) DeleteBucket(c *gin.Context) {
	ctx := c.Request.Context()

	bucket, _, err := ctrl.loadBucket(c, entity.AccessAdmin)
	if err != nil {
		ctrl.respondError(c, "Bucket", err)
		return
	}

	if err := ctrl.Repository.BucketRepo.Delete(ctx, bucket.ID); err != nil {
		ctrl.respondError(c, "Bucket", err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Bucket] Deleted bucket '%s'", bucket.Name)
	utils.JSON200(c, gin.H{"message": "Bucket deleted successfully"})
}
