package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-catalog-service/entity"
	"github.com/tnqbao/gau-catalog-service/http/controller/dto"
	"github.com/tnqbao/gau-catalog-service/utils"
)

func (ctrl *Controller) CreateBucketGrant(c *gin.Context) {
	ctx := c.Request.Context()

	bucket, _, err := ctrl.loadBucket(c, entity.AccessAdmin)
	if err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}

	var req dto.CreateGrantRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request payload")
		return
	}

	grant := &entity.BucketGrant{
		BucketID:    bucket.ID,
		GranteeType: entity.GranteeType(req.GranteeType),
		Grantee:     req.Grantee,
		AccessType:  entity.AccessType(req.AccessType),
		Creator:     utils.CurrentUser(c).Name,
	}
	if err := ctrl.Repository.GrantRepo.CreateBucketGrant(ctx, grant); err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Grant] %s access on bucket '%s' granted to %s %s", grant.AccessType, bucket.Name, grant.GranteeType, grant.Grantee)
	utils.JSON201(c, grant)
}

func (ctrl *Controller) ListBucketGrants(c *gin.Context) {
	ctx := c.Request.Context()

	bucket, _, err := ctrl.loadBucket(c, entity.AccessAdmin)
	if err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}

	grants, err := ctrl.Repository.GrantRepo.ListBucketGrants(ctx, bucket.ID)
	if err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}
	utils.JSON200(c, gin.H{"grants": grants})
}

func (ctrl *Controller) DeleteBucketGrant(c *gin.Context) {
	ctx := c.Request.Context()

	grantID, err := parseIDParam(c, "id")
	if err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}

	bucket, _, err := ctrl.loadBucket(c, entity.AccessAdmin)
	if err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}

	if err := ctrl.Repository.GrantRepo.DeleteBucketGrant(ctx, bucket.ID, grantID); err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}
	utils.JSON200(c, gin.H{"message": "Grant deleted successfully"})
}

func (ctrl *Controller) CreateObjectGrant(c *gin.Context) {
	ctx := c.Request.Context()

	bucket, object, _, err := ctrl.loadObject(c, entity.AccessAdmin)
	if err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}

	var req dto.CreateGrantRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request payload")
		return
	}

	grant := &entity.ObjectGrant{
		BucketID:        bucket.ID,
		CatalogObjectID: object.ID,
		GranteeType:     entity.GranteeType(req.GranteeType),
		Grantee:         req.Grantee,
		AccessType:      entity.AccessType(req.AccessType),
		Creator:         utils.CurrentUser(c).Name,
	}
	if err := ctrl.Repository.GrantRepo.CreateObjectGrant(ctx, grant); err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Grant] %s access on '%s/%s' granted to %s %s", grant.AccessType, bucket.Name, object.Name, grant.GranteeType, grant.Grantee)
	utils.JSON201(c, grant)
}

func (ctrl *Controller) ListObjectGrants(c *gin.Context) {
	ctx := c.Request.Context()

	_, object, _, err := ctrl.loadObject(c, entity.AccessAdmin)
	if err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}

	grants, err := ctrl.Repository.GrantRepo.ListObjectGrants(ctx, object.ID)
	if err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}
	utils.JSON200(c, gin.H{"grants": grants})
}

func (ctrl *Controller) DeleteObjectGrant(c *gin.Context) {
	ctx := c.Request.Context()

	grantID, err := parseIDParam(c, "id")
	if err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}

	_, object, _, err := ctrl.loadObject(c, entity.AccessAdmin)
	if err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}

	if err := ctrl.Repository.GrantRepo.DeleteObjectGrant(ctx, object.ID, grantID); err != nil {
		ctrl.respondError(c, "Grant", err)
		return
	}
	utils.JSON200(c, gin.H{"message": "Grant deleted successfully"})
}
