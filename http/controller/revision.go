package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-catalog-service/entity"
	"github.com/tnqbao/gau-catalog-service/http/controller/dto"
	"github.com/tnqbao/gau-catalog-service/repository"
	"github.com/tnqbao/gau-catalog-service/utils"
)

// CreateRevision commits a new payload for an existing object. Kind and
// content type are inherited from the object.
func (ctrl *Controller) CreateRevision(c *gin.Context) {
	ctx := c.Request.Context()
	user := utils.CurrentUser(c)

	bucket, object, access, err := ctrl.loadObject(c, entity.AccessWrite)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	commitMessage := c.PostForm("commitMessage")
	if commitMessage == "" {
		utils.JSON400(c, "commitMessage is required")
		return
	}

	raw, _, err := ctrl.readPayload(c)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}
	if err := validatePayload(object.ContentType, raw); err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	projectName := c.PostForm("projectName")
	revision, err := ctrl.Repository.RevisionRepo.Create(ctx, repository.CreateRevisionInput{
		BucketID:      bucket.ID,
		ObjectName:    object.Name,
		CommitMessage: commitMessage,
		Username:      user.Name,
		ProjectName:   projectName,
		RawObject:     raw,
		Tags:          buildTags(projectName, c.PostForm("tags")),
	})
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Revision] Committed %d for '%s' in bucket '%s'", revision.CommitID, object.Name, bucket.Name)
	ctrl.publishRevisionCreated(ctx, bucket, revision, 0)

	utils.JSON201(c, dto.NewRevisionResponse(ctrl.Config.EnvConfig.DomainName, bucket.Name, revision, ctrl.visibleRights(access)))
}

// ListRevisions returns the object's history, newest first.
func (ctrl *Controller) ListRevisions(c *gin.Context) {
	ctx := c.Request.Context()

	bucket, object, access, err := ctrl.loadObject(c, entity.AccessRead)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	revisions, err := ctrl.Repository.RevisionRepo.List(ctx, bucket.ID, object.Name)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	domain := ctrl.Config.EnvConfig.DomainName
	rights := ctrl.visibleRights(access)
	items := make([]dto.RevisionResponseDTO, 0, len(revisions))
	for i := range revisions {
		items = append(items, dto.NewRevisionResponse(domain, bucket.Name, &revisions[i], rights))
	}

	utils.JSON200(c, gin.H{"revisions": items})
}

func (ctrl *Controller) GetRevision(c *gin.Context) {
	ctx := c.Request.Context()

	commitID, err := parseCommitID(c)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	bucket, object, access, err := ctrl.loadObject(c, entity.AccessRead)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	revision, err := ctrl.Repository.RevisionRepo.Get(ctx, bucket.ID, object.Name, commitID)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	utils.JSON200(c, dto.NewRevisionResponse(ctrl.Config.EnvConfig.DomainName, bucket.Name, revision, ctrl.visibleRights(access)))
}

func (ctrl *Controller) GetRevisionRaw(c *gin.Context) {
	ctx := c.Request.Context()

	commitID, err := parseCommitID(c)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	bucket, object, _, err := ctrl.loadObject(c, entity.AccessRead)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	revision, err := ctrl.Repository.RevisionRepo.Get(ctx, bucket.ID, object.Name, commitID)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	sendRaw(c, revision)
}

// RestoreRevision commits a copy of the given revision as the newest one.
func (ctrl *Controller) RestoreRevision(c *gin.Context) {
	ctx := c.Request.Context()
	user := utils.CurrentUser(c)

	commitID, err := parseCommitID(c)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	bucket, object, access, err := ctrl.loadObject(c, entity.AccessWrite)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	revision, err := ctrl.Repository.RevisionRepo.Restore(ctx, bucket.ID, object.Name, commitID, user.Name)
	if err != nil {
		ctrl.respondError(c, "Revision", err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Revision] Restored %d of '%s' as %d", commitID, object.Name, revision.CommitID)
	ctrl.publishRevisionCreated(ctx, bucket, revision, commitID)

	utils.JSON200(c, dto.NewRevisionResponse(ctrl.Config.EnvConfig.DomainName, bucket.Name, revision, ctrl.visibleRights(access)))
}
