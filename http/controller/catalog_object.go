package controller

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-catalog-service/entity"
	"github.com/tnqbao/gau-catalog-service/http/controller/dto"
	"github.com/tnqbao/gau-catalog-service/infra/produce"
	"github.com/tnqbao/gau-catalog-service/repository"
	"github.com/tnqbao/gau-catalog-service/utils"
)

// CreateCatalogObject creates an object and its first revision from a
// multipart form (name, kind, commitMessage, contentType, projectName, tags, file).
func (ctrl *Controller) CreateCatalogObject(c *gin.Context) {
	ctx := c.Request.Context()
	user := utils.CurrentUser(c)

	bucket, access, err := ctrl.loadBucket(c, entity.AccessWrite)
	if err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	kind := strings.TrimSpace(c.PostForm("kind"))
	commitMessage := c.PostForm("commitMessage")
	if name == "" || kind == "" || commitMessage == "" {
		utils.JSON400(c, "name, kind and commitMessage are required")
		return
	}
	if strings.Contains(name, "/") {
		utils.JSON400(c, "Object name cannot contain '/'")
		return
	}

	raw, partContentType, err := ctrl.readPayload(c)
	if err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}

	contentType := strings.TrimSpace(c.PostForm("contentType"))
	if contentType == "" {
		contentType = partContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := validatePayload(contentType, raw); err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}

	projectName := c.PostForm("projectName")
	revision, err := ctrl.Repository.RevisionRepo.CreateObject(ctx, repository.CreateRevisionInput{
		BucketID:      bucket.ID,
		ObjectName:    name,
		Kind:          kind,
		ContentType:   contentType,
		CommitMessage: commitMessage,
		Username:      user.Name,
		ProjectName:   projectName,
		RawObject:     raw,
		Tags:          buildTags(projectName, c.PostForm("tags")),
	})
	if err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Object] Created '%s' in bucket '%s' at commit %d", name, bucket.Name, revision.CommitID)
	ctrl.publishRevisionCreated(ctx, bucket, revision, 0)

	utils.JSON201(c, dto.NewRevisionResponse(ctrl.Config.EnvConfig.DomainName, bucket.Name, revision, ctrl.visibleRights(access)))
}

// ListCatalogObjects returns the most recent revision of every readable object.
func (ctrl *Controller) ListCatalogObjects(c *gin.Context) {
	ctx := c.Request.Context()
	user := utils.CurrentUser(c)

	bucket, _, err := ctrl.loadBucket(c, entity.AccessRead)
	if err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}

	page, size, err := ctrl.parsePage(c)
	if err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}
	kinds := parseKinds(c)
	domain := ctrl.Config.EnvConfig.DomainName

	if !ctrl.sessionsRequired() {
		revisions, err := ctrl.Repository.RevisionRepo.ListMostRecentInBucket(ctx, bucket.ID, kinds, page, size)
		if err != nil {
			ctrl.respondError(c, "Object", err)
			return
		}
		items := make([]dto.RevisionResponseDTO, 0, len(revisions))
		for i := range revisions {
			items = append(items, dto.NewRevisionResponse(domain, bucket.Name, &revisions[i], ""))
		}
		utils.JSON200(c, gin.H{"objects": items, "page": page, "size": size})
		return
	}

	// Object grants can narrow bucket rights, so filter before paginating.
	revisions, err := ctrl.Repository.RevisionRepo.ListMostRecentInBucket(ctx, bucket.ID, kinds, 0, 0)
	if err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}
	items := make([]dto.RevisionResponseDTO, 0, len(revisions))
	for i := range revisions {
		object := &entity.CatalogObject{ID: revisions[i].CatalogObjectID, BucketID: bucket.ID, Name: revisions[i].Name}
		access, err := ctrl.Rights.ObjectRights(ctx, user, bucket, object)
		if err != nil {
			ctrl.respondError(c, "Object", err)
			return
		}
		if !access.Satisfy(entity.AccessRead) {
			continue
		}
		items = append(items, dto.NewRevisionResponse(domain, bucket.Name, &revisions[i], access))
	}

	utils.JSON200(c, gin.H{
		"objects": repository.Paginate(items, page, size),
		"total":   len(items),
		"page":    page,
		"size":    size,
	})
}

func (ctrl *Controller) GetCatalogObject(c *gin.Context) {
	ctx := c.Request.Context()

	bucket, object, access, err := ctrl.loadObject(c, entity.AccessRead)
	if err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}

	revision, err := ctrl.Repository.RevisionRepo.GetMostRecent(ctx, bucket.ID, object.ID)
	if err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}

	utils.JSON200(c, dto.NewRevisionResponse(ctrl.Config.EnvConfig.DomainName, bucket.Name, revision, ctrl.visibleRights(access)))
}

func (ctrl *Controller) GetCatalogObjectRaw(c *gin.Context) {
	ctx := c.Request.Context()

	bucket, object, _, err := ctrl.loadObject(c, entity.AccessRead)
	if err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}

	revision, err := ctrl.Repository.RevisionRepo.GetMostRecent(ctx, bucket.ID, object.ID)
	if err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}

	sendRaw(c, revision)
}

func (ctrl *Controller) DeleteCatalogObject(c *gin.Context) {
	ctx := c.Request.Context()
	user := utils.CurrentUser(c)

	bucket, object, _, err := ctrl.loadObject(c, entity.AccessAdmin)
	if err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}

	if err := ctrl.Repository.ObjectRepo.Delete(ctx, object.ID); err != nil {
		ctrl.respondError(c, "Object", err)
		return
	}

	err = ctrl.Infra.Produce.RevisionService.PublishObjectDeleted(ctx, produce.ObjectDeletedMessage{
		BucketName: bucket.Name,
		ObjectName: object.Name,
		Username:   user.Name,
	})
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to publish deletion of %s/%s", bucket.Name, object.Name)
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Object] Deleted '%s' from bucket '%s'", object.Name, bucket.Name)
	utils.JSON200(c, gin.H{"message": fmt.Sprintf("Object %s deleted successfully", object.Name)})
}
