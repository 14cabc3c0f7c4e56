package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-catalog-service/entity"
	"github.com/tnqbao/gau-catalog-service/infra/produce"
	"github.com/tnqbao/gau-catalog-service/repository"
	"github.com/tnqbao/gau-catalog-service/utils"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrPermissionDenied = errors.New("permission denied")
	errPayloadTooLarge  = errors.New("payload too large")
)

// respondError maps domain errors onto HTTP statuses. Unknown errors are
// logged and hidden behind a 500.
func (ctrl *Controller) respondError(c *gin.Context, tag string, err error) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, repository.ErrNotFound):
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[%s] %v", tag, err)
		utils.JSON404(c, err.Error())
	case errors.Is(err, repository.ErrConflict):
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[%s] %v", tag, err)
		utils.JSON409(c, err.Error())
	case errors.Is(err, repository.ErrInvalidFilter):
		utils.JSON400(c, err.Error())
	case errors.Is(err, repository.ErrInvalidInput):
		utils.JSON422(c, err.Error())
	case errors.Is(err, errPayloadTooLarge):
		utils.JSON413(c, err.Error())
	case errors.Is(err, ErrNotAuthenticated):
		utils.JSON401(c, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[%s] %v", tag, err)
		utils.JSON403(c, err.Error())
	default:
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[%s] Unexpected error: %v", tag, err)
		utils.JSON500(c, "Internal server error")
	}
}

func (ctrl *Controller) sessionsRequired() bool {
	return ctrl.Config.EnvConfig.Session.Required
}

// visibleRights hides rights from responses when sessions are disabled.
func (ctrl *Controller) visibleRights(access entity.AccessType) entity.AccessType {
	if !ctrl.sessionsRequired() {
		return ""
	}
	return access
}

func (ctrl *Controller) bucketRights(ctx context.Context, user entity.AuthenticatedUser, bucket *entity.Bucket) (entity.AccessType, error) {
	if !ctrl.sessionsRequired() {
		return entity.AccessAdmin, nil
	}
	return ctrl.Rights.BucketRights(ctx, user, bucket)
}

func (ctrl *Controller) objectRights(ctx context.Context, user entity.AuthenticatedUser, bucket *entity.Bucket, object *entity.CatalogObject) (entity.AccessType, error) {
	if !ctrl.sessionsRequired() {
		return entity.AccessAdmin, nil
	}
	return ctrl.Rights.ObjectRights(ctx, user, bucket, object)
}

// loadBucket resolves the :bucket path parameter and checks the caller holds
// at least the required access on it.
func (ctrl *Controller) loadBucket(c *gin.Context, required entity.AccessType) (*entity.Bucket, entity.AccessType, error) {
	ctx := c.Request.Context()
	bucket, err := ctrl.Repository.BucketRepo.FindByName(ctx, c.Param("bucket"))
	if err != nil {
		return nil, entity.AccessNone, err
	}

	access, err := ctrl.bucketRights(ctx, utils.CurrentUser(c), bucket)
	if err != nil {
		return nil, entity.AccessNone, err
	}
	if !access.Satisfy(required) {
		return nil, access, fmt.Errorf("%s access to bucket %q is required: %w", required, bucket.Name, ErrPermissionDenied)
	}
	return bucket, access, nil
}

// loadObject resolves the :bucket and :name path parameters and checks the
// caller holds at least the required access on the object.
func (ctrl *Controller) loadObject(c *gin.Context, required entity.AccessType) (*entity.Bucket, *entity.CatalogObject, entity.AccessType, error) {
	ctx := c.Request.Context()
	bucket, err := ctrl.Repository.BucketRepo.FindByName(ctx, c.Param("bucket"))
	if err != nil {
		return nil, nil, entity.AccessNone, err
	}
	object, err := ctrl.Repository.ObjectRepo.FindByBucketAndName(ctx, bucket.ID, c.Param("name"))
	if err != nil {
		return nil, nil, entity.AccessNone, err
	}

	access, err := ctrl.objectRights(ctx, utils.CurrentUser(c), bucket, object)
	if err != nil {
		return nil, nil, entity.AccessNone, err
	}
	if !access.Satisfy(required) {
		return nil, nil, access, fmt.Errorf("%s access to %q in bucket %q is required: %w", required, object.Name, bucket.Name, ErrPermissionDenied)
	}
	return bucket, object, access, nil
}

func parseCommitID(c *gin.Context) (int64, error) {
	commitID, err := strconv.ParseInt(c.Param("commit_id"), 10, 64)
	if err != nil || commitID <= 0 {
		return 0, fmt.Errorf("commit id %q must be a positive integer: %w", c.Param("commit_id"), repository.ErrInvalidFilter)
	}
	return commitID, nil
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s %q must be a positive integer: %w", name, c.Param(name), repository.ErrInvalidFilter)
	}
	return id, nil
}

// parsePage reads zero-based page and size query parameters.
func (ctrl *Controller) parsePage(c *gin.Context) (int, int, error) {
	page := 0
	size := ctrl.Config.EnvConfig.Catalog.DefaultPageSize
	if raw, ok := c.GetQuery("page"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("page %q must be a non-negative integer: %w", raw, repository.ErrInvalidFilter)
		}
		page = n
	}
	if raw, ok := c.GetQuery("size"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("size %q must be a positive integer: %w", raw, repository.ErrInvalidFilter)
		}
		size = n
	}
	return page, size, nil
}

// parseKinds accepts repeated and comma separated kind parameters. The
// result is never nil.
func parseKinds(c *gin.Context) []string {
	kinds := []string{}
	for _, value := range c.QueryArray("kind") {
		for _, kind := range strings.Split(value, ",") {
			if kind = strings.TrimSpace(kind); kind != "" {
				kinds = append(kinds, kind)
			}
		}
	}
	return kinds
}

// buildTags turns the projectName and comma separated tags form fields into
// ordered key/value tags.
func buildTags(projectName, tags string) []entity.KeyValue {
	keyValues := []entity.KeyValue{}
	if projectName != "" {
		keyValues = append(keyValues, entity.KeyValue{
			Label: entity.TagLabelGeneral,
			Key:   entity.TagKeyProjectName,
			Value: projectName,
		})
	}
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			keyValues = append(keyValues, entity.KeyValue{Label: entity.TagLabelObjectTag, Key: tag, Value: tag})
		}
	}
	return keyValues
}

// readPayload reads the multipart file part. The second return value is the
// part's declared content type.
func (ctrl *Controller) readPayload(c *gin.Context) ([]byte, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("file part is required: %w", repository.ErrInvalidInput)
	}

	maxSize := ctrl.Config.EnvConfig.Catalog.MaxPayloadSize
	if maxSize > 0 && fileHeader.Size > maxSize {
		return nil, "", fmt.Errorf("file of %d bytes exceeds %d bytes: %w", fileHeader.Size, maxSize, errPayloadTooLarge)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file part: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file part: %w", err)
	}
	return raw, fileHeader.Header.Get("Content-Type"), nil
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// validatePayload checks that JSON and XML payloads are well formed.
func validatePayload(contentType string, raw []byte) error {
	mt := mediaType(contentType)
	switch {
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		if !json.Valid(raw) {
			return fmt.Errorf("payload is not valid JSON: %w", repository.ErrInvalidInput)
		}
	case mt == "application/xml" || mt == "text/xml" || strings.HasSuffix(mt, "+xml"):
		decoder := xml.NewDecoder(bytes.NewReader(raw))
		sawElement := false
		for {
			token, err := decoder.Token()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("payload is not valid XML: %v: %w", err, repository.ErrInvalidInput)
			}
			if _, ok := token.(xml.StartElement); ok {
				sawElement = true
			}
		}
		if !sawElement {
			return fmt.Errorf("payload has no XML root element: %w", repository.ErrInvalidInput)
		}
	}
	return nil
}

// publishRevisionCreated runs after the commit; failures are logged only.
func (ctrl *Controller) publishRevisionCreated(ctx context.Context, bucket *entity.Bucket, revision *entity.Revision, restoredFrom int64) {
	err := ctrl.Infra.Produce.RevisionService.PublishRevisionCreated(ctx, produce.RevisionCreatedMessage{
		BucketID:     bucket.ID,
		BucketName:   bucket.Name,
		ObjectName:   revision.Name,
		CommitID:     revision.CommitID,
		RestoredFrom: restoredFrom,
		Username:     revision.Username,
	})
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Revision] Failed to publish revision %d of %s/%s", revision.CommitID, bucket.Name, revision.Name)
	}
}

func sendRaw(c *gin.Context, revision *entity.Revision) {
	contentType := revision.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", revision.Name))
	c.Data(http.StatusOK, contentType, revision.RawObject)
}
