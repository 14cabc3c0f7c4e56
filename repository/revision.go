package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tnqbao/gau-catalog-service/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateRevisionInput describes a new commit. Empty Kind or ContentType inherit
// the values of the catalog object's current revision.
type CreateRevisionInput struct {
	BucketID      int64
	ObjectName    string
	Kind          string
	ContentType   string
	CommitMessage string
	Username      string
	ProjectName   string
	RawObject     []byte
	Tags          []entity.KeyValue
}

func (in CreateRevisionInput) validate() error {
	if in.ObjectName == "" {
		return fmt.Errorf("object name is required: %w", ErrInvalidInput)
	}
	if in.CommitMessage == "" {
		return fmt.Errorf("commit message is required: %w", ErrInvalidInput)
	}
	return nil
}

type RevisionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRevisionRepository(db *gorm.DB) *RevisionRepository {
	return &RevisionRepository{db: db, now: time.Now}
}

// CreateObject inserts a catalog object and its first revision atomically.
func (r *RevisionRepository) CreateObject(ctx context.Context, in CreateRevisionInput) (*entity.Revision, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Kind == "" {
		return nil, fmt.Errorf("kind is required: %w", ErrInvalidInput)
	}

	ctx, span := tracer.Start(ctx, "RevisionRepository.CreateObject",
		trace.WithAttributes(attribute.Int64("bucket.id", in.BucketID), attribute.String("object.name", in.ObjectName)))
	defer span.End()

	var created *entity.Revision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		object := &entity.CatalogObject{
			BucketID:    in.BucketID,
			Name:        in.ObjectName,
			Kind:        in.Kind,
			ContentType: in.ContentType,
		}
		if err := tx.Create(object).Error; err != nil {
			return translateError(err, "create catalog object %q", in.ObjectName)
		}

		revision, err := r.appendRevision(tx, object, in)
		if err != nil {
			return err
		}
		created = revision
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	revisionCounter.Add(ctx, 1, metric.WithAttributes(opCreate))
	return created, nil
}

// Create appends a revision to an existing catalog object and moves its
// last commit pointer in the same transaction.
func (r *RevisionRepository) Create(ctx context.Context, in CreateRevisionInput) (*entity.Revision, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "RevisionRepository.Create",
		trace.WithAttributes(attribute.Int64("bucket.id", in.BucketID), attribute.String("object.name", in.ObjectName)))
	defer span.End()

	var created *entity.Revision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		object, err := lockObject(tx, in.BucketID, in.ObjectName)
		if err != nil {
			return err
		}
		if in.Kind == "" {
			in.Kind = object.Kind
		}
		if in.ContentType == "" {
			in.ContentType = object.ContentType
		}

		revision, err := r.appendRevision(tx, object, in)
		if err != nil {
			return err
		}
		created = revision
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	revisionCounter.Add(ctx, 1, metric.WithAttributes(opCreate))
	return created, nil
}

// Restore commits a copy of an older revision as the newest one. The target
// revision itself is left untouched.
func (r *RevisionRepository) Restore(ctx context.Context, bucketID int64, objectName string, commitID int64, username string) (*entity.Revision, error) {
	ctx, span := tracer.Start(ctx, "RevisionRepository.Restore",
		trace.WithAttributes(attribute.Int64("bucket.id", bucketID), attribute.Int64("revision.commit_id", commitID)))
	defer span.End()

	var created *entity.Revision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		object, err := lockObject(tx, bucketID, objectName)
		if err != nil {
			return err
		}

		var target entity.Revision
		err = tx.Where("catalog_object_id = ? AND commit_id = ?", object.ID, commitID).Take(&target).Error
		if err != nil {
			return translateError(err, "revision %d of %q", commitID, objectName)
		}

		tags := make([]entity.KeyValue, len(target.Tags))
		copy(tags, target.Tags)

		revision, err := r.appendRevision(tx, object, CreateRevisionInput{
			BucketID:      bucketID,
			ObjectName:    objectName,
			Kind:          target.Kind,
			ContentType:   target.ContentType,
			CommitMessage: fmt.Sprintf("Restored from revision %d", target.CommitID),
			Username:      username,
			ProjectName:   target.ProjectName,
			RawObject:     target.RawObject,
			Tags:          tags,
		})
		if err != nil {
			return err
		}
		created = revision
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	revisionCounter.Add(ctx, 1, metric.WithAttributes(opRestore))
	return created, nil
}

func lockObject(tx *gorm.DB, bucketID int64, name string) (*entity.CatalogObject, error) {
	var object entity.CatalogObject
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("bucket_id = ? AND name = ?", bucketID, name).
		Take(&object).Error
	if err != nil {
		return nil, translateError(err, "catalog object %q in bucket %d", name, bucketID)
	}
	return &object, nil
}

// appendRevision inserts the revision row and advances the object's pointer.
// It must run inside the caller's transaction.
func (r *RevisionRepository) appendRevision(tx *gorm.DB, object *entity.CatalogObject, in CreateRevisionInput) (*entity.Revision, error) {
	raw := in.RawObject
	if raw == nil {
		raw = []byte{}
	}
	tags := in.Tags
	if tags == nil {
		tags = []entity.KeyValue{}
	}

	revision := &entity.Revision{
		CatalogObjectID: object.ID,
		BucketID:        object.BucketID,
		Name:            object.Name,
		Kind:            in.Kind,
		ContentType:     in.ContentType,
		CommitMessage:   in.CommitMessage,
		Username:        in.Username,
		ProjectName:     in.ProjectName,
		CommitDate:      r.now().UTC(),
		RawObject:       raw,
		Tags:            tags,
	}
	if err := tx.Create(revision).Error; err != nil {
		return nil, translateError(err, "insert revision of %q", object.Name)
	}

	res := tx.Model(&entity.CatalogObject{}).
		Where("id = ? AND (last_commit_id IS NULL OR last_commit_id < ?)", object.ID, revision.CommitID).
		UpdateColumns(map[string]interface{}{
			"last_commit_id":     revision.CommitID,
			"kind":               revision.Kind,
			"kind_lower":         strings.ToLower(revision.Kind),
			"content_type":       revision.ContentType,
			"content_type_lower": strings.ToLower(revision.ContentType),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("advance last commit of %q: %w", object.Name, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("commit %d does not advance object %q: %w", revision.CommitID, object.Name, ErrConflict)
	}

	object.LastCommitID = &revision.CommitID
	object.Kind = revision.Kind
	object.ContentType = revision.ContentType
	object.NormalizeSearchFields()
	return revision, nil
}

// Get resolves one revision by bucket, object name and commit id.
func (r *RevisionRepository) Get(ctx context.Context, bucketID int64, objectName string, commitID int64) (*entity.Revision, error) {
	var revision entity.Revision
	err := r.db.WithContext(ctx).
		Where("bucket_id = ? AND name = ? AND commit_id = ?", bucketID, objectName, commitID).
		Take(&revision).Error
	if err != nil {
		return nil, translateError(err, "revision %d of %q", commitID, objectName)
	}
	return &revision, nil
}

func (r *RevisionRepository) mostRecent(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entity.Revision{}).
		Joins("JOIN catalog_objects ON catalog_objects.id = catalog_object_revisions.catalog_object_id " +
			"AND catalog_objects.last_commit_id = catalog_object_revisions.commit_id")
}

// GetMostRecent returns the revision the object's last commit pointer names.
func (r *RevisionRepository) GetMostRecent(ctx context.Context, bucketID, objectID int64) (*entity.Revision, error) {
	var revision entity.Revision
	err := r.mostRecent(ctx).
		Where("catalog_objects.bucket_id = ? AND catalog_objects.id = ?", bucketID, objectID).
		Take(&revision).Error
	if err != nil {
		return nil, translateError(err, "most recent revision of object %d", objectID)
	}
	return &revision, nil
}

func (r *RevisionRepository) GetMostRecentByName(ctx context.Context, bucketID int64, objectName string) (*entity.Revision, error) {
	var revision entity.Revision
	err := r.mostRecent(ctx).
		Where("catalog_objects.bucket_id = ? AND catalog_objects.name = ?", bucketID, objectName).
		Take(&revision).Error
	if err != nil {
		return nil, translateError(err, "most recent revision of %q", objectName)
	}
	return &revision, nil
}

// ListMostRecentInBucket returns the current revision of every object in the
// bucket ordered by name, optionally restricted to kind prefixes. Payloads are
// not loaded.
func (r *RevisionRepository) ListMostRecentInBucket(ctx context.Context, bucketID int64, kinds []string, page, size int) ([]entity.Revision, error) {
	query := r.mostRecent(ctx).
		Omit("raw_object").
		Where("catalog_objects.bucket_id = ?", bucketID)
	if len(kinds) > 0 {
		query = query.Where(kindPrefixes(kinds))
	}
	query = query.Order("catalog_objects.name ASC")
	if size > 0 {
		query = query.Offset(page * size).Limit(size)
	}

	var revisions []entity.Revision
	if err := query.Find(&revisions).Error; err != nil {
		return nil, fmt.Errorf("list most recent revisions of bucket %d: %w", bucketID, err)
	}
	return revisions, nil
}

// List returns the history of an object newest first. Payloads are not loaded.
func (r *RevisionRepository) List(ctx context.Context, bucketID int64, objectName string) ([]entity.Revision, error) {
	var object entity.CatalogObject
	err := r.db.WithContext(ctx).
		Where("bucket_id = ? AND name = ?", bucketID, objectName).
		Take(&object).Error
	if err != nil {
		return nil, translateError(err, "catalog object %q in bucket %d", objectName, bucketID)
	}

	var revisions []entity.Revision
	err = r.db.WithContext(ctx).
		Omit("raw_object").
		Where("catalog_object_id = ?", object.ID).
		Order("commit_date DESC").
		Order("commit_id DESC").
		Find(&revisions).Error
	if err != nil {
		return nil, fmt.Errorf("list revisions of %q: %w", objectName, err)
	}
	return revisions, nil
}
