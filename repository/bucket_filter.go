package repository

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm/clause"
)

// BucketFilter narrows the bucket summary query. A nil pointer or nil Owners
// means "no restriction"; a present value always contributes a predicate, even
// when it is empty.
type BucketFilter struct {
	Owners      []string
	Kinds       []string // must be non-nil, an empty slice disables the kind predicate
	ContentType *string
	ObjectName  *string
}

// BucketSummary is one row of the bucket summary query.
type BucketSummary struct {
	BucketName  string `json:"name"`
	Owner       string `json:"owner"`
	ObjectCount int64  `json:"object_count"`
	BucketID    int64  `json:"id"`
}

var (
	columnBucketOwner       = clause.Column{Table: "buckets", Name: "owner"}
	columnObjectKind        = clause.Column{Table: "catalog_objects", Name: "kind_lower"}
	columnObjectContentType = clause.Column{Table: "catalog_objects", Name: "content_type_lower"}
	columnObjectName        = clause.Column{Table: "catalog_objects", Name: "name_lower"}
)

func (f BucketFilter) Validate() error {
	if f.Kinds == nil {
		return fmt.Errorf("kind list must not be nil: %w", ErrInvalidFilter)
	}
	return nil
}

// Predicates returns one expression per present filter field, in a fixed order.
func (f BucketFilter) Predicates() []clause.Expression {
	var predicates []clause.Expression

	if len(f.Kinds) > 0 {
		predicates = append(predicates, kindPrefixes(f.Kinds))
	}
	if f.ContentType != nil {
		predicates = append(predicates, clause.Like{
			Column: columnObjectContentType,
			Value:  strings.ToLower(*f.ContentType) + "%",
		})
	}
	if f.ObjectName != nil {
		predicates = append(predicates, clause.Like{
			Column: columnObjectName,
			Value:  "%" + strings.ToLower(*f.ObjectName) + "%",
		})
	}
	if f.Owners != nil {
		owners := make([]interface{}, len(f.Owners))
		for i, owner := range f.Owners {
			owners[i] = owner
		}
		predicates = append(predicates, clause.IN{Column: columnBucketOwner, Values: owners})
	}

	return predicates
}

func kindPrefixes(kinds []string) clause.Expression {
	likes := make([]clause.Expression, len(kinds))
	for i, kind := range kinds {
		likes[i] = clause.Like{Column: columnObjectKind, Value: strings.ToLower(kind) + "%"}
	}
	return anyOf(likes)
}

func anyOf(exprs []clause.Expression) clause.Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return clause.Or(exprs...)
}

func allOf(exprs []clause.Expression) clause.Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return clause.And(exprs...)
}

// FindWithFilters returns one summary per bucket having at least one row of the
// left join that satisfies every present predicate, ordered by bucket id.
func (r *BucketRepository) FindWithFilters(ctx context.Context, filter BucketFilter) ([]BucketSummary, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "BucketRepository.FindWithFilters")
	defer span.End()

	query := r.db.WithContext(ctx).
		Table("buckets").
		Select("buckets.name AS bucket_name, buckets.owner AS owner, " +
			"COUNT(DISTINCT catalog_objects.name) AS object_count, buckets.id AS bucket_id").
		Joins("LEFT JOIN catalog_objects ON catalog_objects.bucket_id = buckets.id")

	predicates := filter.Predicates()
	if len(predicates) > 0 {
		query = query.Where(allOf(predicates))
	}

	var rows []BucketSummary
	err := query.
		Group("buckets.name, buckets.owner, buckets.id").
		Order("buckets.id ASC").
		Scan(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query buckets: %w", err)
	}

	bucketQueryCounter.Add(ctx, 1, metric.WithAttributes(attribute.Int("predicates", len(predicates))))
	return rows, nil
}

// Paginate returns the zero-based page of items. A non-positive size returns
// everything from the first page.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		if page > 0 {
			return []T{}
		}
		return items
	}
	if page < 0 {
		page = 0
	}
	start := page * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
