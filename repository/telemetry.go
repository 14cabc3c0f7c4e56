package repository

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/tnqbao/gau-catalog-service/repository"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	revisionCounter, _ = meter.Int64Counter(
		"catalog.revisions.created",
		metric.WithDescription("Number of committed catalog object revisions"),
	)
	bucketQueryCounter, _ = meter.Int64Counter(
		"catalog.bucket_queries",
		metric.WithDescription("Number of filtered bucket queries"),
	)
)

var (
	opCreate  = attribute.String("operation", "create")
	opRestore = attribute.String("operation", "restore")
)
