package service

import (
	"context"
	"errors"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// operations counts service calls by entity, operation and result
type operations struct {
	entity  string
	counter metric.Int64Counter
}

func newOperations(meter metric.Meter, entity string) operations {
	counter, _ := meter.Int64Counter(
		"catalog.operations",
		metric.WithDescription("Total number of catalog operations"),
	)
	return operations{entity: entity, counter: counter}
}

func (o operations) record(ctx context.Context, operation string, err error) {
	o.counter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("entity", o.entity),
			attribute.String("operation", operation),
			attribute.String("result", resultOf(err)),
		),
	)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "failure"
	}
}

// fail marks the span failed and returns err unchanged
func fail(span trace.Span, err error, description string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, description)
	return err
}
