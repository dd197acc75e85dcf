package remote

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracedTransport struct {
	inner  Transport
	tracer trace.Tracer
}

// WithTracing wraps a transport so every remote call shows up as a span.
func WithTracing(inner Transport, tracer trace.Tracer) Transport {
	return &tracedTransport{inner: inner, tracer: tracer}
}

func (t *tracedTransport) SelectEq(ctx context.Context, table string, filters map[string]string, dest interface{}) error {
	ctx, span := t.tracer.Start(ctx, "remote.SelectEq",
		trace.WithAttributes(
			attribute.String("db.table", table),
			attribute.Int("db.filters", len(filters)),
		),
	)
	defer span.End()

	err := t.inner.SelectEq(ctx, table, filters, dest)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (t *tracedTransport) Upsert(ctx context.Context, table, onConflict string, row interface{}) error {
	ctx, span := t.tracer.Start(ctx, "remote.Upsert",
		trace.WithAttributes(
			attribute.String("db.table", table),
		),
	)
	defer span.End()

	err := t.inner.Upsert(ctx, table, onConflict, row)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (t *tracedTransport) DeleteEq(ctx context.Context, table string, filters map[string]string) error {
	ctx, span := t.tracer.Start(ctx, "remote.DeleteEq",
		trace.WithAttributes(
			attribute.String("db.table", table),
		),
	)
	defer span.End()

	err := t.inner.DeleteEq(ctx, table, filters)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
