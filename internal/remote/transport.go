// Package remote syncs domain entities against the hosted Supabase
// project. Each entity gets a small client that maps between wire rows
// and domain values; all of them share one Transport, which is the only
// place that talks PostgREST.
package remote

import (
	"context"
	"time"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	appErrors "memorybox-backend/pkg/errors"
	"memorybox-backend/pkg/observability"
)

// Table names in the hosted Postgres schema.
const (
	TableUsers           = "users"
	TableFamilies        = "families"
	TableFamilyTrees     = "family_trees"
	TableMemories        = "memories"
	TableJournals        = "journals"
	TableJourneyProgress = "journey_progress"
	TableTimeCapsules    = "time_capsules"
	TableBookPreferences = "user_book_preferences"
)

// Transport is the narrow slice of the PostgREST surface the sync layer
// needs. Implementations must be safe for concurrent use. Failures come
// back as REMOTE_UNAVAILABLE so callers can decide between retrying and
// serving stale data.
type Transport interface {
	// SelectEq fetches every row matching the equality filters into dest,
	// which must be a pointer to a slice of row structs.
	SelectEq(ctx context.Context, table string, filters map[string]string, dest interface{}) error
	// Upsert writes one row, merging on the onConflict column list.
	Upsert(ctx context.Context, table, onConflict string, row interface{}) error
	// DeleteEq removes every row matching the equality filters.
	DeleteEq(ctx context.Context, table string, filters map[string]string) error
}

// NewSupabaseClient opens a PostgREST session against the hosted project.
func NewSupabaseClient(url, key string) (*supabase.Client, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, appErrors.NewInternal("creating supabase client failed", err)
	}
	return client, nil
}

type supabaseTransport struct {
	client  *supabase.Client
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewSupabaseTransport wraps a supabase client as a Transport. metrics may
// be nil.
func NewSupabaseTransport(client *supabase.Client, metrics *observability.Collector, logger *zap.Logger) Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &supabaseTransport{client: client, metrics: metrics, logger: logger}
}

// The postgrest builder carries no context of its own, so cancellation is
// checked once up front per call.
func (t *supabaseTransport) SelectEq(ctx context.Context, table string, filters map[string]string, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return appErrors.NewRemoteUnavailable("select from "+table+" canceled", err)
	}
	start := time.Now()
	query := t.client.From(table).Select("*", "", false)
	for column, value := range filters {
		query = query.Eq(column, value)
	}
	_, err := query.ExecuteTo(dest)
	t.observe(table, "select", start, err)
	if err != nil {
		return appErrors.NewRemoteUnavailable("select from "+table+" failed", err)
	}
	return nil
}

func (t *supabaseTransport) Upsert(ctx context.Context, table, onConflict string, row interface{}) error {
	if err := ctx.Err(); err != nil {
		return appErrors.NewRemoteUnavailable("upsert into "+table+" canceled", err)
	}
	start := time.Now()
	_, _, err := t.client.From(table).Upsert(row, onConflict, "minimal", "").Execute()
	t.observe(table, "upsert", start, err)
	if err != nil {
		return appErrors.NewRemoteUnavailable("upsert into "+table+" failed", err)
	}
	return nil
}

func (t *supabaseTransport) DeleteEq(ctx context.Context, table string, filters map[string]string) error {
	if err := ctx.Err(); err != nil {
		return appErrors.NewRemoteUnavailable("delete from "+table+" canceled", err)
	}
	start := time.Now()
	query := t.client.From(table).Delete("", "")
	for column, value := range filters {
		query = query.Eq(column, value)
	}
	_, _, err := query.Execute()
	t.observe(table, "delete", start, err)
	if err != nil {
		return appErrors.NewRemoteUnavailable("delete from "+table+" failed", err)
	}
	return nil
}

func (t *supabaseTransport) observe(table, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		t.logger.Warn("remote request failed",
			zap.String("table", table),
			zap.String("operation", operation),
			zap.Error(err),
		)
	}
	if t.metrics != nil {
		t.metrics.RemoteRequests.WithLabelValues(table, operation, status).Inc()
		t.metrics.RemoteDuration.WithLabelValues(table, operation).Observe(time.Since(start).Seconds())
	}
}
