package remote

import (
	"context"

	appErrors "memorybox-backend/pkg/errors"
)

type offlineTransport struct{}

// NewOfflineTransport returns a transport for processes running without
// remote store credentials. Every call reports the backend unreachable,
// which the engine already degrades around: demo identities never reach
// the transport at all, and durable reads fall back to the local cache.
func NewOfflineTransport() Transport {
	return offlineTransport{}
}

func (offlineTransport) SelectEq(ctx context.Context, table string, filters map[string]string, dest interface{}) error {
	return appErrors.NewRemoteUnavailable("remote store not configured", nil)
}

func (offlineTransport) Upsert(ctx context.Context, table, onConflict string, row interface{}) error {
	return appErrors.NewRemoteUnavailable("remote store not configured", nil)
}

func (offlineTransport) DeleteEq(ctx context.Context, table string, filters map[string]string) error {
	return appErrors.NewRemoteUnavailable("remote store not configured", nil)
}
