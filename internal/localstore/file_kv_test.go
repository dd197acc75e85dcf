package localstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "memorybox-backend/pkg/errors"
)

func TestFileKV_RoundTrip(t *testing.T) {
	kv, err := NewFileKV(t.TempDir(), 0, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, kv.Set("family:f1:memories", []byte(`[{"id":"m1"}]`)))

	got, ok, err := kv.Get("family:f1:memories")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"m1"}]`, string(got))
}

func TestFileKV_GetMissing(t *testing.T) {
	kv, err := NewFileKV(t.TempDir(), 0, zap.NewNop())
	require.NoError(t, err)

	_, ok, err := kv.Get("absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileKV_QuotaRefusal(t *testing.T) {
	kv, err := NewFileKV(t.TempDir(), 10, zap.NewNop())
	require.NoError(t, err)

	err = kv.Set("k", []byte("this value is larger than ten bytes"))

	require.Error(t, err)
	assert.True(t, appErrors.IsQuotaExceeded(err))
}

func TestFileKV_ReplacementFreesOldBytes(t *testing.T) {
	kv, err := NewFileKV(t.TempDir(), 20, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, kv.Set("k", []byte("0123456789abcdef")))

	// Replacing a 16 byte value with another 16 byte value stays in budget.
	require.NoError(t, kv.Set("k", []byte("fedcba9876543210")))

	got, ok, err := kv.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fedcba9876543210", string(got))
}

func TestFileKV_DeleteAndKeys(t *testing.T) {
	kv, err := NewFileKV(t.TempDir(), 0, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, kv.Set("family:f1:data", []byte("a")))
	require.NoError(t, kv.Set("family:f1:memories", []byte("b")))
	require.NoError(t, kv.Set("user:u1:profile", []byte("c")))

	keys, err := kv.Keys("family:f1:")
	require.NoError(t, err)
	assert.Equal(t, []string{"family:f1:data", "family:f1:memories"}, keys)

	require.NoError(t, kv.Delete("family:f1:data"))
	require.NoError(t, kv.Delete("family:f1:data")) // absent delete is fine

	keys, err = kv.Keys("family:f1:")
	require.NoError(t, err)
	assert.Equal(t, []string{"family:f1:memories"}, keys)
}

func TestFileKV_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileKV(dir, 0, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Set("familyTree_f1", []byte(`{"people":[]}`)))

	// A fresh handle over the same directory sees the stored value and
	// accounts for its size.
	second, err := NewFileKV(dir, 0, zap.NewNop())
	require.NoError(t, err)
	got, ok, err := second.Get("familyTree_f1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"people":[]}`, string(got))
	assert.Equal(t, int64(len(`{"people":[]}`)), second.Size())
}
