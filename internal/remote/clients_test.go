package remote

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

type upsertCall struct {
	table      string
	onConflict string
	row        interface{}
}

type deleteCall struct {
	table   string
	filters map[string]string
}

// fakeTransport records calls and serves canned rows per table. Rows are
// round-tripped through JSON the same way PostgREST responses would be.
type fakeTransport struct {
	mu       sync.Mutex
	selects  []string
	upserts  []upsertCall
	deletes  []deleteCall
	rows     map[string]interface{}
	failWith error
}

func (f *fakeTransport) SelectEq(_ context.Context, table string, _ map[string]string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects = append(f.selects, table)
	if f.failWith != nil {
		return f.failWith
	}
	rows, ok := f.rows[table]
	if !ok {
		return nil
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeTransport) Upsert(_ context.Context, table, onConflict string, row interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, upsertCall{table: table, onConflict: onConflict, row: row})
	if f.failWith != nil {
		return f.failWith
	}
	return nil
}

func (f *fakeTransport) DeleteEq(_ context.Context, table string, filters map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, deleteCall{table: table, filters: filters})
	if f.failWith != nil {
		return f.failWith
	}
	return nil
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.selects) + len(f.upserts) + len(f.deletes)
}

func newTestStore(t *testing.T) *localstore.Store {
	t.Helper()
	return localstore.NewStore(localstore.NewMemoryKV(1<<20, zap.NewNop()), 0, nil, zap.NewNop())
}

func TestMemoryClient_List_OrdersNewestFirst(t *testing.T) {
	transport := &fakeTransport{rows: map[string]interface{}{
		TableMemories: []memoryRow{
			{ID: "m-old", FamilyID: "f1", Title: "old", MemoryType: strp("photo"), CreatedAt: "2025-01-01T00:00:00Z"},
			{ID: "m-new", FamilyID: "f1", Title: "new", MemoryType: strp("photo"), CreatedAt: "2025-03-01T00:00:00Z"},
			{ID: "m-mid", FamilyID: "f1", Title: "mid", MemoryType: strp("photo"), CreatedAt: "2025-02-01T00:00:00Z"},
		},
	}}
	client := NewMemoryClient(transport, newTestStore(t), zap.NewNop())

	memories, err := client.List(context.Background(), "2b1f7a06-9f2e-4c1d-8a3b-5d6e7f8a9b0c")

	require.NoError(t, err)
	require.Len(t, memories, 3)
	assert.Equal(t, "m-new", memories[0].ID)
	assert.Equal(t, "m-mid", memories[1].ID)
	assert.Equal(t, "m-old", memories[2].ID)
}

func TestMemoryClient_EphemeralFamilyNeverTouchesTransport(t *testing.T) {
	transport := &fakeTransport{}
	store := newTestStore(t)
	client := NewMemoryClient(transport, store, zap.NewNop())
	ctx := context.Background()

	memory := &domain.Memory{
		ID:        "m1",
		FamilyID:  "demo-family",
		Title:     "picnic",
		Type:      domain.MemoryTypePhoto,
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, client.Upsert(ctx, memory))

	listed, err := client.List(ctx, "demo-family")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "picnic", listed[0].Title)

	require.NoError(t, client.Delete(ctx, "demo-family", "m1"))
	listed, err = client.List(ctx, "demo-family")
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.Zero(t, transport.callCount(), "ephemeral scope must stay off the network")
}

func TestMemoryClient_Upsert_NormalizesLegacyKindInPlace(t *testing.T) {
	transport := &fakeTransport{}
	client := NewMemoryClient(transport, newTestStore(t), zap.NewNop())

	memory := &domain.Memory{
		ID:       "m1",
		FamilyID: "2b1f7a06-9f2e-4c1d-8a3b-5d6e7f8a9b0c",
		Title:    "bedtime story",
		Type:     "voice-note",
	}
	require.NoError(t, client.Upsert(context.Background(), memory))

	assert.Equal(t, domain.MemoryTypeVoiceNote, memory.Type)
	require.Len(t, transport.upserts, 1)
	row, ok := transport.upserts[0].row.(memoryRow)
	require.True(t, ok)
	require.NotNil(t, row.MemoryType)
	assert.Equal(t, "voice_note", *row.MemoryType)
	assert.Nil(t, row.Category)
}

func TestMemoryClient_List_PropagatesRemoteFailure(t *testing.T) {
	transport := &fakeTransport{failWith: appErrors.NewRemoteUnavailable("backend down", nil)}
	client := NewMemoryClient(transport, newTestStore(t), zap.NewNop())

	_, err := client.List(context.Background(), "2b1f7a06-9f2e-4c1d-8a3b-5d6e7f8a9b0c")

	require.Error(t, err)
	assert.True(t, appErrors.IsRemoteUnavailable(err))
}

func TestTreeClient_Fetch_AbsentRowReturnsNil(t *testing.T) {
	transport := &fakeTransport{}
	client := NewTreeClient(transport, newTestStore(t), zap.NewNop())

	tree, err := client.Fetch(context.Background(), "2b1f7a06-9f2e-4c1d-8a3b-5d6e7f8a9b0c")

	require.NoError(t, err)
	assert.Nil(t, tree)
	assert.Equal(t, 1, transport.callCount())
}

func TestTreeClient_Upsert_KeysOnFamilyID(t *testing.T) {
	transport := &fakeTransport{}
	client := NewTreeClient(transport, newTestStore(t), zap.NewNop())

	tree := &domain.FamilyTree{
		FamilyID: "2b1f7a06-9f2e-4c1d-8a3b-5d6e7f8a9b0c",
		People:   []domain.Person{{ID: "p1", FirstName: "June", Generation: 1}},
	}
	require.NoError(t, client.Upsert(context.Background(), tree))

	require.Len(t, transport.upserts, 1)
	assert.Equal(t, TableFamilyTrees, transport.upserts[0].table)
	assert.Equal(t, "family_id", transport.upserts[0].onConflict)
}

func TestTreeClient_Upsert_RejectsInvalidTree(t *testing.T) {
	transport := &fakeTransport{}
	client := NewTreeClient(transport, newTestStore(t), zap.NewNop())

	tree := &domain.FamilyTree{
		FamilyID: "2b1f7a06-9f2e-4c1d-8a3b-5d6e7f8a9b0c",
		People: []domain.Person{
			{ID: "p1", FirstName: "June", Generation: 1},
			{ID: "p1", FirstName: "June again", Generation: 1},
		},
	}
	err := client.Upsert(context.Background(), tree)

	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	assert.Zero(t, transport.callCount())
}

func TestProfileClient_EphemeralRoundTrip(t *testing.T) {
	transport := &fakeTransport{}
	client := NewProfileClient(transport, newTestStore(t), zap.NewNop())
	ctx := context.Background()

	profile := &domain.Profile{ID: "demo-user", FirstName: "Demo"}
	require.NoError(t, client.Upsert(ctx, profile))

	got, err := client.Fetch(ctx, "demo-user")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Demo", got.FirstName)
	assert.Zero(t, transport.callCount())
}

func TestProfileClient_Fetch_MapsRowToDomain(t *testing.T) {
	transport := &fakeTransport{rows: map[string]interface{}{
		TableUsers: []userRow{{
			ID:                  "5f0b37e2-61a4-4f0e-9c6d-0a1b2c3d4e5f",
			Email:               strp("june@example.com"),
			FirstName:           strp("June"),
			OnboardingCompleted: func() *bool { b := true; return &b }(),
			CreatedAt:           "2025-01-15T12:00:00Z",
		}},
	}}
	client := NewProfileClient(transport, newTestStore(t), zap.NewNop())

	profile, err := client.Fetch(context.Background(), "5f0b37e2-61a4-4f0e-9c6d-0a1b2c3d4e5f")

	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "june@example.com", profile.Email)
	assert.True(t, profile.OnboardingCompleted)
	assert.Equal(t, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), profile.CreatedAt)
}

func TestJournalClient_Delete_FiltersByEntryID(t *testing.T) {
	transport := &fakeTransport{}
	client := NewJournalClient(transport, newTestStore(t), zap.NewNop())

	err := client.Delete(context.Background(), "5f0b37e2-61a4-4f0e-9c6d-0a1b2c3d4e5f", "j9")

	require.NoError(t, err)
	require.Len(t, transport.deletes, 1)
	assert.Equal(t, TableJournals, transport.deletes[0].table)
	assert.Equal(t, map[string]string{"id": "j9"}, transport.deletes[0].filters)
}

func TestJourneyClient_Fetch_CompositeKeyFilters(t *testing.T) {
	transport := &fakeTransport{rows: map[string]interface{}{
		TableJourneyProgress: []journeyRow{{
			UserID:         "5f0b37e2-61a4-4f0e-9c6d-0a1b2c3d4e5f",
			JourneyType:    domain.JourneyTypePregnancy,
			CompletedSteps: []string{"week-1", "week-2"},
			CurrentStep:    strp("week-3"),
		}},
	}}
	client := NewJourneyClient(transport, newTestStore(t), zap.NewNop())

	progress, err := client.Fetch(context.Background(), "5f0b37e2-61a4-4f0e-9c6d-0a1b2c3d4e5f", domain.JourneyTypePregnancy)

	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, []string{"week-1", "week-2"}, progress.CompletedSteps)
	assert.Equal(t, "week-3", progress.CurrentStep)
}

func TestBookPreferenceClient_Upsert_UsesTripleConflictKey(t *testing.T) {
	transport := &fakeTransport{}
	client := NewBookPreferenceClient(transport, newTestStore(t), zap.NewNop())

	preference := &domain.BookPreference{
		UserID:      "5f0b37e2-61a4-4f0e-9c6d-0a1b2c3d4e5f",
		JourneyType: domain.JourneyTypeCouple,
		CustomTitle: "Our Story",
	}
	require.NoError(t, client.Upsert(context.Background(), preference))

	require.Len(t, transport.upserts, 1)
	assert.Equal(t, TableBookPreferences, transport.upserts[0].table)
	assert.Equal(t, "user_id,journey_type,child_id", transport.upserts[0].onConflict)
}
