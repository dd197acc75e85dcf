package remote

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
)

func strp(s string) *string {
	return &s
}

func TestMemoryFromRow_KindAliasPrecedence(t *testing.T) {
	tests := []struct {
		name string
		row  memoryRow
		want string
	}{
		{
			name: "canonical column wins over both aliases",
			row:  memoryRow{MemoryType: strp("video"), Category: strp("audio"), MemoryCategory: strp("text")},
			want: domain.MemoryTypeVideo,
		},
		{
			name: "category serves when memory_type is absent",
			row:  memoryRow{Category: strp("audio")},
			want: domain.MemoryTypeAudio,
		},
		{
			name: "memory_category is the last resort",
			row:  memoryRow{MemoryCategory: strp("text")},
			want: domain.MemoryTypeText,
		},
		{
			name: "hyphenated voice note spelling normalizes",
			row:  memoryRow{MemoryType: strp("voice-note")},
			want: domain.MemoryTypeVoiceNote,
		},
		{
			name: "bare voice spelling normalizes",
			row:  memoryRow{Category: strp("voice")},
			want: domain.MemoryTypeVoiceNote,
		},
		{
			name: "unknown kind defaults to photo",
			row:  memoryRow{MemoryType: strp("hologram")},
			want: domain.MemoryTypePhoto,
		},
		{
			name: "missing kind defaults to photo",
			row:  memoryRow{},
			want: domain.MemoryTypePhoto,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := memoryFromRow(tt.row, zap.NewNop())
			assert.Equal(t, tt.want, got.Type)
		})
	}
}

func TestMemoryToRow_WritesCanonicalColumns(t *testing.T) {
	m := domain.Memory{
		ID:        "m1",
		FamilyID:  "f1",
		Title:     "first steps",
		Type:      domain.MemoryTypeVoiceNote,
		Files:     []domain.AttachedFile{{Name: "steps.m4a", URL: "https://cdn/steps.m4a"}},
		CreatedAt: time.Date(2025, 3, 10, 9, 30, 0, 0, time.FixedZone("CET", 3600)),
	}

	row := memoryToRow(m)

	require.NotNil(t, row.MemoryType)
	assert.Equal(t, "voice_note", *row.MemoryType)
	assert.Nil(t, row.Category)
	assert.Nil(t, row.MemoryCategory)
	// Timestamps go out as RFC3339 UTC regardless of the zone they carried.
	assert.Equal(t, "2025-03-10T08:30:00Z", row.CreatedAt)

	var files []domain.AttachedFile
	require.NoError(t, json.Unmarshal(row.Files, &files))
	require.Len(t, files, 1)
	assert.Equal(t, "steps.m4a", files[0].Name)
}

func TestMemoryCategoryLabelRoundTrips(t *testing.T) {
	m := domain.Memory{ID: "m1", FamilyID: "f1", Title: "picnic", Category: "Summer 2025", Type: domain.MemoryTypePhoto}

	row := memoryToRow(m)
	require.NotNil(t, row.Category)
	assert.Equal(t, "Summer 2025", *row.Category)

	back := memoryFromRow(row, zap.NewNop())
	assert.Equal(t, "Summer 2025", back.Category)
	// The label never shadows the kind when memory_type is present.
	assert.Equal(t, domain.MemoryTypePhoto, back.Type)
}

func TestJournalFromRow_DateAliasPrecedence(t *testing.T) {
	t.Run("entry_date wins", func(t *testing.T) {
		row := journalRow{ID: "j1", UserID: "u1", Content: "note", EntryDate: strp("2025-02-01"), LegacyDate: strp("2024-12-31")}
		assert.Equal(t, "2025-02-01", journalFromRow(row).Date)
	})

	t.Run("legacy date column serves as fallback", func(t *testing.T) {
		row := journalRow{ID: "j1", UserID: "u1", Content: "note", LegacyDate: strp("2024-12-31")}
		assert.Equal(t, "2024-12-31", journalFromRow(row).Date)
	})

	t.Run("no date column leaves the field empty", func(t *testing.T) {
		row := journalRow{ID: "j1", UserID: "u1", Content: "note"}
		assert.Empty(t, journalFromRow(row).Date)
	})
}

func TestParseWireTime_ToleratesObservedFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339 utc", "2025-03-10T09:30:00Z", time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)},
		{"rfc3339 with offset", "2025-03-10T10:30:00+01:00", time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)},
		{"fractional seconds", "2025-03-10T09:30:00.123456Z", time.Date(2025, 3, 10, 9, 30, 0, 123456000, time.UTC)},
		{"zoneless timestamp", "2025-03-10T09:30:00.5", time.Date(2025, 3, 10, 9, 30, 0, 500000000, time.UTC)},
		{"postgres textual offset", "2025-03-10 09:30:00+00", time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)},
		{"bare date", "2025-03-10", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(parseWireTime(tt.input)), "parsing %q", tt.input)
		})
	}

	t.Run("garbage becomes the zero time", func(t *testing.T) {
		assert.True(t, parseWireTime("not-a-timestamp").IsZero())
		assert.True(t, parseWireTime("").IsZero())
	})
}

func TestFormatWireTime_ZeroBecomesAbsent(t *testing.T) {
	assert.Empty(t, formatWireTime(time.Time{}))
	assert.Equal(t, "2025-03-10T08:30:00Z",
		formatWireTime(time.Date(2025, 3, 10, 9, 30, 0, 0, time.FixedZone("CET", 3600))))
}

func TestTreeFromRow_RowFamilyIDWinsOverDocument(t *testing.T) {
	doc, err := json.Marshal(domain.FamilyTree{
		FamilyID: "stale-family",
		People:   []domain.Person{{ID: "p1", FirstName: "June", Generation: 1}},
	})
	require.NoError(t, err)

	tree := treeFromRow(treeRow{FamilyID: "f-real", TreeData: doc}, zap.NewNop())

	assert.Equal(t, "f-real", tree.FamilyID)
	require.Len(t, tree.People, 1)
	assert.Equal(t, "June", tree.People[0].FirstName)
	assert.NotNil(t, tree.Relationships)
}

func TestTreeFromRow_MalformedDocumentFallsBackToEmpty(t *testing.T) {
	row := treeRow{FamilyID: "f1", TreeData: json.RawMessage(`{"people": 12}`)}

	tree := treeFromRow(row, zap.NewNop())

	assert.Equal(t, "f1", tree.FamilyID)
	assert.Empty(t, tree.People)
	assert.NotNil(t, tree.People)
	assert.NotNil(t, tree.Relationships)
}

func TestTreeToRow_EmbedsDocument(t *testing.T) {
	tree := domain.FamilyTree{
		FamilyID: "f1",
		People: []domain.Person{
			{ID: "p1", FirstName: "June", Generation: 1, IsRoot: true},
			{ID: "p2", FirstName: "Sam", Generation: 2},
		},
		Relationships: []domain.Relationship{{Type: domain.RelationParentChild, From: "p1", To: "p2"}},
	}

	row := treeToRow(tree, "2025-03-10T08:30:00Z")

	assert.Equal(t, "f1", row.FamilyID)
	assert.Equal(t, "2025-03-10T08:30:00Z", row.UpdatedAt)

	back := treeFromRow(row, zap.NewNop())
	assert.Equal(t, tree.People, back.People)
	assert.Equal(t, tree.Relationships, back.Relationships)
}
