package remote

import (
	"encoding/json"
	"time"
)

// Row structs mirror the hosted Postgres schema, snake_case columns and
// all. Nullable columns are pointers so absent values survive the round
// trip. Columns that only older schema generations wrote are carried as
// read-side fields and resolved in mapping.go; writes always use the
// canonical column.

type userRow struct {
	ID                  string  `json:"id"`
	Email               *string `json:"email,omitempty"`
	FirstName           *string `json:"first_name,omitempty"`
	LastName            *string `json:"last_name,omitempty"`
	FamilyID            *string `json:"family_id,omitempty"`
	OnboardingCompleted *bool   `json:"onboarding_completed,omitempty"`
	CreatedAt           string  `json:"created_at,omitempty"`
	UpdatedAt           string  `json:"updated_at,omitempty"`
}

type familyRow struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CreatedBy *string `json:"created_by,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// treeRow keys on family_id alone; the tree itself travels as one jsonb
// document in tree_data.
type treeRow struct {
	FamilyID  string          `json:"family_id"`
	TreeData  json.RawMessage `json:"tree_data,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

type memoryRow struct {
	ID          string  `json:"id"`
	FamilyID    string  `json:"family_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	// memory_type is the canonical kind column. category carries the
	// user's free-form label today but stored the kind before the
	// memory_type migration; memory_category is an even older spelling.
	MemoryType     *string         `json:"memory_type,omitempty"`
	Category       *string         `json:"category,omitempty"`
	MemoryCategory *string         `json:"memory_category,omitempty"`
	Files          json.RawMessage `json:"files"`
	PeopleInvolved []string        `json:"people_involved"`
	Tags           []string        `json:"tags"`
	EmotionTags    []string        `json:"emotion_tags"`
	IsPrivate      *bool           `json:"is_private,omitempty"`
	JourneyType    *string         `json:"journey_type,omitempty"`
	ChildID        *string         `json:"child_id,omitempty"`
	CreatedAt      string          `json:"created_at,omitempty"`
	UpdatedAt      string          `json:"updated_at,omitempty"`
}

type journalRow struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	FamilyID  *string `json:"family_id,omitempty"`
	Title     *string `json:"title,omitempty"`
	Content   string  `json:"content"`
	Frequency *string `json:"frequency,omitempty"`
	// entry_date is canonical; date is the pre-rename column.
	EntryDate  *string  `json:"entry_date,omitempty"`
	LegacyDate *string  `json:"date,omitempty"`
	Moods      []string `json:"moods"`
	Tags       []string `json:"tags"`
	IsPrivate  *bool    `json:"is_private,omitempty"`
	SharedWith []string `json:"shared_with"`
	CreatedAt  string   `json:"created_at,omitempty"`
	UpdatedAt  string   `json:"updated_at,omitempty"`
}

// journeyRow keys on (user_id, journey_type).
type journeyRow struct {
	UserID         string   `json:"user_id"`
	JourneyType    string   `json:"journey_type"`
	CompletedSteps []string `json:"completed_steps"`
	CurrentStep    *string  `json:"current_step,omitempty"`
	LastActivityAt string   `json:"last_activity_at,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
}

type capsuleRow struct {
	ID        string  `json:"id"`
	FamilyID  string  `json:"family_id"`
	Title     string  `json:"title"`
	Message   *string `json:"message,omitempty"`
	OpenDate  *string `json:"open_date,omitempty"`
	CreatedBy *string `json:"created_by,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// bookPreferenceRow keys on (user_id, journey_type, child_id).
type bookPreferenceRow struct {
	UserID       string  `json:"user_id"`
	JourneyType  string  `json:"journey_type"`
	ChildID      *string `json:"child_id,omitempty"`
	CustomTitle  *string `json:"custom_title,omitempty"`
	LastOpenedAt string  `json:"last_opened_at,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

// wireTimeLayouts lists the timestamp shapes observed in production rows:
// RFC3339 with or without fractional seconds, the zoneless form PostgREST
// emits for timestamp-without-timezone columns, the textual Postgres form
// with a short offset, and bare dates.
var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02",
}

// parseWireTime is deliberately forgiving: an unparseable timestamp
// becomes the zero time rather than a failed sync.
func parseWireTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// formatWireTime writes timestamps in the one shape every schema
// generation accepts. The zero time becomes an absent column.
func formatWireTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func boolPtr(b bool) *bool {
	return &b
}

func boolValue(p *bool) bool {
	return p != nil && *p
}
