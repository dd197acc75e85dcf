package domain

import (
	"time"

	appErrors "memorybox-backend/pkg/errors"
)

// AttachedFile describes an already-uploaded media object. Upload and
// compression happen elsewhere; this layer only carries the reference.
type AttachedFile struct {
	Name         string `json:"name,omitempty"`
	Type         string `json:"type,omitempty"`
	Size         int64  `json:"size,omitempty"`
	URL          string `json:"url"`
	StoragePath  string `json:"storagePath,omitempty"`
	Compressed   bool   `json:"compressed,omitempty"`
	OriginalSize int64  `json:"originalSize,omitempty"`
}

// Memory is a single captured moment within a family scope.
//
// PeopleInvolved holds display names rather than person ids; the upstream
// clients have always written names here and stored rows depend on it.
type Memory struct {
	ID             string         `json:"id"`
	FamilyID       string         `json:"familyId"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	Category       string         `json:"category,omitempty"`
	Type           string         `json:"type"`
	Files          []AttachedFile `json:"files,omitempty"`
	PeopleInvolved []string       `json:"peopleInvolved,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	EmotionTags    []string       `json:"emotionTags,omitempty"`
	IsPrivate      bool           `json:"isPrivate,omitempty"`
	JourneyType    string         `json:"journeyType,omitempty"`
	ChildID        string         `json:"childId,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Validate checks the fields a memory save requires.
func (m *Memory) Validate() error {
	if m.ID == "" {
		return appErrors.NewValidation("memory requires an id")
	}
	if m.FamilyID == "" {
		return appErrors.NewValidation("memory requires a family id")
	}
	if m.Title == "" {
		return appErrors.NewValidation("memory requires a title")
	}
	if !ValidMemoryType(m.Type) {
		return appErrors.NewValidation("memory type must be one of the canonical kinds")
	}
	if !ValidJourneyType(m.JourneyType) {
		return appErrors.NewValidation("unknown journey type")
	}
	return nil
}

// Touch stamps the modification time, setting the creation time on first use.
func (m *Memory) Touch(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}
