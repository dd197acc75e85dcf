package domain

import (
	"time"

	appErrors "memorybox-backend/pkg/errors"
)

// JourneyProgress tracks how far one user has advanced through a guided
// journey. One record per (user, journey type).
type JourneyProgress struct {
	UserID         string    `json:"userId"`
	JourneyType    string    `json:"journeyType"`
	CompletedSteps []string  `json:"completedSteps"`
	CurrentStep    string    `json:"currentStep,omitempty"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Validate checks the fields a progress save requires.
func (p *JourneyProgress) Validate() error {
	if p.UserID == "" {
		return appErrors.NewValidation("journey progress requires a user id")
	}
	if p.JourneyType == "" || !ValidJourneyType(p.JourneyType) {
		return appErrors.NewValidation("journey progress requires a known journey type")
	}
	return nil
}

// Normalize replaces a nil steps collection with an empty one.
func (p *JourneyProgress) Normalize() {
	if p.CompletedSteps == nil {
		p.CompletedSteps = []string{}
	}
}

// Touch stamps the modification time, setting the creation time on first use.
func (p *JourneyProgress) Touch(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// TimeCapsule is a message sealed until its open date.
type TimeCapsule struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"familyId"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	OpenDate  string    `json:"openDate"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the fields a capsule save requires.
func (c *TimeCapsule) Validate() error {
	if c.ID == "" {
		return appErrors.NewValidation("time capsule requires an id")
	}
	if c.FamilyID == "" {
		return appErrors.NewValidation("time capsule requires a family id")
	}
	if c.Title == "" {
		return appErrors.NewValidation("time capsule requires a title")
	}
	return nil
}

// Touch stamps the modification time, setting the creation time on first use.
func (c *TimeCapsule) Touch(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// BookPreference stores per-user presentation choices for a printed memory
// book, keyed by (user, journey type, optional child).
type BookPreference struct {
	UserID       string    `json:"userId"`
	JourneyType  string    `json:"journeyType"`
	ChildID      string    `json:"childId,omitempty"`
	CustomTitle  string    `json:"customTitle,omitempty"`
	LastOpenedAt time.Time `json:"lastOpenedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Validate checks the fields a preference save requires.
func (b *BookPreference) Validate() error {
	if b.UserID == "" {
		return appErrors.NewValidation("book preference requires a user id")
	}
	if b.JourneyType == "" || !ValidJourneyType(b.JourneyType) {
		return appErrors.NewValidation("book preference requires a known journey type")
	}
	return nil
}

// Touch stamps the modification time, setting the creation time on first use.
func (b *BookPreference) Touch(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}
