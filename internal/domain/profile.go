package domain

import (
	"time"

	appErrors "memorybox-backend/pkg/errors"
)

// Profile is the canonical in-memory shape of a user row. JSON tags are the
// camelCase application shape, which is also what the local cache stores.
type Profile struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email,omitempty"`
	FirstName           string    `json:"firstName,omitempty"`
	LastName            string    `json:"lastName,omitempty"`
	FamilyID            string    `json:"familyId,omitempty"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Validate checks the fields a profile save requires.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return appErrors.NewValidation("profile requires an id")
	}
	return nil
}

// Touch stamps the modification time, setting the creation time on first use.
func (p *Profile) Touch(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// Family groups the users that share trees, memories and capsules.
type Family struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the fields a family save requires.
func (f *Family) Validate() error {
	if f.ID == "" {
		return appErrors.NewValidation("family requires an id")
	}
	if f.Name == "" {
		return appErrors.NewValidation("family requires a name")
	}
	return nil
}

// Touch stamps the modification time, setting the creation time on first use.
func (f *Family) Touch(now time.Time) {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
}
