package domain

import (
	"time"

	appErrors "memorybox-backend/pkg/errors"
)

// JournalEntry is a dated reflection owned by one user, optionally shared
// within the family. Date is the entry's calendar date as written by the
// author (YYYY-MM-DD), distinct from the row timestamps.
type JournalEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	FamilyID   string    `json:"familyId,omitempty"`
	Title      string    `json:"title,omitempty"`
	Content    string    `json:"content"`
	Frequency  string    `json:"frequency"`
	Date       string    `json:"date"`
	Moods      []string  `json:"moods,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	IsPrivate  bool      `json:"isPrivate,omitempty"`
	SharedWith []string  `json:"sharedWith,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Validate checks the fields a journal save requires.
func (j *JournalEntry) Validate() error {
	if j.ID == "" {
		return appErrors.NewValidation("journal entry requires an id")
	}
	if j.UserID == "" {
		return appErrors.NewValidation("journal entry requires a user id")
	}
	if j.Content == "" {
		return appErrors.NewValidation("journal entry requires content")
	}
	if !ValidFrequency(j.Frequency) {
		return appErrors.NewValidation("journal frequency must be daily, weekly or monthly")
	}
	return nil
}

// Touch stamps the modification time, setting the creation time on first use.
func (j *JournalEntry) Touch(now time.Time) {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
}
