package domain

import (
	"fmt"

	appErrors "memorybox-backend/pkg/errors"
)

// Person is a node in a family tree document.
type Person struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName,omitempty"`
	BirthDate  string `json:"birthDate,omitempty"`
	Generation int    `json:"generation"`
	IsRoot     bool   `json:"isRoot,omitempty"`
	PhotoURL   string `json:"photoUrl,omitempty"`
}

// Relationship links two people already present in the same tree document.
type Relationship struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
}

// FamilyTree is stored remotely as a single JSON document per family. The
// people collection is the primary collection: an empty people list is what
// the reconciliation layer treats as "no tree data". Row timestamps live on
// the remote row, not in the document.
type FamilyTree struct {
	FamilyID         string         `json:"familyId"`
	People           []Person       `json:"people"`
	Relationships    []Relationship `json:"relationships"`
	RootUserID       string         `json:"rootUserId,omitempty"`
	GenerationLimits map[string]int `json:"generationLimits,omitempty"`
}

// NewEmptyTree returns the canonical empty tree shape: collections present
// and empty, never nil. Callers can range over it without nil checks.
func NewEmptyTree(familyID string) *FamilyTree {
	return &FamilyTree{
		FamilyID:      familyID,
		People:        []Person{},
		Relationships: []Relationship{},
	}
}

// HasPeople reports whether the primary collection holds any data.
func (t *FamilyTree) HasPeople() bool {
	return t != nil && len(t.People) > 0
}

// Normalize replaces nil collections with empty ones so the document always
// serializes to the canonical shape.
func (t *FamilyTree) Normalize() {
	if t.People == nil {
		t.People = []Person{}
	}
	if t.Relationships == nil {
		t.Relationships = []Relationship{}
	}
}

// Validate enforces the structural invariants of a tree document: at most
// one root person, unique person ids, and relationships whose endpoints
// exist in the same document.
func (t *FamilyTree) Validate() error {
	if t.FamilyID == "" {
		return appErrors.NewValidation("family tree requires a family id")
	}

	roots := 0
	ids := make(map[string]struct{}, len(t.People))
	for _, p := range t.People {
		if p.ID == "" {
			return appErrors.NewValidation("tree person requires an id")
		}
		if _, dup := ids[p.ID]; dup {
			return appErrors.NewValidation(fmt.Sprintf("duplicate person id %q in tree", p.ID))
		}
		ids[p.ID] = struct{}{}
		if p.IsRoot {
			roots++
		}
	}
	if roots > 1 {
		return appErrors.NewValidation("tree may designate at most one root person")
	}

	for _, r := range t.Relationships {
		if !ValidRelationType(r.Type) {
			return appErrors.NewValidation(fmt.Sprintf("unknown relationship type %q", r.Type))
		}
		if _, ok := ids[r.From]; !ok {
			return appErrors.NewValidation(fmt.Sprintf("relationship references missing person %q", r.From))
		}
		if _, ok := ids[r.To]; !ok {
			return appErrors.NewValidation(fmt.Sprintf("relationship references missing person %q", r.To))
		}
	}
	return nil
}
