package domain

import (
	"strings"
)

// Canonical memory kinds. The remote column and every in-memory value use
// exactly these spellings.
const (
	MemoryTypePhoto     = "photo"
	MemoryTypeVideo     = "video"
	MemoryTypeAudio     = "audio"
	MemoryTypeVoiceNote = "voice_note"
	MemoryTypeText      = "text"
)

// Journey kinds a memory or progress record may be scoped to.
const (
	JourneyTypeCouple    = "couple"
	JourneyTypePregnancy = "pregnancy"
)

// Journal cadence values.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Relationship kinds a family tree may contain.
const (
	RelationParentChild = "parent-child"
	RelationSpouse      = "spouse"
	RelationSibling     = "sibling"
)

var memoryTypes = map[string]struct{}{
	MemoryTypePhoto:     {},
	MemoryTypeVideo:     {},
	MemoryTypeAudio:     {},
	MemoryTypeVoiceNote: {},
	MemoryTypeText:      {},
}

// memoryTypeAliases maps historical spellings, still present in old rows and
// old clients, onto the canonical kind set.
var memoryTypeAliases = map[string]string{
	"voice-note": MemoryTypeVoiceNote,
	"voice":      MemoryTypeVoiceNote,
}

var journeyTypes = map[string]struct{}{
	JourneyTypeCouple:    {},
	JourneyTypePregnancy: {},
}

var frequencies = map[string]struct{}{
	FrequencyDaily:   {},
	FrequencyWeekly:  {},
	FrequencyMonthly: {},
}

var relationTypes = map[string]struct{}{
	RelationParentChild: {},
	RelationSpouse:      {},
	RelationSibling:     {},
}

// NormalizeMemoryType maps raw input onto the canonical kind set: lower-case,
// alias resolution, then membership. Unknown values (the empty string
// included) fall back to photo; the second result reports whether the input
// was recognized so callers can log the substitution. Normalizing an already
// canonical value is a no-op.
func NormalizeMemoryType(raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := memoryTypeAliases[v]; ok {
		v = alias
	}
	if _, ok := memoryTypes[v]; ok {
		return v, true
	}
	return MemoryTypePhoto, false
}

// ValidMemoryType reports membership in the canonical kind set.
func ValidMemoryType(v string) bool {
	_, ok := memoryTypes[v]
	return ok
}

// ValidJourneyType accepts the known journey kinds and the empty string
// (memories outside any journey carry no journey type).
func ValidJourneyType(v string) bool {
	if v == "" {
		return true
	}
	_, ok := journeyTypes[v]
	return ok
}

// ValidFrequency reports membership in the journal cadence set.
func ValidFrequency(v string) bool {
	_, ok := frequencies[v]
	return ok
}

// ValidRelationType reports membership in the relationship kind set.
func ValidRelationType(v string) bool {
	_, ok := relationTypes[v]
	return ok
}
