package localstore

// BackupSuffix marks the snapshot key written before every overwrite.
const BackupSuffix = "_backup"

// JournalKey holds every journal entry in one collection. The key is global
// rather than per-user; shipped clients already store under it, so it stays.
const JournalKey = "memorybox_journal_all"

// Cache key scheme. The mixed colon/underscore styles are load-bearing:
// existing cached data uses exactly these spellings.

// ProfileKey locates a user's profile.
func ProfileKey(userID string) string {
	return "user:" + userID + ":profile"
}

// FamilyKey locates a family record.
func FamilyKey(familyID string) string {
	return "family:" + familyID + ":data"
}

// TreeKey locates a family's tree document.
func TreeKey(familyID string) string {
	return "familyTree_" + familyID
}

// MemoriesKey locates a family's memory collection.
func MemoriesKey(familyID string) string {
	return "family:" + familyID + ":memories"
}

// JourneyProgressKey locates one user's progress through a journey.
func JourneyProgressKey(journeyType, userID string) string {
	return journeyType + "JourneyProgress_" + userID
}

// CapsulesKey locates a family's time capsule collection.
func CapsulesKey(familyID string) string {
	return "timeCapsules_" + familyID
}

// BookPreferenceKey locates a user's book preferences for a journey,
// optionally narrowed to one child.
func BookPreferenceKey(userID, journeyType, childID string) string {
	key := "bookPreference_" + userID + "_" + journeyType
	if childID != "" {
		key += "_" + childID
	}
	return key
}
