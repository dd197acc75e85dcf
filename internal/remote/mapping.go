package remote

import (
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
)

// memoryKindColumns is the precedence order for the memory kind across
// schema generations: the first column with a non-empty value wins.
var memoryKindColumns = []struct {
	name string
	get  func(*memoryRow) *string
}{
	{"memory_type", func(r *memoryRow) *string { return r.MemoryType }},
	{"category", func(r *memoryRow) *string { return r.Category }},
	{"memory_category", func(r *memoryRow) *string { return r.MemoryCategory }},
}

// journalDateColumns is the precedence order for the journal entry date.
var journalDateColumns = []struct {
	name string
	get  func(*journalRow) *string
}{
	{"entry_date", func(r *journalRow) *string { return r.EntryDate }},
	{"date", func(r *journalRow) *string { return r.LegacyDate }},
}

func resolveMemoryKind(r *memoryRow) (value, column string) {
	for _, c := range memoryKindColumns {
		if v := c.get(r); v != nil && *v != "" {
			return *v, c.name
		}
	}
	return "", ""
}

func resolveJournalDate(r *journalRow) (value, column string) {
	for _, c := range journalDateColumns {
		if v := c.get(r); v != nil && *v != "" {
			return *v, c.name
		}
	}
	return "", ""
}

func profileFromRow(row userRow) domain.Profile {
	return domain.Profile{
		ID:                  row.ID,
		Email:               stringValue(row.Email),
		FirstName:           stringValue(row.FirstName),
		LastName:            stringValue(row.LastName),
		FamilyID:            stringValue(row.FamilyID),
		OnboardingCompleted: boolValue(row.OnboardingCompleted),
		CreatedAt:           parseWireTime(row.CreatedAt),
		UpdatedAt:           parseWireTime(row.UpdatedAt),
	}
}

func profileToRow(p domain.Profile) userRow {
	return userRow{
		ID:                  p.ID,
		Email:               stringPtr(p.Email),
		FirstName:           stringPtr(p.FirstName),
		LastName:            stringPtr(p.LastName),
		FamilyID:            stringPtr(p.FamilyID),
		OnboardingCompleted: boolPtr(p.OnboardingCompleted),
		CreatedAt:           formatWireTime(p.CreatedAt),
		UpdatedAt:           formatWireTime(p.UpdatedAt),
	}
}

func familyFromRow(row familyRow) domain.Family {
	return domain.Family{
		ID:        row.ID,
		Name:      row.Name,
		CreatedBy: stringValue(row.CreatedBy),
		CreatedAt: parseWireTime(row.CreatedAt),
		UpdatedAt: parseWireTime(row.UpdatedAt),
	}
}

func familyToRow(f domain.Family) familyRow {
	return familyRow{
		ID:        f.ID,
		Name:      f.Name,
		CreatedBy: stringPtr(f.CreatedBy),
		CreatedAt: formatWireTime(f.CreatedAt),
		UpdatedAt: formatWireTime(f.UpdatedAt),
	}
}

// treeFromRow unpacks the tree_data document. A malformed document is
// replaced by the canonical empty tree rather than failing the read; the
// row's family_id always wins over whatever the document claims.
func treeFromRow(row treeRow, logger *zap.Logger) domain.FamilyTree {
	tree := domain.NewEmptyTree(row.FamilyID)
	if len(row.TreeData) > 0 {
		if err := json.Unmarshal(row.TreeData, tree); err != nil {
			logger.Warn("discarding malformed tree document",
				zap.String("family_id", row.FamilyID),
				zap.Error(err),
			)
			tree = domain.NewEmptyTree(row.FamilyID)
		}
	}
	tree.FamilyID = row.FamilyID
	tree.Normalize()
	return *tree
}

func treeToRow(t domain.FamilyTree, updatedAt string) treeRow {
	doc, _ := json.Marshal(t)
	return treeRow{
		FamilyID:  t.FamilyID,
		TreeData:  doc,
		UpdatedAt: updatedAt,
	}
}

func memoryFromRow(row memoryRow, logger *zap.Logger) domain.Memory {
	rawKind, kindColumn := resolveMemoryKind(&row)
	kind, known := domain.NormalizeMemoryType(rawKind)
	if !known && rawKind != "" {
		logger.Warn("unrecognized memory kind, defaulting to photo",
			zap.String("memory_id", row.ID),
			zap.String("raw_kind", rawKind),
		)
	}
	if kindColumn != "" && kindColumn != "memory_type" {
		logger.Debug("memory kind served by legacy column",
			zap.String("memory_id", row.ID),
			zap.String("column", kindColumn),
		)
	}

	var files []domain.AttachedFile
	if len(row.Files) > 0 {
		if err := json.Unmarshal(row.Files, &files); err != nil {
			logger.Warn("discarding malformed files payload",
				zap.String("memory_id", row.ID),
				zap.Error(err),
			)
			files = nil
		}
	}

	return domain.Memory{
		ID:             row.ID,
		FamilyID:       row.FamilyID,
		Title:          row.Title,
		Description:    stringValue(row.Description),
		Category:       stringValue(row.Category),
		Type:           kind,
		Files:          files,
		PeopleInvolved: row.PeopleInvolved,
		Tags:           row.Tags,
		EmotionTags:    row.EmotionTags,
		IsPrivate:      boolValue(row.IsPrivate),
		JourneyType:    stringValue(row.JourneyType),
		ChildID:        stringValue(row.ChildID),
		CreatedAt:      parseWireTime(row.CreatedAt),
		UpdatedAt:      parseWireTime(row.UpdatedAt),
	}
}

func memoryToRow(m domain.Memory) memoryRow {
	row := memoryRow{
		ID:             m.ID,
		FamilyID:       m.FamilyID,
		Title:          m.Title,
		Description:    stringPtr(m.Description),
		Category:       stringPtr(m.Category),
		MemoryType:     stringPtr(m.Type),
		PeopleInvolved: m.PeopleInvolved,
		Tags:           m.Tags,
		EmotionTags:    m.EmotionTags,
		IsPrivate:      boolPtr(m.IsPrivate),
		JourneyType:    stringPtr(m.JourneyType),
		ChildID:        stringPtr(m.ChildID),
		CreatedAt:      formatWireTime(m.CreatedAt),
		UpdatedAt:      formatWireTime(m.UpdatedAt),
	}
	if len(m.Files) > 0 {
		if data, err := json.Marshal(m.Files); err == nil {
			row.Files = data
		}
	}
	return row
}

// memoriesFromRows maps and orders a result set newest first, which is
// the order every consumer renders.
func memoriesFromRows(rows []memoryRow, logger *zap.Logger) []domain.Memory {
	memories := make([]domain.Memory, 0, len(rows))
	for _, row := range rows {
		memories = append(memories, memoryFromRow(row, logger))
	}
	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].CreatedAt.After(memories[j].CreatedAt)
	})
	return memories
}

func journalFromRow(row journalRow) domain.JournalEntry {
	date, _ := resolveJournalDate(&row)
	return domain.JournalEntry{
		ID:         row.ID,
		UserID:     row.UserID,
		FamilyID:   stringValue(row.FamilyID),
		Title:      stringValue(row.Title),
		Content:    row.Content,
		Frequency:  stringValue(row.Frequency),
		Date:       date,
		Moods:      row.Moods,
		Tags:       row.Tags,
		IsPrivate:  boolValue(row.IsPrivate),
		SharedWith: row.SharedWith,
		CreatedAt:  parseWireTime(row.CreatedAt),
		UpdatedAt:  parseWireTime(row.UpdatedAt),
	}
}

func journalToRow(j domain.JournalEntry) journalRow {
	return journalRow{
		ID:         j.ID,
		UserID:     j.UserID,
		FamilyID:   stringPtr(j.FamilyID),
		Title:      stringPtr(j.Title),
		Content:    j.Content,
		Frequency:  stringPtr(j.Frequency),
		EntryDate:  stringPtr(j.Date),
		Moods:      j.Moods,
		Tags:       j.Tags,
		IsPrivate:  boolPtr(j.IsPrivate),
		SharedWith: j.SharedWith,
		CreatedAt:  formatWireTime(j.CreatedAt),
		UpdatedAt:  formatWireTime(j.UpdatedAt),
	}
}

func journalsFromRows(rows []journalRow) []domain.JournalEntry {
	entries := make([]domain.JournalEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, journalFromRow(row))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

func journeyFromRow(row journeyRow) domain.JourneyProgress {
	progress := domain.JourneyProgress{
		UserID:         row.UserID,
		JourneyType:    row.JourneyType,
		CompletedSteps: row.CompletedSteps,
		CurrentStep:    stringValue(row.CurrentStep),
		LastActivityAt: parseWireTime(row.LastActivityAt),
		CreatedAt:      parseWireTime(row.CreatedAt),
		UpdatedAt:      parseWireTime(row.UpdatedAt),
	}
	progress.Normalize()
	return progress
}

func journeyToRow(p domain.JourneyProgress) journeyRow {
	return journeyRow{
		UserID:         p.UserID,
		JourneyType:    p.JourneyType,
		CompletedSteps: p.CompletedSteps,
		CurrentStep:    stringPtr(p.CurrentStep),
		LastActivityAt: formatWireTime(p.LastActivityAt),
		CreatedAt:      formatWireTime(p.CreatedAt),
		UpdatedAt:      formatWireTime(p.UpdatedAt),
	}
}

func capsuleFromRow(row capsuleRow) domain.TimeCapsule {
	return domain.TimeCapsule{
		ID:        row.ID,
		FamilyID:  row.FamilyID,
		Title:     row.Title,
		Message:   stringValue(row.Message),
		OpenDate:  stringValue(row.OpenDate),
		CreatedBy: stringValue(row.CreatedBy),
		CreatedAt: parseWireTime(row.CreatedAt),
		UpdatedAt: parseWireTime(row.UpdatedAt),
	}
}

func capsuleToRow(c domain.TimeCapsule) capsuleRow {
	return capsuleRow{
		ID:        c.ID,
		FamilyID:  c.FamilyID,
		Title:     c.Title,
		Message:   stringPtr(c.Message),
		OpenDate:  stringPtr(c.OpenDate),
		CreatedBy: stringPtr(c.CreatedBy),
		CreatedAt: formatWireTime(c.CreatedAt),
		UpdatedAt: formatWireTime(c.UpdatedAt),
	}
}

func capsulesFromRows(rows []capsuleRow) []domain.TimeCapsule {
	capsules := make([]domain.TimeCapsule, 0, len(rows))
	for _, row := range rows {
		capsules = append(capsules, capsuleFromRow(row))
	}
	sort.SliceStable(capsules, func(i, j int) bool {
		return capsules[i].CreatedAt.After(capsules[j].CreatedAt)
	})
	return capsules
}

func bookPreferenceFromRow(row bookPreferenceRow) domain.BookPreference {
	return domain.BookPreference{
		UserID:       row.UserID,
		JourneyType:  row.JourneyType,
		ChildID:      stringValue(row.ChildID),
		CustomTitle:  stringValue(row.CustomTitle),
		LastOpenedAt: parseWireTime(row.LastOpenedAt),
		CreatedAt:    parseWireTime(row.CreatedAt),
		UpdatedAt:    parseWireTime(row.UpdatedAt),
	}
}

func bookPreferenceToRow(b domain.BookPreference) bookPreferenceRow {
	return bookPreferenceRow{
		UserID:       b.UserID,
		JourneyType:  b.JourneyType,
		ChildID:      stringPtr(b.ChildID),
		CustomTitle:  stringPtr(b.CustomTitle),
		LastOpenedAt: formatWireTime(b.LastOpenedAt),
		CreatedAt:    formatWireTime(b.CreatedAt),
		UpdatedAt:    formatWireTime(b.UpdatedAt),
	}
}
