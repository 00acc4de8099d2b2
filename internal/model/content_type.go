package model

import "time"

// ContentType is a row in the `content_types` catalog.  Each entry
// names a work (the Quran, a hadith collection, ...) and maps the
// portion-type labels it supports to their fixed portion counts.
// The mapping is stored as a JSON object in a TEXT column, e.g.
// {"juz":30,"hezb":60}.  Deactivating an entry hides it from
// portion-count resolution without touching recitations that were
// already sized from it.
type ContentType struct {
	ID           uint64    // content_types.id
	Name         string    // content_types.name (unique)
	DisplayName  string    // content_types.display_name
	Description  *string   // content_types.description (nullable)
	PortionTypes string    // content_types.portion_types (JSON object text)
	IsActive     bool      // content_types.is_active
	CreatedBy    *uint64   // content_types.created_by (nil for seeded rows)
	CreatedAt    time.Time // content_types.created_at
}
