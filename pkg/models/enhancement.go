package models

import "time"

// EnhancementType names the kind of derived artifact a robot produces for a
// document. The set is closed in practice but modeled as a plain string so
// new producers can introduce values without a schema migration.
type EnhancementType string

// Known enhancement types.
const (
	EnhancementFullText          EnhancementType = "FULL_TEXT"
	EnhancementPaperpileMetadata EnhancementType = "PAPERPILE_METADATA"
)

// Content is the opaque structured payload a robot attaches to a document.
// It is a tree of strings, numbers, booleans, arrays and maps — whatever
// unmarshals cleanly from JSON. Null bytes in string leaves are stripped by
// the artifact store before the content ever reaches the database, see
// pkg/sanitize.
type Content map[string]any

// Enhancement is a typed, upsertable artifact produced by one robot for one
// document. (document_id, enhancement_type, robot_id) is a uniqueness key:
// re-producing the same key overwrites Content and refreshes CreatedAt.
type Enhancement struct {
	ID              int64           `db:"id"`
	DocumentID      int64           `db:"document_id"`
	EnhancementType EnhancementType `db:"enhancement_type"`
	Content         Content         `db:"content"`
	RobotID         string          `db:"robot_id"`
	CreatedAt       time.Time       `db:"created_at"`
}

// DocumentWithArtifacts pairs a document with every enhancement accumulated
// for it, as returned by the bulk join used by the search projection.
type DocumentWithArtifacts struct {
	Document  Document
	Artifacts []Enhancement
}

// Latest returns the most recently created artifact of the given type, or
// (Enhancement{}, false) if none exists. Ties are broken by id descending,
// matching artifact.Get's ordering (ListWithArtifacts orders artifacts by
// created_at only).
func (d DocumentWithArtifacts) Latest(t EnhancementType) (Enhancement, bool) {
	var best Enhancement
	found := false
	for _, a := range d.Artifacts {
		if a.EnhancementType != t {
			continue
		}
		if !found ||
			a.CreatedAt.After(best.CreatedAt) ||
			(a.CreatedAt.Equal(best.CreatedAt) && a.ID > best.ID) {
			best = a
			found = true
		}
	}
	return best, found
}
