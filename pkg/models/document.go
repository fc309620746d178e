// Package models holds the persistence-layer types shared by the catalog,
// artifact store, work queue, robot runtime, and search projection.
package models

import "time"

// Document is an immutable registration of a source PDF file in the catalog.
// Identity is the file path; the id is assigned on first registration and
// never reused.
type Document struct {
	ID        int64     `db:"id"`
	FilePath  string    `db:"file_path"`
	CreatedAt time.Time `db:"created_at"`
}
