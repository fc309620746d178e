package catalog

import "errors"

// ErrNotFound is returned when a document lookup by id or path finds no row.
var ErrNotFound = errors.New("catalog: document not found")
