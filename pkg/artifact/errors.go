package artifact

import "errors"

// ErrNotFound is returned when no artifact of the requested type exists
// for a document.
var ErrNotFound = errors.New("artifact: not found")
