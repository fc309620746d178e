package robot

import (
	"context"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
)

// outcomeKind tags which of the three terminal shapes a Handle call
// returned. Unexported so Outcome can only be constructed through the
// Produced/Discard/Fail functions below — a tagged-variant return that
// avoids exception-for-control-flow.
type outcomeKind int

const (
	kindProduced outcomeKind = iota
	kindDiscard
	kindFail
)

// Outcome is the closed result of a Handler invocation.
type Outcome struct {
	kind    outcomeKind
	content models.Content
	reason  string
}

// Produced reports that the handler produced an artifact. The runtime
// transitions PROCESSING -> IMPORTING, writes content via the artifact
// store, then transitions IMPORTING -> COMPLETED.
func Produced(content models.Content) Outcome {
	return Outcome{kind: kindProduced, content: content}
}

// Discard reports "no match / nothing to do for this input" — a semantic
// no-match, not an error. The runtime transitions directly to DISCARDED
// with last_error = reason.
func Discard(reason string) Outcome {
	return Outcome{kind: kindDiscard, reason: reason}
}

// Fail reports a transient handler error. The runtime transitions to
// FAILED with last_error = reason.
func Fail(reason string) Outcome {
	return Outcome{kind: kindFail, reason: reason}
}

// Handler is implemented by every robot-specific enhancement producer.
type Handler interface {
	Handle(ctx context.Context, doc *models.Document) Outcome
}
