// Package docustore is the root package of a schema-flexible document
// database with integrated full-text search: named collections of
// heterogeneous documents, a lazily-inferred per-collection schema, and a
// near-real-time search index kept in step with the schema as documents
// are written.
//
// See database.Database for the top-level entry point.
package docustore

import (
	"errors"
	"fmt"
)

// Kind classifies the errors the core surfaces, per spec.md §7.
type Kind int

const (
	// KindTransient marks a KV or index I/O failure.
	KindTransient Kind = iota
	// KindMissingID marks an attempt to index or update a document
	// without _id.
	KindMissingID
	// KindNotFound marks an update, delete, or access of an unknown
	// document or a dropped collection.
	KindNotFound
	// KindInvalidArgument marks a blank name, non-positive paging
	// parameter, or malformed query.
	KindInvalidArgument
	// KindSchemaConflict marks a value whose type disagrees with an
	// already-established field type. Recovered locally: the projector
	// skips indexing the field and logs a warning.
	KindSchemaConflict
	// KindIllegalFieldName marks a field name containing characters
	// forbidden by spec.md §4.2. Recovered locally.
	KindIllegalFieldName
	// KindFacetBuildFailure marks a facet-builder failure. Recovered
	// locally: the document is indexed without facets.
	KindFacetBuildFailure
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "Transient"
	case KindMissingID:
		return "MissingId"
	case KindNotFound:
		return "NotFound"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindSchemaConflict:
		return "SchemaConflict"
	case KindIllegalFieldName:
		return "IllegalFieldName"
	case KindFacetBuildFailure:
		return "FacetBuildFailure"
	default:
		return "Unknown"
	}
}

// Error is the error type returned across package boundaries in
// docustore, following the teacher's fmt.Errorf("...: %w", err) wrapping
// discipline (see dynamodb/ddbstore/*.go) but attaching a structured Kind
// so callers can branch with errors.Is/errors.As instead of parsing
// messages.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, &Error{Kind: KindNotFound}) works without callers
// needing to match Message or Cause.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// NewError constructs an *Error of the given kind.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// IsKind reports whether err is (or wraps) a docustore *Error of kind.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}
