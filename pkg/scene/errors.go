package scene

import "errors"

// Scene ingestion errors. Callers classify failures with errors.Is; the
// wrapped message carries the offending index or byte offset.
var (
	ErrMalformedContainer       = errors.New("malformed container")
	ErrInvalidSceneSyntax       = errors.New("invalid scene syntax")
	ErrMissingAttribute         = errors.New("missing attribute")
	ErrUnsupportedComponentType = errors.New("unsupported component type")
	ErrUnresolvableReference    = errors.New("unresolvable reference")
	ErrEmptyGeometry            = errors.New("empty geometry")
)

// ErrCyclicHierarchy reports a node that is its own ancestor.
// It also matches ErrUnresolvableReference.
var ErrCyclicHierarchy = &cyclicError{}

type cyclicError struct{}

func (*cyclicError) Error() string { return "cyclic node hierarchy" }

func (*cyclicError) Is(target error) bool {
	return target == ErrUnresolvableReference
}
