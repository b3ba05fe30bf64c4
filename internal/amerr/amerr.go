// Package amerr defines the error taxonomy shared across the engine.
package amerr

import "fmt"

// Kind classifies a failure the way callers need to branch on it.
type Kind int

const (
	// Unknown is the catch-all for driver failures surfaced as negative
	// return codes.
	Unknown Kind = iota
	// InvalidParameter marks an out-of-range numeric, a null handle, or
	// an empty path.
	InvalidParameter
	// NotFound marks an unknown asset id/name or a missing file.
	NotFound
	// LoadFailed marks a file that exists but failed to parse or decode,
	// or an unsupported format/channel-count/sample-rate.
	LoadFailed
	// OutOfMemory marks an allocation failure in a growable container.
	OutOfMemory
	// NotImplemented marks an unsupported codec or panning mode.
	NotImplemented
)

func (k Kind) String() string {
	switch k {
	case InvalidParameter:
		return "invalid_parameter"
	case NotFound:
		return "not_found"
	case LoadFailed:
		return "load_failed"
	case OutOfMemory:
		return "out_of_memory"
	case NotImplemented:
		return "not_implemented"
	default:
		return "unknown"
	}
}

// Error is the engine's single error sum type. It carries a Kind for
// programmatic branching plus a human message and an optional cause.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, amerr.NotFound)-style checks against a Kind
// wrapped as a sentinel *Error with no message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an *Error of the given kind around a cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// Sentinels usable with errors.Is(err, amerr.NotFound) via the Is method.
var (
	ErrInvalidParameter = &Error{Kind: InvalidParameter}
	ErrNotFound         = &Error{Kind: NotFound}
	ErrLoadFailed       = &Error{Kind: LoadFailed}
	ErrOutOfMemory      = &Error{Kind: OutOfMemory}
	ErrNotImplemented   = &Error{Kind: NotImplemented}
)
