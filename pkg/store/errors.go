package store

import "fmt"

// Kind classifies a store error so API handlers can map it to an HTTP
// status without string matching.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindAlreadyExists     Kind = "already_exists"
	KindAlreadyBound      Kind = "already_bound"
	KindIllegalTransition Kind = "illegal_transition"
	KindEvicted           Kind = "evicted"
	KindInvalidSpec       Kind = "invalid_spec"
)

// Error is a typed store error. Callers should use errors.As to recover
// the Kind rather than comparing messages.
type Error struct {
	Kind Kind
	Key  string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Key)
}

func notFound(key string) error {
	return &Error{Kind: KindNotFound, Key: key, Msg: fmt.Sprintf("not found: %s", key)}
}

func alreadyExists(key string) error {
	return &Error{Kind: KindAlreadyExists, Key: key, Msg: fmt.Sprintf("already exists: %s", key)}
}

func alreadyBound(key string) error {
	return &Error{Kind: KindAlreadyBound, Key: key, Msg: fmt.Sprintf("already bound: %s", key)}
}

func illegalTransition(key, from, to string) error {
	return &Error{Kind: KindIllegalTransition, Key: key, Msg: fmt.Sprintf("illegal transition for %s: %s -> %s", key, from, to)}
}

func evicted(key string) error {
	return &Error{Kind: KindEvicted, Key: key, Msg: fmt.Sprintf("node evicted, re-register: %s", key)}
}

// NewInvalidSpecError builds an InvalidSpec error for callers outside this
// package — API handlers and the manifest parser both reject malformed
// input before it ever reaches the Store.
func NewInvalidSpecError(field, reason string) error {
	return &Error{Kind: KindInvalidSpec, Key: field, Msg: fmt.Sprintf("invalid spec for %s: %s", field, reason)}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, k Kind) bool {
	se, ok := err.(*Error)
	return ok && se.Kind == k
}
