package pkgerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates that a store holds no record for the requested key.
	ErrNotFound = errors.New("resource not found")
)

const (
	msgPermissionDenied = "권한이 없어요"
	msgNotFound         = "페이지를 찾을 수 없어요"
)

// Error is a taxonomized application error.
//
// The kind doubles as the error name. Extra holds the kind-specific payload
// as a plain JSON-compatible tree so it survives Serialize and Deserialize
// without losing information.
type Error struct {
	kind  Kind
	msg   string
	extra map[string]any
	err   error // original Go error behind an UnknownError, never serialized
}

func newError(kind Kind, msg string, extra map[string]any) *Error {
	if extra == nil {
		extra = map[string]any{}
	}
	return &Error{kind: kind, msg: msg, extra: extra}
}

// NewIntentional creates a deliberately raised, user-facing error.
func NewIntentional(msg string) *Error {
	return newError(KindIntentional, msg, nil)
}

// NewPermissionDenied creates the fixed 403 error.
func NewPermissionDenied() *Error {
	return newError(KindPermissionDenied, msgPermissionDenied, map[string]any{"code": http.StatusForbidden})
}

// NewNotFound creates the fixed 404 error.
func NewNotFound() *Error {
	return newError(KindNotFound, msgNotFound, map[string]any{"code": http.StatusNotFound})
}

// NewFormValidation creates an error scoped to one input field.
// The payload is flagged internal so presentation layers may hide it.
func NewFormValidation(field, msg string) *Error {
	return newError(KindFormValidation, msg, map[string]any{"field": field, "internal": true})
}

// NewUnknown wraps an arbitrary value into an UnknownError.
//
// The cause is coerced into a name/message/stack triple. When id is empty the
// cause is reported through r and the returned id becomes the correlation id;
// reporting never fails, a UUID is generated when r yields nothing.
func NewUnknown(r Reporter, cause any, id string) *Error {
	c, err := coerceCause(cause)
	if id == "" {
		id = report(r, c, err)
	}

	e := newError(KindUnknown, c.Name+": "+c.Message, map[string]any{
		"id":    id,
		"cause": c.tree(),
	})
	e.err = err
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.msg
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf("Error Kind: %s, Message: %s, Extra: %v, Underlying Error: %v", e.kind, e.msg, e.extra, e.err)
}

// Kind returns the discriminant.
func (e *Error) Kind() Kind {
	return e.kind
}

// Name returns the kind as the error name.
func (e *Error) Name() string {
	return string(e.kind)
}

// Msg returns the human-readable message.
func (e *Error) Msg() string {
	return e.msg
}

// Extra returns a copy of the kind-specific payload.
func (e *Error) Extra() map[string]any {
	return cloneMap(e.extra)
}

// Unwrap returns the Go error an UnknownError was built from, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// Code returns extra.code, or 0 when the kind carries none.
func (e *Error) Code() int {
	switch v := e.extra["code"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Field returns the failing input of a FormValidationError.
func (e *Error) Field() string {
	v, _ := e.extra["field"].(string)
	return v
}

// Internal reports whether the payload is flagged as non-public diagnostics.
func (e *Error) Internal() bool {
	v, _ := e.extra["internal"].(bool)
	return v
}

// ID returns the correlation id of an UnknownError.
func (e *Error) ID() string {
	v, _ := e.extra["id"].(string)
	return v
}

// Cause returns the coerced cause of an UnknownError.
func (e *Error) Cause() Cause {
	c, _ := causeFromTree(e.extra["cause"])
	return c
}

// StatusCode maps the kind to an HTTP status code.
func (e *Error) StatusCode() int {
	switch e.kind {
	case KindIntentional:
		return http.StatusBadRequest
	case KindPermissionDenied, KindNotFound:
		if code := e.Code(); code != 0 {
			return code
		}
		return http.StatusBadRequest
	case KindFormValidation:
		return http.StatusUnprocessableEntity
	case KindUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err carries an application error of kind k.
func IsKind(err error, k Kind) bool {
	var aerr *Error
	if !errors.As(err, &aerr) {
		return false
	}
	return aerr.kind == k
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
