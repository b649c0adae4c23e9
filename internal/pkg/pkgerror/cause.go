package pkgerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
)

const causeName = "Error"

// Cause is the error-like shape an UnknownError keeps of whatever it wrapped.
type Cause struct {
	Name    string
	Message string
	Stack   string
}

func (c Cause) tree() map[string]any {
	t := map[string]any{
		"name":    c.Name,
		"message": c.Message,
	}
	if c.Stack != "" {
		t["stack"] = c.Stack
	}
	return t
}

// causeFromTree accepts {name: string, message: string, stack?: string}.
func causeFromTree(v any) (Cause, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Cause{}, false
	}

	name, ok := m["name"].(string)
	if !ok {
		return Cause{}, false
	}
	msg, ok := m["message"].(string)
	if !ok {
		return Cause{}, false
	}

	c := Cause{Name: name, Message: msg}
	if raw, found := m["stack"]; found {
		stack, ok := raw.(string)
		if !ok {
			return Cause{}, false
		}
		c.Stack = stack
	}

	return c, true
}

// coerceCause turns an arbitrary thrown value into a Cause. The second return
// is the Go error to keep for Unwrap, if v was one.
func coerceCause(v any) (Cause, error) {
	switch val := v.(type) {
	case Cause:
		return val, nil
	case *Cause:
		if val != nil {
			return *val, nil
		}
	case *Error:
		if val != nil {
			return Cause{Name: val.Name(), Message: val.msg}, val
		}
	case error:
		return Cause{Name: causeName, Message: val.Error(), Stack: string(debug.Stack())}, val
	case map[string]any:
		if c, ok := causeFromTree(val); ok {
			return c, nil
		}
	}

	return Cause{Name: causeName, Message: stringify(v)}, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return val
	case []byte:
		return string(val)
	case json.RawMessage:
		return string(val)
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any, Portable, *Portable:
		b, err := json.Marshal(val)
		if err != nil {
			// cyclic or unencodable; fmt would recurse forever on a cycle
			return fmt.Sprintf("%T", val)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

type causeError struct {
	cause Cause
}

func (e *causeError) Error() string {
	return e.cause.Name + ": " + e.cause.Message
}

// Reporter sends an exception to an error-reporting backend and returns the
// id it was recorded under.
type Reporter interface {
	Report(err error) string
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(err error) string

// Report implements Reporter.
func (f ReporterFunc) Report(err error) string {
	return f(err)
}

func report(r Reporter, c Cause, err error) (id string) {
	defer func() {
		if rvr := recover(); rvr != nil {
			id = ""
		}
		if id == "" {
			id = generateID()
		}
	}()

	if r == nil {
		return ""
	}
	if err == nil {
		err = &causeError{cause: c}
	}
	var aerr *Error
	if errors.As(err, &aerr) && aerr.err != nil {
		err = aerr.err
	}

	return r.Report(err)
}
