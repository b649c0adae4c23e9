package pkgerror

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/penxle/penxle-go/internal/pkg/pkguid"
)

//nolint:gochecknoglobals // swapped in tests
var generateID = pkguid.NewUUID().Generate

// Portable is the wire envelope of an application error. It is the only shape
// that crosses a process or transport boundary.
type Portable struct {
	Message    string     `json:"message"`
	Extensions Extensions `json:"extensions"`
}

// Extensions carries the application payload next to the message, matching
// the GraphQL error extensions slot.
type Extensions struct {
	AppError Payload `json:"appError"`
}

// Payload is the discriminated part of the envelope.
type Payload struct {
	Kind  Kind           `json:"kind"`
	Extra map[string]any `json:"extra"`
}

// WithoutStack returns a copy of p with any cause stack trace removed.
func (p Portable) WithoutStack() Portable {
	extra := cloneMap(p.Extensions.AppError.Extra)
	if cause, ok := extra["cause"].(map[string]any); ok {
		delete(cause, "stack")
	}
	p.Extensions.AppError.Extra = extra
	return p
}

// Serialize converts e into its wire envelope. It is pure: the envelope owns a
// copy of the payload.
func Serialize(e *Error) Portable {
	extra := cloneMap(e.extra)
	if extra == nil {
		extra = map[string]any{}
	}

	return Portable{
		Message: e.msg,
		Extensions: Extensions{
			AppError: Payload{
				Kind:  e.kind,
				Extra: extra,
			},
		},
	}
}

type reconstructor func(r Reporter, p Portable) *Error

// reconstructors must hold exactly one rule per Kind; init enforces it.
//
//nolint:gochecknoglobals // static dispatch table
var reconstructors = map[Kind]reconstructor{
	KindUnknown: func(r Reporter, p Portable) *Error {
		id, _ := p.Extensions.AppError.Extra["id"].(string)
		return NewUnknown(r, p.Extensions.AppError.Extra["cause"], id)
	},
	KindIntentional: func(_ Reporter, p Portable) *Error {
		return NewIntentional(p.Message)
	},
	KindPermissionDenied: func(Reporter, Portable) *Error {
		return NewPermissionDenied()
	},
	KindNotFound: func(Reporter, Portable) *Error {
		return NewNotFound()
	},
	KindFormValidation: func(_ Reporter, p Portable) *Error {
		field, _ := p.Extensions.AppError.Extra["field"].(string)
		return NewFormValidation(field, p.Message)
	},
}

func init() {
	if err := checkReconstructors(); err != nil {
		panic(err)
	}
}

func checkReconstructors() error {
	for _, k := range Kinds() {
		if _, ok := reconstructors[k]; !ok {
			return fmt.Errorf("pkgerror: no reconstruction rule for kind %q", k)
		}
	}
	if len(reconstructors) != len(Kinds()) {
		return errors.New("pkgerror: reconstruction rule registered for an unknown kind")
	}
	return nil
}

// Codec deserializes envelopes and wraps foreign errors. The zero value and a
// nil *Codec are usable; they fall back to generated correlation ids.
type Codec struct {
	reporter Reporter
}

// NewCodec returns a Codec reporting new UnknownErrors through r.
func NewCodec(r Reporter) *Codec {
	return &Codec{reporter: r}
}

func (c *Codec) rep() Reporter {
	if c == nil {
		return nil
	}
	return c.reporter
}

// Unknown builds an UnknownError from cause, reporting it.
func (c *Codec) Unknown(cause any) *Error {
	return NewUnknown(c.rep(), cause, "")
}

// Wrap returns the application error in err's chain, or wraps err into an
// UnknownError so that no raw error reaches the wire. It returns nil for nil.
func (c *Codec) Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr
	}

	return c.Unknown(err)
}

// Deserialize reconstructs a typed error from input. Input that does not match
// the envelope schema becomes the cause of an UnknownError; Deserialize never
// fails.
//
// Accepted inputs are a decoded JSON tree, raw JSON ([]byte, json.RawMessage,
// string) and Portable values.
func (c *Codec) Deserialize(input any) *Error {
	p, ok := parsePortable(input)
	if !ok {
		return NewUnknown(c.rep(), input, "")
	}

	return reconstructors[p.Extensions.AppError.Kind](c.rep(), p)
}

func parsePortable(input any) (Portable, bool) {
	switch v := input.(type) {
	case Portable:
		return validPortable(v)
	case *Portable:
		if v == nil {
			return Portable{}, false
		}
		return validPortable(*v)
	case map[string]any:
		return portableFromTree(v)
	case []byte:
		return portableFromJSON(v)
	case json.RawMessage:
		return portableFromJSON(v)
	case string:
		return portableFromJSON([]byte(v))
	default:
		return Portable{}, false
	}
}

func validPortable(p Portable) (Portable, bool) {
	if !p.Extensions.AppError.Kind.Valid() || p.Extensions.AppError.Extra == nil {
		return Portable{}, false
	}
	return p, true
}

func portableFromJSON(b []byte) (Portable, bool) {
	var tree any
	if err := json.Unmarshal(b, &tree); err != nil {
		return Portable{}, false
	}
	return portableFromTree(tree)
}

// portableFromTree validates {message: string, extensions: {appError: {kind, extra: object}}}.
// Unrecognized keys are ignored.
func portableFromTree(tree any) (Portable, bool) {
	root, ok := tree.(map[string]any)
	if !ok {
		return Portable{}, false
	}

	msg, ok := root["message"].(string)
	if !ok {
		return Portable{}, false
	}
	ext, ok := root["extensions"].(map[string]any)
	if !ok {
		return Portable{}, false
	}
	app, ok := ext["appError"].(map[string]any)
	if !ok {
		return Portable{}, false
	}
	kind, ok := app["kind"].(string)
	if !ok || !Kind(kind).Valid() {
		return Portable{}, false
	}
	extra, ok := app["extra"].(map[string]any)
	if !ok || extra == nil {
		return Portable{}, false
	}

	return Portable{
		Message: msg,
		Extensions: Extensions{
			AppError: Payload{Kind: Kind(kind), Extra: extra},
		},
	}, true
}
