package pkgerror

// Kind discriminates application errors. The set is closed: adding a kind
// requires a reconstruction rule in the codec, which is asserted at init.
type Kind string

const (
	KindUnknown          Kind = "UnknownError"
	KindIntentional      Kind = "IntentionalError"
	KindPermissionDenied Kind = "PermissionDeniedError"
	KindNotFound         Kind = "NotFoundError"
	KindFormValidation   Kind = "FormValidationError"
)

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindUnknown,
		KindIntentional,
		KindPermissionDenied,
		KindNotFound,
		KindFormValidation,
	}
}

// Valid reports whether k belongs to the closed set.
func (k Kind) Valid() bool {
	switch k {
	case KindUnknown, KindIntentional, KindPermissionDenied, KindNotFound, KindFormValidation:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}
