// Package pkgerror defines the application error taxonomy and its wire codec.
//
// Every failure that may leave a request handler is expressed as an *Error
// carrying one of a closed set of kinds:
//   - UnknownError: anything unanticipated, always carrying a correlation id.
//   - IntentionalError: a deliberately raised, user-facing condition.
//   - PermissionDeniedError and NotFoundError: fixed messages with an HTTP-style code.
//   - FormValidationError: scoped to one input field and flagged as internal.
//
// Errors cross process boundaries as a Portable envelope produced by Serialize
// and turned back into a typed *Error by Codec.Deserialize.
package pkgerror
