// Package pkgrouter wraps HTTP routing and common middleware used by the API.
//
// It provides a small router abstraction over httprouter plus shared concerns
// like JSON encoding, logging, recovery and correlation ID propagation.
// Handler errors are presented as application error envelopes
// ({"errors":[{message, extensions:{appError}}]}) with the status code of
// their kind.
package pkgrouter
