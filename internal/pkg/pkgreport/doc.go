// Package pkgreport provides error-reporting sinks for UnknownErrors.
//
// A reporter records an exception and returns the id it was stored under;
// that id becomes the error's correlation id. Sentry is used when a DSN is
// configured, otherwise Log writes the error to slog under a generated UUID.
package pkgreport
