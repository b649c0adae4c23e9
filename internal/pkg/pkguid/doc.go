// Package pkguid provides helpers for generating unique identifiers.
//
// Callers depend on the StringID and NumberID interfaces rather than a
// concrete strategy:
//   - String IDs (UUIDv7) correlate requests and reported errors.
//   - Numeric IDs (Snowflake) stamp analytics events so delivery can be de-duplicated.
package pkguid
