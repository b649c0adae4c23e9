// Package pkgroutine contains helpers for running goroutines safely.
//
// The Manager type limits concurrency, names each task for its logs, collects
// returned errors and turns panics into errors so that background work does
// not crash the process silently.
package pkgroutine
