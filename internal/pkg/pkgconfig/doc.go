// Package pkgconfig provides a small abstraction for reading configuration values.
//
// Application code depends on the Config interface; the Viper implementation
// reads a YAML file and lets PENXLE_* environment variables override it.
// Getters cover common types plus simple decoding rules (base64 for binary
// values, comma lists, "k:v" maps).
package pkgconfig
