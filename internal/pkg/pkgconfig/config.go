package pkgconfig

// Config is the read-only view of application configuration.
type Config interface {
	GetInt(key string) int64
	GetBool(key string) bool
	GetString(key string) string
	GetBinary(key string) []byte
	GetArray(key string) []string
	Close() error
}

var _ Config = (*Viper)(nil)
