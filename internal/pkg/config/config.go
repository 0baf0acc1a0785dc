package config

import (
	"io"
	"time"
)

// TimeConfig reads duration values stored as plain integers in the
// configuration source, interpreted at a fixed unit per getter.
type TimeConfig interface {
	// GetSecond reads the value at key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetMinute reads the value at key as a number of minutes.
	GetMinute(key string) time.Duration

	// GetDay reads the value at key as a number of days (24h each).
	GetDay(key string) time.Duration
}

// Config is the read surface the application uses for runtime configuration.
// Implementations return the type's zero value when a key is missing or
// cannot be converted; callers supply their own fallbacks where needed.
type Config interface {
	io.Closer
	TimeConfig

	// GetBool reads the value at key as a bool.
	GetBool(key string) bool

	// GetInt reads the value at key as an int.
	GetInt(key string) int

	// GetInt32 reads the value at key as an int32.
	GetInt32(key string) int32

	// GetUint16 reads the value at key as a uint16.
	GetUint16(key string) uint16

	// GetFloat64 reads the value at key as a float64.
	GetFloat64(key string) float64

	// GetString reads the value at key as a string.
	GetString(key string) string

	// GetBinary reads the base64-encoded value at key as a byte slice.
	GetBinary(key string) []byte

	// GetArray reads the value at key as a slice of strings.
	GetArray(key string) []string
}
