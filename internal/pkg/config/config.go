// Package config exposes typed access to the service configuration file.
package config

import (
	"io"
	"time"
)

// Config defines the configuration lookups used by the application.
//
// Missing keys yield the zero value of the requested type; callers apply
// their own defaults.
type Config interface {
	io.Closer

	// IsSet reports whether key has a value in the file or environment.
	IsSet(key string) bool

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond reads an integer value and interprets it as seconds.
	GetSecond(key string) time.Duration

	// GetArray reads a comma separated value, "a,b,c".
	GetArray(key string) []string

	// GetMap reads a comma separated pair list, "k1:v1,k2:v2".
	GetMap(key string) map[string]string
}
