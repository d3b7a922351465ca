// Package uid generates identifiers: UUIDv7 strings for request correlation
// and snowflake numbers for published events.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}
