// Package hash provides keyed digests for short-lived secrets.
//
// Passcodes are kept in memory only as an HMAC digest keyed by a server
// secret, and verified with a constant-time comparison.
package hash
