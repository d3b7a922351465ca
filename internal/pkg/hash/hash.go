package hash

// Hash produces and verifies digests of plaintext secrets.
type Hash interface {
	// Hash returns the digest of plaintext.
	Hash(plaintext string) ([]byte, error)
	// Verify reports whether plaintext matches the hashed digest.
	Verify(hashed, plaintext string) bool
}
