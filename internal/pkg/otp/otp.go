package otp

import (
	"crypto/rand"
	"math/big"
)

const (
	// MinCode is the smallest code Generate can return.
	MinCode = 100000
	// MaxCode is the largest code Generate can return.
	MaxCode = 999999
)

// Generator defines the contract for passcode generation.
type Generator interface {
	// Generate returns a code in [MinCode, MaxCode].
	Generate() int
}

// Numeric implements Generator using crypto/rand.
type Numeric struct{}

// NewNumeric returns a crypto/rand backed Generator.
func NewNumeric() *Numeric {
	return &Numeric{}
}

var span = big.NewInt(MaxCode - MinCode + 1)

// Generate returns a uniformly distributed six digit code.
func (*Numeric) Generate() int {
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		// crypto/rand does not fail on supported platforms.
		panic("otp: crypto/rand failed: " + err.Error())
	}

	return MinCode + int(n.Int64())
}
