package otp

import "testing"

func TestNumeric_GenerateInRange(t *testing.T) {
	g := NewNumeric()

	for i := 0; i < 10000; i++ {
		code := g.Generate()
		if code < MinCode || code > MaxCode {
			t.Fatalf("Generate() = %d, want within [%d, %d]", code, MinCode, MaxCode)
		}
	}
}

func TestNumeric_GenerateVaries(t *testing.T) {
	g := NewNumeric()
	seen := make(map[int]struct{})

	for i := 0; i < 100; i++ {
		seen[g.Generate()] = struct{}{}
	}

	// 100 draws from 900000 values; a handful of collisions is already suspicious.
	if len(seen) < 95 {
		t.Errorf("got %d distinct codes out of 100, want at least 95", len(seen))
	}
}

func TestNumeric_GenerateCoversLeadingDigits(t *testing.T) {
	g := NewNumeric()
	leading := make(map[int]bool)

	for i := 0; i < 5000 && len(leading) < 9; i++ {
		leading[g.Generate()/100000] = true
	}

	for d := 1; d <= 9; d++ {
		if !leading[d] {
			t.Errorf("leading digit %d never produced", d)
		}
	}
}
