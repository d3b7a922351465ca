package hash

import "testing"

func TestHMACSHA256_HashIsStable(t *testing.T) {
	h := NewHMACSHA256("secret")

	a, _ := h.Hash("123456")
	b, _ := h.Hash("123456")

	if string(a) != string(b) {
		t.Errorf("Hash not stable: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64", len(a))
	}
}

func TestHMACSHA256_SecretMatters(t *testing.T) {
	a, _ := NewHMACSHA256("one").Hash("123456")
	b, _ := NewHMACSHA256("two").Hash("123456")

	if string(a) == string(b) {
		t.Error("different secrets produced the same digest")
	}
}

func TestHMACSHA256_Verify(t *testing.T) {
	h := NewHMACSHA256("secret")
	digest, _ := h.Hash("123456")

	if !h.Verify(string(digest), "123456") {
		t.Error("Verify should accept the matching code")
	}
	if h.Verify(string(digest), "654321") {
		t.Error("Verify should reject a different code")
	}
	if h.Verify("", "") {
		t.Error("Verify should reject an empty digest")
	}
}
