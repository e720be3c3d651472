package security

import "testing"

func TestDigest_Consistent(t *testing.T) {
	d1 := Digest("Rex")
	d2 := Digest("Rex")
	if d1 != d2 {
		t.Errorf("Digest not consistent: %q vs %q", d1, d2)
	}
	if len(d1) != 64 {
		t.Errorf("digest length = %d, want 64 (SHA-256 hex)", len(d1))
	}
}

func TestDigest_CaseSensitive(t *testing.T) {
	if Digest("Rex") == Digest("rex") {
		t.Error("Digest should differ for case-mismatched inputs")
	}
}

func TestDigestEqual(t *testing.T) {
	stored := Digest("answer")
	if !DigestEqual("answer", stored) {
		t.Error("DigestEqual should match the original input")
	}
	if DigestEqual("other", stored) {
		t.Error("DigestEqual should reject a different input")
	}
}
