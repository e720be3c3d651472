package security

import "testing"

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(4) // min cost to keep the test fast
	hash, err := h.Hash([]byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if err := h.Compare(hash, []byte("correct horse battery staple")); err != nil {
		t.Errorf("Compare with correct password: %v", err)
	}
	if err := h.Compare(hash, []byte("wrong password")); err == nil {
		t.Error("Compare with wrong password should fail")
	}
}

func TestNewHasher_ClampsCost(t *testing.T) {
	if got := NewHasher(0).Cost; got < 4 {
		t.Errorf("NewHasher(0).Cost = %d, want a valid bcrypt cost", got)
	}
	if got := NewHasher(99).Cost; got > 31 {
		t.Errorf("NewHasher(99).Cost = %d, want clamped to max", got)
	}
}
