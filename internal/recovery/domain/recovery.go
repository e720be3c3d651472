package domain

import "time"

// KeyPair is the per-user RSA key pair backing the security-question
// fallback. The private key is encrypted at rest; the public key is plain
// PEM. Threshold is reserved for a future M-of-N answer policy.
type KeyPair struct {
	UserID        string
	PublicKeyPEM  string
	PrivateKeyEnc string
	Threshold     int
	CreatedAt     time.Time
}

// SecurityQuestion is one enrolled question. AnswerEnc is the RSA-OAEP
// ciphertext of the plaintext answer under the user's public key; AnswerSig
// is an independent SHA-256 digest of the plaintext, guarding against
// ciphertext substitution. Rows are immutable once created.
type SecurityQuestion struct {
	ID        string
	UserID    string
	Question  string
	AnswerEnc string // base64
	AnswerSig string // sha256 hex
	CreatedAt time.Time
}
