package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrDecryptFailed is returned by DecryptFieldStrict when the envelope is
// malformed or authentication fails.
var ErrDecryptFailed = errors.New("field decryption failed")

// envelopeSep joins the iv, auth tag, and ciphertext segments of an
// encrypted field. The stored form is hex(iv):hex(tag):hex(ciphertext).
const envelopeSep = ":"

// FieldCipher encrypts sensitive columns (email, phone, recovery private
// keys) at rest with AES-256-GCM.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher returns a FieldCipher for the given 32-byte key.
func NewFieldCipher(key []byte) (*FieldCipher, error) {
	if len(key) != 32 {
		return nil, errors.New("field encryption key must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &FieldCipher{aead: aead}, nil
}

// EncryptField returns the authenticated envelope for plaintext. If
// encryption fails the plaintext is returned unchanged; callers that must
// not downgrade use EncryptFieldStrict.
func (c *FieldCipher) EncryptField(plaintext string) string {
	out, err := c.EncryptFieldStrict(plaintext)
	if err != nil {
		return plaintext
	}
	return out
}

// EncryptFieldStrict returns the authenticated envelope for plaintext or an
// error when the nonce cannot be generated.
func (c *FieldCipher) EncryptFieldStrict(plaintext string) (string, error) {
	iv := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	// Seal appends the tag to the ciphertext; split it back out so the
	// stored envelope keeps the iv:tag:ciphertext layout.
	tagStart := len(sealed) - c.aead.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]
	return hex.EncodeToString(iv) + envelopeSep +
		hex.EncodeToString(tag) + envelopeSep +
		hex.EncodeToString(ciphertext), nil
}

// DecryptField decrypts an envelope produced by EncryptField. A malformed
// envelope or failed authentication returns the input unchanged, matching
// the at-rest read path where legacy rows may hold plaintext.
func (c *FieldCipher) DecryptField(envelope string) string {
	out, err := c.DecryptFieldStrict(envelope)
	if err != nil {
		return envelope
	}
	return out
}

// DecryptFieldStrict decrypts an envelope and returns ErrDecryptFailed when
// the envelope is malformed or the auth tag does not verify.
func (c *FieldCipher) DecryptFieldStrict(envelope string) (string, error) {
	parts := strings.Split(envelope, envelopeSep)
	if len(parts) != 3 {
		return "", ErrDecryptFailed
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != c.aead.NonceSize() {
		return "", ErrDecryptFailed
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != c.aead.Overhead() {
		return "", ErrDecryptFailed
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrDecryptFailed
	}
	plaintext, err := c.aead.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}
