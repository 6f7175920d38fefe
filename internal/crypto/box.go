package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/scrypt"
)

// Box encrypts transcript records before they land on disk. A nil Box passes
// data through untouched, so callers never branch on whether encryption is
// configured.
type Box struct {
	gcm cipher.AEAD
}

// NewBox derives an AES-GCM box from a passphrase. An empty passphrase
// returns a nil box.
func NewBox(passphrase string) (*Box, error) {
	if passphrase == "" {
		return nil, nil
	}
	salt := sha256.Sum256([]byte(passphrase))
	key, err := scrypt.Key([]byte(passphrase), salt[:], 1<<15, 8, 1, 32)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Box{gcm: gcm}, nil
}

// Seal returns nonce||ciphertext for the record.
func (b *Box) Seal(plaintext []byte) ([]byte, error) {
	if b == nil {
		return plaintext, nil
	}
	nonce := make([]byte, b.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return b.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func (b *Box) Open(sealed []byte) ([]byte, error) {
	if b == nil {
		return sealed, nil
	}
	if len(sealed) < b.gcm.NonceSize() {
		return nil, errors.New("sealed record too short")
	}
	nonce, ciphertext := sealed[:b.gcm.NonceSize()], sealed[b.gcm.NonceSize():]
	return b.gcm.Open(nil, nonce, ciphertext, nil)
}
