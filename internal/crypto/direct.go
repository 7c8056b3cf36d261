package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"apnode/internal/domain"
)

// MaxDirectPlaintext is the largest message EncryptDirect accepts for pub:
// k - 2*hLen - 2 bytes, 190 for a 2048-bit key with SHA-256.
func MaxDirectPlaintext(pub *rsa.PublicKey) int {
	return pub.Size() - 2*sha256.Size - 2
}

// EncryptDirect encrypts msg with RSA-OAEP(SHA-256) alone. It only serves
// payloads up to MaxDirectPlaintext; use Encrypt for anything unbounded.
func EncryptDirect(pub *rsa.PublicKey, msg []byte) ([]byte, error) {
	if pub == nil {
		return nil, ErrInvalidKey
	}
	if limit := MaxDirectPlaintext(pub); len(msg) > limit {
		return nil, fmt.Errorf("%w: %w (%d > %d bytes)",
			domain.ErrValidation, domain.ErrPayloadTooLarge, len(msg), limit)
	}
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, msg, nil)
}

// DecryptDirect reverses EncryptDirect.
func DecryptDirect(priv *rsa.PrivateKey, ct []byte) ([]byte, error) {
	if priv == nil {
		return nil, ErrInvalidKey
	}
	pt, err := rsa.DecryptOAEP(sha256.New(), nil, priv, ct, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return pt, nil
}
