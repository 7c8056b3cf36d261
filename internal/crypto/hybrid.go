package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"apnode/internal/domain"
	"apnode/internal/util/memzero"
)

// SymmetricKeySize is the AES-256 key length wrapped into every envelope.
const SymmetricKeySize = 32

// Encrypt seals plaintext for pub. A fresh AES-256 key and IV are drawn for
// every call; the body is AES-CBC with PKCS#7 padding and the key is wrapped
// with RSA-OAEP(SHA-256).
func Encrypt(pub *rsa.PublicKey, plaintext []byte) (domain.EncryptedEnvelope, error) {
	if pub == nil {
		return domain.EncryptedEnvelope{}, ErrInvalidKey
	}
	key := make([]byte, SymmetricKeySize)
	defer memzero.Zero(key)
	if _, err := rand.Read(key); err != nil {
		return domain.EncryptedEnvelope{}, err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return domain.EncryptedEnvelope{}, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return domain.EncryptedEnvelope{}, err
	}
	body := pkcs7Pad(plaintext, aes.BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(body, body)

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, key, nil)
	if err != nil {
		return domain.EncryptedEnvelope{}, fmt.Errorf("wrap key: %w", err)
	}
	return domain.EncryptedEnvelope{
		EncryptedKey:  wrapped,
		EncryptedBody: body,
		IV:            iv,
	}, nil
}

// Decrypt opens env with priv. Any failure is reported as ErrDecryptionFailed.
func Decrypt(priv *rsa.PrivateKey, env domain.EncryptedEnvelope) ([]byte, error) {
	if priv == nil {
		return nil, ErrInvalidKey
	}
	if len(env.IV) != aes.BlockSize || len(env.EncryptedBody) == 0 ||
		len(env.EncryptedBody)%aes.BlockSize != 0 || len(env.EncryptedKey) == 0 {
		return nil, ErrInvalidEnvelope
	}

	key, err := rsa.DecryptOAEP(sha256.New(), nil, priv, env.EncryptedKey, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	defer memzero.Zero(key)
	if len(key) != SymmetricKeySize {
		return nil, ErrDecryptionFailed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	buf := bytes.Clone(env.EncryptedBody)
	cipher.NewCBCDecrypter(block, env.IV).CryptBlocks(buf, buf)
	plain, ok := pkcs7Unpad(buf, aes.BlockSize)
	if !ok {
		memzero.Zero(buf)
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}

// EncryptPEM is Encrypt for a PEM encoded recipient key.
func EncryptPEM(publicKeyPEM string, plaintext []byte) (domain.EncryptedEnvelope, error) {
	pub, err := ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return domain.EncryptedEnvelope{}, err
	}
	return Encrypt(pub, plaintext)
}

// DecryptPEM is Decrypt for a PEM encoded private key.
func DecryptPEM(privateKeyPEM []byte, env domain.EncryptedEnvelope) ([]byte, error) {
	priv, err := ParsePrivateKeyPEM(privateKeyPEM)
	if err != nil {
		return nil, err
	}
	return Decrypt(priv, env)
}

// pkcs7Pad always appends between 1 and size bytes.
func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func pkcs7Unpad(b []byte, size int) ([]byte, bool) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, false
	}
	good := 1
	for _, c := range b[len(b)-n:] {
		good &= subtle.ConstantTimeByteEq(c, byte(n))
	}
	if good != 1 {
		return nil, false
	}
	return b[:len(b)-n], true
}
