package store

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"apnode/internal/domain"
	"apnode/internal/util/memzero"
)

const sealedKeyVersion = 1

var errKeyUnseal = errors.New("private key does not open with this passphrase")

// kdfParams are the scrypt work factors recorded next to every sealed key.
type kdfParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

func defaultKDF() kdfParams { return kdfParams{N: 1 << 15, R: 8, P: 1} }

// sealedKey is the private-key.enc document.
type sealedKey struct {
	Version int       `json:"version"`
	Owner   string    `json:"owner"`
	KDF     kdfParams `json:"kdf"`
	Salt    []byte    `json:"salt"`
	Nonce   []byte    `json:"nonce"`
	Box     []byte    `json:"box"`
}

// keySealer protects actor private keys with a passphrase. The owner's
// username is the AEAD associated data, so a sealed key moved into another
// actor's directory fails to open.
type keySealer struct {
	passphrase string
	kdf        kdfParams
}

func (k keySealer) enabled() bool { return k.passphrase != "" }

// cipherFor derives the XChaCha20-Poly1305 key for salt.
func (k keySealer) cipherFor(salt []byte, p kdfParams) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(k.passphrase), salt, p.N, p.R, p.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer memzero.Zero(key)
	return chacha20poly1305.NewX(key)
}

// seal encrypts privateKeyPEM for owner.
func (k keySealer) seal(owner domain.Username, privateKeyPEM []byte) ([]byte, error) {
	doc := sealedKey{Version: sealedKeyVersion, Owner: owner.String(), KDF: k.kdf, Salt: make([]byte, 16)}
	if _, err := rand.Read(doc.Salt); err != nil {
		return nil, err
	}
	aead, err := k.cipherFor(doc.Salt, doc.KDF)
	if err != nil {
		return nil, err
	}
	doc.Nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(doc.Nonce); err != nil {
		return nil, err
	}
	doc.Box = aead.Seal(nil, doc.Nonce, privateKeyPEM, []byte(doc.Owner))
	return json.Marshal(doc)
}

// open reverses seal. A wrong passphrase, a foreign owner and a tampered box
// all report errKeyUnseal.
func (k keySealer) open(owner domain.Username, blob []byte) ([]byte, error) {
	var doc sealedKey
	if err := json.Unmarshal(blob, &doc); err != nil {
		return nil, fmt.Errorf("decode sealed key: %w", err)
	}
	if doc.Version != sealedKeyVersion {
		return nil, fmt.Errorf("sealed key version %d not supported", doc.Version)
	}
	aead, err := k.cipherFor(doc.Salt, doc.KDF)
	if err != nil {
		return nil, err
	}
	if len(doc.Nonce) != aead.NonceSize() {
		return nil, errKeyUnseal
	}
	pemBytes, err := aead.Open(nil, doc.Nonce, doc.Box, []byte(owner.String()))
	if err != nil {
		return nil, errKeyUnseal
	}
	return pemBytes, nil
}
