package crypto

import (
	"errors"
	"fmt"

	"apnode/internal/domain"
)

var (
	// ErrDecryptionFailed covers every unwrap, cipher and padding failure so
	// callers cannot distinguish them.
	ErrDecryptionFailed = fmt.Errorf("%w: decryption failed", domain.ErrCrypto)

	// ErrInvalidKey is returned for PEM blocks that do not hold an RSA key.
	ErrInvalidKey = fmt.Errorf("%w: invalid RSA key", domain.ErrCrypto)

	// ErrInvalidEnvelope is returned when an envelope is structurally unusable.
	ErrInvalidEnvelope = fmt.Errorf("%w: invalid envelope", domain.ErrCrypto)

	// ErrSignatureInvalid is returned when a signature does not verify.
	ErrSignatureInvalid = fmt.Errorf("%w: signature verification failed", domain.ErrCrypto)

	// ErrMalformedSignature is returned for unparseable Signature headers.
	ErrMalformedSignature = errors.New("malformed signature header")
)
