package crypto

import (
	stdcrypto "crypto"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"strings"
)

const (
	// SignatureAlgorithm is the only algorithm this node emits.
	SignatureAlgorithm = "rsa-sha256"
	// SignedHeaders lists the signed pseudo-header and headers, in order.
	SignedHeaders = "(request-target) host date digest"
)

// SignatureParams are the four fields of a Signature header.
type SignatureParams struct {
	KeyID     string
	Algorithm string
	Headers   string
	Signature string // base64
}

// String renders the params as a Signature header value.
func (p SignatureParams) String() string {
	return fmt.Sprintf(`keyId="%s",algorithm="%s",headers="%s",signature="%s"`,
		p.KeyID, p.Algorithm, p.Headers, p.Signature)
}

// HTTPSigner builds HTTP signatures for requests addressed to Host.
type HTTPSigner struct {
	Host string
}

// SigningString returns the canonical four-line string that gets signed.
func (s HTTPSigner) SigningString(targetPath, date, digest string) string {
	return strings.Join([]string{
		"(request-target): post " + targetPath,
		"host: " + s.Host,
		"date: " + date,
		"digest: " + digest,
	}, "\n")
}

// Sign signs the canonical string with RSA-SHA256 (PKCS#1 v1.5) and returns
// the Signature header value. Identical inputs yield identical output.
func (s HTTPSigner) Sign(priv *rsa.PrivateKey, keyID, targetPath, date, digest string) (string, error) {
	if priv == nil {
		return "", ErrInvalidKey
	}
	sum := sha256.Sum256([]byte(s.SigningString(targetPath, date, digest)))
	sig, err := rsa.SignPKCS1v15(nil, priv, stdcrypto.SHA256, sum[:])
	if err != nil {
		return "", err
	}
	return SignatureParams{
		KeyID:     keyID,
		Algorithm: SignatureAlgorithm,
		Headers:   SignedHeaders,
		Signature: B64(sig),
	}.String(), nil
}

// Verify checks params against pub and the request values.
func (s HTTPSigner) Verify(pub *rsa.PublicKey, params SignatureParams, targetPath, date, digest string) error {
	if pub == nil {
		return ErrInvalidKey
	}
	if params.Algorithm != SignatureAlgorithm || params.Headers != SignedHeaders {
		return ErrSignatureInvalid
	}
	sig, err := UnB64(params.Signature)
	if err != nil {
		return ErrSignatureInvalid
	}
	sum := sha256.Sum256([]byte(s.SigningString(targetPath, date, digest)))
	if err := rsa.VerifyPKCS1v15(pub, stdcrypto.SHA256, sum[:], sig); err != nil {
		return ErrSignatureInvalid
	}
	return nil
}

// ParseSignature splits a Signature header into its fields. Unknown fields
// are ignored; all four known fields are required.
func ParseSignature(header string) (SignatureParams, error) {
	var p SignatureParams
	rest := strings.TrimSpace(header)
	for rest != "" {
		name, after, ok := strings.Cut(rest, "=")
		if !ok {
			return SignatureParams{}, ErrMalformedSignature
		}
		name = strings.TrimSpace(name)
		after = strings.TrimLeft(after, " ")
		if !strings.HasPrefix(after, `"`) {
			return SignatureParams{}, ErrMalformedSignature
		}
		end := strings.IndexByte(after[1:], '"')
		if end < 0 {
			return SignatureParams{}, ErrMalformedSignature
		}
		value := after[1 : end+1]
		rest = strings.TrimLeft(after[end+2:], " ")
		if rest != "" {
			if rest[0] != ',' {
				return SignatureParams{}, ErrMalformedSignature
			}
			rest = strings.TrimLeft(rest[1:], " ")
		}

		switch name {
		case "keyId":
			p.KeyID = value
		case "algorithm":
			p.Algorithm = value
		case "headers":
			p.Headers = value
		case "signature":
			p.Signature = value
		}
	}
	if p.KeyID == "" || p.Algorithm == "" || p.Headers == "" || p.Signature == "" {
		return SignatureParams{}, ErrMalformedSignature
	}
	return p, nil
}
