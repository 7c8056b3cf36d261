package crypto_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apnode/internal/crypto"
	"apnode/internal/domain"
)

func TestHTTPSigner_SigningString(t *testing.T) {
	s := crypto.HTTPSigner{Host: "node.example"}
	got := s.SigningString("/inbox/bob", "Tue, 07 Jun 2022 20:51:35 GMT", "SHA-256=abc")

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "(request-target): post /inbox/bob", lines[0])
	assert.Equal(t, "host: node.example", lines[1])
	assert.Equal(t, "date: Tue, 07 Jun 2022 20:51:35 GMT", lines[2])
	assert.Equal(t, "digest: SHA-256=abc", lines[3])
}

func TestHTTPSigner_DeterministicAndParseable(t *testing.T) {
	priv, _ := testKeys(t)
	s := crypto.HTTPSigner{Host: "node.example"}
	date := crypto.HTTPDate(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	digest := crypto.Digest([]byte(`{"type":"Create"}`))
	keyID := "https://node.example/user/alice#main-key"

	first, err := s.Sign(priv, keyID, "/inbox/bob", date, digest)
	require.NoError(t, err)
	second, err := s.Sign(priv, keyID, "/inbox/bob", date, digest)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	params, err := crypto.ParseSignature(first)
	require.NoError(t, err)
	assert.Equal(t, keyID, params.KeyID)
	assert.Equal(t, "rsa-sha256", params.Algorithm)
	assert.Equal(t, "(request-target) host date digest", params.Headers)
	assert.NotEmpty(t, params.Signature)
	assert.Equal(t, first, params.String())

	require.NoError(t, s.Verify(&priv.PublicKey, params, "/inbox/bob", date, digest))
}

func TestHTTPSigner_VerifyRejectsTampering(t *testing.T) {
	priv, other := testKeys(t)
	s := crypto.HTTPSigner{Host: "node.example"}
	date := crypto.HTTPDate(time.Now())
	digest := crypto.Digest([]byte("body"))

	header, err := s.Sign(priv, "k", "/inbox/bob", date, digest)
	require.NoError(t, err)
	params, err := crypto.ParseSignature(header)
	require.NoError(t, err)

	err = s.Verify(&priv.PublicKey, params, "/inbox/bob", date, crypto.Digest([]byte("other")))
	assert.ErrorIs(t, err, crypto.ErrSignatureInvalid)
	assert.ErrorIs(t, err, domain.ErrCrypto)

	err = s.Verify(&priv.PublicKey, params, "/inbox/carol", date, digest)
	assert.ErrorIs(t, err, crypto.ErrSignatureInvalid)

	err = s.Verify(&other.PublicKey, params, "/inbox/bob", date, digest)
	assert.ErrorIs(t, err, crypto.ErrSignatureInvalid)

	other2 := crypto.HTTPSigner{Host: "elsewhere.example"}
	err = other2.Verify(&priv.PublicKey, params, "/inbox/bob", date, digest)
	assert.ErrorIs(t, err, crypto.ErrSignatureInvalid)
}

func TestParseSignature_Malformed(t *testing.T) {
	for _, h := range []string{
		"",
		`keyId="a"`,
		`keyId=a,algorithm="rsa-sha256",headers="x",signature="y"`,
		`keyId="a" algorithm="rsa-sha256"`,
		`keyId="a,algorithm="rsa-sha256",headers="x",signature="y"`,
	} {
		_, err := crypto.ParseSignature(h)
		assert.ErrorIs(t, err, crypto.ErrMalformedSignature, "header %q", h)
	}
}

func TestParseSignature_ToleratesSpacesAndUnknownFields(t *testing.T) {
	p, err := crypto.ParseSignature(`keyId="k", algorithm="rsa-sha256", created="1", headers="(request-target) host date digest", signature="c2ln"`)
	require.NoError(t, err)
	assert.Equal(t, "k", p.KeyID)
	assert.Equal(t, "c2ln", p.Signature)
}
