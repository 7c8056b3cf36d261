package crypto

import (
	"crypto/sha256"
	"net/http"
	"time"
)

// DigestPrefix precedes the base64 body hash in a Digest header.
const DigestPrefix = "SHA-256="

// Digest returns the Digest header value for body.
func Digest(body []byte) string {
	sum := sha256.Sum256(body)
	return DigestPrefix + B64(sum[:])
}

// HTTPDate formats t as an RFC 1123 date in GMT, the form used by the Date header.
func HTTPDate(t time.Time) string { return t.UTC().Format(http.TimeFormat) }
