package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"apnode/internal/crypto"
	"apnode/internal/domain"
)

// DefaultClockSkew is how far a signed Date may drift from local time.
const DefaultClockSkew = 12 * time.Hour

// ProfileFetcher resolves a remote actor's Person document.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, actorURI string) (domain.Profile, error)
}

// Verifier checks the HTTP signature of inbound inbox posts. Key IDs that
// name a local actor are resolved locally; others go through Fetcher, and
// are rejected when Fetcher is nil.
type Verifier struct {
	Actors  Actors
	Fetcher ProfileFetcher
	Skew    time.Duration
	Now     func() time.Time
}

var errUnsigned = errors.New("missing Signature header")

// Verify authenticates r, whose body has already been read into body.
func (v *Verifier) Verify(r *http.Request, body []byte) error {
	header := r.Header.Get("Signature")
	if header == "" {
		return errUnsigned
	}
	params, err := crypto.ParseSignature(header)
	if err != nil {
		return err
	}

	digest := r.Header.Get("Digest")
	if digest != crypto.Digest(body) {
		return errors.New("digest does not match body")
	}

	date := r.Header.Get("Date")
	at, err := http.ParseTime(date)
	if err != nil {
		return fmt.Errorf("bad Date header: %w", err)
	}
	now, skew := time.Now, v.Skew
	if v.Now != nil {
		now = v.Now
	}
	if skew <= 0 {
		skew = DefaultClockSkew
	}
	if d := now().Sub(at); d > skew || d < -skew {
		return fmt.Errorf("date %s outside allowed skew", date)
	}

	pemText, err := v.resolveKey(r.Context(), params.KeyID)
	if err != nil {
		return err
	}
	pub, err := crypto.ParsePublicKeyPEM(pemText)
	if err != nil {
		return err
	}
	signer := crypto.HTTPSigner{Host: r.Host}
	return signer.Verify(pub, params, r.URL.EscapedPath(), date, digest)
}

func (v *Verifier) resolveKey(ctx context.Context, keyID string) (string, error) {
	if username, ok := v.Actors.Endpoints().UsernameFromActorURI(keyID); ok {
		return v.Actors.PublicKey(username)
	}
	if v.Fetcher == nil {
		return "", fmt.Errorf("unknown key %q", keyID)
	}
	actorURI, _, _ := strings.Cut(keyID, "#")
	profile, err := v.Fetcher.FetchProfile(ctx, actorURI)
	if err != nil {
		return "", err
	}
	if profile.PublicKey.ID != "" && profile.PublicKey.ID != keyID {
		return "", fmt.Errorf("key %q not published by %s", keyID, actorURI)
	}
	return profile.PublicKey.PublicKeyPEM, nil
}
