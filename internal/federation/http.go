package federation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"apnode/internal/domain"
)

// ActivityContentType is sent with every delivered activity.
const ActivityContentType = "application/json"

// maxResponseBody caps how much of a remote reply is read.
const maxResponseBody = 64 << 10

// HTTP delivers activities over plain net/http.
type HTTP struct {
	HTTP      *http.Client
	UserAgent string
}

// NewHTTP returns an HTTP transport whose requests give up after timeout.
// Callers normally also bound each call with a context deadline.
func NewHTTP(timeout time.Duration) *HTTP {
	return &HTTP{HTTP: &http.Client{Timeout: timeout}, UserAgent: "apnode/1"}
}

// Deliver POSTs req.Body to req.InboxURL.
func (c *HTTP) Deliver(ctx context.Context, req domain.OutboundRequest) (domain.RemoteResponse, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, req.InboxURL, bytes.NewReader(req.Body))
	if err != nil {
		return domain.RemoteResponse{}, err
	}
	r.Host = req.Host
	r.Header.Set("Date", req.Date)
	r.Header.Set("Digest", req.Digest)
	r.Header.Set("Content-Type", ActivityContentType)
	r.Header.Set("Signature", req.Signature)
	if c.UserAgent != "" {
		r.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(r)
	if err != nil {
		return domain.RemoteResponse{}, fmt.Errorf("federation post %s: %w", req.InboxURL, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	return domain.RemoteResponse{StatusCode: resp.StatusCode, Body: string(body)}, nil
}

// FetchProfile GETs the Person document at actorURI.
func (c *HTTP) FetchProfile(ctx context.Context, actorURI string) (domain.Profile, error) {
	var out domain.Profile
	if err := c.getJSON(ctx, actorURI, &out); err != nil {
		return domain.Profile{}, err
	}
	if out.PublicKey.PublicKeyPEM == "" {
		return domain.Profile{}, fmt.Errorf("federation get %s: profile has no public key", actorURI)
	}
	return out, nil
}

func (c *HTTP) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/activity+json, application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("federation get %s: %s", u, resp.Status)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out)
}

// Compile-time assertion that HTTP implements domain.Transport.
var _ domain.Transport = (*HTTP)(nil)
