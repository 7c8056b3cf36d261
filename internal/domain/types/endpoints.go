package types

import (
	"net/url"
	"strings"
)

// Endpoints derives the public URLs of local actors from the node's base URL.
type Endpoints struct {
	Base string // e.g. https://node.example, no trailing slash
}

// NewEndpoints returns Endpoints for base with any trailing slash removed.
func NewEndpoints(base string) Endpoints {
	return Endpoints{Base: strings.TrimRight(base, "/")}
}

func (e Endpoints) ActorURI(u Username) string     { return e.Base + "/user/" + url.PathEscape(u.String()) }
func (e Endpoints) KeyID(u Username) string        { return e.ActorURI(u) + "#main-key" }
func (e Endpoints) InboxURL(u Username) string     { return e.Base + "/inbox/" + url.PathEscape(u.String()) }
func (e Endpoints) OutboxURL(u Username) string    { return e.Base + "/outbox/" + url.PathEscape(u.String()) }
func (e Endpoints) FollowersURL(u Username) string { return e.ActorURI(u) + "/followers" }
func (e Endpoints) FollowingURL(u Username) string { return e.ActorURI(u) + "/following" }

// InboxPath is the request-target path of an actor's inbox.
func (e Endpoints) InboxPath(u Username) string { return "/inbox/" + url.PathEscape(u.String()) }

// Host returns the host[:port] part of the base URL.
func (e Endpoints) Host() string {
	parsed, err := url.Parse(e.Base)
	if err != nil {
		return ""
	}
	return parsed.Host
}

// UsernameFromActorURI extracts the local username from an actor URI or key ID
// issued by this node. ok is false for foreign URIs.
func (e Endpoints) UsernameFromActorURI(uri string) (Username, bool) {
	uri, _, _ = strings.Cut(uri, "#")
	prefix := e.Base + "/user/"
	if !strings.HasPrefix(uri, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(uri, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	name, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return Username(name).Normalize(), true
}
