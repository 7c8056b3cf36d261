package types

import "time"

// ActivityStreamsContext is the JSON-LD context of every document this node emits.
const ActivityStreamsContext = "https://www.w3.org/ns/activitystreams"

// Actor is a registered local identity. The private half of its keypair is
// never part of this struct.
type Actor struct {
	ID           string    `json:"id"`
	Username     Username  `json:"username"`
	PublicKeyPEM string    `json:"publicKeyPem"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicKeyDocument is the publicKey block of a Person profile.
type PublicKeyDocument struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPEM string `json:"publicKeyPem"`
}

// Profile is the ActivityStreams Person document published for an actor.
// Field names and nesting are part of the federation contract.
type Profile struct {
	Context           string            `json:"@context"`
	ID                string            `json:"id"`
	Type              string            `json:"type"`
	PreferredUsername string            `json:"preferredUsername"`
	Inbox             string            `json:"inbox"`
	Outbox            string            `json:"outbox"`
	Followers         string            `json:"followers"`
	Following         string            `json:"following"`
	PublicKey         PublicKeyDocument `json:"publicKey"`
}

// NewProfile builds the Person document for username under the given endpoints.
func NewProfile(ep Endpoints, username Username, publicKeyPEM string) Profile {
	return Profile{
		Context:           ActivityStreamsContext,
		ID:                ep.ActorURI(username),
		Type:              "Person",
		PreferredUsername: username.String(),
		Inbox:             ep.InboxURL(username),
		Outbox:            ep.OutboxURL(username),
		Followers:         ep.FollowersURL(username),
		Following:         ep.FollowingURL(username),
		PublicKey: PublicKeyDocument{
			ID:           ep.KeyID(username),
			Owner:        ep.ActorURI(username),
			PublicKeyPEM: publicKeyPEM,
		},
	}
}
