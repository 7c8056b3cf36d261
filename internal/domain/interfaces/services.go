package interfaces

import (
	"context"
	"crypto/rsa"

	domaintypes "apnode/internal/domain/types"
)

// KeyService owns actor identities and their keypairs.
type KeyService interface {
	CreateActor(username domaintypes.Username) (domaintypes.Actor, error)
	Actor(username domaintypes.Username) (domaintypes.Actor, error)
	Profile(username domaintypes.Username) (domaintypes.Profile, error)
	PublicKey(username domaintypes.Username) (string, error)
	// PrivateKey is privileged: callers must only hand the key to signing or
	// decryption on behalf of its owner.
	PrivateKey(username domaintypes.Username) (*rsa.PrivateKey, error)
	Endpoints() domaintypes.Endpoints
}

// DeliveryService sends, receives and reads messages.
type DeliveryService interface {
	Send(
		ctx context.Context,
		sender domaintypes.Username,
		recipient domaintypes.Username,
		content string,
	) (domaintypes.DeliveryResult, error)
	Receive(
		ctx context.Context,
		recipient domaintypes.Username,
		body []byte,
	) (domaintypes.MailboxEntry, error)
	ListInbox(username domaintypes.Username) ([]domaintypes.MailboxEntry, error)
	ListOutbox(username domaintypes.Username) ([]domaintypes.MailboxEntry, error)
	OutboxActivities(username domaintypes.Username) ([]domaintypes.Activity, error)
	DecryptInbox(username domaintypes.Username) ([]domaintypes.DecryptedEntry, error)
}

// SocialService records follows and acknowledges likes.
type SocialService interface {
	Follow(ctx context.Context, actorURI, targetURI string) error
	Like(ctx context.Context, actorURI, objectURI string) (domaintypes.Activity, error)
	Followers(username domaintypes.Username) ([]string, error)
	Following(username domaintypes.Username) ([]string, error)
}
