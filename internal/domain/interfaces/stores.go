package interfaces

import domaintypes "apnode/internal/domain/types"

// ActorStore persists actors, their profile documents and key material.
type ActorStore interface {
	// CreateActor atomically registers a new actor. It fails with
	// domain.ErrConflict if the username is taken.
	CreateActor(actor domaintypes.Actor, profile domaintypes.Profile, privateKeyPEM []byte) error
	LoadActor(username domaintypes.Username) (domaintypes.Actor, error)
	LoadProfile(username domaintypes.Username) (domaintypes.Profile, error)
	// LoadPrivateKeyPEM is privileged; only signing and decryption paths use it.
	LoadPrivateKeyPEM(username domaintypes.Username) ([]byte, error)
	ListActors() ([]domaintypes.Username, error)
}

// MailboxStore is the append-only, ordered per-actor inbox/outbox log.
type MailboxStore interface {
	Append(
		owner domaintypes.Username,
		direction domaintypes.Direction,
		payload []byte,
	) (domaintypes.MailboxEntry, error)
	List(
		owner domaintypes.Username,
		direction domaintypes.Direction,
	) ([]domaintypes.MailboxEntry, error)
}

// FollowerStore keeps per-actor follower and following sets.
type FollowerStore interface {
	AddFollower(target domaintypes.Username, actorURI string) (bool, error)
	Followers(target domaintypes.Username) ([]string, error)
	AddFollowing(actor domaintypes.Username, targetURI string) (bool, error)
	Following(actor domaintypes.Username) ([]string, error)
}

// OutboxIndex is a read-through view of outbox activities.
type OutboxIndex interface {
	Activities(owner domaintypes.Username) ([]domaintypes.Activity, error)
	Invalidate(owner domaintypes.Username)
}
