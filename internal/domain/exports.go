package domain

import (
	"time"

	interfaces "apnode/internal/domain/interfaces"
	types "apnode/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Username          = types.Username
	Fingerprint       = types.Fingerprint
	Direction         = types.Direction
	Endpoints         = types.Endpoints
	Actor             = types.Actor
	Profile           = types.Profile
	PublicKeyDocument = types.PublicKeyDocument
	ActivityType      = types.ActivityType
	Activity          = types.Activity
	Note              = types.Note
	Object            = types.Object
	OrderedCollection = types.OrderedCollection
	MailboxEntry      = types.MailboxEntry
	EncryptedEnvelope = types.EncryptedEnvelope
	OutboxRecord      = types.OutboxRecord
	InboxRecord       = types.InboxRecord
	DecryptedEntry    = types.DecryptedEntry
	DeliveryStatus    = types.DeliveryStatus
	DeliveryResult    = types.DeliveryResult
	OutboundRequest   = types.OutboundRequest
	RemoteResponse    = types.RemoteResponse
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	ActorStore      = interfaces.ActorStore
	MailboxStore    = interfaces.MailboxStore
	FollowerStore   = interfaces.FollowerStore
	OutboxIndex     = interfaces.OutboxIndex
	KeyService      = interfaces.KeyService
	DeliveryService = interfaces.DeliveryService
	SocialService   = interfaces.SocialService
	Transport       = interfaces.Transport
)

// Re-exported constants.
const (
	Inbox  = types.Inbox
	Outbox = types.Outbox

	Create = types.Create
	Follow = types.Follow
	Like   = types.Like

	Delivered      = types.Delivered
	RemoteRejected = types.RemoteRejected
	TimedOut       = types.TimedOut
	Unreachable    = types.Unreachable
	Skipped        = types.Skipped
)

// NewEndpoints re-exports types.NewEndpoints.
func NewEndpoints(base string) Endpoints { return types.NewEndpoints(base) }

// NewProfile re-exports types.NewProfile.
func NewProfile(ep Endpoints, username Username, publicKeyPEM string) Profile {
	return types.NewProfile(ep, username, publicKeyPEM)
}

// NewNoteActivity re-exports types.NewNoteActivity.
func NewNoteActivity(id, actorURI, recipientURI, content string, published time.Time) Activity {
	return types.NewNoteActivity(id, actorURI, recipientURI, content, published)
}

// NewURIActivity re-exports types.NewURIActivity.
func NewURIActivity(id string, kind ActivityType, actorURI, objectURI string, published time.Time) Activity {
	return types.NewURIActivity(id, kind, actorURI, objectURI, published)
}

// NewOrderedCollection re-exports types.NewOrderedCollection.
func NewOrderedCollection[T any](id string, items []T) OrderedCollection {
	return types.NewOrderedCollection(id, items)
}
