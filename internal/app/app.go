package app

import (
	"context"

	"apnode/internal/domain"
)

// Keys is the key service plus the directory helpers the CLI needs.
type Keys interface {
	domain.KeyService
	Fingerprint(username domain.Username) (domain.Fingerprint, error)
	List() ([]domain.Username, error)
}

// Node is the core boundary: every operation a routing layer or the CLI may
// call. It has no private-key accessor.
type Node struct {
	keys     Keys
	delivery domain.DeliveryService
	social   domain.SocialService
}

// NewNode returns a Node over the given services.
func NewNode(keys Keys, delivery domain.DeliveryService, social domain.SocialService) *Node {
	return &Node{keys: keys, delivery: delivery, social: social}
}

func (n *Node) CreateActor(username string) (domain.Actor, error) {
	return n.keys.CreateActor(domain.Username(username))
}

func (n *Node) Profile(username string) (domain.Profile, error) {
	return n.keys.Profile(domain.Username(username))
}

func (n *Node) PublicKey(username string) (string, error) {
	return n.keys.PublicKey(domain.Username(username))
}

// Fingerprint returns the short fingerprint of username's public key.
func (n *Node) Fingerprint(username string) (domain.Fingerprint, error) {
	return n.keys.Fingerprint(domain.Username(username))
}

// Actors lists registered usernames.
func (n *Node) Actors() ([]domain.Username, error) { return n.keys.List() }

func (n *Node) Send(ctx context.Context, sender, recipient, content string) (domain.DeliveryResult, error) {
	return n.delivery.Send(ctx, domain.Username(sender), domain.Username(recipient), content)
}

func (n *Node) Receive(ctx context.Context, username string, body []byte) (domain.MailboxEntry, error) {
	return n.delivery.Receive(ctx, domain.Username(username), body)
}

func (n *Node) ListInbox(username string) ([]domain.MailboxEntry, error) {
	return n.delivery.ListInbox(domain.Username(username))
}

func (n *Node) ListOutbox(username string) ([]domain.MailboxEntry, error) {
	return n.delivery.ListOutbox(domain.Username(username))
}

// OutboxActivities returns the activities username has sent, oldest first.
func (n *Node) OutboxActivities(username string) ([]domain.Activity, error) {
	return n.delivery.OutboxActivities(domain.Username(username))
}

func (n *Node) DecryptInbox(username string) ([]domain.DecryptedEntry, error) {
	return n.delivery.DecryptInbox(domain.Username(username))
}

func (n *Node) Follow(ctx context.Context, actorURI, targetURI string) error {
	return n.social.Follow(ctx, actorURI, targetURI)
}

func (n *Node) Like(ctx context.Context, actorURI, objectURI string) (domain.Activity, error) {
	return n.social.Like(ctx, actorURI, objectURI)
}

func (n *Node) Followers(username string) ([]string, error) {
	return n.social.Followers(domain.Username(username))
}

func (n *Node) Following(username string) ([]string, error) {
	return n.social.Following(domain.Username(username))
}

// Endpoints returns the URL scheme of local actors.
func (n *Node) Endpoints() domain.Endpoints { return n.keys.Endpoints() }
