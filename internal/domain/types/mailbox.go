package types

import (
	"encoding/json"
	"time"
)

// MailboxEntry is one immutable record in an actor's inbox or outbox.
type MailboxEntry struct {
	Owner     Username        `json:"owner"`
	Direction Direction       `json:"direction"`
	Seq       uint64          `json:"seq"`
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	Payload   json.RawMessage `json:"payload"`
}

// EncryptedEnvelope is a hybrid-encrypted message body: EncryptedKey is the
// RSA-OAEP wrapped AES key, EncryptedBody the AES-CBC ciphertext.
type EncryptedEnvelope struct {
	EncryptedKey  []byte `json:"encryptedKey"`
	EncryptedBody []byte `json:"encryptedBody"`
	IV            []byte `json:"iv"`
}

// OutboxRecord is the payload stored in a sender's outbox.
type OutboxRecord struct {
	Activity Activity  `json:"activity"`
	SentAt   time.Time `json:"sentAt"`
}

// InboxRecord is the payload stored in a recipient's inbox for a local send.
// EncryptedMessage holds direct RSA-OAEP ciphertext written by older nodes.
type InboxRecord struct {
	EncryptedEnvelope
	EncryptedMessage []byte    `json:"encryptedMessage,omitempty"`
	From             Username  `json:"from,omitempty"`
	To               Username  `json:"to,omitempty"`
	ReceivedAt       time.Time `json:"receivedAt"`
}

// Encrypted reports whether r carries any ciphertext.
func (r InboxRecord) Encrypted() bool {
	return len(r.EncryptedMessage) > 0 ||
		(len(r.EncryptedKey) > 0 && len(r.EncryptedBody) > 0 && len(r.IV) > 0)
}

// DecryptedEntry is the per-entry outcome of decrypting an inbox.
type DecryptedEntry struct {
	EntryID   string `json:"entryId"`
	Plaintext string `json:"decrypted,omitempty"`
	From      string `json:"from,omitempty"`
	Err       error  `json:"-"`
	Error     string `json:"error,omitempty"`
}

// OK reports whether the entry decrypted successfully.
func (d DecryptedEntry) OK() bool { return d.Err == nil }
