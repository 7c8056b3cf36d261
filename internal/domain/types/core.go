package types

import "strings"

// Username identifies a local actor. Usernames are case-insensitive and stored
// in lower case.
type Username string

// String returns the string form of the username.
func (u Username) String() string { return string(u) }

// Normalize returns the canonical (trimmed, lower-case) form of the username.
func (u Username) Normalize() Username {
	return Username(strings.ToLower(strings.TrimSpace(string(u))))
}

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Direction selects one of an actor's two mailboxes.
type Direction string

const (
	Inbox  Direction = "inbox"
	Outbox Direction = "outbox"
)

// Valid reports whether d names a known mailbox.
func (d Direction) Valid() bool { return d == Inbox || d == Outbox }

// String returns the string form of the direction.
func (d Direction) String() string { return string(d) }
