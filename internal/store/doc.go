// Package store provides persistence for the node's actors and mailboxes.
//
// Actors live on disk as one directory each (ActorFileStore), written with
// atomic temp-file renames. Private keys are stored 0600 and, when a
// passphrase is configured, sealed with scrypt + XChaCha20-Poly1305.
//
// Mailboxes and follower collections live in an embedded Badger database
// (MailboxBadgerStore, FollowerBadgerStore). OutboxCache is an LRU view over
// the outbox that callers invalidate after each append.
//
// All types are safe for concurrent use.
package store
