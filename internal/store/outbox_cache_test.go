package store_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apnode/internal/domain"
	"apnode/internal/store"
)

type countingMailbox struct {
	domain.MailboxStore
	lists int
}

func (c *countingMailbox) List(owner domain.Username, d domain.Direction) ([]domain.MailboxEntry, error) {
	c.lists++
	return c.MailboxStore.List(owner, d)
}

func appendNote(t *testing.T, s domain.MailboxStore, owner domain.Username, content string) {
	t.Helper()
	act := domain.Activity{Type: domain.Create, Actor: "http://x/user/" + owner.String(),
		Object: domain.Object{Note: &domain.Note{Type: "Note", Content: content}}}
	b, err := json.Marshal(domain.OutboxRecord{Activity: act, SentAt: time.Now()})
	require.NoError(t, err)
	_, err = s.Append(owner, domain.Outbox, b)
	require.NoError(t, err)
}

func TestOutboxCache_ReadThroughAndInvalidate(t *testing.T) {
	mb := &countingMailbox{MailboxStore: store.NewMailboxBadgerStore(openDB(t))}
	c, err := store.NewOutboxCache(mb, 4)
	require.NoError(t, err)

	appendNote(t, mb, "alice", "one")

	acts, err := c.Activities("alice")
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "one", acts[0].Object.Note.Content)

	_, err = c.Activities("alice")
	require.NoError(t, err)
	assert.Equal(t, 1, mb.lists, "second read must be served from cache")

	appendNote(t, mb, "alice", "two")
	c.Invalidate("alice")

	acts, err = c.Activities("alice")
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, "two", acts[1].Object.Note.Content)
	assert.Equal(t, 2, mb.lists)
}

func TestOutboxCache_Evicts(t *testing.T) {
	c, err := store.NewOutboxCache(store.NewMailboxBadgerStore(openDB(t)), 2)
	require.NoError(t, err)

	for _, u := range []domain.Username{"a", "b", "c"} {
		_, err := c.Activities(u)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())
}
