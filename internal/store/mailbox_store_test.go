package store_test

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apnode/internal/domain"
	"apnode/internal/store"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := store.OpenBadger(store.BadgerOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMailbox_AppendList_Order(t *testing.T) {
	s := store.NewMailboxBadgerStore(openDB(t))

	for i := 0; i < 3; i++ {
		_, err := s.Append("alice", domain.Inbox, []byte(fmt.Sprintf(`{"n":%d}`, i)))
		require.NoError(t, err)
	}
	entries, err := s.List("alice", domain.Inbox)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.JSONEq(t, fmt.Sprintf(`{"n":%d}`, i), string(e.Payload))
		assert.Equal(t, domain.Username("alice"), e.Owner)
		assert.Equal(t, domain.Inbox, e.Direction)
	}

	out, err := s.List("alice", domain.Outbox)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMailbox_FrozenClock_StillDistinct(t *testing.T) {
	frozen := time.Unix(1700000000, 0)
	s := store.NewMailboxBadgerStore(openDB(t)).WithClock(func() time.Time { return frozen })

	a, err := s.Append("bob", domain.Outbox, []byte(`{}`))
	require.NoError(t, err)
	b, err := s.Append("bob", domain.Outbox, []byte(`{}`))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Seq+1, b.Seq)
	assert.True(t, a.ID < b.ID)
}

func TestMailbox_ClockGoesBackwards(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s := store.NewMailboxBadgerStore(openDB(t)).WithClock(func() time.Time { return now })

	a, err := s.Append("bob", domain.Inbox, []byte(`{}`))
	require.NoError(t, err)
	now = now.Add(-time.Hour)
	b, err := s.Append("bob", domain.Inbox, []byte(`{}`))
	require.NoError(t, err)
	assert.Greater(t, b.Seq, a.Seq)
}

func TestMailbox_ConcurrentAppends(t *testing.T) {
	s := store.NewMailboxBadgerStore(openDB(t))

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload, _ := json.Marshal(map[string]int{"i": i})
			if _, err := s.Append("carol", domain.Inbox, payload); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	entries, err := s.List("carol", domain.Inbox)
	require.NoError(t, err)
	require.Len(t, entries, n)

	seen := map[string]bool{}
	for i, e := range entries {
		require.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
		if i > 0 {
			require.Greater(t, e.Seq, entries[i-1].Seq)
		}
	}
}

func TestMailbox_Validation(t *testing.T) {
	s := store.NewMailboxBadgerStore(openDB(t))

	_, err := s.Append("alice", domain.Direction("spam"), []byte(`{}`))
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Append("alice", domain.Inbox, []byte(`not json`))
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Append("", domain.Inbox, []byte(`{}`))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestMailbox_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := store.OpenBadger(store.BadgerOptions{Dir: dir})
	require.NoError(t, err)
	first, err := store.NewMailboxBadgerStore(db).Append("dave", domain.Outbox, []byte(`{"x":1}`))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = store.OpenBadger(store.BadgerOptions{Dir: dir})
	require.NoError(t, err)
	defer db.Close()
	s := store.NewMailboxBadgerStore(db)

	second, err := s.Append("dave", domain.Outbox, []byte(`{"x":2}`))
	require.NoError(t, err)
	assert.Greater(t, second.Seq, first.Seq)

	entries, err := s.List("dave", domain.Outbox)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
}
