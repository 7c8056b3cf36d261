package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"apnode/internal/domain"
)

// Key layout:
//
//	mb/<owner>/<direction>/e/<seq %020d>  -> MailboxEntry JSON
//	mb/<owner>/<direction>/last           -> last seq (big-endian uint64)
const mailboxPrefix = "mb/"

// MailboxBadgerStore is an append-only per-actor log in Badger.
//
// Sequence numbers are hybrid clock readings: max(now in ns, last+1). They
// double as creation time and are strictly increasing per mailbox, so two
// appends can never share a key and listing in key order is listing in
// append order.
type MailboxBadgerStore struct {
	db  *badger.DB
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMailboxBadgerStore returns a MailboxBadgerStore backed by db.
func NewMailboxBadgerStore(db *badger.DB) *MailboxBadgerStore {
	return &MailboxBadgerStore{db: db, now: time.Now, locks: make(map[string]*sync.Mutex)}
}

// WithClock replaces the time source. Used by tests.
func (s *MailboxBadgerStore) WithClock(now func() time.Time) *MailboxBadgerStore {
	s.now = now
	return s
}

// Append stores payload as the next entry of owner's mailbox.
func (s *MailboxBadgerStore) Append(owner domain.Username, direction domain.Direction, payload []byte) (domain.MailboxEntry, error) {
	const op = "store.Append"
	owner = owner.Normalize()
	if err := checkUsername(op, owner); err != nil {
		return domain.MailboxEntry{}, err
	}
	if !direction.Valid() {
		return domain.MailboxEntry{}, domain.Validation(op, "unknown mailbox %q", direction)
	}
	if !json.Valid(payload) {
		return domain.MailboxEntry{}, domain.Validation(op, "payload is not valid JSON")
	}

	prefix := mailboxKeyPrefix(owner, direction)
	lock := s.lockFor(prefix)
	lock.Lock()
	defer lock.Unlock()

	var entry domain.MailboxEntry
	err := s.db.Update(func(txn *badger.Txn) error {
		last, err := readSeq(txn, []byte(prefix+"last"))
		if err != nil {
			return err
		}
		seq := uint64(s.now().UnixNano())
		if seq <= last {
			seq = last + 1
		}
		id := fmt.Sprintf("%020d", seq)
		entry = domain.MailboxEntry{
			Owner:     owner,
			Direction: direction,
			Seq:       seq,
			ID:        id,
			CreatedAt: time.Unix(0, int64(seq)).UTC(),
			Payload:   append(json.RawMessage(nil), payload...),
		}
		b, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(prefix+"e/"+id), b); err != nil {
			return err
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], seq)
		return txn.Set([]byte(prefix+"last"), buf[:])
	})
	if err != nil {
		return domain.MailboxEntry{}, fmt.Errorf("%s %s/%s: %w", op, owner, direction, err)
	}
	return entry, nil
}

// List returns every entry of owner's mailbox in append order.
func (s *MailboxBadgerStore) List(owner domain.Username, direction domain.Direction) ([]domain.MailboxEntry, error) {
	const op = "store.List"
	owner = owner.Normalize()
	if err := checkUsername(op, owner); err != nil {
		return nil, err
	}
	if !direction.Valid() {
		return nil, domain.Validation(op, "unknown mailbox %q", direction)
	}

	prefix := []byte(mailboxKeyPrefix(owner, direction) + "e/")
	out := []domain.MailboxEntry{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 64, Prefix: prefix})
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e domain.MailboxEntry
			if err := it.Item().Value(func(v []byte) error { return json.Unmarshal(v, &e) }); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s/%s: %w", op, owner, direction, err)
	}
	return out, nil
}

func (s *MailboxBadgerStore) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func mailboxKeyPrefix(owner domain.Username, direction domain.Direction) string {
	return mailboxPrefix + owner.String() + "/" + direction.String() + "/"
}

func readSeq(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var seq uint64
	err = item.Value(func(v []byte) error {
		if len(v) != 8 {
			return fmt.Errorf("corrupt sequence at %s", key)
		}
		seq = binary.BigEndian.Uint64(v)
		return nil
	})
	return seq, err
}

// Compile-time assertion that MailboxBadgerStore implements domain.MailboxStore.
var _ domain.MailboxStore = (*MailboxBadgerStore)(nil)
