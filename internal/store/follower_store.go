package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"apnode/internal/domain"
)

// FollowPolicy controls whether repeated follows are collapsed.
type FollowPolicy string

const (
	// FollowSet keeps each URI at most once per collection.
	FollowSet FollowPolicy = "set"
	// FollowLog records every follow, duplicates included.
	FollowLog FollowPolicy = "log"
)

// ParseFollowPolicy maps a config value onto a FollowPolicy. Empty means set.
func ParseFollowPolicy(s string) (FollowPolicy, error) {
	switch FollowPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FollowSet:
		return FollowSet, nil
	case FollowLog:
		return FollowLog, nil
	}
	return "", fmt.Errorf("unknown follow policy %q", s)
}

const (
	followersColl = "followers"
	followingColl = "following"
)

// FollowerBadgerStore keeps followers and following collections in Badger.
//
//	fl/<user>/<coll>/e/<seq %020d> -> URI
//	fl/<user>/<coll>/x/<sha256(URI)> -> present (set policy only)
//	fl/<user>/<coll>/last           -> last seq
type FollowerBadgerStore struct {
	db     *badger.DB
	policy FollowPolicy
	mu     sync.Mutex
}

// NewFollowerBadgerStore returns a FollowerBadgerStore using policy.
func NewFollowerBadgerStore(db *badger.DB, policy FollowPolicy) *FollowerBadgerStore {
	if policy == "" {
		policy = FollowSet
	}
	return &FollowerBadgerStore{db: db, policy: policy}
}

// AddFollower records actorURI as a follower of target. It reports whether
// the collection changed.
func (s *FollowerBadgerStore) AddFollower(target domain.Username, actorURI string) (bool, error) {
	return s.add("store.AddFollower", target, followersColl, actorURI)
}

// Followers returns target's followers in insertion order.
func (s *FollowerBadgerStore) Followers(target domain.Username) ([]string, error) {
	return s.list("store.Followers", target, followersColl)
}

// AddFollowing records that actor follows targetURI.
func (s *FollowerBadgerStore) AddFollowing(actor domain.Username, targetURI string) (bool, error) {
	return s.add("store.AddFollowing", actor, followingColl, targetURI)
}

// Following returns the URIs actor follows in insertion order.
func (s *FollowerBadgerStore) Following(actor domain.Username) ([]string, error) {
	return s.list("store.Following", actor, followingColl)
}

func (s *FollowerBadgerStore) add(op string, user domain.Username, coll, uri string) (bool, error) {
	user = user.Normalize()
	if err := checkUsername(op, user); err != nil {
		return false, err
	}
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return false, domain.Validation(op, "empty actor URI")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := followKeyPrefix(user, coll)
	sum := sha256.Sum256([]byte(uri))
	indexKey := []byte(prefix + "x/" + hex.EncodeToString(sum[:]))

	added := false
	err := s.db.Update(func(txn *badger.Txn) error {
		if s.policy == FollowSet {
			_, err := txn.Get(indexKey)
			if err == nil {
				return nil
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		last, err := readSeq(txn, []byte(prefix+"last"))
		if err != nil {
			return err
		}
		seq := last + 1
		if err := txn.Set([]byte(fmt.Sprintf("%se/%020d", prefix, seq)), []byte(uri)); err != nil {
			return err
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], seq)
		if err := txn.Set([]byte(prefix+"last"), buf[:]); err != nil {
			return err
		}
		if s.policy == FollowSet {
			if err := txn.Set(indexKey, buf[:]); err != nil {
				return err
			}
		}
		added = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%s %s/%s: %w", op, user, coll, err)
	}
	return added, nil
}

func (s *FollowerBadgerStore) list(op string, user domain.Username, coll string) ([]string, error) {
	user = user.Normalize()
	if err := checkUsername(op, user); err != nil {
		return nil, err
	}
	prefix := []byte(followKeyPrefix(user, coll) + "e/")
	out := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 64, Prefix: prefix})
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, string(v))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s/%s: %w", op, user, coll, err)
	}
	return out, nil
}

func followKeyPrefix(user domain.Username, coll string) string {
	return "fl/" + user.String() + "/" + coll + "/"
}

// Compile-time assertion that FollowerBadgerStore implements domain.FollowerStore.
var _ domain.FollowerStore = (*FollowerBadgerStore)(nil)
