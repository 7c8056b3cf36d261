package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apnode/internal/domain"
	"apnode/internal/store"
)

func TestFollowers_SetPolicy_Dedup(t *testing.T) {
	s := store.NewFollowerBadgerStore(openDB(t), store.FollowSet)

	added, err := s.AddFollower("bob", "http://a.example/user/alice")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddFollower("bob", "http://a.example/user/alice")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = s.AddFollower("bob", "http://a.example/user/carol")
	require.NoError(t, err)

	got, err := s.Followers("bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.example/user/alice", "http://a.example/user/carol"}, got)
}

func TestFollowers_LogPolicy_KeepsDuplicates(t *testing.T) {
	s := store.NewFollowerBadgerStore(openDB(t), store.FollowLog)

	for i := 0; i < 2; i++ {
		added, err := s.AddFollower("bob", "http://a.example/user/alice")
		require.NoError(t, err)
		assert.True(t, added)
	}
	got, err := s.Followers("bob")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFollowing_SeparateFromFollowers(t *testing.T) {
	s := store.NewFollowerBadgerStore(openDB(t), "")

	_, err := s.AddFollowing("alice", "http://b.example/user/bob")
	require.NoError(t, err)

	following, err := s.Following("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://b.example/user/bob"}, following)

	followers, err := s.Followers("alice")
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestFollowers_EmptyURI(t *testing.T) {
	s := store.NewFollowerBadgerStore(openDB(t), store.FollowSet)
	_, err := s.AddFollower("bob", "  ")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseFollowPolicy(t *testing.T) {
	p, err := store.ParseFollowPolicy("")
	require.NoError(t, err)
	assert.Equal(t, store.FollowSet, p)

	p, err = store.ParseFollowPolicy("LOG")
	require.NoError(t, err)
	assert.Equal(t, store.FollowLog, p)

	_, err = store.ParseFollowPolicy("bag")
	require.Error(t, err)
}
