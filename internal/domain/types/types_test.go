package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apnode/internal/domain/types"
)

func TestEndpoints_UsernameFromActorURI(t *testing.T) {
	ep := types.NewEndpoints("https://node.example/")

	u, ok := ep.UsernameFromActorURI("https://node.example/user/Alice")
	require.True(t, ok)
	assert.Equal(t, types.Username("alice"), u)

	u, ok = ep.UsernameFromActorURI("https://node.example/user/bob#main-key")
	require.True(t, ok)
	assert.Equal(t, types.Username("bob"), u)

	for _, uri := range []string{
		"https://other.example/user/bob",
		"https://node.example/user/",
		"https://node.example/user/bob/followers",
	} {
		_, ok := ep.UsernameFromActorURI(uri)
		assert.False(t, ok, uri)
	}
	assert.Equal(t, "node.example", ep.Host())
}

func TestActivity_ObjectShapes(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	note := types.NewNoteActivity("urn:1", "https://n/user/a", "https://n/user/b", "hi", at)
	b, err := json.Marshal(note)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"@context":"https://www.w3.org/ns/activitystreams",
		"id":"urn:1","type":"Create","actor":"https://n/user/a",
		"published":"2024-01-02T03:04:05Z",
		"object":{"type":"Note","content":"hi","to":["https://n/user/b"]}
	}`, string(b))

	like := types.NewURIActivity("urn:2", types.Like, "https://n/user/a", "https://n/note/1", at)
	b, err = json.Marshal(like)
	require.NoError(t, err)

	var back types.Activity
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Nil(t, back.Object.Note)
	assert.Equal(t, "https://n/note/1", back.Object.URI)
}

func TestInboxRecord_Encrypted(t *testing.T) {
	assert.False(t, types.InboxRecord{}.Encrypted())
	assert.True(t, types.InboxRecord{EncryptedMessage: []byte{1}}.Encrypted())
	assert.False(t, types.InboxRecord{EncryptedEnvelope: types.EncryptedEnvelope{EncryptedKey: []byte{1}}}.Encrypted())
}

func TestOrderedCollection(t *testing.T) {
	c := types.NewOrderedCollection("https://n/user/b/followers", []string{"x", "y"})
	assert.Equal(t, "OrderedCollection", c.Type)
	assert.Equal(t, 2, c.TotalItems)
	assert.Len(t, c.OrderedItems, 2)

	empty := types.NewOrderedCollection[string]("id", nil)
	b, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"orderedItems":[]`)
}
