package types

import (
	"bytes"
	"encoding/json"
	"time"
)

// ActivityType enumerates the activities this node creates.
type ActivityType string

const (
	Create ActivityType = "Create"
	Follow ActivityType = "Follow"
	Like   ActivityType = "Like"
)

// Note is the object of a Create activity.
type Note struct {
	Type    string   `json:"type"`
	Content string   `json:"content"`
	To      []string `json:"to"`
}

// Object is either an embedded Note or a bare object URI.
type Object struct {
	Note *Note
	URI  string
}

// MarshalJSON encodes a Note as an object and a URI as a string.
func (o Object) MarshalJSON() ([]byte, error) {
	if o.Note != nil {
		return json.Marshal(o.Note)
	}
	return json.Marshal(o.URI)
}

// UnmarshalJSON mirrors MarshalJSON.
func (o *Object) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		o.Note = nil
		return json.Unmarshal(data, &o.URI)
	}
	var n Note
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	o.Note, o.URI = &n, ""
	return nil
}

// Activity is an immutable ActivityStreams activity.
type Activity struct {
	Context   string       `json:"@context"`
	ID        string       `json:"id,omitempty"`
	Type      ActivityType `json:"type"`
	Actor     string       `json:"actor"`
	Published time.Time    `json:"published"`
	Object    Object       `json:"object"`
}

// NewNoteActivity builds a Create activity carrying a Note addressed to recipientURI.
func NewNoteActivity(id, actorURI, recipientURI, content string, published time.Time) Activity {
	return Activity{
		Context:   ActivityStreamsContext,
		ID:        id,
		Type:      Create,
		Actor:     actorURI,
		Published: published.UTC(),
		Object: Object{Note: &Note{
			Type:    "Note",
			Content: content,
			To:      []string{recipientURI},
		}},
	}
}

// NewURIActivity builds a Follow or Like activity whose object is a URI.
func NewURIActivity(id string, kind ActivityType, actorURI, objectURI string, published time.Time) Activity {
	return Activity{
		Context:   ActivityStreamsContext,
		ID:        id,
		Type:      kind,
		Actor:     actorURI,
		Published: published.UTC(),
		Object:    Object{URI: objectURI},
	}
}

// OrderedCollection is the ActivityStreams collection returned for mailboxes
// and follower sets.
type OrderedCollection struct {
	Context      string `json:"@context"`
	ID           string `json:"id,omitempty"`
	Type         string `json:"type"`
	TotalItems   int    `json:"totalItems"`
	OrderedItems []any  `json:"orderedItems"`
}

// NewOrderedCollection wraps items in an OrderedCollection.
func NewOrderedCollection[T any](id string, items []T) OrderedCollection {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, it)
	}
	return OrderedCollection{
		Context:      ActivityStreamsContext,
		ID:           id,
		Type:         "OrderedCollection",
		TotalItems:   len(out),
		OrderedItems: out,
	}
}
