package types

import "time"

// DeliveryStatus is the outcome of the network hop of a send.
type DeliveryStatus string

const (
	Delivered      DeliveryStatus = "delivered"
	RemoteRejected DeliveryStatus = "remote-rejected"
	TimedOut       DeliveryStatus = "timed-out"
	Unreachable    DeliveryStatus = "unreachable"
	Skipped        DeliveryStatus = "skipped"
)

// DeliveryResult reports both halves of a send: the local commit (outbox and
// inbox entries) and the remote hop.
type DeliveryResult struct {
	Activity       Activity       `json:"activity"`
	OutboxEntryID  string         `json:"outboxEntryId"`
	InboxEntryID   string         `json:"inboxEntryId,omitempty"`
	LocalCommitted bool           `json:"localCommitted"`
	SentAt         time.Time      `json:"sentAt"`
	Status         DeliveryStatus `json:"status"`
	RemoteStatus   int            `json:"remoteStatus,omitempty"`
	Detail         string         `json:"detail,omitempty"`
}

// OutboundRequest is a signed POST of an activity to a recipient inbox.
type OutboundRequest struct {
	InboxURL  string
	Host      string
	Date      string
	Digest    string
	Signature string
	Body      []byte
}

// RemoteResponse is what the recipient node answered.
type RemoteResponse struct {
	StatusCode int
	Body       string
}

// OK reports a 2xx response.
func (r RemoteResponse) OK() bool { return r.StatusCode/100 == 2 }
