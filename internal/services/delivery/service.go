package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"apnode/internal/crypto"
	"apnode/internal/domain"
	"apnode/internal/logging"
	"apnode/internal/metrics"
	"apnode/internal/services/actor"
)

// DefaultTimeout bounds the network hop when none is configured.
const DefaultTimeout = 10 * time.Second

// Service implements domain.DeliveryService.
type Service struct {
	keys      domain.KeyService
	mailbox   domain.MailboxStore
	outbox    domain.OutboxIndex
	transport domain.Transport

	inboxBase string // where signed activities are POSTed; defaults to the actor base URL
	timeout   time.Duration
	now       func() time.Time
	newID     func() string
	log       *slog.Logger
	metrics   *metrics.Metrics
}

// Option customises a Service.
type Option func(*Service)

// WithTransport enables the network hop. Without a transport every send
// reports domain.Skipped.
func WithTransport(t domain.Transport) Option { return func(s *Service) { s.transport = t } }

// WithInboxBaseURL overrides the base URL recipient inboxes are reached at.
func WithInboxBaseURL(base string) Option {
	return func(s *Service) { s.inboxBase = strings.TrimRight(base, "/") }
}

// WithTimeout bounds the network hop.
func WithTimeout(d time.Duration) Option { return func(s *Service) { s.timeout = d } }

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithIDGenerator replaces the activity id generator.
func WithIDGenerator(f func() string) Option { return func(s *Service) { s.newID = f } }

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// WithMetrics records delivery outcomes.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// New returns a delivery service.
func New(
	keys domain.KeyService,
	mailbox domain.MailboxStore,
	outbox domain.OutboxIndex,
	opts ...Option,
) *Service {
	s := &Service{
		keys:    keys,
		mailbox: mailbox,
		outbox:  outbox,
		timeout: DefaultTimeout,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.inboxBase == "" {
		s.inboxBase = keys.Endpoints().Base
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	s.log = logging.OrDiscard(s.log).With("component", "delivery")
	return s
}

// Send delivers content from sender to recipient. On a failed network hop the
// returned error is a *domain.DeliveryError and the result still reports the
// committed outbox and inbox entries.
func (s *Service) Send(
	ctx context.Context,
	sender domain.Username,
	recipient domain.Username,
	content string,
) (domain.DeliveryResult, error) {
	const op = "delivery.Send"

	// 1. Validate.
	if strings.TrimSpace(sender.String()) == "" || strings.TrimSpace(recipient.String()) == "" || content == "" {
		return domain.DeliveryResult{}, domain.Validation(op, "sender, recipient and content are required")
	}
	sender, err := actor.CheckUsername(op, sender)
	if err != nil {
		return domain.DeliveryResult{}, err
	}
	recipient, err = actor.CheckUsername(op, recipient)
	if err != nil {
		return domain.DeliveryResult{}, err
	}
	if _, err := s.keys.Actor(sender); err != nil {
		return domain.DeliveryResult{}, err
	}

	// 2. Build the activity.
	ep := s.keys.Endpoints()
	sentAt := s.now().UTC()
	activity := domain.NewNoteActivity(
		ep.ActorURI(sender)+"/activities/"+s.newID(),
		ep.ActorURI(sender),
		ep.ActorURI(recipient),
		content,
		sentAt,
	)
	res := domain.DeliveryResult{Activity: activity, SentAt: sentAt}

	// 3. Outbox.
	rec, err := json.Marshal(domain.OutboxRecord{Activity: activity, SentAt: sentAt})
	if err != nil {
		return res, err
	}
	outEntry, err := s.mailbox.Append(sender, domain.Outbox, rec)
	if err != nil {
		return res, fmt.Errorf("%s: outbox: %w", op, err)
	}
	s.outbox.Invalidate(sender)
	s.metrics.Appended(domain.Outbox.String())
	res.OutboxEntryID = outEntry.ID

	// 4. Recipient key. No retry is queued when the recipient is unknown.
	recipientPEM, err := s.keys.PublicKey(recipient)
	if err != nil {
		return res, err
	}

	// 5. Encrypt.
	env, err := crypto.EncryptPEM(recipientPEM, []byte(content))
	if err != nil {
		return res, domain.Crypto(op, err)
	}

	// 6. Digest and signature.
	body, err := json.Marshal(activity)
	if err != nil {
		return res, err
	}
	req, err := s.signedRequest(sender, recipient, body, sentAt)
	if err != nil {
		return res, err
	}

	// 7. Network hop, bounded and detached from the caller's cancellation.
	hop := s.deliver(ctx, req)
	res.Status, res.RemoteStatus, res.Detail = hop.status, hop.remoteStatus, hop.detail

	// 8. Local inbox write, whatever the hop did.
	inRec, err := json.Marshal(domain.InboxRecord{
		EncryptedEnvelope: env,
		From:              sender,
		To:                recipient,
		ReceivedAt:        s.now().UTC(),
	})
	if err != nil {
		return res, err
	}
	inEntry, err := s.mailbox.Append(recipient, domain.Inbox, inRec)
	if err != nil {
		return res, fmt.Errorf("%s: inbox: %w", op, err)
	}
	s.metrics.Appended(domain.Inbox.String())
	res.InboxEntryID = inEntry.ID
	res.LocalCommitted = true

	// 9. Result.
	s.metrics.Delivery(string(res.Status), hop.elapsed.Seconds())
	log := s.log.With("sender", sender, "recipient", recipient, "status", res.Status,
		"outbox_entry", res.OutboxEntryID, "inbox_entry", res.InboxEntryID)
	switch res.Status {
	case domain.Delivered, domain.Skipped:
		log.Info("message sent")
		return res, nil
	default:
		log.Warn("remote delivery failed", "remote_status", res.RemoteStatus, "detail", res.Detail)
		return res, &domain.DeliveryError{
			Status:       res.Status,
			RemoteStatus: res.RemoteStatus,
			Detail:       res.Detail,
			Err:          hop.err,
		}
	}
}

func (s *Service) signedRequest(sender, recipient domain.Username, body []byte, at time.Time) (domain.OutboundRequest, error) {
	const op = "delivery.sign"
	ep := s.keys.Endpoints()
	inboxURL := s.inboxBase + ep.InboxPath(recipient)
	u, err := url.Parse(inboxURL)
	if err != nil {
		return domain.OutboundRequest{}, domain.Validation(op, "bad inbox URL %q", inboxURL)
	}

	priv, err := s.keys.PrivateKey(sender)
	if err != nil {
		return domain.OutboundRequest{}, err
	}
	digest := crypto.Digest(body)
	date := crypto.HTTPDate(at)
	signer := crypto.HTTPSigner{Host: u.Host}
	sig, err := signer.Sign(priv, ep.KeyID(sender), u.EscapedPath(), date, digest)
	if err != nil {
		return domain.OutboundRequest{}, domain.Crypto(op, err)
	}
	return domain.OutboundRequest{
		InboxURL:  inboxURL,
		Host:      u.Host,
		Date:      date,
		Digest:    digest,
		Signature: sig,
		Body:      body,
	}, nil
}

// loopback reports whether recipient inboxes live on this node.
func (s *Service) loopback() bool {
	return s.inboxBase == s.keys.Endpoints().Base
}

type hopResult struct {
	status       domain.DeliveryStatus
	remoteStatus int
	detail       string
	err          error
	elapsed      time.Duration
}

// deliver runs the transport in its own goroutine under s.timeout. The hop
// ignores cancellation of ctx so an abandoned send still finishes. An inbox
// on this node is satisfied by the step-8 write alone.
func (s *Service) deliver(ctx context.Context, req domain.OutboundRequest) hopResult {
	if s.transport == nil {
		return hopResult{status: domain.Skipped, detail: "federation disabled"}
	}
	if s.loopback() {
		return hopResult{status: domain.Delivered, detail: "local inbox"}
	}

	hopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	type outcome struct {
		resp domain.RemoteResponse
		err  error
	}
	done := make(chan outcome, 1)
	start := s.now()
	go func() {
		resp, err := s.transport.Deliver(hopCtx, req)
		done <- outcome{resp, err}
	}()

	var o outcome
	select {
	case o = <-done:
	case <-hopCtx.Done():
		o = outcome{err: hopCtx.Err()}
	}
	elapsed := s.now().Sub(start)

	switch {
	case o.err != nil && errors.Is(o.err, context.DeadlineExceeded):
		return hopResult{status: domain.TimedOut, detail: fmt.Sprintf("no response within %s", s.timeout), err: o.err, elapsed: elapsed}
	case o.err != nil:
		return hopResult{status: domain.Unreachable, detail: o.err.Error(), err: o.err, elapsed: elapsed}
	case !o.resp.OK():
		return hopResult{status: domain.RemoteRejected, remoteStatus: o.resp.StatusCode, detail: truncate(o.resp.Body, 512), elapsed: elapsed}
	}
	return hopResult{status: domain.Delivered, remoteStatus: o.resp.StatusCode, elapsed: elapsed}
}

// Receive stores body verbatim in recipient's inbox. It checks only that body
// is JSON; signature checks, when enabled, happen before this call. An
// activity this node published itself is an echo of a send whose encrypted
// copy is already in the inbox: it is acknowledged with an empty entry and
// not stored.
func (s *Service) Receive(ctx context.Context, recipient domain.Username, body []byte) (domain.MailboxEntry, error) {
	const op = "delivery.Receive"
	recipient, err := actor.CheckUsername(op, recipient)
	if err != nil {
		return domain.MailboxEntry{}, err
	}
	if _, err := s.keys.Actor(recipient); err != nil {
		return domain.MailboxEntry{}, err
	}
	if len(body) == 0 || !json.Valid(body) {
		return domain.MailboxEntry{}, domain.Validation(op, "body is not valid JSON")
	}
	if s.ownActivity(body) {
		s.log.Debug("own activity echoed back, not stored", "recipient", recipient)
		return domain.MailboxEntry{}, nil
	}
	entry, err := s.mailbox.Append(recipient, domain.Inbox, body)
	if err != nil {
		return domain.MailboxEntry{}, err
	}
	s.metrics.Appended(domain.Inbox.String())
	s.log.Debug("activity received", "recipient", recipient, "entry", entry.ID, "body", body)
	return entry, nil
}

// ownActivity reports whether body is an activity whose id was minted by Send
// for a local actor.
func (s *Service) ownActivity(body []byte) bool {
	var head struct {
		ID    string `json:"id"`
		Actor string `json:"actor"`
	}
	if json.Unmarshal(body, &head) != nil || head.ID == "" {
		return false
	}
	ep := s.keys.Endpoints()
	author, ok := ep.UsernameFromActorURI(head.Actor)
	if !ok || !strings.HasPrefix(head.ID, ep.ActorURI(author)+"/activities/") {
		return false
	}
	_, err := s.keys.Actor(author)
	return err == nil
}

// ListInbox returns recipient's inbox in order.
func (s *Service) ListInbox(username domain.Username) ([]domain.MailboxEntry, error) {
	return s.list("delivery.ListInbox", username, domain.Inbox)
}

// ListOutbox returns sender's outbox in order.
func (s *Service) ListOutbox(username domain.Username) ([]domain.MailboxEntry, error) {
	return s.list("delivery.ListOutbox", username, domain.Outbox)
}

func (s *Service) list(op string, username domain.Username, d domain.Direction) ([]domain.MailboxEntry, error) {
	username, err := actor.CheckUsername(op, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.keys.Actor(username); err != nil {
		return nil, err
	}
	return s.mailbox.List(username, d)
}

// OutboxActivities returns the activities of username's outbox through the
// read-through cache.
func (s *Service) OutboxActivities(username domain.Username) ([]domain.Activity, error) {
	const op = "delivery.OutboxActivities"
	username, err := actor.CheckUsername(op, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.keys.Actor(username); err != nil {
		return nil, err
	}
	return s.outbox.Activities(username)
}

// DecryptInbox decrypts every inbox entry with the owner's key. Each entry
// succeeds or fails on its own; a bad entry never aborts the listing.
func (s *Service) DecryptInbox(username domain.Username) ([]domain.DecryptedEntry, error) {
	const op = "delivery.DecryptInbox"
	entries, err := s.ListInbox(username)
	if err != nil {
		return nil, err
	}
	priv, err := s.keys.PrivateKey(username)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DecryptedEntry, 0, len(entries))
	for _, e := range entries {
		d := domain.DecryptedEntry{EntryID: e.ID}
		var rec domain.InboxRecord
		switch {
		case json.Unmarshal(e.Payload, &rec) != nil || !rec.Encrypted():
			d.Err = domain.Crypto(op, domain.ErrNotEncrypted)
		case len(rec.EncryptedMessage) > 0:
			d.From = rec.From.String()
			pt, err := crypto.DecryptDirect(priv, rec.EncryptedMessage)
			if err != nil {
				d.Err = domain.Crypto(op, err)
			} else {
				d.Plaintext = string(pt)
			}
		default:
			d.From = rec.From.String()
			pt, err := crypto.Decrypt(priv, rec.EncryptedEnvelope)
			if err != nil {
				d.Err = domain.Crypto(op, err)
			} else {
				d.Plaintext = string(pt)
			}
		}
		if d.Err != nil {
			d.Error = d.Err.Error()
			s.metrics.DecryptFailed()
			s.log.Debug("inbox entry not decryptable", "owner", username, "entry", e.ID, "error", d.Err)
		}
		out = append(out, d)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Compile-time assertion that Service implements domain.DeliveryService.
var _ domain.DeliveryService = (*Service)(nil)
