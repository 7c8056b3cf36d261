package app

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/multierr"

	"apnode/internal/domain"
	"apnode/internal/federation"
	"apnode/internal/logging"
	"apnode/internal/metrics"
	"apnode/internal/server"
	actorsvc "apnode/internal/services/actor"
	deliverysvc "apnode/internal/services/delivery"
	socialsvc "apnode/internal/services/social"
	"apnode/internal/store"
)

// dbDir is the Badger directory under Config.Home.
const dbDir = "db"

// Wire bundles all stores, services and the HTTP server.
type Wire struct {
	Config  Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	DB        *badger.DB
	Actors    *store.ActorFileStore
	Mailbox   *store.MailboxBadgerStore
	Followers *store.FollowerBadgerStore
	Outbox    *store.OutboxCache

	Keys      *actorsvc.Service
	Delivery  *deliverysvc.Service
	Social    *socialsvc.Service
	Transport *federation.HTTP // nil when federation is disabled

	Server *server.Server
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (w *Wire, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: cfg.LogWriter})
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}

	db, err := store.OpenBadger(store.BadgerOptions{
		Dir:        filepath.Join(cfg.Home, dbDir),
		SyncWrites: cfg.Mailbox.SyncWrites,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}
	w = &Wire{Config: cfg, Logger: log, DB: db, Metrics: metrics.New()}
	defer func() {
		if err != nil {
			_ = w.Close()
		}
	}()

	// Stores
	var storeOpts []store.ActorStoreOption
	if cfg.Keys.Passphrase != "" {
		storeOpts = append(storeOpts, store.WithPassphrase(cfg.Keys.Passphrase))
	}
	w.Actors = store.NewActorFileStore(cfg.Home, storeOpts...)
	w.Mailbox = store.NewMailboxBadgerStore(db)
	policy, err := store.ParseFollowPolicy(cfg.Mailbox.FollowPolicy)
	if err != nil {
		return nil, err
	}
	w.Followers = store.NewFollowerBadgerStore(db, policy)
	if w.Outbox, err = store.NewOutboxCache(w.Mailbox, cfg.Cache.OutboxSize); err != nil {
		return nil, err
	}

	// Services
	ep := domain.NewEndpoints(cfg.BaseURL)
	w.Keys = actorsvc.New(w.Actors, ep,
		actorsvc.WithKeyBits(cfg.Keys.Bits),
		actorsvc.WithLogger(log),
		actorsvc.WithMetrics(w.Metrics),
	)

	dopts := []deliverysvc.Option{
		deliverysvc.WithTimeout(cfg.Federation.Timeout),
		deliverysvc.WithLogger(log),
		deliverysvc.WithMetrics(w.Metrics),
	}
	if cfg.Federation.InboxBaseURL != "" {
		dopts = append(dopts, deliverysvc.WithInboxBaseURL(cfg.Federation.InboxBaseURL))
	}
	if cfg.Federation.Enabled {
		w.Transport = federation.NewHTTP(cfg.Federation.Timeout)
		dopts = append(dopts, deliverysvc.WithTransport(w.Transport))
	}
	w.Delivery = deliverysvc.New(w.Keys, w.Mailbox, w.Outbox, dopts...)
	w.Social = socialsvc.New(w.Keys, w.Followers, log)

	// HTTP
	deps := server.Deps{
		Actors:       w.Keys,
		Delivery:     w.Delivery,
		Social:       w.Social,
		Metrics:      w.Metrics,
		Logger:       log,
		InboxLimiter: server.NewMapLimiter(cfg.Inbox.RateLimit.RPS, cfg.Inbox.RateLimit.Burst, 0),
	}
	if cfg.Federation.VerifyInbound {
		v := &server.Verifier{Actors: w.Keys}
		if w.Transport != nil {
			v.Fetcher = w.Transport
		}
		deps.Verifier = v
	}
	w.Server = server.New(deps)

	log.Debug("node wired", "home", cfg.Home, "base_url", cfg.BaseURL,
		"federation", cfg.Federation.Enabled, "follow_policy", policy)
	return w, nil
}

// Node returns the core facade over the wired services.
func (w *Wire) Node() *Node { return NewNode(w.Keys, w.Delivery, w.Social) }

// Close flushes and releases the database.
func (w *Wire) Close() error {
	if w.DB == nil {
		return nil
	}
	err := multierr.Combine(w.DB.Sync(), w.DB.Close())
	w.DB = nil
	return err
}
