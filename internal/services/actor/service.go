package actor

import (
	"crypto/rsa"
	"log/slog"
	"time"

	"apnode/internal/crypto"
	"apnode/internal/domain"
	"apnode/internal/logging"
	"apnode/internal/metrics"
)

const maxUsernameLength = 64

// Service implements domain.KeyService on top of a domain.ActorStore.
type Service struct {
	store   domain.ActorStore
	ep      domain.Endpoints
	bits    int
	now     func() time.Time
	log     *slog.Logger
	metrics *metrics.Metrics
}

// Option customises a Service.
type Option func(*Service)

// WithKeyBits sets the RSA modulus size for new actors.
func WithKeyBits(bits int) Option { return func(s *Service) { s.bits = bits } }

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// WithMetrics records actor creation counts.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New returns an actor service that issues URIs under ep.
func New(store domain.ActorStore, ep domain.Endpoints, opts ...Option) *Service {
	s := &Service{store: store, ep: ep, bits: crypto.MinRSABits, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.OrDiscard(s.log).With("component", "actor")
	return s
}

// CreateActor registers username with a fresh keypair. It fails with
// domain.ErrConflict if the username (case-insensitively) is taken; an
// existing actor's key is never regenerated.
func (s *Service) CreateActor(username domain.Username) (domain.Actor, error) {
	const op = "actor.CreateActor"
	username, err := CheckUsername(op, username)
	if err != nil {
		return domain.Actor{}, err
	}
	// Cheap pre-check so a taken name does not pay for key generation. The
	// store's create is still the authoritative, atomic check.
	if _, err := s.store.LoadActor(username); err == nil {
		return domain.Actor{}, domain.Conflict(op, "actor %q already exists", username)
	}

	priv, err := crypto.GenerateRSA(s.bits)
	if err != nil {
		return domain.Actor{}, err
	}
	pubPEM, err := crypto.EncodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		return domain.Actor{}, err
	}
	privPEM, err := crypto.EncodePrivateKeyPEM(priv)
	if err != nil {
		return domain.Actor{}, err
	}

	actor := domain.Actor{
		ID:           s.ep.ActorURI(username),
		Username:     username,
		PublicKeyPEM: pubPEM,
		CreatedAt:    s.now().UTC(),
	}
	profile := domain.NewProfile(s.ep, username, pubPEM)
	if err := s.store.CreateActor(actor, profile, privPEM); err != nil {
		return domain.Actor{}, err
	}

	s.metrics.ActorCreated()
	s.log.Info("actor created", "username", username, "bits", s.bits)
	return actor, nil
}

// Actor returns the registered actor.
func (s *Service) Actor(username domain.Username) (domain.Actor, error) {
	username, err := CheckUsername("actor.Actor", username)
	if err != nil {
		return domain.Actor{}, err
	}
	return s.store.LoadActor(username)
}

// Profile returns the actor's Person document.
func (s *Service) Profile(username domain.Username) (domain.Profile, error) {
	username, err := CheckUsername("actor.Profile", username)
	if err != nil {
		return domain.Profile{}, err
	}
	return s.store.LoadProfile(username)
}

// PublicKey returns the actor's SPKI PEM.
func (s *Service) PublicKey(username domain.Username) (string, error) {
	a, err := s.Actor(username)
	if err != nil {
		return "", err
	}
	return a.PublicKeyPEM, nil
}

// Fingerprint returns a short fingerprint of the actor's public key.
func (s *Service) Fingerprint(username domain.Username) (domain.Fingerprint, error) {
	pemText, err := s.PublicKey(username)
	if err != nil {
		return "", err
	}
	pub, err := crypto.ParsePublicKeyPEM(pemText)
	if err != nil {
		return "", domain.Crypto("actor.Fingerprint", err)
	}
	fp, err := crypto.FingerprintRSA(pub)
	if err != nil {
		return "", err
	}
	return domain.Fingerprint(fp), nil
}

// PrivateKey loads and parses the actor's private key. Only signing and
// decryption on behalf of username may call this.
func (s *Service) PrivateKey(username domain.Username) (*rsa.PrivateKey, error) {
	const op = "actor.PrivateKey"
	username, err := CheckUsername(op, username)
	if err != nil {
		return nil, err
	}
	raw, err := s.store.LoadPrivateKeyPEM(username)
	if err != nil {
		return nil, err
	}
	priv, err := crypto.ParsePrivateKeyPEM(raw)
	if err != nil {
		return nil, domain.Crypto(op, err)
	}
	return priv, nil
}

// List returns all registered usernames.
func (s *Service) List() ([]domain.Username, error) { return s.store.ListActors() }

// Endpoints returns the URL scheme actors are published under.
func (s *Service) Endpoints() domain.Endpoints { return s.ep }

// CheckUsername normalises username and rejects anything outside
// [a-z0-9._-]{1,64}.
func CheckUsername(op string, username domain.Username) (domain.Username, error) {
	u := username.Normalize()
	name := u.String()
	if name == "" {
		return "", domain.Validation(op, "username is required")
	}
	if len(name) > maxUsernameLength {
		return "", domain.Validation(op, "username longer than %d characters", maxUsernameLength)
	}
	if name == "." || name == ".." {
		return "", domain.Validation(op, "invalid username %q", name)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return "", domain.Validation(op, "invalid character %q in username", r)
		}
	}
	return u, nil
}

// Compile-time assertion that Service implements domain.KeyService.
var _ domain.KeyService = (*Service)(nil)
