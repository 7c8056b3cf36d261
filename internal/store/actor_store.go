package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"apnode/internal/domain"
)

const (
	actorsDir      = "actors"
	actorFile      = "actor.json" // written last; its presence marks a complete actor
	profileFile    = "profile.json"
	publicKeyFile  = "public-key.pem"
	privateKeyFile = "private-key.pem" // plain PKCS#8, used when no passphrase is set
	sealedKeyFile  = "private-key.enc"
)

// ActorFileStore persists one directory per actor under <dir>/actors.
type ActorFileStore struct {
	dir    string
	sealer keySealer
	mu     sync.Mutex
}

// ActorStoreOption customises an ActorFileStore.
type ActorStoreOption func(*ActorFileStore)

// WithPassphrase seals private keys at rest with scrypt + XChaCha20-Poly1305.
func WithPassphrase(passphrase string) ActorStoreOption {
	return func(s *ActorFileStore) { s.sealer.passphrase = passphrase }
}

// WithScryptCost overrides the scrypt work factor (N must be a power of two).
func WithScryptCost(n, r, p int) ActorStoreOption {
	return func(s *ActorFileStore) { s.sealer.kdf = kdfParams{N: n, R: r, P: p} }
}

// NewActorFileStore returns an ActorFileStore rooted at dir.
func NewActorFileStore(dir string, opts ...ActorStoreOption) *ActorFileStore {
	s := &ActorFileStore{dir: dir, sealer: keySealer{kdf: defaultKDF()}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateActor registers actor. The actor directory is created with a single
// mkdir, so exactly one of two concurrent creates wins; the loser gets
// domain.ErrConflict. A failed create leaves nothing behind, and a directory
// left by an interrupted create is reclaimed.
func (s *ActorFileStore) CreateActor(actor domain.Actor, profile domain.Profile, privateKeyPEM []byte) (err error) {
	const op = "store.CreateActor"
	username := actor.Username.Normalize()
	if err := checkUsername(op, username); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root := filepath.Join(s.dir, actorsDir)
	if err := os.MkdirAll(root, 0o700); err != nil {
		return err
	}
	dir := filepath.Join(root, username.String())
	if err := s.claimDir(dir); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return domain.Conflict(op, "actor %q already exists", username)
		}
		return err
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
		}
	}()

	if err := storeFile(filepath.Join(dir, publicKeyFile), []byte(actor.PublicKeyPEM), 0o644); err != nil {
		return err
	}
	if s.sealer.enabled() {
		blob, err := s.sealer.seal(username, privateKeyPEM)
		if err != nil {
			return err
		}
		if err := storeFile(filepath.Join(dir, sealedKeyFile), blob, 0o600); err != nil {
			return err
		}
	} else if err := storeFile(filepath.Join(dir, privateKeyFile), privateKeyPEM, 0o600); err != nil {
		return err
	}
	if err := storeJSON(filepath.Join(dir, profileFile), profile, 0o644); err != nil {
		return err
	}
	actor.Username = username
	return storeJSON(filepath.Join(dir, actorFile), actor, 0o600)
}

// claimDir creates dir. A dir without actor.json is the remains of a create
// that never finished; it is removed and claimed again. Callers hold s.mu.
func (s *ActorFileStore) claimDir(dir string) error {
	err := os.Mkdir(dir, 0o700)
	if !errors.Is(err, fs.ErrExist) {
		return err
	}
	if _, statErr := os.Stat(filepath.Join(dir, actorFile)); !errors.Is(statErr, fs.ErrNotExist) {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.Mkdir(dir, 0o700)
}

// LoadActor returns the stored actor record.
func (s *ActorFileStore) LoadActor(username domain.Username) (domain.Actor, error) {
	var actor domain.Actor
	if err := s.load("store.LoadActor", username, actorFile, &actor); err != nil {
		return domain.Actor{}, err
	}
	return actor, nil
}

// LoadProfile returns the stored Person document.
func (s *ActorFileStore) LoadProfile(username domain.Username) (domain.Profile, error) {
	var profile domain.Profile
	if err := s.load("store.LoadProfile", username, profileFile, &profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

// LoadPrivateKeyPEM returns the actor's PKCS#8 PEM, unsealing it if needed.
func (s *ActorFileStore) LoadPrivateKeyPEM(username domain.Username) ([]byte, error) {
	const op = "store.LoadPrivateKeyPEM"
	username = username.Normalize()
	if err := checkUsername(op, username); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.dir, actorsDir, username.String())

	sealed, ok, err := loadFile(filepath.Join(dir, sealedKeyFile))
	if err != nil {
		return nil, err
	}
	if ok {
		if !s.sealer.enabled() {
			return nil, domain.Crypto(op, errors.New("private key is sealed but no passphrase is configured"))
		}
		pemBytes, err := s.sealer.open(username, sealed)
		if err != nil {
			return nil, domain.Crypto(op, err)
		}
		return pemBytes, nil
	}

	plain, ok, err := loadFile(filepath.Join(dir, privateKeyFile))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound(op, "no private key for %q", username)
	}
	return plain, nil
}

// ListActors returns all complete actors in lexical order.
func (s *ActorFileStore) ListActors() ([]domain.Username, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, actorsDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]domain.Username, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dir, actorsDir, e.Name(), actorFile)); err != nil {
			continue
		}
		out = append(out, domain.Username(e.Name()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *ActorFileStore) load(op string, username domain.Username, name string, out any) error {
	username = username.Normalize()
	if err := checkUsername(op, username); err != nil {
		return err
	}
	ok, err := loadJSON(filepath.Join(s.dir, actorsDir, username.String(), name), out)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound(op, "actor %q not found", username)
	}
	return nil
}

// checkUsername keeps usernames usable as a single path segment and key part.
func checkUsername(op string, u domain.Username) error {
	name := u.String()
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`+"\x00") {
		return domain.Validation(op, "invalid username %q", name)
	}
	return nil
}

// Compile-time assertion that ActorFileStore implements domain.ActorStore.
var _ domain.ActorStore = (*ActorFileStore)(nil)
