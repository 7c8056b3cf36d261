package actor_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apnode/internal/crypto"
	"apnode/internal/domain"
	"apnode/internal/metrics"
	"apnode/internal/services/actor"
	"apnode/internal/store"
)

func newService(t *testing.T, opts ...actor.Option) *actor.Service {
	t.Helper()
	return actor.New(store.NewActorFileStore(t.TempDir()), domain.NewEndpoints("https://node.example/"), opts...)
}

func TestCreateActor_ProfileAndKeys(t *testing.T) {
	m := metrics.New()
	svc := newService(t, actor.WithMetrics(m))

	a, err := svc.CreateActor("Alice")
	require.NoError(t, err)
	assert.Equal(t, domain.Username("alice"), a.Username)
	assert.Equal(t, "https://node.example/user/alice", a.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActorsCreated))

	p, err := svc.Profile("alice")
	require.NoError(t, err)
	assert.Equal(t, "https://www.w3.org/ns/activitystreams", p.Context)
	assert.Equal(t, "Person", p.Type)
	assert.Equal(t, "alice", p.PreferredUsername)
	assert.Equal(t, "https://node.example/inbox/alice", p.Inbox)
	assert.Equal(t, "https://node.example/outbox/alice", p.Outbox)
	assert.Equal(t, "https://node.example/user/alice/followers", p.Followers)
	assert.Equal(t, "https://node.example/user/alice/following", p.Following)
	assert.Equal(t, "https://node.example/user/alice#main-key", p.PublicKey.ID)
	assert.Equal(t, a.ID, p.PublicKey.Owner)
	assert.Equal(t, a.PublicKeyPEM, p.PublicKey.PublicKeyPEM)

	pemText, err := svc.PublicKey("ALICE")
	require.NoError(t, err)
	pub, err := crypto.ParsePublicKeyPEM(pemText)
	require.NoError(t, err)
	assert.Equal(t, 2048, pub.N.BitLen())

	priv, err := svc.PrivateKey("alice")
	require.NoError(t, err)
	env, err := crypto.Encrypt(pub, []byte("round trip"))
	require.NoError(t, err)
	pt, err := crypto.Decrypt(priv, env)
	require.NoError(t, err)
	assert.Equal(t, "round trip", string(pt))

	fp, err := svc.Fingerprint("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, fp)
}

func TestCreateActor_DuplicateCaseInsensitive(t *testing.T) {
	svc := newService(t)

	first, err := svc.CreateActor("alice")
	require.NoError(t, err)
	_, err = svc.CreateActor("ALICE")
	require.ErrorIs(t, err, domain.ErrConflict)

	again, err := svc.Actor("alice")
	require.NoError(t, err)
	assert.Equal(t, first.PublicKeyPEM, again.PublicKeyPEM, "existing key must not be regenerated")
}

func TestCreateActor_ConcurrentOneWinner(t *testing.T) {
	svc := newService(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateActor("bob")
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		if err == nil {
			ok++
		} else if errors.Is(err, domain.ErrConflict) {
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflict)
}

func TestCreateActor_WeakKeyRejected(t *testing.T) {
	svc := newService(t, actor.WithKeyBits(1024))
	_, err := svc.CreateActor("carol")
	require.ErrorIs(t, err, domain.ErrValidation)
	require.ErrorIs(t, err, domain.ErrWeakKey)
}

func TestUnknownActor_NotFound(t *testing.T) {
	svc := newService(t)

	_, err := svc.PublicKey("ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.PrivateKey("ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckUsername(t *testing.T) {
	valid := []domain.Username{"alice", " Bob ", "a.b-c_d", "x1"}
	for _, u := range valid {
		_, err := actor.CheckUsername("test", u)
		assert.NoError(t, err, "username %q", u)
	}
	invalid := []domain.Username{"", "..", "a/b", "al ice", "émile", domain.Username(make([]byte, 65))}
	for _, u := range invalid {
		_, err := actor.CheckUsername("test", u)
		assert.ErrorIs(t, err, domain.ErrValidation, "username %q", u)
	}
}
