package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"apnode/internal/domain"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{domain.Validation("op", "bad %s", "thing"), domain.ErrValidation},
		{domain.Conflict("op", "dup"), domain.ErrConflict},
		{fmt.Errorf("wrapped: %w", domain.NotFound("op", "gone")), domain.ErrNotFound},
		{domain.Crypto("op", errors.New("bad pad")), domain.ErrCrypto},
		{&domain.DeliveryError{Status: domain.TimedOut}, domain.ErrDelivery},
		{errors.New("disk on fire"), nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, domain.KindOf(tc.err), "%v", tc.err)
	}
}

func TestError_MessageAndCause(t *testing.T) {
	cause := errors.New("short read")
	err := domain.Crypto("delivery.DecryptInbox", cause)

	assert.Equal(t, "delivery.DecryptInbox: crypto failure: short read", err.Error())
	assert.ErrorIs(t, err, cause)

	err = domain.Validation("actor.CreateActor", "username is required")
	assert.Equal(t, "actor.CreateActor: username is required", err.Error())
}

func TestDeliveryError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &domain.DeliveryError{Status: domain.RemoteRejected, RemoteStatus: 503, Detail: "busy", Err: cause}

	assert.ErrorIs(t, err, domain.ErrDelivery)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "delivery remote-rejected (remote status 503): busy: dial tcp: refused", err.Error())
}

func TestDeliveryError_DetailFromCausePrintedOnce(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:3000: connect: connection refused")
	err := &domain.DeliveryError{Status: domain.Unreachable, Detail: cause.Error(), Err: cause}

	assert.Equal(t, "delivery unreachable: dial tcp 127.0.0.1:3000: connect: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}
