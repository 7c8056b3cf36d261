package memzero_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"apnode/internal/util/memzero"
)

func TestZero(t *testing.T) {
	key := []byte{1, 2, 3, 4}
	memzero.Zero(key)
	assert.Equal(t, []byte{0, 0, 0, 0}, key)

	memzero.Zero(nil)
}
