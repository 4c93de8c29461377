package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/IlyasAtabaev731/shop-backend/internal/lib/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptRoundTrip(t *testing.T) {
	h := &Bcrypt{Cost: bcrypt.MinCost}

	hash, err := h.Hash("Hellohello123")
	require.NoError(t, err)
	assert.NotEqual(t, "Hellohello123", hash)

	ok, err := h.Compare(hash, "Hellohello123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptSaltsEachHash(t *testing.T) {
	h := &Bcrypt{Cost: bcrypt.MinCost}

	first, err := h.Hash("secret")
	require.NoError(t, err)
	second, err := h.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptCompareMalformedHash(t *testing.T) {
	h := NewBcrypt()

	ok, err := h.Compare("not-a-bcrypt-hash", "secret")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestBcryptRejectsLongPassword(t *testing.T) {
	h := &Bcrypt{Cost: bcrypt.MinCost}

	_, err := h.Hash(strings.Repeat("a", MaxLength))
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("a", MaxLength+1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLong))
	assert.Equal(t, apperr.KindValidation, apperr.From(err).Kind)
}
