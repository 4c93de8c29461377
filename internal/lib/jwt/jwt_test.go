package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenParseToken(t *testing.T) {
	token, err := NewToken(Identity{CustomerID: 7, Username: "jdoe", Role: RoleModerator}, "secret", time.Hour)
	require.NoError(t, err)

	identity, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(7), identity.CustomerID)
	assert.Equal(t, "jdoe", identity.Username)
	assert.True(t, identity.IsModerator())
}

func TestParseTokenRejects(t *testing.T) {
	valid, err := NewToken(Identity{CustomerID: 1, Username: "jdoe", Role: RoleCustomer}, "secret", time.Hour)
	require.NoError(t, err)

	expired, err := NewToken(Identity{CustomerID: 1, Username: "jdoe"}, "secret", -time.Minute)
	require.NoError(t, err)

	none := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{"username": "jdoe"})
	unsigned, err := none.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{name: "wrong secret", token: valid, secret: "other"},
		{name: "expired", token: expired, secret: "secret"},
		{name: "alg none", token: unsigned, secret: "secret"},
		{name: "garbage", token: "not.a.token", secret: "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestParseTokenDefaultsRole(t *testing.T) {
	token, err := NewToken(Identity{CustomerID: 3, Username: "jdoe"}, "secret", time.Hour)
	require.NoError(t, err)

	identity, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, identity.Role)
	assert.False(t, identity.IsModerator())
}
