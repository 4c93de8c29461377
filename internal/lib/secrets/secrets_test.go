package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvResolve(t *testing.T) {
	t.Setenv("DB_USER", "shop")
	t.Setenv("DB_PASSWORD", "pass")
	t.Setenv("JWT_SECRET", "signing-key")

	s, err := Env{}.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Secrets{DBUser: "shop", DBPassword: "pass", JWTSecret: "signing-key"}, s)
}

func TestEnvResolveIncomplete(t *testing.T) {
	t.Setenv("DB_USER", "shop")
	t.Setenv("DB_PASSWORD", "pass")
	t.Setenv("JWT_SECRET", "")

	_, err := Env{}.Resolve(context.Background())
	assert.ErrorContains(t, err, "JWT_SECRET is empty")
}

func TestFileResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db_credentials.json")
	doc := `{"DB_USER": "shop", "DB_PASSWORD": "pass", "JWT_SECRET": "signing-key"}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	s, err := File{Path: path}.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "shop", s.DBUser)
	assert.Equal(t, "pass", s.DBPassword)
	assert.Equal(t, "signing-key", s.JWTSecret)
}

func TestFileResolveMissing(t *testing.T) {
	_, err := File{Path: filepath.Join(t.TempDir(), "absent.json")}.Resolve(context.Background())
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider("", "")
	require.NoError(t, err)
	assert.IsType(t, Env{}, p)

	p, err = NewProvider(ProviderFile, "/run/secrets/db.json")
	require.NoError(t, err)
	assert.Equal(t, File{Path: "/run/secrets/db.json"}, p)

	_, err = NewProvider(ProviderFile, "")
	assert.Error(t, err)

	_, err = NewProvider("vault", "")
	assert.Error(t, err)
}
