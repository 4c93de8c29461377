package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ProviderEnv  = "env"
	ProviderFile = "file"
)

// Secrets are the credentials the process needs at startup. The JSON keys
// match the layout of the stored secret document.
type Secrets struct {
	DBUser     string `json:"DB_USER" env:"DB_USER"`
	DBPassword string `json:"DB_PASSWORD" env:"DB_PASSWORD"`
	JWTSecret  string `json:"JWT_SECRET" env:"JWT_SECRET"`
}

func (s *Secrets) validate() error {
	switch {
	case s.DBUser == "":
		return errors.New("DB_USER is empty")
	case s.DBPassword == "":
		return errors.New("DB_PASSWORD is empty")
	case s.JWTSecret == "":
		return errors.New("JWT_SECRET is empty")
	}
	return nil
}

type Provider interface {
	Resolve(ctx context.Context) (*Secrets, error)
}

// Env reads secrets from process environment variables.
type Env struct{}

func (Env) Resolve(_ context.Context) (*Secrets, error) {
	const op = "lib.secrets.Env.Resolve"

	var s Secrets
	if err := cleanenv.ReadEnv(&s); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &s, nil
}

// File reads secrets from a mounted JSON (or YAML) document, e.g. a
// secret-manager export or a Kubernetes secret volume.
type File struct {
	Path string
}

func (f File) Resolve(_ context.Context) (*Secrets, error) {
	const op = "lib.secrets.File.Resolve"

	var s Secrets
	if err := cleanenv.ReadConfig(f.Path, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &s, nil
}

func NewProvider(kind, path string) (Provider, error) {
	switch kind {
	case "", ProviderEnv:
		return Env{}, nil
	case ProviderFile:
		if path == "" {
			return nil, errors.New("secrets file path is required")
		}
		return File{Path: path}, nil
	default:
		return nil, fmt.Errorf("unknown secrets provider %q", kind)
	}
}
