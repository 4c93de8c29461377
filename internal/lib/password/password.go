package password

import (
	"errors"
	"fmt"

	"github.com/IlyasAtabaev731/shop-backend/internal/lib/apperr"
	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest password bcrypt accepts, in bytes.
const MaxLength = 72

var ErrTooLong = apperr.Validation("Password must be at most 72 bytes")

type Hasher interface {
	Hash(plain string) (string, error)
	// Compare reports whether plain matches hash. A mismatch is not an error.
	Compare(hash, plain string) (bool, error)
}

type Bcrypt struct {
	Cost int
}

func NewBcrypt() *Bcrypt {
	return &Bcrypt{Cost: bcrypt.DefaultCost}
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	const op = "lib.password.Hash"

	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	if len(plain) > MaxLength {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%s: %w", op, ErrTooLong.With(err))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(hash), nil
}

func (b *Bcrypt) Compare(hash, plain string) (bool, error) {
	const op = "lib.password.Compare"

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, err)
	}
}
