package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/IlyasAtabaev731/shop-backend/internal/lib/apperr"
	"github.com/IlyasAtabaev731/shop-backend/internal/lib/jwt"
	"github.com/IlyasAtabaev731/shop-backend/internal/storage"
	"github.com/google/uuid"
)

var errInvalidCredentials = apperr.Unauthorized("Invalid credentials")

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

func (s *APIServer) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.Username == "" || req.Password == "" {
			s.writeError(w, r, apperr.Validation("username and password are required"))
			return
		}

		customer, err := s.storage.GetCustomer(r.Context(), req.Username)
		if err != nil {
			if errors.Is(err, storage.ErrCustomerNotFound) {
				_, _ = s.hasher.Compare(s.decoy(), req.Password)
				s.writeError(w, r, errInvalidCredentials)
				return
			}
			s.writeError(w, r, err)
			return
		}

		ok, err := s.hasher.Compare(customer.PasswordHash, req.Password)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !ok {
			s.writeError(w, r, errInvalidCredentials)
			return
		}

		role := jwt.RoleCustomer
		if s.config.Auth.IsModerator(customer.Username) {
			role = jwt.RoleModerator
		}

		token, err := jwt.NewToken(jwt.Identity{
			CustomerID: customer.ID,
			Username:   customer.Username,
			Role:       role,
		}, string(s.jwtSecret), s.config.Auth.TokenTTL)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.log(r).Info("Customer logged in", slog.String("username", customer.Username), slog.String("role", role))

		writeJSON(w, http.StatusOK, AuthResponse{Token: token})
	}
}

// decoy returns a hash to compare against when the username is unknown, so
// a failed login costs the same whether or not the customer exists.
func (s *APIServer) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Error("Failed to build decoy hash", slog.String("error", err.Error()))
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}

func (s *APIServer) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenHeader := r.Header.Get("Authorization")
		if tokenHeader == "" {
			s.writeError(w, r, apperr.Unauthorized("Missing token"))
			return
		}

		parts := strings.Split(tokenHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.writeError(w, r, apperr.Unauthorized("Invalid token format"))
			return
		}

		identity, err := jwt.ParseToken(parts[1], string(s.jwtSecret))
		if err != nil {
			s.log(r).Debug("Token rejected", slog.String("error", err.Error()))
			s.writeError(w, r, apperr.Unauthorized("Invalid token"))
			return
		}

		r = r.WithContext(context.WithValue(r.Context(), identityKey, identity))
		next(w, r)
	}
}

func (s *APIServer) requireModerator(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFrom(r)
		if !ok || !identity.IsModerator() {
			s.writeError(w, r, apperr.Forbidden("Moderator role required"))
			return
		}
		next(w, r)
	}
}

func identityFrom(r *http.Request) (jwt.Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(jwt.Identity)
	return identity, ok
}
