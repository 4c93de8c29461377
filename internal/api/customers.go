package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/IlyasAtabaev731/shop-backend/internal/domain/models"
	"github.com/IlyasAtabaev731/shop-backend/internal/lib/apperr"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

var errInvalidAmount = apperr.Validation("Invalid amount. Must be a positive number.")

type RegisterRequest struct {
	Fullname      string           `json:"fullname"`
	Username      string           `json:"username"`
	Password      string           `json:"password"`
	Age           *int             `json:"age"`
	Address       *string          `json:"address"`
	Gender        *string          `json:"gender"`
	MaritalStatus *bool            `json:"marital_status"`
	WalletBalance *decimal.Decimal `json:"wallet_balance"`
}

// UpdateCustomerRequest lists the patchable profile fields. Any other key
// in the body is ignored.
type UpdateCustomerRequest struct {
	Fullname      *string `json:"fullname"`
	Password      *string `json:"password"`
	Age           *int    `json:"age"`
	Address       *string `json:"address"`
	Gender        *string `json:"gender"`
	MaritalStatus *bool   `json:"marital_status"`
}

type WalletRequest struct {
	Amount json.RawMessage `json:"amount"`
}

type createdResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type balanceResponse struct {
	Message    string          `json:"message"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

func validateProfile(fullname *string, age *int, gender *string) error {
	if fullname != nil {
		if err := validName("fullname", *fullname); err != nil {
			return err
		}
	}
	if age != nil && *age < 0 {
		return apperr.Validation("Age must be non-negative")
	}
	if age != nil && *age > models.MaxInt {
		return apperr.Validation("Age is out of range")
	}
	if gender != nil && utf8.RuneCountInString(*gender) != 1 {
		return apperr.Validation("Gender must be a single character")
	}
	return nil
}

func (s *APIServer) registerCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		if req.Fullname == "" || req.Username == "" || req.Password == "" {
			s.writeError(w, r, apperr.Validation("fullname, username, and password are required"))
			return
		}
		if err := validName("username", req.Username); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := validateProfile(&req.Fullname, req.Age, req.Gender); err != nil {
			s.writeError(w, r, err)
			return
		}

		balance := decimal.Zero
		if req.WalletBalance != nil {
			if req.WalletBalance.IsNegative() {
				s.writeError(w, r, apperr.Validation("Wallet balance must be non-negative"))
				return
			}
			if err := validMoney("wallet_balance", *req.WalletBalance); err != nil {
				s.writeError(w, r, err)
				return
			}
			balance = *req.WalletBalance
		}

		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		id, err := s.storage.SaveCustomer(r.Context(), &models.Customer{
			Fullname:      req.Fullname,
			Username:      req.Username,
			PasswordHash:  hash,
			Age:           req.Age,
			Address:       req.Address,
			Gender:        req.Gender,
			MaritalStatus: req.MaritalStatus,
			WalletBalance: balance,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.log(r).Info("Customer registered", slog.String("username", req.Username), slog.Int64("id", id))

		writeJSON(w, http.StatusCreated, createdResponse{Message: "Customer registered successfully", ID: id})
	}
}

func (s *APIServer) listCustomersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customers, err := s.storage.ListCustomers(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, customers)
	}
}

func (s *APIServer) getCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, err := s.storage.GetCustomer(r.Context(), mux.Vars(r)["username"])
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, customer)
	}
}

func (s *APIServer) updateCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := mux.Vars(r)["username"]

		var req UpdateCustomerRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		patch := models.CustomerPatch{
			Fullname:      req.Fullname,
			Age:           req.Age,
			Address:       req.Address,
			Gender:        req.Gender,
			MaritalStatus: req.MaritalStatus,
		}
		if patch.Empty() && req.Password == nil {
			s.writeError(w, r, apperr.Validation("No valid fields provided for update"))
			return
		}
		if err := validateProfile(patch.Fullname, patch.Age, patch.Gender); err != nil {
			s.writeError(w, r, err)
			return
		}

		if req.Password != nil {
			hash, err := s.hasher.Hash(*req.Password)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			patch.PasswordHash = &hash
		}

		if err := s.storage.UpdateCustomer(r.Context(), username, patch); err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Message: "Customer '" + username + "' updated successfully"})
	}
}

func (s *APIServer) deleteCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := mux.Vars(r)["username"]

		if err := s.storage.DeleteCustomer(r.Context(), username); err != nil {
			s.writeError(w, r, err)
			return
		}

		s.log(r).Info("Customer deleted", slog.String("username", username))

		writeJSON(w, http.StatusOK, messageResponse{Message: "Customer '" + username + "' deleted successfully"})
	}
}

// parseAmount accepts a JSON number greater than zero that fits the wallet
// column exactly. Strings, booleans and null are rejected.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return decimal.Decimal{}, errInvalidAmount
	}

	amount, err := decimal.NewFromString(string(raw))
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, errInvalidAmount
	}
	if err := validMoney("amount", amount); err != nil {
		return decimal.Decimal{}, err
	}
	return amount, nil
}

func (s *APIServer) chargeWalletHandler() http.HandlerFunc {
	return s.walletHandler("Wallet charged successfully", s.storage.ChargeWallet)
}

func (s *APIServer) deductWalletHandler() http.HandlerFunc {
	return s.walletHandler("Amount deducted successfully", s.storage.DeductWallet)
}

type walletOp func(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error)

func (s *APIServer) walletHandler(message string, op walletOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := mux.Vars(r)["username"]

		var req WalletRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		amount, err := parseAmount(req.Amount)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		balance, err := op(r.Context(), username, amount)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, balanceResponse{Message: message, NewBalance: balance})
	}
}
