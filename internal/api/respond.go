package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/IlyasAtabaev731/shop-backend/internal/domain/models"
	"github.com/IlyasAtabaev731/shop-backend/internal/lib/apperr"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

var errInvalidBody = apperr.Validation("Invalid request body")

type errorResponse struct {
	Error string `json:"error"`
	Limit string `json:"limit,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code. Errors outside the apperr
// taxonomy are logged and hidden behind a generic message.
func (s *APIServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal {
		s.log(r).Error("Request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, appErr.Status(), errorResponse{Error: appErr.Message})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody.With(err)
	}
	return nil
}

// pathID reads a numeric route variable. The route pattern guarantees
// digits, so an id that overflows an INT column cannot exist and is
// reported as notFound.
func pathID(r *http.Request, notFound error) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, notFound
	}
	return id, nil
}

func validName(field, value string) error {
	if utf8.RuneCountInString(value) > models.MaxNameLength {
		return apperr.Validation(fmt.Sprintf("%s must be at most %d characters", field, models.MaxNameLength))
	}
	return nil
}

func validMoney(field string, value decimal.Decimal) error {
	if !models.ValidMoney(value) {
		return apperr.Validation(fmt.Sprintf("%s must have at most %d decimal places and be less than %s",
			field, models.MoneyScale, models.MaxMoney))
	}
	return nil
}
