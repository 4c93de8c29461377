package api

import (
	"log/slog"
	"net/http"

	"github.com/IlyasAtabaev731/shop-backend/internal/domain/models"
	"github.com/IlyasAtabaev731/shop-backend/internal/lib/apperr"
	"github.com/IlyasAtabaev731/shop-backend/internal/storage"
	"github.com/shopspring/decimal"
)

type ItemRequest struct {
	Name         *string          `json:"name"`
	Category     *string          `json:"category"`
	PricePerItem *decimal.Decimal `json:"price_per_item"`
	Description  *string          `json:"description"`
	CountInStock *int             `json:"count_in_stock"`
}

type DeductStockRequest struct {
	Quantity *int `json:"quantity"`
}

type stockResponse struct {
	Message      string `json:"message"`
	CountInStock int    `json:"count_in_stock"`
}

// validate checks only the fields that are present.
func (req ItemRequest) validate() error {
	if req.Name != nil {
		if err := validName("name", *req.Name); err != nil {
			return err
		}
	}
	if req.Category != nil && !models.ValidCategory(*req.Category) {
		return apperr.Validation("Invalid category")
	}
	if req.PricePerItem != nil && req.PricePerItem.IsNegative() {
		return apperr.Validation("Price must be non-negative")
	}
	if req.PricePerItem != nil {
		if err := validMoney("price_per_item", *req.PricePerItem); err != nil {
			return err
		}
	}
	if req.CountInStock != nil && *req.CountInStock < 0 {
		return apperr.Validation("Count in stock must be non-negative")
	}
	if req.CountInStock != nil && *req.CountInStock > models.MaxInt {
		return apperr.Validation("Count in stock is out of range")
	}
	return nil
}

func (s *APIServer) addItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ItemRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		if req.Name == nil || *req.Name == "" || req.Category == nil || req.PricePerItem == nil || req.CountInStock == nil {
			s.writeError(w, r, apperr.Validation("Missing required fields"))
			return
		}
		if err := req.validate(); err != nil {
			s.writeError(w, r, err)
			return
		}

		id, err := s.storage.SaveItem(r.Context(), &models.Item{
			Name:         *req.Name,
			Category:     *req.Category,
			PricePerItem: *req.PricePerItem,
			Description:  req.Description,
			CountInStock: *req.CountInStock,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.log(r).Info("Item added", slog.Int64("id", id), slog.String("name", *req.Name))

		writeJSON(w, http.StatusCreated, createdResponse{Message: "Item added successfully", ID: id})
	}
}

func (s *APIServer) updateItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, storage.ErrItemNotFound)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var req ItemRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		patch := models.ItemPatch{
			Name:         req.Name,
			Category:     req.Category,
			PricePerItem: req.PricePerItem,
			Description:  req.Description,
			CountInStock: req.CountInStock,
		}
		if patch.Empty() {
			s.writeError(w, r, apperr.Validation("No fields to update"))
			return
		}
		if err := req.validate(); err != nil {
			s.writeError(w, r, err)
			return
		}

		if err := s.storage.UpdateItem(r.Context(), id, patch); err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, createdResponse{Message: "Item updated successfully", ID: id})
	}
}

func (s *APIServer) deductStockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, storage.ErrItemNotFound)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var req DeductStockRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.Quantity == nil || *req.Quantity <= 0 || *req.Quantity > models.MaxInt {
			s.writeError(w, r, apperr.Validation("Invalid quantity"))
			return
		}

		left, err := s.storage.DeductStock(r.Context(), id, *req.Quantity)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, stockResponse{Message: "Stock deducted successfully", CountInStock: left})
	}
}
