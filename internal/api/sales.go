package api

import (
	"log/slog"
	"net/http"

	"github.com/IlyasAtabaev731/shop-backend/internal/domain/models"
	"github.com/IlyasAtabaev731/shop-backend/internal/lib/apperr"
	"github.com/IlyasAtabaev731/shop-backend/internal/storage"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type PurchaseRequest struct {
	Username string `json:"username"`
	ItemID   *int64 `json:"item_id"`
	Quantity *int   `json:"quantity"`
}

type purchaseResponse struct {
	Message    string          `json:"message"`
	SaleID     int64           `json:"sale_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

func (s *APIServer) listGoodsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		goods, err := s.storage.ListAvailableGoods(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, goods)
	}
}

func (s *APIServer) goodDetailsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, storage.ErrItemNotFound)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		item, err := s.storage.GetItem(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *APIServer) purchaseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PurchaseRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.Username == "" || req.ItemID == nil || req.Quantity == nil {
			s.writeError(w, r, apperr.Validation("username, item_id, and quantity are required"))
			return
		}
		if *req.Quantity <= 0 {
			s.writeError(w, r, apperr.Validation("Quantity must be positive"))
			return
		}
		if *req.ItemID <= 0 || *req.ItemID > models.MaxInt {
			s.writeError(w, r, storage.ErrItemNotFound)
			return
		}
		if *req.Quantity > models.MaxInt {
			s.writeError(w, r, storage.ErrNotEnoughStock)
			return
		}

		receipt, err := s.storage.Purchase(r.Context(), req.Username, *req.ItemID, *req.Quantity)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.log(r).Info("Purchase completed",
			slog.Int64("sale_id", receipt.SaleID),
			slog.String("username", req.Username),
			slog.Int64("item_id", *req.ItemID),
			slog.Int("quantity", *req.Quantity),
		)

		writeJSON(w, http.StatusOK, purchaseResponse{
			Message:    "Purchase successful",
			SaleID:     receipt.SaleID,
			TotalPrice: receipt.TotalPrice,
			NewBalance: receipt.NewBalance,
		})
	}
}

func (s *APIServer) customerPurchasesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		purchases, err := s.storage.ListPurchases(r.Context(), mux.Vars(r)["username"])
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, purchases)
	}
}
