package api

import (
	"log/slog"
	"net/http"

	"github.com/IlyasAtabaev731/shop-backend/internal/domain/models"
	"github.com/IlyasAtabaev731/shop-backend/internal/lib/apperr"
	"github.com/IlyasAtabaev731/shop-backend/internal/storage"
	"github.com/gorilla/mux"
)

var errRatingRange = apperr.Validation("Rating must be between 1 and 5")

type SubmitReviewRequest struct {
	ItemID  *int64  `json:"item_id"`
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

type ModerateReviewRequest struct {
	IsApproved *bool `json:"is_approved"`
}

type reviewCreatedResponse struct {
	Message  string `json:"message"`
	ReviewID int64  `json:"review_id"`
}

func (s *APIServer) submitReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := identityFrom(r)

		var req SubmitReviewRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.ItemID == nil || req.Rating == nil {
			s.writeError(w, r, apperr.Validation("item_id and rating are required"))
			return
		}
		if !models.ValidRating(*req.Rating) {
			s.writeError(w, r, errRatingRange)
			return
		}
		if *req.ItemID <= 0 || *req.ItemID > models.MaxInt {
			s.writeError(w, r, storage.ErrItemNotFound)
			return
		}

		id, err := s.storage.SaveReview(r.Context(), identity.Username, *req.ItemID, *req.Rating, req.Comment)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.log(r).Info("Review submitted", slog.Int64("review_id", id), slog.String("username", identity.Username))

		writeJSON(w, http.StatusCreated, reviewCreatedResponse{Message: "Review submitted successfully", ReviewID: id})
	}
}

func (s *APIServer) updateReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := identityFrom(r)

		id, err := pathID(r, storage.ErrReviewNotFound)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var req UpdateReviewRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.Rating == nil && req.Comment == nil {
			s.writeError(w, r, apperr.Validation("at least one of rating or comment is required"))
			return
		}
		if req.Rating != nil && !models.ValidRating(*req.Rating) {
			s.writeError(w, r, errRatingRange)
			return
		}

		patch := models.ReviewPatch{Rating: req.Rating, Comment: req.Comment}
		if err := s.storage.UpdateReview(r.Context(), id, identity.Username, patch); err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Message: "Review updated successfully"})
	}
}

func (s *APIServer) deleteReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := identityFrom(r)

		id, err := pathID(r, storage.ErrReviewNotFound)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if err := s.storage.DeleteReview(r.Context(), id, identity.Username); err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Message: "Review deleted successfully"})
	}
}

func (s *APIServer) moderateReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, storage.ErrReviewNotFound)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var req ModerateReviewRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.IsApproved == nil {
			s.writeError(w, r, apperr.Validation("is_approved is required"))
			return
		}

		if err := s.storage.ModerateReview(r.Context(), id, *req.IsApproved); err != nil {
			s.writeError(w, r, err)
			return
		}

		identity, _ := identityFrom(r)
		s.log(r).Info("Review moderated",
			slog.Int64("review_id", id),
			slog.Bool("approved", *req.IsApproved),
			slog.String("moderator", identity.Username),
		)

		writeJSON(w, http.StatusOK, messageResponse{Message: "Review moderation updated"})
	}
}

func (s *APIServer) productReviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathID(r, storage.ErrItemNotFound)
		if err != nil {
			// No item can have this id, so it has no reviews either.
			writeJSON(w, http.StatusOK, []models.ProductReview{})
			return
		}

		reviews, err := s.storage.ListProductReviews(r.Context(), itemID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reviews)
	}
}

func (s *APIServer) customerReviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviews, err := s.storage.ListCustomerReviews(r.Context(), mux.Vars(r)["username"])
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reviews)
	}
}

func (s *APIServer) getReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, storage.ErrReviewNotFound)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		review, err := s.storage.GetReview(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, review)
	}
}
