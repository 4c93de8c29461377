package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/IlyasAtabaev731/shop-backend/internal/domain/models"
	"github.com/IlyasAtabaev731/shop-backend/internal/storage"
	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

// SaveReview stores an unapproved review written by username.
func (s *Storage) SaveReview(ctx context.Context, username string, itemID int64, rating int, comment *string) (int64, error) {
	const op = "storage.postgres.SaveReview"

	var customerID int64
	err := s.db.GetContext(ctx, &customerID, `SELECT id FROM customers WHERE username = $1`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrCustomerNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var itemExists bool
	if err := s.db.GetContext(ctx, &itemExists, `SELECT EXISTS(SELECT 1 FROM inventory WHERE id = $1)`, itemID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !itemExists {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
	}

	var id int64
	err = s.db.QueryRowxContext(ctx, `
		INSERT INTO reviews (customer_id, item_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, customerID, itemID, rating, comment,
	).Scan(&id)
	if err != nil {
		if pqCode(err) == codeForeignKeyViolation {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound.With(err))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// lockOwnedReview locks the review row and checks that username wrote it.
func lockOwnedReview(ctx context.Context, tx *sqlx.Tx, reviewID int64, username string) error {
	var owner string
	err := tx.GetContext(ctx, &owner, `
		SELECT customers.username
		FROM reviews
		JOIN customers ON reviews.customer_id = customers.id
		WHERE reviews.id = $1
		FOR UPDATE OF reviews`, reviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrReviewNotFound
		}
		return err
	}
	if owner != username {
		return storage.ErrReviewNotOwned
	}
	return nil
}

func (s *Storage) UpdateReview(ctx context.Context, reviewID int64, username string, patch models.ReviewPatch) error {
	const op = "storage.postgres.UpdateReview"

	record := goqu.Record{}
	if patch.Rating != nil {
		record["rating"] = *patch.Rating
	}
	if patch.Comment != nil {
		record["comment"] = *patch.Comment
	}
	if len(record) == 0 {
		return fmt.Errorf("%s: empty patch", op)
	}

	query, args, err := s.builder.Update("reviews").Prepared(true).
		Set(record).
		Where(goqu.C("id").Eq(reviewID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockOwnedReview(ctx, tx, reviewID, username); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if violatesConstraint(err) {
				return storage.ErrConstraintViolated.With(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteReview(ctx context.Context, reviewID int64, username string) error {
	const op = "storage.postgres.DeleteReview"

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockOwnedReview(ctx, tx, reviewID, username); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ModerateReview(ctx context.Context, reviewID int64, approved bool) error {
	const op = "storage.postgres.ModerateReview"

	res, err := s.db.ExecContext(ctx, `UPDATE reviews SET is_approved = $1 WHERE id = $2`, approved, reviewID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectAffected(op, res, storage.ErrReviewNotFound)
}

func (s *Storage) ListProductReviews(ctx context.Context, itemID int64) ([]models.ProductReview, error) {
	const op = "storage.postgres.ListProductReviews"

	reviews := []models.ProductReview{}
	err := s.db.SelectContext(ctx, &reviews, `
		SELECT reviews.id, customers.username, reviews.rating, reviews.comment, reviews.review_date
		FROM reviews
		JOIN customers ON reviews.customer_id = customers.id
		WHERE reviews.item_id = $1 AND reviews.is_approved = TRUE
		ORDER BY reviews.review_date DESC, reviews.id DESC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reviews, nil
}

func (s *Storage) ListCustomerReviews(ctx context.Context, username string) ([]models.CustomerReview, error) {
	const op = "storage.postgres.ListCustomerReviews"

	exists, err := s.customerExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrCustomerNotFound)
	}

	reviews := []models.CustomerReview{}
	err = s.db.SelectContext(ctx, &reviews, `
		SELECT reviews.id, inventory.name AS product_name, reviews.rating, reviews.comment,
		       reviews.review_date, reviews.is_approved
		FROM reviews
		JOIN customers ON reviews.customer_id = customers.id
		JOIN inventory ON reviews.item_id = inventory.id
		WHERE customers.username = $1
		ORDER BY reviews.review_date DESC, reviews.id DESC`, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reviews, nil
}

func (s *Storage) GetReview(ctx context.Context, reviewID int64) (*models.ReviewDetail, error) {
	const op = "storage.postgres.GetReview"

	var review models.ReviewDetail
	err := s.db.GetContext(ctx, &review, `
		SELECT reviews.id, customers.username, inventory.name AS product_name, reviews.rating,
		       reviews.comment, reviews.review_date, reviews.is_approved
		FROM reviews
		JOIN customers ON reviews.customer_id = customers.id
		JOIN inventory ON reviews.item_id = inventory.id
		WHERE reviews.id = $1`, reviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrReviewNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &review, nil
}
