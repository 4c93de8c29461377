package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IlyasAtabaev731/shop-backend/internal/domain/models"
	"github.com/IlyasAtabaev731/shop-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveReview(t *testing.T) {
	s, mock := setupMockStorage(t)

	comment := "Great phone"
	mock.ExpectQuery(q("SELECT id FROM customers WHERE username = $1")).
		WithArgs("jdoe").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM inventory WHERE id = $1)")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q("INSERT INTO reviews (customer_id, item_id, rating, comment)")).
		WithArgs(1, 7, 5, "Great phone").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	id, err := s.SaveReview(context.Background(), "jdoe", 7, 5, &comment)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReviewItemNotFound(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("SELECT id FROM customers")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(q("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := s.SaveReview(context.Background(), "jdoe", 99, 4, nil)
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReviewCustomerNotFound(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("SELECT id FROM customers")).WillReturnError(sql.ErrNoRows)

	_, err := s.SaveReview(context.Background(), "ghost", 7, 4, nil)
	assert.ErrorIs(t, err, storage.ErrCustomerNotFound)
}

func TestUpdateReview(t *testing.T) {
	s, mock := setupMockStorage(t)

	rating := 3
	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE OF reviews")).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("jdoe"))
	mock.ExpectExec(q(`UPDATE "reviews" SET`)).
		WithArgs(3, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.UpdateReview(context.Background(), 11, "jdoe", models.ReviewPatch{Rating: &rating})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReviewNotOwner(t *testing.T) {
	s, mock := setupMockStorage(t)

	comment := "hijacked"
	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE OF reviews")).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("jdoe"))
	mock.ExpectRollback()

	err := s.UpdateReview(context.Background(), 11, "mallory", models.ReviewPatch{Comment: &comment})
	assert.ErrorIs(t, err, storage.ErrReviewNotOwned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReview(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		setup   func(sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "owner deletes",
			user: "jdoe",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectQuery(q("FOR UPDATE OF reviews")).
					WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("jdoe"))
				m.ExpectExec(q("DELETE FROM reviews WHERE id = $1")).
					WithArgs(11).
					WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectCommit()
			},
		},
		{
			name: "someone else",
			user: "mallory",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectQuery(q("FOR UPDATE OF reviews")).
					WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("jdoe"))
				m.ExpectRollback()
			},
			wantErr: storage.ErrReviewNotOwned,
		},
		{
			name: "absent",
			user: "jdoe",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectQuery(q("FOR UPDATE OF reviews")).WillReturnError(sql.ErrNoRows)
				m.ExpectRollback()
			},
			wantErr: storage.ErrReviewNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := setupMockStorage(t)
			tt.setup(mock)

			err := s.DeleteReview(context.Background(), 11, tt.user)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestModerateReview(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectExec(q("UPDATE reviews SET is_approved = $1 WHERE id = $2")).
		WithArgs(true, 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE reviews SET is_approved")).
		WithArgs(true, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.ModerateReview(context.Background(), 11, true))
	assert.ErrorIs(t, s.ModerateReview(context.Background(), 99, true), storage.ErrReviewNotFound)
}

func TestListProductReviewsOnlyApproved(t *testing.T) {
	s, mock := setupMockStorage(t)

	newer := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("WHERE reviews.item_id = $1 AND reviews.is_approved = TRUE ORDER BY reviews.review_date DESC")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "rating", "comment", "review_date"}).
			AddRow(12, "amy", 4, nil, newer).
			AddRow(11, "jdoe", 5, "Great", older))

	reviews, err := s.ListProductReviews(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "amy", reviews[0].Username)
	assert.True(t, reviews[0].ReviewDate.After(reviews[1].ReviewDate))
}

func TestListCustomerReviewsUnknownCustomer(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM customers")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := s.ListCustomerReviews(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrCustomerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCustomerReviews(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM customers")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q("WHERE customers.username = $1")).
		WithArgs("jdoe").
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_name", "rating", "comment", "review_date", "is_approved"}).
			AddRow(11, "Phone", 5, "Great", time.Now(), false))

	reviews, err := s.ListCustomerReviews(context.Background(), "jdoe")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Phone", reviews[0].ProductName)
	assert.False(t, reviews[0].IsApproved)
}

func TestGetReview(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("WHERE reviews.id = $1")).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "product_name", "rating", "comment", "review_date", "is_approved"}).
			AddRow(11, "jdoe", "Phone", 5, "Great", time.Now(), true))
	mock.ExpectQuery(q("WHERE reviews.id = $1")).
		WithArgs(12).
		WillReturnError(sql.ErrNoRows)

	review, err := s.GetReview(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", review.Username)
	assert.True(t, review.IsApproved)

	_, err = s.GetReview(context.Background(), 12)
	assert.ErrorIs(t, err, storage.ErrReviewNotFound)
}
