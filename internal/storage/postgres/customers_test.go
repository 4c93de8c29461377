package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IlyasAtabaev731/shop-backend/internal/domain/models"
	"github.com/IlyasAtabaev731/shop-backend/internal/storage"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	return NewWithDB(sqlx.NewDb(mockDB, "postgres")), mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

var customerRowColumns = []string{"id", "fullname", "username", "password_hash", "age", "address", "gender", "marital_status", "wallet_balance"}

func TestSaveCustomer(t *testing.T) {
	s, mock := setupMockStorage(t)

	age := 30
	c := &models.Customer{
		Fullname:      "Jane Doe",
		Username:      "jdoe",
		PasswordHash:  "$2a$hash",
		Age:           &age,
		WalletBalance: decimal.NewFromInt(150),
	}

	mock.ExpectQuery(q("INSERT INTO customers")).
		WithArgs("Jane Doe", "jdoe", "$2a$hash", 30, nil, nil, nil, decimal.NewFromInt(150)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	id, err := s.SaveCustomer(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCustomerDuplicateUsername(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("INSERT INTO customers")).
		WillReturnError(&pq.Error{Code: codeUniqueViolation, Message: "duplicate key value violates unique constraint"})

	_, err := s.SaveCustomer(context.Background(), &models.Customer{Fullname: "J", Username: "jdoe", PasswordHash: "h"})
	assert.ErrorIs(t, err, storage.ErrUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCustomer(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("SELECT "+customerColumns+" FROM customers WHERE username = $1")).
		WithArgs("jdoe").
		WillReturnRows(sqlmock.NewRows(customerRowColumns).
			AddRow(1, "Jane Doe", "jdoe", "$2a$hash", 30, "Beirut", "F", true, "150.00"))

	c, err := s.GetCustomer(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", c.Fullname)
	require.NotNil(t, c.Age)
	assert.Equal(t, 30, *c.Age)
	assert.True(t, c.WalletBalance.Equal(decimal.NewFromInt(150)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCustomerNotFound(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("FROM customers WHERE username = $1")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetCustomer(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrCustomerNotFound)
}

func TestListCustomersEmpty(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("FROM customers ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(customerRowColumns))

	customers, err := s.ListCustomers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, customers)
	assert.Empty(t, customers)
}

func TestUpdateCustomer(t *testing.T) {
	s, mock := setupMockStorage(t)

	address := "Beirut"
	fullname := "Jane Q. Doe"

	mock.ExpectExec(q(`UPDATE "customers" SET`)).
		WithArgs("Beirut", "Jane Q. Doe", "jdoe").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateCustomer(context.Background(), "jdoe", models.CustomerPatch{Fullname: &fullname, Address: &address})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCustomerNotFound(t *testing.T) {
	s, mock := setupMockStorage(t)

	married := true
	mock.ExpectExec(q(`UPDATE "customers"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateCustomer(context.Background(), "ghost", models.CustomerPatch{MaritalStatus: &married})
	assert.ErrorIs(t, err, storage.ErrCustomerNotFound)
}

func TestUpdateCustomerEmptyPatch(t *testing.T) {
	s, mock := setupMockStorage(t)

	err := s.UpdateCustomer(context.Background(), "jdoe", models.CustomerPatch{})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCustomer(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "deleted",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(q("DELETE FROM customers WHERE username = $1")).
					WithArgs("jdoe").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "absent",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(q("DELETE FROM customers")).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: storage.ErrCustomerNotFound,
		},
		{
			name: "has history",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(q("DELETE FROM customers")).
					WillReturnError(&pq.Error{Code: codeForeignKeyViolation})
			},
			wantErr: storage.ErrCustomerInUse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := setupMockStorage(t)
			tt.setup(mock)

			err := s.DeleteCustomer(context.Background(), "jdoe")
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestChargeWallet(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("UPDATE customers SET wallet_balance = wallet_balance + $1")).
		WithArgs(decimal.RequireFromString("50.25"), "jdoe").
		WillReturnRows(sqlmock.NewRows([]string{"wallet_balance"}).AddRow("200.25"))

	balance, err := s.ChargeWallet(context.Background(), "jdoe", decimal.RequireFromString("50.25"))
	require.NoError(t, err)
	assert.Equal(t, "200.25", balance.String())
}

func TestChargeWalletNotFound(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("UPDATE customers SET wallet_balance")).
		WillReturnError(sql.ErrNoRows)

	_, err := s.ChargeWallet(context.Background(), "ghost", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, storage.ErrCustomerNotFound)
}

func TestChargeWalletOverflow(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("UPDATE customers SET wallet_balance")).
		WillReturnError(&pq.Error{Code: codeNumericOutOfRange, Message: "numeric field overflow"})

	_, err := s.ChargeWallet(context.Background(), "jdoe", decimal.RequireFromString("9999999999.99"))
	assert.ErrorIs(t, err, storage.ErrConstraintViolated)
}

func TestSaveCustomerValueTooLong(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("INSERT INTO customers")).
		WillReturnError(&pq.Error{Code: codeStringTooLong, Message: "value too long for type character varying(50)"})

	_, err := s.SaveCustomer(context.Background(), &models.Customer{Fullname: "Jane", Username: "jdoe"})
	assert.ErrorIs(t, err, storage.ErrConstraintViolated)
}

func TestDeductWallet(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("WHERE username = $2 AND wallet_balance >= $1")).
		WithArgs(decimal.NewFromInt(50), "jdoe").
		WillReturnRows(sqlmock.NewRows([]string{"wallet_balance"}).AddRow("100.00"))

	balance, err := s.DeductWallet(context.Background(), "jdoe", decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeductWalletInsufficientFunds(t *testing.T) {
	s, mock := setupMockStorage(t)

	// balance 150, deduct 300: the guarded update matches nothing and no
	// other write is issued.
	mock.ExpectQuery(q("wallet_balance >= $1")).
		WithArgs(decimal.NewFromInt(300), "jdoe").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM customers WHERE username = $1)")).
		WithArgs("jdoe").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := s.DeductWallet(context.Background(), "jdoe", decimal.NewFromInt(300))
	assert.ErrorIs(t, err, storage.ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeductWalletCustomerNotFound(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(q("wallet_balance >= $1")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := s.DeductWallet(context.Background(), "ghost", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, storage.ErrCustomerNotFound)
}

func TestDeductWalletDatabaseError(t *testing.T) {
	s, mock := setupMockStorage(t)

	boom := errors.New("connection reset")
	mock.ExpectQuery(q("wallet_balance >= $1")).WillReturnError(boom)

	_, err := s.DeductWallet(context.Background(), "jdoe", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
