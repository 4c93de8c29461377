package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/IlyasAtabaev731/shop-backend/internal/domain/models"
	"github.com/IlyasAtabaev731/shop-backend/internal/storage"
	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
)

const customerColumns = `id, fullname, username, password_hash, age, address, gender, marital_status, wallet_balance`

func (s *Storage) SaveCustomer(ctx context.Context, c *models.Customer) (int64, error) {
	const op = "storage.postgres.SaveCustomer"

	var id int64
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO customers (fullname, username, password_hash, age, address, gender, marital_status, wallet_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		c.Fullname, c.Username, c.PasswordHash, c.Age, c.Address, c.Gender, c.MaritalStatus, c.WalletBalance,
	).Scan(&id)
	if err != nil {
		switch {
		case pqCode(err) == codeUniqueViolation:
			return 0, fmt.Errorf("%s: %w", op, storage.ErrUsernameTaken.With(err))
		case violatesConstraint(err):
			return 0, fmt.Errorf("%s: %w", op, storage.ErrConstraintViolated.With(err))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetCustomer(ctx context.Context, username string) (*models.Customer, error) {
	const op = "storage.postgres.GetCustomer"

	var c models.Customer
	err := s.db.GetContext(ctx, &c, `SELECT `+customerColumns+` FROM customers WHERE username = $1`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrCustomerNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

func (s *Storage) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	const op = "storage.postgres.ListCustomers"

	customers := []models.Customer{}
	if err := s.db.SelectContext(ctx, &customers, `SELECT `+customerColumns+` FROM customers ORDER BY id`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return customers, nil
}

func (s *Storage) UpdateCustomer(ctx context.Context, username string, patch models.CustomerPatch) error {
	const op = "storage.postgres.UpdateCustomer"

	record := goqu.Record{}
	if patch.Fullname != nil {
		record["fullname"] = *patch.Fullname
	}
	if patch.PasswordHash != nil {
		record["password_hash"] = *patch.PasswordHash
	}
	if patch.Age != nil {
		record["age"] = *patch.Age
	}
	if patch.Address != nil {
		record["address"] = *patch.Address
	}
	if patch.Gender != nil {
		record["gender"] = *patch.Gender
	}
	if patch.MaritalStatus != nil {
		record["marital_status"] = *patch.MaritalStatus
	}
	if len(record) == 0 {
		return fmt.Errorf("%s: empty patch", op)
	}

	query, args, err := s.builder.Update("customers").Prepared(true).
		Set(record).
		Where(goqu.C("username").Eq(username)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if violatesConstraint(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrConstraintViolated.With(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectAffected(op, res, storage.ErrCustomerNotFound)
}

// DeleteCustomer refuses to remove customers referenced by sales or reviews.
func (s *Storage) DeleteCustomer(ctx context.Context, username string) error {
	const op = "storage.postgres.DeleteCustomer"

	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE username = $1`, username)
	if err != nil {
		if pqCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrCustomerInUse.With(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectAffected(op, res, storage.ErrCustomerNotFound)
}

func (s *Storage) ChargeWallet(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	const op = "storage.postgres.ChargeWallet"

	var balance decimal.Decimal
	err := s.db.QueryRowxContext(ctx, `
		UPDATE customers SET wallet_balance = wallet_balance + $1
		WHERE username = $2
		RETURNING wallet_balance`, amount, username,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%s: %w", op, storage.ErrCustomerNotFound)
		}
		if violatesConstraint(err) {
			return decimal.Zero, fmt.Errorf("%s: %w", op, storage.ErrConstraintViolated.With(err))
		}
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	return balance, nil
}

// DeductWallet debits the wallet only if the balance covers amount, in a
// single statement.
func (s *Storage) DeductWallet(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	const op = "storage.postgres.DeductWallet"

	var balance decimal.Decimal
	err := s.db.QueryRowxContext(ctx, `
		UPDATE customers SET wallet_balance = wallet_balance - $1
		WHERE username = $2 AND wallet_balance >= $1
		RETURNING wallet_balance`, amount, username,
	).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.customerExists(ctx, username)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return decimal.Zero, fmt.Errorf("%s: %w", op, storage.ErrCustomerNotFound)
	}

	return decimal.Zero, fmt.Errorf("%s: %w", op, storage.ErrInsufficientFunds)
}

func (s *Storage) customerExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM customers WHERE username = $1)`, username)
	return exists, err
}

func expectAffected(op string, res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	return nil
}
