package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/IlyasAtabaev731/shop-backend/internal/domain/models"
	"github.com/IlyasAtabaev731/shop-backend/internal/lib/apperr"
	"github.com/IlyasAtabaev731/shop-backend/internal/storage"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Purchase debits the wallet, decrements stock and records the sale in one
// transaction. The customer row is locked before the item row.
func (s *Storage) Purchase(ctx context.Context, username string, itemID int64, quantity int) (*models.Receipt, error) {
	const op = "storage.postgres.Purchase"

	if quantity <= 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.Validation("Quantity must be positive"))
	}

	var receipt models.Receipt
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var customer struct {
			ID            int64           `db:"id"`
			WalletBalance decimal.Decimal `db:"wallet_balance"`
		}
		err := tx.GetContext(ctx, &customer, `
			SELECT id, wallet_balance FROM customers
			WHERE username = $1
			FOR UPDATE`, username)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrCustomerNotFound
			}
			return err
		}

		var item struct {
			ID           int64           `db:"id"`
			PricePerItem decimal.Decimal `db:"price_per_item"`
			CountInStock int             `db:"count_in_stock"`
		}
		err = tx.GetContext(ctx, &item, `
			SELECT id, price_per_item, count_in_stock FROM inventory
			WHERE id = $1
			FOR UPDATE`, itemID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrItemNotFound
			}
			return err
		}

		if item.CountInStock < quantity {
			return storage.ErrNotEnoughStock
		}

		total := item.PricePerItem.Mul(decimal.NewFromInt(int64(quantity)))
		if customer.WalletBalance.LessThan(total) {
			return storage.ErrInsufficientFunds
		}

		newBalance := customer.WalletBalance.Sub(total)
		if _, err := tx.ExecContext(ctx, `UPDATE customers SET wallet_balance = $1 WHERE id = $2`, newBalance, customer.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE inventory SET count_in_stock = $1 WHERE id = $2`, item.CountInStock-quantity, item.ID); err != nil {
			return err
		}

		var saleID int64
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO sales (customer_id, item_id, quantity)
			VALUES ($1, $2, $3)
			RETURNING id`, customer.ID, item.ID, quantity,
		).Scan(&saleID)
		if err != nil {
			return err
		}

		receipt = models.Receipt{SaleID: saleID, TotalPrice: total, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &receipt, nil
}

func (s *Storage) ListPurchases(ctx context.Context, username string) ([]models.Purchase, error) {
	const op = "storage.postgres.ListPurchases"

	exists, err := s.customerExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrCustomerNotFound)
	}

	purchases := []models.Purchase{}
	err = s.db.SelectContext(ctx, &purchases, `
		SELECT sales.id AS sale_id, sales.quantity, sales.sale_date,
		       inventory.id AS "item.id", inventory.name AS "item.name",
		       inventory.price_per_item AS "item.price_per_item"
		FROM sales
		JOIN customers ON sales.customer_id = customers.id
		JOIN inventory ON sales.item_id = inventory.id
		WHERE customers.username = $1
		ORDER BY sales.sale_date DESC, sales.id DESC`, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return purchases, nil
}
