package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/IlyasAtabaev731/shop-backend/internal/domain/models"
	"github.com/IlyasAtabaev731/shop-backend/internal/storage"
	"github.com/doug-martin/goqu/v9"
)

func (s *Storage) SaveItem(ctx context.Context, item *models.Item) (int64, error) {
	const op = "storage.postgres.SaveItem"

	var id int64
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO inventory (name, category, price_per_item, description, count_in_stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		item.Name, item.Category, item.PricePerItem, item.Description, item.CountInStock,
	).Scan(&id)
	if err != nil {
		if violatesConstraint(err) {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrConstraintViolated.With(err))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	const op = "storage.postgres.GetItem"

	var item models.Item
	err := s.db.GetContext(ctx, &item, `
		SELECT id, name, category, price_per_item, description, count_in_stock
		FROM inventory
		WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &item, nil
}

func (s *Storage) UpdateItem(ctx context.Context, id int64, patch models.ItemPatch) error {
	const op = "storage.postgres.UpdateItem"

	record := goqu.Record{}
	if patch.Name != nil {
		record["name"] = *patch.Name
	}
	if patch.Category != nil {
		record["category"] = *patch.Category
	}
	if patch.PricePerItem != nil {
		record["price_per_item"] = *patch.PricePerItem
	}
	if patch.Description != nil {
		record["description"] = *patch.Description
	}
	if patch.CountInStock != nil {
		record["count_in_stock"] = *patch.CountInStock
	}
	if len(record) == 0 {
		return fmt.Errorf("%s: empty patch", op)
	}

	query, args, err := s.builder.Update("inventory").Prepared(true).
		Set(record).
		Where(goqu.C("id").Eq(id)).
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

	return expectAffected(op, res, storage.ErrItemNotFound)
}

// DeductStock removes quantity units if that many are in stock and returns
// the remaining count.
func (s *Storage) DeductStock(ctx context.Context, id int64, quantity int) (int, error) {
	const op = "storage.postgres.DeductStock"

	var left int
	err := s.db.QueryRowxContext(ctx, `
		UPDATE inventory SET count_in_stock = count_in_stock - $1
		WHERE id = $2 AND count_in_stock >= $1
		RETURNING count_in_stock`, quantity, id,
	).Scan(&left)
	if err == nil {
		return left, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM inventory WHERE id = $1)`, id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
	}

	return 0, fmt.Errorf("%s: %w", op, storage.ErrNotEnoughStock)
}

func (s *Storage) ListAvailableGoods(ctx context.Context) ([]models.Good, error) {
	const op = "storage.postgres.ListAvailableGoods"

	goods := []models.Good{}
	err := s.db.SelectContext(ctx, &goods, `
		SELECT id, name, price_per_item
		FROM inventory
		WHERE count_in_stock > 0
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return goods, nil
}
