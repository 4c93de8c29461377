package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Receipt struct {
	SaleID     int64           `json:"sale_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

type PurchasedItem struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	PricePerItem decimal.Decimal `db:"price_per_item" json:"price_per_item"`
}

type Purchase struct {
	SaleID   int64         `db:"sale_id" json:"sale_id"`
	Quantity int           `db:"quantity" json:"quantity"`
	SaleDate time.Time     `db:"sale_date" json:"sale_date"`
	Item     PurchasedItem `db:"item" json:"item"`
}
