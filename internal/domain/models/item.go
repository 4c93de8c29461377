package models

import "github.com/shopspring/decimal"

const (
	CategoryFood        = "food"
	CategoryClothes     = "clothes"
	CategoryAccessories = "accessories"
	CategoryElectronics = "electronics"
)

func ValidCategory(c string) bool {
	switch c {
	case CategoryFood, CategoryClothes, CategoryAccessories, CategoryElectronics:
		return true
	}
	return false
}

type Item struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Category     string          `db:"category" json:"category"`
	PricePerItem decimal.Decimal `db:"price_per_item" json:"price_per_item"`
	Description  *string         `db:"description" json:"description"`
	CountInStock int             `db:"count_in_stock" json:"count_in_stock"`
}

// Good is the catalog projection of an in-stock item.
type Good struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	PricePerItem decimal.Decimal `db:"price_per_item" json:"price_per_item"`
}

type ItemPatch struct {
	Name         *string
	Category     *string
	PricePerItem *decimal.Decimal
	Description  *string
	CountInStock *int
}

func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.PricePerItem == nil &&
		p.Description == nil && p.CountInStock == nil
}
