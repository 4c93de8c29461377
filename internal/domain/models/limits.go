package models

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// MaxNameLength bounds fullname, username and item name, in characters.
	MaxNameLength = 50
	// MaxInt is the largest value an INT or SERIAL column holds.
	MaxInt = math.MaxInt32
)

// MoneyScale is the number of decimal places a NUMERIC(12,2) column keeps.
const MoneyScale = 2

// MaxMoney is the first value a NUMERIC(12,2) column cannot hold.
var MaxMoney = decimal.New(1, 10)

// ValidMoney reports whether d can be stored without rounding or overflow.
func ValidMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale)) && d.Abs().LessThan(MaxMoney)
}
