package models

import "github.com/shopspring/decimal"

type Customer struct {
	ID            int64           `db:"id" json:"id"`
	Fullname      string          `db:"fullname" json:"fullname"`
	Username      string          `db:"username" json:"username"`
	PasswordHash  string          `db:"password_hash" json:"-"`
	Age           *int            `db:"age" json:"age"`
	Address       *string         `db:"address" json:"address"`
	Gender        *string         `db:"gender" json:"gender"`
	MaritalStatus *bool           `db:"marital_status" json:"marital_status"`
	WalletBalance decimal.Decimal `db:"wallet_balance" json:"wallet_balance"`
}

// CustomerPatch holds the profile fields a customer may change. Nil means
// "leave as is".
type CustomerPatch struct {
	Fullname      *string
	PasswordHash  *string
	Age           *int
	Address       *string
	Gender        *string
	MaritalStatus *bool
}

func (p CustomerPatch) Empty() bool {
	return p.Fullname == nil && p.PasswordHash == nil && p.Age == nil &&
		p.Address == nil && p.Gender == nil && p.MaritalStatus == nil
}
