package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// ProductReview is an approved review as shown on a product page.
type ProductReview struct {
	ID         int64     `db:"id" json:"review_id"`
	Username   string    `db:"username" json:"username"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    *string   `db:"comment" json:"comment"`
	ReviewDate time.Time `db:"review_date" json:"review_date"`
}

// CustomerReview is a review as listed on a customer's profile.
type CustomerReview struct {
	ID          int64     `db:"id" json:"review_id"`
	ProductName string    `db:"product_name" json:"product_name"`
	Rating      int       `db:"rating" json:"rating"`
	Comment     *string   `db:"comment" json:"comment"`
	ReviewDate  time.Time `db:"review_date" json:"review_date"`
	IsApproved  bool      `db:"is_approved" json:"is_approved"`
}

type ReviewDetail struct {
	ID          int64     `db:"id" json:"review_id"`
	Username    string    `db:"username" json:"username"`
	ProductName string    `db:"product_name" json:"product_name"`
	Rating      int       `db:"rating" json:"rating"`
	Comment     *string   `db:"comment" json:"comment"`
	ReviewDate  time.Time `db:"review_date" json:"review_date"`
	IsApproved  bool      `db:"is_approved" json:"is_approved"`
}

type ReviewPatch struct {
	Rating  *int
	Comment *string
}

func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
