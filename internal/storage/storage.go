package storage

import "github.com/IlyasAtabaev731/shop-backend/internal/lib/apperr"

var (
	ErrCustomerNotFound   = apperr.NotFound("Customer not found")
	ErrUsernameTaken      = apperr.Conflict("Username is already taken")
	ErrCustomerInUse      = apperr.Conflict("Customer has purchase or review history")
	ErrInsufficientFunds  = apperr.Validation("Insufficient funds")
	ErrItemNotFound       = apperr.NotFound("Item not found")
	ErrNotEnoughStock     = apperr.Validation("Not enough stock available")
	ErrReviewNotFound     = apperr.NotFound("Review not found")
	ErrReviewNotOwned     = apperr.Forbidden("Unauthorized action")
	ErrConstraintViolated = apperr.Validation("Value violates a data constraint")
)
