package domain

import "errors"

// Sentinel errors for the failure taxonomy. Services wrap these with
// fmt.Errorf("%w: ...") so handlers can classify with errors.Is while the
// message keeps the specifics.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrOwnership         = errors.New("resource not owned by customer")
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrInvalidTransition = errors.New("illegal order status transition")
	ErrPaymentDeclined   = errors.New("payment declined")
)
