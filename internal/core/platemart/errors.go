package platemart

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDishNotFound    = errors.New("dish not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrVoucherNotFound = errors.New("voucher not found")

	// ErrForbidden is returned on an order code mismatch. No state change
	// happens when it is returned.
	ErrForbidden = errors.New("order code mismatch")

	ErrVoucherExpired      = errors.New("voucher expired")
	ErrOrderResolved       = errors.New("order already resolved")
	ErrRoleNotAllowed      = errors.New("operation not allowed for role")
	ErrUserNotAllowed      = errors.New("user is not activated")
	ErrCodeNotValid        = errors.New("verification code not valid")
	ErrNameNotValid        = errors.New("name not valid")
	ErrEmailNotValid       = errors.New("email not valid")
	ErrPasswordNotValid    = errors.New("password not valid")
	ErrPasswordNotEqual    = errors.New("password not equal")
	ErrDraftNotValid       = errors.New("order draft not valid")
	ErrVoucherSpecNotValid = errors.New("voucher parameters not valid")
)
