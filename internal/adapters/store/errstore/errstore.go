package errstore

import "errors"

var (
	ErrNotFoundData         = errors.New("data not found")
	ErrEmailNotUnique       = errors.New("email already registered")
	ErrVoucherCodeNotUnique = errors.New("voucher code already exists")
	ErrVoucherConflict      = errors.New("voucher was modified concurrently")
)
