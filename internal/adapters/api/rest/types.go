package rest

import (
	"time"

	"github.com/platemart/platemart/internal/adapters/store/model"
)

type tRegistration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tRegistrationConfirm struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type tAuthorization struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tPasswordForgot struct {
	Email string `json:"email"`
}

type tPasswordReset struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

type tCreateOrder struct {
	Currency    string `json:"currency,omitempty"`
	CardToken   string `json:"card_token"`
	VoucherCode string `json:"voucher_code,omitempty"`
	Amount      int64  `json:"amount"`
	DishID      uint   `json:"dish_id"`
}

type tExecuteOrder struct {
	Code    string `json:"code"`
	Confirm bool   `json:"confirm"`
	Charge  *bool  `json:"charge,omitempty"`
}

type tOrder struct {
	createdAt   time.Time
	ID          string            `json:"id"`
	Status      model.OrderStatus `json:"status"`
	Dish        string            `json:"dish"`
	Caterer     string            `json:"caterer"`
	Currency    string            `json:"currency"`
	ChargeID    string            `json:"charge_id,omitempty"`
	VoucherCode string            `json:"voucher_code,omitempty"`
	CreatedAt   string            `json:"created_at"`
	Paid        *bool             `json:"paid,omitempty"`
	Amount      int64             `json:"amount"`
	Total       int64             `json:"total"`
}

func (o *tOrder) Prepare() *tOrder {
	o.CreatedAt = o.createdAt.Format(time.RFC3339)
	return o
}

type tDish struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Caterer     string `json:"caterer"`
	Currency    string `json:"currency"`
	Price       int64  `json:"price"`
}

type tGenerateVouchers struct {
	DiscountType   model.DiscountType   `json:"discount_type"`
	ExpirationType model.ExpirationType `json:"expiration_type"`
	ExpiresAt      *time.Time           `json:"expires_at,omitempty"`
	Discount       int64                `json:"discount"`
	Count          int                  `json:"count"`
}

type tVoucherCode struct {
	Code string `json:"code"`
}

type tVoucher struct {
	Code           string               `json:"code"`
	DiscountType   model.DiscountType   `json:"discount_type"`
	ExpirationType model.ExpirationType `json:"expiration_type"`
	Status         model.VoucherStatus  `json:"status"`
	ExpiresAt      *time.Time           `json:"expires_at,omitempty"`
	Discount       int64                `json:"discount"`
	UsedCount      int                  `json:"used_count"`
}
