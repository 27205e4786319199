package platemart

import (
	"math"
	"strings"

	"github.com/platemart/platemart/internal/adapters/store/model"
)

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameNotValid
	}
	return nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return ErrEmailNotValid
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordNotValid
	}
	return nil
}

// ChargeTotal computes the amount sent to the payment gateway: the order
// amount reduced by the attached voucher. An AMOUNT discount is floored at
// zero, a PERCENTAGE discount is rounded half away from zero.
func ChargeTotal(order model.Order) int64 {
	if !order.Voucher.Attached() {
		return order.Amount
	}

	switch order.Voucher.DiscountType {
	case model.DiscountAmount:
		total := order.Amount - order.Voucher.Discount
		if total < 0 {
			total = 0
		}
		return total
	case model.DiscountPercentage:
		return int64(math.Round(float64(order.Amount) * (1 - float64(order.Voucher.Discount)/100)))
	}

	return order.Amount
}

func snapshotDish(dish model.Dish) model.DishSnapshot {
	return model.DishSnapshot{
		Name:         dish.Name,
		Description:  dish.Description,
		CatererName:  dish.Caterer.Name,
		CatererEmail: dish.Caterer.Email,
		Price:        dish.Price,
	}
}

func snapshotVoucher(voucher model.Voucher) model.VoucherSnapshot {
	return model.VoucherSnapshot{
		Code:           voucher.Code,
		DiscountType:   voucher.DiscountType,
		ExpirationType: voucher.ExpirationType,
		Discount:       voucher.Discount,
	}
}
