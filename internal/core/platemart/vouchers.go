package platemart

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/platemart/platemart/internal/adapters/store/errstore"
	"github.com/platemart/platemart/internal/adapters/store/model"
)

// Voucher codes are 3 consonants + digit + 3 consonants + digit. Vowels and
// the letter "l" are excluded so a code is never misread as containing "1".
const (
	voucherConsonants = "bcdfghjkmnpqrstvwxyz"
	voucherDigits     = "23456789"
)

// GenerateVouchers creates count vouchers with fresh unique codes. Uniqueness
// is checked against the store before a code is accepted, not assumed.
func (p *Platemart) GenerateVouchers(ctx context.Context, count int, discountType model.DiscountType, discount int64, expirationType model.ExpirationType, expiresAt *time.Time) ([]*model.Voucher, error) {
	if err := validateVoucherSpec(count, discountType, discount, expirationType, expiresAt); err != nil {
		return nil, err
	}

	vouchers := make([]*model.Voucher, 0, count)
	batch := make(map[string]struct{}, count)
	for len(vouchers) < count {
		code, err := newVoucherCode()
		if err != nil {
			return nil, fmt.Errorf("failed generate voucher code: %w", err)
		}
		if _, ok := batch[code]; ok {
			continue
		}
		exists, err := p.store.VoucherCodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed check voucher code: %w", err)
		}
		if exists {
			p.log.Debug("voucher code collision, drawing a new one", zap.String("code", code))
			continue
		}
		batch[code] = struct{}{}
		vouchers = append(vouchers, &model.Voucher{
			Code:           code,
			DiscountType:   discountType,
			Discount:       discount,
			ExpirationType: expirationType,
			ExpiresAt:      expiresAt,
			Status:         model.VoucherStateValid,
		})
	}

	if err := p.store.CreateVouchers(ctx, vouchers); err != nil {
		return nil, fmt.Errorf("failed create vouchers: %w", err)
	}

	return vouchers, nil
}

// ValidateVoucher redeems one use of the voucher: a ONETIME voucher expires
// the instant it is redeemed, an UNTIL voucher stays VALID and counts the
// use. The update is guarded on the previously observed state and retried on
// contention so a ONETIME voucher cannot be consumed twice.
func (p *Platemart) ValidateVoucher(ctx context.Context, code string) (model.Voucher, error) {
	for attempt := 0; attempt < p.redeemRetries(); attempt++ {
		voucher, err := p.store.GetVoucher(ctx, code)
		if err != nil {
			if errors.Is(err, errstore.ErrNotFoundData) {
				return voucher, ErrVoucherNotFound
			}
			return voucher, fmt.Errorf("failed getting voucher `%s`: %w", code, err)
		}
		if voucher.Status == model.VoucherStateExpired {
			return voucher, ErrVoucherExpired
		}
		if voucher.ExpirationType == model.ExpirationUntil &&
			voucher.ExpiresAt != nil && time.Now().After(*voucher.ExpiresAt) {
			return voucher, ErrVoucherExpired
		}

		prevStatus, prevUsed := voucher.Status, voucher.UsedCount
		if voucher.ExpirationType == model.ExpirationOnetime {
			voucher.Status = model.VoucherStateExpired
		} else {
			voucher.UsedCount++
		}

		updated, err := p.store.UpdateVoucherGuarded(ctx, voucher, prevStatus, prevUsed)
		if err != nil {
			if errors.Is(err, errstore.ErrVoucherConflict) {
				p.log.Debug("voucher redemption contention, re-reading", zap.String("code", code))
				continue
			}
			return updated, fmt.Errorf("failed redeem voucher `%s`: %w", code, err)
		}

		return updated, nil
	}

	return model.Voucher{}, fmt.Errorf("voucher `%s` redemption retries exhausted: %w", code, errstore.ErrVoucherConflict)
}

// RevertVoucher undoes exactly one prior redemption: ONETIME becomes VALID
// again, UNTIL decrements its usage count floored at zero.
func (p *Platemart) RevertVoucher(ctx context.Context, code string) (model.Voucher, error) {
	for attempt := 0; attempt < p.redeemRetries(); attempt++ {
		voucher, err := p.store.GetVoucher(ctx, code)
		if err != nil {
			if errors.Is(err, errstore.ErrNotFoundData) {
				return voucher, ErrVoucherNotFound
			}
			return voucher, fmt.Errorf("failed getting voucher `%s`: %w", code, err)
		}

		prevStatus, prevUsed := voucher.Status, voucher.UsedCount
		if voucher.ExpirationType == model.ExpirationOnetime {
			voucher.Status = model.VoucherStateValid
		} else if voucher.UsedCount > 0 {
			voucher.UsedCount--
		}

		updated, err := p.store.UpdateVoucherGuarded(ctx, voucher, prevStatus, prevUsed)
		if err != nil {
			if errors.Is(err, errstore.ErrVoucherConflict) {
				p.log.Debug("voucher revert contention, re-reading", zap.String("code", code))
				continue
			}
			return updated, fmt.Errorf("failed revert voucher `%s`: %w", code, err)
		}

		return updated, nil
	}

	return model.Voucher{}, fmt.Errorf("voucher `%s` revert retries exhausted: %w", code, errstore.ErrVoucherConflict)
}

func (p *Platemart) redeemRetries() int {
	if p.cfg == nil || p.cfg.RedeemRetries < 1 {
		return 1
	}
	return p.cfg.RedeemRetries
}

func validateVoucherSpec(count int, discountType model.DiscountType, discount int64, expirationType model.ExpirationType, expiresAt *time.Time) error {
	if count < 1 {
		return fmt.Errorf("%w: count must be positive", ErrVoucherSpecNotValid)
	}
	if discount < 1 {
		return fmt.Errorf("%w: discount must be positive", ErrVoucherSpecNotValid)
	}
	switch discountType {
	case model.DiscountAmount:
	case model.DiscountPercentage:
		if discount > 100 {
			return fmt.Errorf("%w: percentage over 100", ErrVoucherSpecNotValid)
		}
	default:
		return fmt.Errorf("%w: unknown discount type `%s`", ErrVoucherSpecNotValid, discountType)
	}
	switch expirationType {
	case model.ExpirationOnetime:
	case model.ExpirationUntil:
		if expiresAt == nil {
			return fmt.Errorf("%w: UNTIL requires an expiration date", ErrVoucherSpecNotValid)
		}
	default:
		return fmt.Errorf("%w: unknown expiration type `%s`", ErrVoucherSpecNotValid, expirationType)
	}

	return nil
}

func newVoucherCode() (string, error) {
	code := make([]byte, 0, 8)
	for _, part := range []struct {
		alphabet string
		length   int
	}{
		{voucherConsonants, 3},
		{voucherDigits, 1},
		{voucherConsonants, 3},
		{voucherDigits, 1},
	} {
		for i := 0; i < part.length; i++ {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(part.alphabet))))
			if err != nil {
				return "", fmt.Errorf("failed draw random index: %w", err)
			}
			code = append(code, part.alphabet[n.Int64()])
		}
	}

	return string(code), nil
}
