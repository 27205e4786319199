// Package platemart holds the marketplace core: the order lifecycle engine,
// the voucher ledger and the account operations.
package platemart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/platemart/platemart/internal/adapters/store/errstore"
	"github.com/platemart/platemart/internal/adapters/store/model"
	"github.com/platemart/platemart/pkg/codes"
)

type Store interface {
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUser(ctx context.Context, id uint) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	UpdateUser(ctx context.Context, user model.User) (model.User, error)

	ListDishes(ctx context.Context) ([]*model.Dish, error)
	GetDish(ctx context.Context, id uint) (model.Dish, error)

	InsertOrder(ctx context.Context, order model.Order) (model.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	UpdateOrder(ctx context.Context, order model.Order) (model.Order, error)
	GetUserOrders(ctx context.Context, userID uint) ([]*model.Order, error)

	CreateVouchers(ctx context.Context, vouchers []*model.Voucher) error
	GetVoucher(ctx context.Context, code string) (model.Voucher, error)
	UpdateVoucherGuarded(ctx context.Context, voucher model.Voucher, prevStatus model.VoucherStatus, prevUsedCount int) (model.Voucher, error)
	VoucherCodeExists(ctx context.Context, code string) (bool, error)
}

// PaymentGateway charges a tokenized card. Any returned error is absorbed by
// the engine and converted into a failed order.
type PaymentGateway interface {
	Charge(ctx context.Context, cardToken string, amount int64, currency string) (paid bool, chargeID string, err error)
}

// Notifier dispatches transactional mail. Calls are fire-and-forget.
type Notifier interface {
	NewOrder(user model.User, order model.Order, confirmCode string)
	OrderSuccessful(user model.User, order model.Order)
	OrderFailed(user model.User, order model.Order)
	OrderDeclined(user model.User, order model.Order)
	Registration(user model.User, code string)
	PasswordReset(user model.User, code string)
}

type Config struct {
	RedeemRetries int `env:"VOUCHER_REDEEM_RETRIES" envDefault:"3"`
}

type Platemart struct {
	log     *zap.Logger
	cfg     *Config
	store   Store
	gateway PaymentGateway
	notify  Notifier
}

type option func(*Platemart)

func Logger(log *zap.Logger) option {
	return func(p *Platemart) {
		if log != nil {
			p.log = log
		}
	}
}

func New(cfg *Config, store Store, gateway PaymentGateway, notify Notifier, options ...option) *Platemart {
	p := &Platemart{
		log:     zap.NewNop(),
		cfg:     cfg,
		store:   store,
		gateway: gateway,
		notify:  notify,
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// OrderDraft is the caller-supplied input for order creation. The engine
// never mutates caller-owned data, it builds and returns its own order value.
type OrderDraft struct {
	Currency    string
	CardToken   string
	VoucherCode string
	Amount      int64
	DishID      uint
}

// CreateOrder places a PENDING order for the user: the dish is resolved and
// embedded by value, an attached voucher code is redeemed immediately, the
// order is persisted and a "new order" notification carrying the confirmation
// code is dispatched.
func (p *Platemart) CreateOrder(ctx context.Context, userID uint, draft OrderDraft) (model.Order, error) {
	var order model.Order

	if draft.CardToken == "" {
		return order, fmt.Errorf("%w: card token required", ErrDraftNotValid)
	}

	user, err := p.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return order, ErrUserNotFound
		}
		return order, fmt.Errorf("failed getting user `%d`: %w", userID, err)
	}

	dish, err := p.store.GetDish(ctx, draft.DishID)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return order, ErrDishNotFound
		}
		return order, fmt.Errorf("failed getting dish `%d`: %w", draft.DishID, err)
	}

	currency := draft.Currency
	if currency == "" {
		currency = dish.Currency
	}

	order = model.Order{
		ID:        uuid.New(),
		UserID:    user.ID,
		Dish:      snapshotDish(dish),
		Amount:    draft.Amount,
		Currency:  currency,
		CardToken: draft.CardToken,
		Status:    model.OrderStatePending,
	}

	if draft.VoucherCode != "" {
		voucher, err := p.ValidateVoucher(ctx, draft.VoucherCode)
		if err != nil {
			return model.Order{}, err
		}
		order.Voucher = snapshotVoucher(voucher)
	}

	saved, err := p.store.InsertOrder(ctx, order)
	if err != nil {
		return saved, fmt.Errorf("failed insert order: %w", err)
	}

	p.notify.NewOrder(user, saved, codes.OrderCode(saved.ID.String(), saved.CardToken))

	return saved, nil
}

// ExecuteOrder resolves a pending order exactly once. The user lookup happens
// before the order lookup, which happens before the code check, which happens
// before any gateway call, which happens before the order update and voucher
// revert. Each step can short-circuit the rest with a distinct error.
func (p *Platemart) ExecuteOrder(ctx context.Context, userID uint, orderID uuid.UUID, confirm, shouldCharge bool, orderCode string) (model.Order, error) {
	user, err := p.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return model.Order{}, ErrUserNotFound
		}
		return model.Order{}, fmt.Errorf("failed getting user `%d`: %w", userID, err)
	}

	order, err := p.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return order, ErrOrderNotFound
		}
		return order, fmt.Errorf("failed getting order `%s`: %w", orderID, err)
	}
	if order.UserID != user.ID {
		return model.Order{}, ErrOrderNotFound
	}
	if order.Status != model.OrderStatePending {
		return order, ErrOrderResolved
	}

	if orderCode != codes.OrderCode(order.ID.String(), order.CardToken) {
		return order, ErrForbidden
	}

	switch {
	case !confirm:
		order.Status = model.OrderStateDeclined
		if order.Voucher.Attached() {
			if _, err := p.RevertVoucher(ctx, order.Voucher.Code); err != nil {
				return order, fmt.Errorf("failed revert voucher `%s`: %w", order.Voucher.Code, err)
			}
		}
	case shouldCharge:
		total := ChargeTotal(order)
		paid, chargeID, err := p.gateway.Charge(ctx, order.CardToken, total, order.Currency)
		if err != nil {
			p.log.Error("charge failed, order degrades to FAILED",
				zap.String("orderID", order.ID.String()),
				zap.Int64("total", total),
				zap.Error(err),
			)
		}
		if err != nil || !paid {
			p.handleOrderFail(ctx, &order, user)
		} else {
			order.Paid = &paid
			order.ChargeID = chargeID
			order.Status = model.OrderStateSuccessful
		}
	default:
		// Trusted internal callers skip the gateway entirely.
		order.Status = model.OrderStateSuccessful
	}

	updated, err := p.store.UpdateOrder(ctx, order)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return updated, ErrOrderNotFound
		}
		return updated, fmt.Errorf("failed update order `%s`: %w", order.ID, err)
	}

	switch updated.Status {
	case model.OrderStateSuccessful:
		p.notify.OrderSuccessful(user, updated)
	case model.OrderStateDeclined:
		p.notify.OrderDeclined(user, updated)
	default:
		// FAILED was already notified by handleOrderFail.
	}

	return updated, nil
}

// handleOrderFail is the compensation step shared by gateway errors and
// unpaid charges: the order degrades to FAILED, the failure notification is
// dispatched and an attached voucher reservation is reverted. The caller
// persists the order; this runs at most once per order.
func (p *Platemart) handleOrderFail(ctx context.Context, order *model.Order, user model.User) {
	paid := false
	order.Paid = &paid
	order.Status = model.OrderStateFailed

	p.notify.OrderFailed(user, *order)

	if order.Voucher.Attached() {
		if _, err := p.RevertVoucher(ctx, order.Voucher.Code); err != nil {
			p.log.Error("failed revert voucher for failed order",
				zap.String("orderID", order.ID.String()),
				zap.String("voucher", order.Voucher.Code),
				zap.Error(err),
			)
		}
	}
}

func (p *Platemart) GetUserOrders(ctx context.Context, userID uint) ([]*model.Order, error) {
	orders, err := p.store.GetUserOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed getting orders by user: %w", err)
	}
	return orders, nil
}

func (p *Platemart) ListDishes(ctx context.Context) ([]*model.Dish, error) {
	dishes, err := p.store.ListDishes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed getting dishes: %w", err)
	}
	return dishes, nil
}

func (p *Platemart) GetDish(ctx context.Context, id uint) (model.Dish, error) {
	dish, err := p.store.GetDish(ctx, id)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return dish, ErrDishNotFound
		}
		return dish, fmt.Errorf("failed getting dish `%d`: %w", id, err)
	}
	return dish, nil
}

func (p *Platemart) GetUser(ctx context.Context, id uint) (model.User, error) {
	user, err := p.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return user, ErrUserNotFound
		}
		return user, fmt.Errorf("failed getting user `%d`: %w", id, err)
	}
	return user, nil
}
