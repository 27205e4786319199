package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/platemart/platemart/internal/adapters/store/database"
	"github.com/platemart/platemart/internal/adapters/store/model"
)

type Config struct {
	Database *database.Config
}

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

func New(ctx context.Context, cfg *Config, log *zap.Logger) (Store, error) {
	s, err := database.New(ctx, cfg.Database, database.Logger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return s, nil
}
