package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/platemart/platemart/internal/adapters/store/errstore"
	"github.com/platemart/platemart/internal/adapters/store/model"
)

type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

type option func(*Store)

func Logger(log *zap.Logger) option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func New(ctx context.Context, cfg *Config, options ...option) (*Store, error) {
	var err error
	s := &Store{
		log: zap.NewNop(),
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed connect to database: %w", err)
	}

	s.db = db.WithContext(ctx)

	for _, opt := range options {
		opt(s)
	}

	err = s.db.AutoMigrate(
		&model.User{},
		&model.Caterer{},
		&model.Dish{},
		&model.Order{},
		&model.Voucher{},
	)

	if err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

func (s *Store) CloseDB() error {
	db, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed getting database connection: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed close database connection: %w", err)
	}

	return nil
}

func (s *Store) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	tx := s.db.WithContext(ctx)
	result := tx.Create(&user)
	if err := result.Error; err != nil {
		var sqlError *pgconn.PgError
		if errors.As(err, &sqlError) && sqlError.Code == pgerrcode.UniqueViolation {
			return user, errstore.ErrEmailNotUnique
		}
		return user, fmt.Errorf("failed save user: %w", err)
	}

	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (model.User, error) {
	tx := s.db.WithContext(ctx)
	user := model.User{}
	result := tx.First(&user, id)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, errors.Join(errstore.ErrNotFoundData, err)
		}
		return user, fmt.Errorf("error found user: %w", err)
	}

	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	tx := s.db.WithContext(ctx)
	user := model.User{}
	result := tx.Where(&model.User{Email: email}).First(&user)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, errors.Join(errstore.ErrNotFoundData, err)
		}
		return user, fmt.Errorf("error found user by email: %w", err)
	}

	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, user model.User) (model.User, error) {
	tx := s.db.WithContext(ctx)
	if err := tx.Save(&user).Error; err != nil {
		return user, fmt.Errorf("failed update user id=`%d`: %w", user.ID, err)
	}

	return user, nil
}

func (s *Store) ListDishes(ctx context.Context) ([]*model.Dish, error) {
	dishes := []*model.Dish{}
	tx := s.db.WithContext(ctx)
	if err := tx.Preload("Caterer").Where(&model.Dish{Available: true}).Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("failed get dishes: %w", err)
	}

	return dishes, nil
}

func (s *Store) GetDish(ctx context.Context, id uint) (model.Dish, error) {
	dish := model.Dish{}
	tx := s.db.WithContext(ctx)
	result := tx.Preload("Caterer").First(&dish, id)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dish, errors.Join(errstore.ErrNotFoundData, err)
		}
		return dish, fmt.Errorf("error found dish: %w", err)
	}

	return dish, nil
}

func (s *Store) InsertOrder(ctx context.Context, order model.Order) (model.Order, error) {
	tx := s.db.WithContext(ctx)
	if err := tx.Omit("User").Create(&order).Error; err != nil {
		return order, fmt.Errorf("failed create order: %w", err)
	}

	return order, nil
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	order := model.Order{}
	tx := s.db.WithContext(ctx)
	result := tx.Where(&model.Order{ID: id}).First(&order)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return order, errors.Join(errstore.ErrNotFoundData, err)
		}
		return order, fmt.Errorf("error found order: %w", err)
	}

	return order, nil
}

func (s *Store) UpdateOrder(ctx context.Context, order model.Order) (model.Order, error) {
	tx := s.db.WithContext(ctx)
	result := tx.Omit("User").Save(&order)
	if err := result.Error; err != nil {
		return order, fmt.Errorf("failed update order id=`%s`: %w", order.ID, err)
	}
	if result.RowsAffected == 0 {
		return order, errstore.ErrNotFoundData
	}

	return order, nil
}

func (s *Store) GetUserOrders(ctx context.Context, userID uint) ([]*model.Order, error) {
	orders := []*model.Order{}
	tx := s.db.WithContext(ctx)
	if err := tx.Where(&model.Order{UserID: userID}).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed get orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, errstore.ErrNotFoundData
	}

	return orders, nil
}

func (s *Store) CreateVouchers(ctx context.Context, vouchers []*model.Voucher) error {
	tx := s.db.WithContext(ctx)
	err := tx.Transaction(func(tx *gorm.DB) error {
		for _, voucher := range vouchers {
			if err := tx.Create(voucher).Error; err != nil {
				var sqlError *pgconn.PgError
				if errors.As(err, &sqlError) && sqlError.Code == pgerrcode.UniqueViolation {
					return fmt.Errorf("%w: %s", errstore.ErrVoucherCodeNotUnique, voucher.Code)
				}
				return fmt.Errorf("failed create voucher: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed complete transaction: %w", err)
	}

	return nil
}

func (s *Store) GetVoucher(ctx context.Context, code string) (model.Voucher, error) {
	voucher := model.Voucher{}
	tx := s.db.WithContext(ctx)
	result := tx.Where(&model.Voucher{Code: code}).First(&voucher)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return voucher, errors.Join(errstore.ErrNotFoundData, err)
		}
		return voucher, fmt.Errorf("error found voucher: %w", err)
	}

	return voucher, nil
}

// UpdateVoucherGuarded applies a redemption or revert as a conditional update
// on the previously observed status and usage count, so two concurrent
// redemptions of the same code cannot both succeed.
func (s *Store) UpdateVoucherGuarded(ctx context.Context, voucher model.Voucher, prevStatus model.VoucherStatus, prevUsedCount int) (model.Voucher, error) {
	tx := s.db.WithContext(ctx)
	result := tx.Model(&model.Voucher{}).
		Where("code = ? AND status = ? AND used_count = ?", voucher.Code, prevStatus, prevUsedCount).
		Updates(map[string]interface{}{
			"status":     voucher.Status,
			"used_count": voucher.UsedCount,
		})
	if err := result.Error; err != nil {
		return voucher, fmt.Errorf("failed update voucher `%s`: %w", voucher.Code, err)
	}
	if result.RowsAffected == 0 {
		return voucher, fmt.Errorf("%w: %s", errstore.ErrVoucherConflict, voucher.Code)
	}

	return s.GetVoucher(ctx, voucher.Code)
}

func (s *Store) VoucherCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	tx := s.db.WithContext(ctx)
	if err := tx.Model(&model.Voucher{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed count vouchers: %w", err)
	}

	return count > 0, nil
}
