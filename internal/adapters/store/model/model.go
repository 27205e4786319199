package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleSuperUser Role = "SUPER_USER"
	RoleUser      Role = "USER"
)

type User struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Name         string
	Email        string `gorm:"unique"`
	PasswordHash string
	Role         Role `gorm:"default:USER"`
	ID           uint `gorm:"primarykey"`
	Allow        int
}

type Caterer struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	Email     string
	Phone     string
	Address   string
	ID        uint `gorm:"primarykey"`
}

type Dish struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string
	Description string
	Currency    string
	Caterer     Caterer
	Price       int64
	ID          uint `gorm:"primarykey"`
	CatererID   uint `gorm:"index"`
	Available   bool `gorm:"default:true"`
}

type DiscountType string

const (
	DiscountAmount     DiscountType = "AMOUNT"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

type ExpirationType string

const (
	ExpirationOnetime ExpirationType = "ONETIME"
	ExpirationUntil   ExpirationType = "UNTIL"
)

type VoucherStatus string

const (
	VoucherStateValid   VoucherStatus = "VALID"
	VoucherStateExpired VoucherStatus = "EXPIRED"
)

type Voucher struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Code           string `gorm:"unique"`
	DiscountType   DiscountType
	ExpirationType ExpirationType
	Status         VoucherStatus `gorm:"default:VALID"`
	ExpiresAt      *time.Time
	Discount       int64
	ID             uint `gorm:"primarykey"`
	UsedCount      int
}

type OrderStatus string

const (
	OrderStatePending    OrderStatus = "PENDING"
	OrderStateSuccessful OrderStatus = "SUCCESSFUL"
	OrderStateFailed     OrderStatus = "FAILED"
	OrderStateDeclined   OrderStatus = "DECLINED"
)

// DishSnapshot is the value copy of a dish embedded into an order at creation
// time. Later catalog changes never affect existing orders.
type DishSnapshot struct {
	Name         string
	Description  string
	CatererName  string
	CatererEmail string
	Price        int64
}

// VoucherSnapshot is the value copy of a redeemed voucher embedded into an
// order. Reservation state lives in the voucher record keyed by code.
type VoucherSnapshot struct {
	Code           string
	DiscountType   DiscountType
	ExpirationType ExpirationType
	Discount       int64
}

func (v VoucherSnapshot) Attached() bool {
	return v.Code != ""
}

type Order struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Currency  string
	CardToken string
	ChargeID  string
	Status    OrderStatus     `gorm:"default:PENDING"`
	Dish      DishSnapshot    `gorm:"embedded;embeddedPrefix:dish_"`
	Voucher   VoucherSnapshot `gorm:"embedded;embeddedPrefix:voucher_"`
	User      User
	Paid      *bool
	Amount    int64
	ID        uuid.UUID `gorm:"type:uuid;primarykey"`
	UserID    uint      `gorm:"index"`
}
