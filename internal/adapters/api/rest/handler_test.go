package rest_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/platemart/platemart/internal/adapters/api/rest"
	"github.com/platemart/platemart/internal/adapters/store/errstore"
	"github.com/platemart/platemart/internal/adapters/store/model"
	"github.com/platemart/platemart/internal/core/platemart"
	"github.com/platemart/platemart/internal/mocks/store"
	"github.com/platemart/platemart/pkg/codes"
	"github.com/platemart/platemart/pkg/jwt"
)

var (
	cookieKey = "UserID"
	secret    = []byte("secret_key")
)

type nopGateway struct {
	chargeID string
	paid     bool
}

func (g *nopGateway) Charge(_ context.Context, _ string, _ int64, _ string) (bool, string, error) {
	return g.paid, g.chargeID, nil
}

type nopNotifier struct{}

func (nopNotifier) NewOrder(model.User, model.Order, string) {}
func (nopNotifier) OrderSuccessful(model.User, model.Order)  {}
func (nopNotifier) OrderFailed(model.User, model.Order)      {}
func (nopNotifier) OrderDeclined(model.User, model.Order)    {}
func (nopNotifier) Registration(model.User, string)          {}
func (nopNotifier) PasswordReset(model.User, string)         {}

func newServer(t *testing.T, storeMock *store.MockStore, gateway platemart.PaymentGateway) *rest.Server {
	t.Helper()

	mart := platemart.New(&platemart.Config{RedeemRetries: 3}, storeMock, gateway, nopNotifier{})
	server, err := rest.New(mart, rest.SetSecretKey(secret))
	assert.NoError(t, err)

	return server
}

func authorize(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, userID uint) {
	t.Helper()

	signedCookie, err := jwt.New(secret).Create(cookieKey, strconv.Itoa(int(userID)))
	assert.NoError(t, err)
	userCookie := &http.Cookie{
		Name:  "token",
		Value: signedCookie,
		Path:  "/",
	}
	r.AddCookie(userCookie)
	http.SetCookie(w, userCookie)
}

func TestServer_handlerRegister(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		status   int
	}{
		{
			name:     "correct",
			userName: "user",
			email:    "user@example.com",
			password: "pass",
			status:   http.StatusOK,
		},
		{
			name:     "empty",
			userName: "",
			email:    "",
			password: "",
			status:   http.StatusBadRequest,
		},
		{
			name:     "not unique",
			userName: "user",
			email:    "user@example.com",
			password: "pass",
			status:   http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := store.NewMockStore(ctrl)
			if tt.status == http.StatusOK {
				storeMock.EXPECT().
					CreateUser(ctx, gomock.Any()).
					DoAndReturn(func(_ context.Context, user model.User) (model.User, error) {
						user.ID = 1
						return user, nil
					}).
					Times(1)
			}
			if tt.status == http.StatusConflict {
				storeMock.EXPECT().
					CreateUser(ctx, gomock.Any()).
					Return(model.User{}, errstore.ErrEmailNotUnique).
					Times(1)
			}

			server := newServer(t, storeMock, &nopGateway{})
			engin := server.Engine()

			w := httptest.NewRecorder()
			body := strings.NewReader(fmt.Sprintf(`{"name":%q, "email":%q, "password":%q}`, tt.userName, tt.email, tt.password))
			r := httptest.NewRequest(http.MethodPost, "/api/user/register", body)

			engin.ServeHTTP(w, r)

			result := w.Result()

			assert.Equal(t, tt.status, result.StatusCode)

			err := result.Body.Close()
			assert.NoError(t, err)
		})
	}
}

func TestServer_handlerLogin(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		email    string
		password string
		allow    int
		status   int
	}{
		{
			name:     "correct",
			email:    "user@example.com",
			password: "pass",
			allow:    1,
			status:   http.StatusOK,
		},
		{
			name:     "empty",
			email:    "",
			password: "",
			status:   http.StatusBadRequest,
		},
		{
			name:     "unauthorize",
			email:    "user@example.com",
			password: "pass",
			allow:    1,
			status:   http.StatusUnauthorized,
		},
		{
			name:     "not activated",
			email:    "user@example.com",
			password: "pass",
			allow:    0,
			status:   http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := store.NewMockStore(ctrl)
			hashPass, err := codes.HashPassword(tt.password)
			assert.NoError(t, err)
			if tt.status != http.StatusBadRequest {
				if tt.status == http.StatusUnauthorized {
					hashPass, err = codes.HashPassword("other")
					assert.NoError(t, err)
				}
				storeMock.EXPECT().
					GetUserByEmail(ctx, tt.email).
					Return(model.User{
						ID:           1,
						Email:        tt.email,
						PasswordHash: hashPass,
						Allow:        tt.allow,
					}, nil).
					Times(1)
			}

			server := newServer(t, storeMock, &nopGateway{})
			engin := server.Engine()

			w := httptest.NewRecorder()
			body := strings.NewReader(fmt.Sprintf(`{"email":%q, "password":%q}`, tt.email, tt.password))
			r := httptest.NewRequest(http.MethodPost, "/api/user/login", body)

			engin.ServeHTTP(w, r)

			result := w.Result()

			assert.Equal(t, tt.status, result.StatusCode)

			err = result.Body.Close()
			assert.NoError(t, err)
		})
	}
}

func TestServer_handlerCreateOrder(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		cardToken string
		userID    uint
		dishID    uint
		status    int
	}{
		{
			name:      "created",
			cardToken: "tok_visa",
			userID:    1,
			dishID:    3,
			status:    http.StatusCreated,
		},
		{
			name:      "without card token",
			cardToken: "",
			userID:    1,
			dishID:    3,
			status:    http.StatusBadRequest,
		},
		{
			name:      "unknown dish",
			cardToken: "tok_visa",
			userID:    1,
			dishID:    9,
			status:    http.StatusNotFound,
		},
		{
			name:      "unauthorize",
			cardToken: "tok_visa",
			userID:    1,
			dishID:    3,
			status:    http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := store.NewMockStore(ctrl)
			if tt.status == http.StatusCreated || tt.status == http.StatusNotFound {
				storeMock.EXPECT().GetUser(ctx, tt.userID).Return(model.User{ID: tt.userID}, nil).Times(1)
			}
			if tt.status == http.StatusCreated {
				storeMock.EXPECT().
					GetDish(ctx, tt.dishID).
					Return(model.Dish{ID: tt.dishID, Name: "Ramen", Currency: "EUR", Price: 500}, nil).
					Times(1)
				storeMock.EXPECT().
					InsertOrder(ctx, gomock.Any()).
					DoAndReturn(func(_ context.Context, order model.Order) (model.Order, error) {
						return order, nil
					}).
					Times(1)
			}
			if tt.status == http.StatusNotFound {
				storeMock.EXPECT().GetDish(ctx, tt.dishID).Return(model.Dish{}, errstore.ErrNotFoundData).Times(1)
			}

			server := newServer(t, storeMock, &nopGateway{})
			engin := server.Engine()

			w := httptest.NewRecorder()
			body := strings.NewReader(fmt.Sprintf(`{"dish_id":%d, "amount":500, "card_token":%q}`, tt.dishID, tt.cardToken))
			r := httptest.NewRequest(http.MethodPost, "/api/user/orders", body)
			if tt.status != http.StatusUnauthorized {
				authorize(t, w, r, tt.userID)
			}

			engin.ServeHTTP(w, r)

			result := w.Result()

			assert.Equal(t, tt.status, result.StatusCode)

			err := result.Body.Close()
			assert.NoError(t, err)
		})
	}
}

func TestServer_handlerExecuteOrder(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	order := model.Order{
		ID:        orderID,
		UserID:    1,
		Amount:    500,
		Currency:  "EUR",
		CardToken: "tok_visa",
		Status:    model.OrderStatePending,
	}
	orderCode := codes.OrderCode(orderID.String(), order.CardToken)

	tests := []struct {
		name        string
		orderID     string
		code        string
		orderStatus model.OrderStatus
		status      int
	}{
		{
			name:        "confirmed",
			orderID:     orderID.String(),
			code:        orderCode,
			orderStatus: model.OrderStatePending,
			status:      http.StatusOK,
		},
		{
			name:        "wrong code",
			orderID:     orderID.String(),
			code:        "wrong",
			orderStatus: model.OrderStatePending,
			status:      http.StatusForbidden,
		},
		{
			name:        "already resolved",
			orderID:     orderID.String(),
			code:        orderCode,
			orderStatus: model.OrderStateSuccessful,
			status:      http.StatusConflict,
		},
		{
			name:    "bad order id",
			orderID: "not-a-uuid",
			code:    orderCode,
			status:  http.StatusBadRequest,
		},
		{
			name:    "unauthorize",
			orderID: orderID.String(),
			code:    orderCode,
			status:  http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := store.NewMockStore(ctrl)
			if tt.status != http.StatusUnauthorized && tt.status != http.StatusBadRequest {
				current := order
				current.Status = tt.orderStatus
				storeMock.EXPECT().GetUser(ctx, uint(1)).Return(model.User{ID: 1}, nil).Times(1)
				storeMock.EXPECT().GetOrder(ctx, orderID).Return(current, nil).Times(1)
			}
			if tt.status == http.StatusOK {
				storeMock.EXPECT().
					UpdateOrder(ctx, gomock.Any()).
					DoAndReturn(func(_ context.Context, o model.Order) (model.Order, error) {
						assert.Equal(t, model.OrderStateSuccessful, o.Status)
						return o, nil
					}).
					Times(1)
			}

			server := newServer(t, storeMock, &nopGateway{paid: true, chargeID: "ch_1"})
			engin := server.Engine()

			w := httptest.NewRecorder()
			body := strings.NewReader(fmt.Sprintf(`{"code":%q, "confirm":true}`, tt.code))
			r := httptest.NewRequest(http.MethodPost, "/api/user/orders/"+tt.orderID+"/execute", body)
			if tt.status != http.StatusUnauthorized {
				authorize(t, w, r, 1)
			}

			engin.ServeHTTP(w, r)

			result := w.Result()

			assert.Equal(t, tt.status, result.StatusCode)

			err := result.Body.Close()
			assert.NoError(t, err)
		})
	}
}

func TestServer_handlerGetUserOrders(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		errstore error
		orders   []*model.Order
		userID   uint
		status   int
	}{
		{
			name:   "ok",
			userID: 1,
			orders: []*model.Order{
				{ID: uuid.New(), UserID: 1, Amount: 500, Status: model.OrderStatePending},
			},
			status: http.StatusOK,
		},
		{
			name:     "no content",
			userID:   1,
			status:   http.StatusNoContent,
			errstore: errstore.ErrNotFoundData,
		},
		{
			name:   "unauthorize",
			userID: 1,
			status: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := store.NewMockStore(ctrl)
			if tt.errstore != nil || tt.name == "ok" {
				storeMock.EXPECT().
					GetUserOrders(ctx, tt.userID).
					Return(tt.orders, tt.errstore).
					Times(1)
			}

			server := newServer(t, storeMock, &nopGateway{})
			engin := server.Engine()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/user/orders", http.NoBody)
			if tt.status != http.StatusUnauthorized {
				authorize(t, w, r, tt.userID)
			}

			engin.ServeHTTP(w, r)

			result := w.Result()

			assert.Equal(t, tt.status, result.StatusCode)

			err := result.Body.Close()
			assert.NoError(t, err)
		})
	}
}

func TestServer_handlerGetDish(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		dishID string
		status int
	}{
		{
			name:   "ok",
			dishID: "3",
			status: http.StatusOK,
		},
		{
			name:   "not found",
			dishID: "9",
			status: http.StatusNotFound,
		},
		{
			name:   "bad id",
			dishID: "ramen",
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := store.NewMockStore(ctrl)
			if tt.status == http.StatusOK {
				storeMock.EXPECT().
					GetDish(ctx, uint(3)).
					Return(model.Dish{ID: 3, Name: "Ramen", Currency: "EUR", Price: 500}, nil).
					Times(1)
			}
			if tt.status == http.StatusNotFound {
				storeMock.EXPECT().GetDish(ctx, uint(9)).Return(model.Dish{}, errstore.ErrNotFoundData).Times(1)
			}

			server := newServer(t, storeMock, &nopGateway{})
			engin := server.Engine()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/dishes/"+tt.dishID, http.NoBody)

			engin.ServeHTTP(w, r)

			result := w.Result()

			assert.Equal(t, tt.status, result.StatusCode)

			err := result.Body.Close()
			assert.NoError(t, err)
		})
	}
}

func TestServer_handlerGenerateVouchers(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		role   model.Role
		count  int
		status int
	}{
		{
			name:   "created",
			role:   model.RoleAdmin,
			count:  2,
			status: http.StatusCreated,
		},
		{
			name:   "invalid spec",
			role:   model.RoleAdmin,
			count:  0,
			status: http.StatusBadRequest,
		},
		{
			name:   "forbidden",
			role:   model.RoleUser,
			count:  2,
			status: http.StatusForbidden,
		},
		{
			name:   "unauthorize",
			count:  2,
			status: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := store.NewMockStore(ctrl)
			if tt.status != http.StatusUnauthorized {
				storeMock.EXPECT().GetUser(ctx, uint(1)).Return(model.User{ID: 1, Role: tt.role}, nil).Times(1)
			}
			if tt.status == http.StatusCreated {
				storeMock.EXPECT().VoucherCodeExists(ctx, gomock.Any()).Return(false, nil).Times(tt.count)
				storeMock.EXPECT().CreateVouchers(ctx, gomock.Any()).Return(nil).Times(1)
			}

			server := newServer(t, storeMock, &nopGateway{})
			engin := server.Engine()

			w := httptest.NewRecorder()
			body := strings.NewReader(fmt.Sprintf(`{"count":%d, "discount_type":"AMOUNT", "discount":50, "expiration_type":"ONETIME"}`, tt.count))
			r := httptest.NewRequest(http.MethodPost, "/api/admin/vouchers", body)
			if tt.status != http.StatusUnauthorized {
				authorize(t, w, r, 1)
			}

			engin.ServeHTTP(w, r)

			result := w.Result()

			assert.Equal(t, tt.status, result.StatusCode)

			err := result.Body.Close()
			assert.NoError(t, err)
		})
	}
}

func TestServer_handlerValidateVoucher(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		code     string
		voucher  model.Voucher
		errstore error
		status   int
	}{
		{
			name: "redeemed",
			code: "bcd2fgh3",
			voucher: model.Voucher{
				Code:           "bcd2fgh3",
				ExpirationType: model.ExpirationOnetime,
				Status:         model.VoucherStateValid,
			},
			status: http.StatusOK,
		},
		{
			name:     "not found",
			code:     "zzz2zzz3",
			errstore: errstore.ErrNotFoundData,
			status:   http.StatusNotFound,
		},
		{
			name: "expired",
			code: "bcd2fgh3",
			voucher: model.Voucher{
				Code:           "bcd2fgh3",
				ExpirationType: model.ExpirationOnetime,
				Status:         model.VoucherStateExpired,
			},
			status: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := store.NewMockStore(ctrl)
			storeMock.EXPECT().GetUser(ctx, uint(1)).Return(model.User{ID: 1, Role: model.RoleAdmin}, nil).Times(1)
			storeMock.EXPECT().GetVoucher(ctx, tt.code).Return(tt.voucher, tt.errstore).Times(1)
			if tt.status == http.StatusOK {
				storeMock.EXPECT().
					UpdateVoucherGuarded(ctx, gomock.Any(), model.VoucherStateValid, 0).
					DoAndReturn(func(_ context.Context, voucher model.Voucher, _ model.VoucherStatus, _ int) (model.Voucher, error) {
						return voucher, nil
					}).
					Times(1)
			}

			server := newServer(t, storeMock, &nopGateway{})
			engin := server.Engine()

			w := httptest.NewRecorder()
			body := strings.NewReader(fmt.Sprintf(`{"code":%q}`, tt.code))
			r := httptest.NewRequest(http.MethodPost, "/api/admin/vouchers/validate", body)
			authorize(t, w, r, 1)

			engin.ServeHTTP(w, r)

			result := w.Result()

			assert.Equal(t, tt.status, result.StatusCode)

			err := result.Body.Close()
			assert.NoError(t, err)
		})
	}
}
