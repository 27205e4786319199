package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/platemart/platemart/docs"
	"github.com/platemart/platemart/internal/adapters/store/model"
	"github.com/platemart/platemart/internal/core/platemart"
	"github.com/platemart/platemart/pkg/jwt"
)

var (
	cookieName = "token"
	cookieKey  = "UserID"
)

type platemartI interface {
	Register(ctx context.Context, name, email, password string) (model.User, error)
	ConfirmRegistration(ctx context.Context, email, code string) error
	Authorization(ctx context.Context, email, password string) (model.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	RequireAdmin(ctx context.Context, userID uint) (model.User, error)

	ListDishes(ctx context.Context) ([]*model.Dish, error)
	GetDish(ctx context.Context, id uint) (model.Dish, error)

	CreateOrder(ctx context.Context, userID uint, draft platemart.OrderDraft) (model.Order, error)
	ExecuteOrder(ctx context.Context, userID uint, orderID uuid.UUID, confirm, shouldCharge bool, orderCode string) (model.Order, error)
	GetUserOrders(ctx context.Context, userID uint) ([]*model.Order, error)

	GenerateVouchers(ctx context.Context, count int, discountType model.DiscountType, discount int64, expirationType model.ExpirationType, expiresAt *time.Time) ([]*model.Voucher, error)
	ValidateVoucher(ctx context.Context, code string) (model.Voucher, error)
}

type Server struct {
	log     *zap.Logger
	engine  *gin.Engine
	service platemartI
	address string
	secret  []byte
}

type Option func(*Server)

func Logger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

func SetAddress(address string) Option {
	return func(s *Server) {
		s.address = address
	}
}

func SetSecretKey(key []byte) Option {
	return func(s *Server) {
		s.secret = key
	}
}

func Configure(cfg *Config) Option {
	return func(s *Server) {
		s.address = cfg.Address
		s.secret = []byte(cfg.Secret)
	}
}

//	@title			Platemart
//	@version		1.0
//	@description	Marketplace backend connecting customers and caterers.
//	@host			localhost:8080
//	@BasePath		/

func New(service platemartI, options ...Option) (*Server, error) {
	s := &Server{
		log:     zap.NewNop(),
		service: service,
	}

	s.engine = gin.New()
	s.engine.Use(s.Logger())

	api := s.engine.Group("/api")
	{
		api.GET("/dishes", s.handlerListDishes)
		api.GET("/dishes/:id", s.handlerGetDish)

		apiUser := api.Group("/user")
		{
			apiUser.POST("/register", s.handlerRegister)
			apiUser.POST("/register/confirm", s.handlerRegisterConfirm)
			apiUser.POST("/login", s.handlerLogin)
			apiUser.POST("/password/forgot", s.handlerPasswordForgot)
			apiUser.POST("/password/reset", s.handlerPasswordReset)

			authAPIUser := apiUser.Group("/")
			authAPIUser.Use(s.Authentication())
			{
				authAPIUser.POST("/orders", s.handlerCreateOrder)
				authAPIUser.GET("/orders", s.handlerGetUserOrders)
				authAPIUser.POST("/orders/:id/execute", s.handlerExecuteOrder)
			}
		}

		apiAdmin := api.Group("/admin")
		apiAdmin.Use(s.Authentication(), s.AdminOnly())
		{
			apiAdmin.POST("/vouchers", s.handlerGenerateVouchers)
			apiAdmin.POST("/vouchers/validate", s.handlerValidateVoucher)
		}
	}
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Run() error {
	if err := s.engine.Run(s.address); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	return nil
}

func (s *Server) checkAuth(c *gin.Context) (userID uint, err error) {
	cookieUserID, err := c.Request.Cookie(cookieName)
	if err != nil {
		return 0, fmt.Errorf("failed read user cookie: %w %w", err, errUnauthorize)
	}

	jwtRest := jwt.New(s.secret)
	userIDS, ok, err := jwtRest.Verify(cookieUserID.Value, cookieKey)
	if err != nil {
		return 0, fmt.Errorf("failed verify token: %w %w", err, errUnauthorize)
	}

	if !ok {
		return 0, fmt.Errorf("unverified user cookie: %w", errUnauthorize)
	}

	userID64, err := strconv.ParseUint(userIDS, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("can't convert string userID to uint: %w", err)
	}

	return uint(userID64), nil
}

func unauthorize(c *gin.Context) {
	userCookie := &http.Cookie{
		Name:  cookieName,
		Value: "",
		Path:  "/",
	}
	c.Request.AddCookie(userCookie)
	http.SetCookie(c.Writer, userCookie)
}

func (s *Server) authorization(c *gin.Context, email, password string) error {
	ctx := c.Request.Context()
	user, err := s.service.Authorization(ctx, email, password)
	if err != nil {
		return fmt.Errorf("failed authorization: %w", err)
	}

	jwtRest := jwt.New(s.secret)
	signedCookie, err := jwtRest.Create(cookieKey, strconv.Itoa(int(user.ID)))
	if err != nil {
		return fmt.Errorf("can't create cookie data: %w", err)
	}

	userCookie := &http.Cookie{
		Name:  cookieName,
		Value: signedCookie,
		Path:  "/",
	}
	c.Request.AddCookie(userCookie)
	http.SetCookie(c.Writer, userCookie)

	return nil
}
