package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/platemart/platemart/internal/adapters/store/errstore"
	"github.com/platemart/platemart/internal/adapters/store/model"
	"github.com/platemart/platemart/internal/core/platemart"
)

var (
	msgErrorCloseBody = "failed close body request"
)

func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	bBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.log.Error("failed read body", zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return nil, false
	}
	defer func() {
		if err := c.Request.Body.Close(); err != nil {
			s.log.Error(msgErrorCloseBody, zap.Error(err))
		}
	}()
	return bBody, true
}

func toOrder(order model.Order) tOrder {
	o := tOrder{
		createdAt:   order.CreatedAt,
		ID:          order.ID.String(),
		Status:      order.Status,
		Dish:        order.Dish.Name,
		Caterer:     order.Dish.CatererName,
		Currency:    order.Currency,
		ChargeID:    order.ChargeID,
		VoucherCode: order.Voucher.Code,
		Paid:        order.Paid,
		Amount:      order.Amount,
		Total:       platemart.ChargeTotal(order),
	}
	o.Prepare()
	return o
}

func toVoucher(voucher model.Voucher) tVoucher {
	return tVoucher{
		Code:           voucher.Code,
		DiscountType:   voucher.DiscountType,
		ExpirationType: voucher.ExpirationType,
		Status:         voucher.Status,
		ExpiresAt:      voucher.ExpiresAt,
		Discount:       voucher.Discount,
		UsedCount:      voucher.UsedCount,
	}
}

//	@Summary	Register user
//	@Schemes
//	@Description	registers a deactivated account and mails the confirmation code
//	@Tags			auth
//	@Accept			json
//	@Produce		plain
//	@Param			registration	body	tRegistration	true	"registration"
//	@Success		200	"account created, confirmation code mailed"
//	@failure		400	"invalid name, email or password"
//	@failure		409	"email already registered"
//	@failure		500	"internal error"
//	@Router			/api/user/register [post]
func (s *Server) handlerRegister(c *gin.Context) {
	ctx := c.Request.Context()

	unauthorize(c)

	bBody, ok := s.readBody(c)
	if !ok {
		return
	}

	jBody := tRegistration{}
	if err := json.Unmarshal(bBody, &jBody); err != nil {
		s.log.Error("failed parse body", zap.Error(err))
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}

	if _, err := s.service.Register(ctx, jBody.Name, jBody.Email, jBody.Password); err != nil {
		if errors.Is(err, errstore.ErrEmailNotUnique) {
			c.Writer.WriteHeader(http.StatusConflict)
			return
		}
		if errors.Is(err, platemart.ErrNameNotValid) ||
			errors.Is(err, platemart.ErrEmailNotValid) ||
			errors.Is(err, platemart.ErrPasswordNotValid) {
			c.Writer.WriteHeader(http.StatusBadRequest)
			return
		}

		s.log.Error("failed register user", zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	c.Writer.WriteHeader(http.StatusOK)
}

//	@Summary	Confirm registration
//	@Schemes
//	@Description	activates an account with the mailed code
//	@Tags			auth
//	@Accept			json
//	@Produce		plain
//	@Param			confirmation	body	tRegistrationConfirm	true	"confirmation"
//	@Success		200	"account activated"
//	@failure		403	"code mismatch"
//	@failure		404	"unknown email"
//	@failure		500	"internal error"
//	@Router			/api/user/register/confirm [post]
func (s *Server) handlerRegisterConfirm(c *gin.Context) {
	ctx := c.Request.Context()

	bBody, ok := s.readBody(c)
	if !ok {
		return
	}

	jBody := tRegistrationConfirm{}
	if err := json.Unmarshal(bBody, &jBody); err != nil {
		s.log.Error("failed parse body", zap.Error(err))
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := s.service.ConfirmRegistration(ctx, jBody.Email, jBody.Code); err != nil {
		if errors.Is(err, platemart.ErrUserNotFound) {
			c.Writer.WriteHeader(http.StatusNotFound)
			return
		}
		if errors.Is(err, platemart.ErrCodeNotValid) {
			c.Writer.WriteHeader(http.StatusForbidden)
			return
		}
		s.log.Error("failed confirm registration", zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	c.Writer.WriteHeader(http.StatusOK)
}

//	@Summary	Login user
//	@Schemes
//	@Description	authorization
//	@Tags			auth
//	@Accept			json
//	@Produce		plain
//	@Param			auth	body	tAuthorization	true	"auth"
//	@Success		200	"authenticated"
//	@failure		400	"invalid request format"
//	@failure		401	"wrong email/password pair"
//	@failure		403	"account not activated"
//	@failure		500	"internal error"
//	@Router			/api/user/login [post]
func (s *Server) handlerLogin(c *gin.Context) {
	unauthorize(c)

	bBody, ok := s.readBody(c)
	if !ok {
		return
	}

	jBody := tAuthorization{}
	if err := json.Unmarshal(bBody, &jBody); err != nil {
		s.log.Error("failed parse body", zap.Error(err))
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := s.authorization(c, jBody.Email, jBody.Password); err != nil {
		if errors.Is(err, platemart.ErrEmailNotValid) || errors.Is(err, platemart.ErrPasswordNotValid) {
			c.Writer.WriteHeader(http.StatusBadRequest)
			return
		}
		if errors.Is(err, platemart.ErrPasswordNotEqual) || errors.Is(err, platemart.ErrUserNotFound) {
			c.Writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		if errors.Is(err, platemart.ErrUserNotAllowed) {
			c.Writer.WriteHeader(http.StatusForbidden)
			return
		}
		s.log.Error("authorization failed", zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	c.Writer.WriteHeader(http.StatusOK)
}

//	@Summary	Request password reset
//	@Schemes
//	@Description	mails a password reset code
//	@Tags			auth
//	@Accept			json
//	@Produce		plain
//	@Param			forgot	body	tPasswordForgot	true	"forgot"
//	@Success		200	"reset code mailed"
//	@failure		404	"unknown email"
//	@failure		500	"internal error"
//	@Router			/api/user/password/forgot [post]
func (s *Server) handlerPasswordForgot(c *gin.Context) {
	ctx := c.Request.Context()

	bBody, ok := s.readBody(c)
	if !ok {
		return
	}

	jBody := tPasswordForgot{}
	if err := json.Unmarshal(bBody, &jBody); err != nil {
		s.log.Error("failed parse body", zap.Error(err))
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := s.service.RequestPasswordReset(ctx, jBody.Email); err != nil {
		if errors.Is(err, platemart.ErrUserNotFound) {
			c.Writer.WriteHeader(http.StatusNotFound)
			return
		}
		s.log.Error("failed request password reset", zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	c.Writer.WriteHeader(http.StatusOK)
}

//	@Summary	Reset password
//	@Schemes
//	@Description	replaces the credential using the mailed reset code
//	@Tags			auth
//	@Accept			json
//	@Produce		plain
//	@Param			reset	body	tPasswordReset	true	"reset"
//	@Success		200	"password replaced"
//	@failure		400	"invalid password"
//	@failure		403	"code mismatch"
//	@failure		404	"unknown email"
//	@failure		500	"internal error"
//	@Router			/api/user/password/reset [post]
func (s *Server) handlerPasswordReset(c *gin.Context) {
	ctx := c.Request.Context()

	bBody, ok := s.readBody(c)
	if !ok {
		return
	}

	jBody := tPasswordReset{}
	if err := json.Unmarshal(bBody, &jBody); err != nil {
		s.log.Error("failed parse body", zap.Error(err))
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := s.service.ResetPassword(ctx, jBody.Email, jBody.Code, jBody.Password); err != nil {
		if errors.Is(err, platemart.ErrPasswordNotValid) {
			c.Writer.WriteHeader(http.StatusBadRequest)
			return
		}
		if errors.Is(err, platemart.ErrUserNotFound) {
			c.Writer.WriteHeader(http.StatusNotFound)
			return
		}
		if errors.Is(err, platemart.ErrCodeNotValid) {
			c.Writer.WriteHeader(http.StatusForbidden)
			return
		}
		s.log.Error("failed reset password", zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	c.Writer.WriteHeader(http.StatusOK)
}

//	@Summary	List dishes
//	@Schemes
//	@Description	lists available dishes with their caterers
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{array}	tDish	"dishes"
//	@failure		500	"internal error"
//	@Router			/api/dishes [get]
func (s *Server) handlerListDishes(c *gin.Context) {
	ctx := c.Request.Context()

	dishes, err := s.service.ListDishes(ctx)
	if err != nil {
		s.log.Error("failed get dishes", zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	response := []tDish{}
	for _, dish := range dishes {
		response = append(response, tDish{
			ID:          dish.ID,
			Name:        dish.Name,
			Description: dish.Description,
			Caterer:     dish.Caterer.Name,
			Currency:    dish.Currency,
			Price:       dish.Price,
		})
	}
	c.JSON(http.StatusOK, response)
}

//	@Summary	Get dish
//	@Schemes
//	@Description	fetches one dish with its caterer
//	@Tags			catalog
//	@Produce		json
//	@Param			id	path	integer	true	"dish id"
//	@Success		200	{object}	tDish	"dish"
//	@failure		404	"dish not found"
//	@failure		500	"internal error"
//	@Router			/api/dishes/{id} [get]
func (s *Server) handlerGetDish(c *gin.Context) {
	ctx := c.Request.Context()

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}

	dish, err := s.service.GetDish(ctx, uint(id64))
	if err != nil {
		if errors.Is(err, platemart.ErrDishNotFound) {
			c.Writer.WriteHeader(http.StatusNotFound)
			return
		}
		s.log.Error("failed get dish", zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, tDish{
		ID:          dish.ID,
		Name:        dish.Name,
		Description: dish.Description,
		Caterer:     dish.Caterer.Name,
		Currency:    dish.Currency,
		Price:       dish.Price,
	})
}

//	@Summary	Create order
//	@Schemes
//	@Description	places a PENDING order, redeeming an attached voucher code
//	@Tags			order
//	@Accept			json
//	@Produce		json
//	@Param			order	body	tCreateOrder	true	"order draft"
//	@Success		201	{object}	tOrder	"order placed"
//	@failure		400	"invalid draft"
//	@failure		401	"not authorized"
//	@failure		404	"dish or voucher not found"
//	@failure		409	"voucher expired"
//	@failure		500	"internal error"
//	@Router			/api/user/orders [post]
func (s *Server) handlerCreateOrder(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := s.checkAuth(c)
	if err != nil {
		c.Writer.WriteHeader(http.StatusUnauthorized)
		return
	}

	bBody, ok := s.readBody(c)
	if !ok {
		return
	}

	jBody := tCreateOrder{}
	if err := json.Unmarshal(bBody, &jBody); err != nil {
		s.log.Error("failed parse body", zap.Error(err))
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}

	order, err := s.service.CreateOrder(ctx, userID, platemart.OrderDraft{
		DishID:      jBody.DishID,
		Amount:      jBody.Amount,
		Currency:    jBody.Currency,
		CardToken:   jBody.CardToken,
		VoucherCode: jBody.VoucherCode,
	})
	if err != nil {
		if errors.Is(err, platemart.ErrDraftNotValid) {
			c.Writer.WriteHeader(http.StatusBadRequest)
			return
		}
		if errors.Is(err, platemart.ErrUserNotFound) {
			c.Writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		if errors.Is(err, platemart.ErrDishNotFound) || errors.Is(err, platemart.ErrVoucherNotFound) {
			c.Writer.WriteHeader(http.StatusNotFound)
			return
		}
		if errors.Is(err, platemart.ErrVoucherExpired) {
			c.Writer.WriteHeader(http.StatusConflict)
			return
		}
		s.log.Error("failed create order", zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, toOrder(order))
}

//	@Summary	Execute order
//	@Schemes
//	@Description	confirms or declines a pending order using the mailed order code
//	@Tags			order
//	@Accept			json
//	@Produce		json
//	@Param			id			path	string			true	"order id"
//	@Param			execution	body	tExecuteOrder	true	"execution"
//	@Success		200	{object}	tOrder	"resolved order"
//	@failure		400	"invalid request format"
//	@failure		401	"not authorized"
//	@failure		403	"order code mismatch or charge override not allowed"
//	@failure		404	"order not found"
//	@failure		409	"order already resolved"
//	@failure		500	"internal error"
//	@Router			/api/user/orders/{id}/execute [post]
func (s *Server) handlerExecuteOrder(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := s.checkAuth(c)
	if err != nil {
		c.Writer.WriteHeader(http.StatusUnauthorized)
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}

	bBody, ok := s.readBody(c)
	if !ok {
		return
	}

	jBody := tExecuteOrder{}
	if err := json.Unmarshal(bBody, &jBody); err != nil {
		s.log.Error("failed parse body", zap.Error(err))
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}

	// Skipping the charge is an operator override, not a customer option.
	shouldCharge := true
	if jBody.Charge != nil && !*jBody.Charge {
		if _, err := s.service.RequireAdmin(ctx, userID); err != nil {
			c.Writer.WriteHeader(http.StatusForbidden)
			return
		}
		shouldCharge = false
	}

	order, err := s.service.ExecuteOrder(ctx, userID, orderID, jBody.Confirm, shouldCharge, jBody.Code)
	if err != nil {
		if errors.Is(err, platemart.ErrUserNotFound) {
			c.Writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		if errors.Is(err, platemart.ErrOrderNotFound) {
			c.Writer.WriteHeader(http.StatusNotFound)
			return
		}
		if errors.Is(err, platemart.ErrForbidden) {
			c.Writer.WriteHeader(http.StatusForbidden)
			return
		}
		if errors.Is(err, platemart.ErrOrderResolved) {
			c.Writer.WriteHeader(http.StatusConflict)
			return
		}
		s.log.Error("failed execute order", zap.String("orderID", orderID.String()), zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toOrder(order))
}

//	@Summary	List user orders
//	@Schemes
//	@Description	lists the caller's orders
//	@Tags			order
//	@Produce		json
//	@Success		200	{array}	tOrder	"orders"
//	@Success		204	"no orders"
//	@failure		401	"not authorized"
//	@failure		500	"internal error"
//	@Router			/api/user/orders [get]
func (s *Server) handlerGetUserOrders(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := s.checkAuth(c)
	if err != nil {
		c.Writer.WriteHeader(http.StatusUnauthorized)
		return
	}

	orders, err := s.service.GetUserOrders(ctx, userID)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			c.Writer.WriteHeader(http.StatusNoContent)
			return
		}
		s.log.Error("failed get orders by user", zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	response := []tOrder{}
	for _, order := range orders {
		response = append(response, toOrder(*order))
	}
	sort.Slice(response, func(i, j int) bool {
		return response[i].createdAt.Sub(response[j].createdAt) < 0
	})
	c.JSON(http.StatusOK, response)
}

//	@Summary	Generate vouchers
//	@Schemes
//	@Description	creates a batch of vouchers with fresh unique codes
//	@Tags			voucher
//	@Accept			json
//	@Produce		json
//	@Param			generation	body	tGenerateVouchers	true	"generation"
//	@Success		201	{array}	tVoucher	"vouchers created"
//	@failure		400	"invalid parameters"
//	@failure		401	"not authorized"
//	@failure		403	"administrators only"
//	@failure		500	"internal error"
//	@Router			/api/admin/vouchers [post]
func (s *Server) handlerGenerateVouchers(c *gin.Context) {
	ctx := c.Request.Context()

	bBody, ok := s.readBody(c)
	if !ok {
		return
	}

	jBody := tGenerateVouchers{}
	if err := json.Unmarshal(bBody, &jBody); err != nil {
		s.log.Error("failed parse body", zap.Error(err))
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}

	vouchers, err := s.service.GenerateVouchers(ctx, jBody.Count, jBody.DiscountType, jBody.Discount, jBody.ExpirationType, jBody.ExpiresAt)
	if err != nil {
		if errors.Is(err, platemart.ErrVoucherSpecNotValid) {
			c.Writer.WriteHeader(http.StatusBadRequest)
			return
		}
		s.log.Error("failed generate vouchers", zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	response := []tVoucher{}
	for _, voucher := range vouchers {
		response = append(response, toVoucher(*voucher))
	}
	c.JSON(http.StatusCreated, response)
}

//	@Summary	Validate voucher
//	@Schemes
//	@Description	redeems one use of a voucher code
//	@Tags			voucher
//	@Accept			json
//	@Produce		json
//	@Param			code	body	tVoucherCode	true	"code"
//	@Success		200	{object}	tVoucher	"redeemed voucher"
//	@failure		401	"not authorized"
//	@failure		403	"administrators only"
//	@failure		404	"voucher not found"
//	@failure		409	"voucher expired"
//	@failure		500	"internal error"
//	@Router			/api/admin/vouchers/validate [post]
func (s *Server) handlerValidateVoucher(c *gin.Context) {
	ctx := c.Request.Context()

	bBody, ok := s.readBody(c)
	if !ok {
		return
	}

	jBody := tVoucherCode{}
	if err := json.Unmarshal(bBody, &jBody); err != nil {
		s.log.Error("failed parse body", zap.Error(err))
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}

	voucher, err := s.service.ValidateVoucher(ctx, jBody.Code)
	if err != nil {
		if errors.Is(err, platemart.ErrVoucherNotFound) {
			c.Writer.WriteHeader(http.StatusNotFound)
			return
		}
		if errors.Is(err, platemart.ErrVoucherExpired) {
			c.Writer.WriteHeader(http.StatusConflict)
			return
		}
		s.log.Error("failed validate voucher", zap.Error(err))
		c.Writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toVoucher(voucher))
}
