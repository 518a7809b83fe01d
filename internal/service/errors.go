package service

import "errors"

// 购物车
var (
	ErrCartEmpty           = errors.New("cart is empty")
	ErrCartLineNotFound    = errors.New("cart line not found")
	ErrCartLineIDRequired  = errors.New("cart line id required")
	ErrCartQuantityInvalid = errors.New("cart quantity invalid")
	ErrProductNotAvailable = errors.New("product not available")
)

// 配送报价
var (
	ErrAddressIncomplete  = errors.New("delivery address incomplete")
	ErrOutOfDeliveryRange = errors.New("address out of delivery range")
	ErrQuoteUnavailable   = errors.New("delivery quote unavailable")
)

// 结账与支付
var (
	ErrPaymentIntentNotFound     = errors.New("payment intent not found")
	ErrPaymentNotSucceeded       = errors.New("payment not succeeded")
	ErrPaymentGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrAmountTooSmall            = errors.New("amount below gateway minimum")
)

// 订单
var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotCancellable = errors.New("order not cancellable")
	ErrOrderStatusInvalid  = errors.New("order status invalid")
)

// 用户与认证
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password too weak")
)

// 验证码
var (
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
)
