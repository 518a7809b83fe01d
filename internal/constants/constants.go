package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// 支付意图状态常量（网关状态原样透传，expired 为本地补充状态）
const (
	IntentStatusRequiresPayment = "requires_payment_method"
	IntentStatusProcessing      = "processing"
	IntentStatusSucceeded       = "succeeded"
	IntentStatusCanceled        = "canceled"
	IntentStatusExpired         = "expired"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 用户角色常量
const (
	RoleCustomer = "customer"
	RoleRider    = "rider"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// 验证码校验场景常量
const (
	CaptchaSceneRegister = "register"
)

// 队列常量
const (
	QueueDefault            = "default"
	TaskOrderStatusEmail    = "order:status_email"
	TaskCheckoutIntentSweep = "checkout:intent_sweep"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "fc"
)

// 币种常量
const (
	SiteCurrencyDefault = "EUR"
)

// 支付方式常量
const (
	PaymentMethodDefault = "card"
)

// 站点语言常量
const (
	LocaleEnUS = "en-US"
	LocaleFrFR = "fr-FR"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleEnUS, LocaleFrFR}
