package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/freshcart-next/internal/config"
	"github.com/freshcart-next/internal/constants"
	"github.com/freshcart-next/internal/logger"
	"github.com/freshcart-next/internal/models"
	"github.com/freshcart-next/internal/payment/stripe"
	"github.com/freshcart-next/internal/queue"
	"github.com/freshcart-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutIntentView 创建支付意图的响应视图
type CheckoutIntentView struct {
	IntentID         string       `json:"intent_id"`
	ClientSecret     string       `json:"client_secret"`
	Currency         string       `json:"currency"`
	Subtotal         models.Money `json:"subtotal"`
	TaxAmount        models.Money `json:"tax_amount"`
	DeliveryFee      models.Money `json:"delivery_fee"`
	TotalAmount      models.Money `json:"total_amount"`
	DistanceKm       float64      `json:"distance_km"`
	EstimatedMinutes int          `json:"estimated_minutes"`
}

// CheckoutService 结账编排服务
// 校验购物车与地址、取配送报价、算应付金额、向网关创建支付意图，
// 网关确认后才落本地意图记录；确认阶段按网关状态物化订单。
type CheckoutService struct {
	db          *gorm.DB
	paymentCfg  config.PaymentConfig
	checkoutCfg config.CheckoutConfig

	cartSvc     *CartService
	deliverySvc *DeliveryService
	gateway     PaymentGateway

	cartRepo   repository.CartRepository
	intentRepo repository.PaymentIntentRepository
	orderRepo  repository.OrderRepository

	queueClient *queue.Client
}

// NewCheckoutService 创建结账服务
func NewCheckoutService(
	db *gorm.DB,
	paymentCfg config.PaymentConfig,
	checkoutCfg config.CheckoutConfig,
	cartSvc *CartService,
	deliverySvc *DeliveryService,
	gateway PaymentGateway,
	cartRepo repository.CartRepository,
	intentRepo repository.PaymentIntentRepository,
	orderRepo repository.OrderRepository,
	queueClient *queue.Client,
) *CheckoutService {
	return &CheckoutService{
		db:          db,
		paymentCfg:  paymentCfg,
		checkoutCfg: checkoutCfg,
		cartSvc:     cartSvc,
		deliverySvc: deliverySvc,
		gateway:     gateway,
		cartRepo:    cartRepo,
		intentRepo:  intentRepo,
		orderRepo:   orderRepo,
		queueClient: queueClient,
	}
}

func (s *CheckoutService) currency() string {
	if s.paymentCfg.Currency != "" {
		return s.paymentCfg.Currency
	}
	return constants.SiteCurrencyDefault
}

func (s *CheckoutService) minAmount() decimal.Decimal {
	if s.paymentCfg.MinAmount != "" {
		if min, err := decimal.NewFromString(s.paymentCfg.MinAmount); err == nil {
			return min
		}
	}
	return decimal.NewFromFloat(0.5)
}

// CreateIntent 创建支付意图
// 购物车或地址任一变化后重新调用即铸造全新意图，旧意图由回收任务过期。
func (s *CheckoutService) CreateIntent(ctx context.Context, userID uint, addr models.ShippingAddress) (*CheckoutIntentView, error) {
	items, err := s.cartSvc.ListItems(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}
	if !addr.Complete() {
		return nil, ErrAddressIncomplete
	}

	quote, err := s.deliverySvc.Quote(ctx, addr)
	if err != nil {
		return nil, err
	}

	subtotal := CartSubtotal(items)
	tax := TaxAmount(subtotal)
	total := CheckoutTotal(subtotal, tax, quote.Fee.Decimal)
	if total.LessThan(s.minAmount()) {
		return nil, ErrAmountTooSmall
	}

	result, err := s.gateway.CreateIntent(ctx, stripe.CreateIntentInput{
		Amount:      total.StringFixed(2),
		Currency:    s.currency(),
		Description: fmt.Sprintf("FreshCart delivery order (%d items)", len(items)),
		Metadata: map[string]string{
			"user_id":    strconv.FormatUint(uint64(userID), 10),
			"item_count": strconv.Itoa(len(items)),
			"items":      cartLinesDigest(items),
			"address":    addr.RouteQuery(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	}

	snapshot := make(models.CartSnapshot, 0, len(items))
	for _, item := range items {
		snapshot = append(snapshot, models.CartSnapshotItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Brand:     item.Brand,
			Category:  item.Category,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	record := &models.PaymentIntent{
		IntentID:         result.IntentID,
		ClientSecret:     result.ClientSecret,
		UserID:           userID,
		Status:           mapGatewayStatus(result.Status),
		Currency:         s.currency(),
		Subtotal:         models.NewMoneyFromDecimal(subtotal),
		TaxAmount:        models.NewMoneyFromDecimal(tax),
		DeliveryFee:      quote.Fee,
		Amount:           models.NewMoneyFromDecimal(total),
		CartSnapshot:     snapshot,
		ShippingAddress:  addr,
		DistanceKm:       quote.DistanceKm,
		EstimatedMinutes: quote.EstimatedMinutes,
	}
	if err := s.intentRepo.Create(record); err != nil {
		return nil, err
	}

	sweepDelay := time.Duration(s.checkoutCfg.IntentSweepDelayMinutes) * time.Minute
	if sweepDelay <= 0 {
		sweepDelay = 30 * time.Minute
	}
	if err := s.queueClient.EnqueueCheckoutIntentSweep(queue.CheckoutIntentSweepPayload{IntentID: result.IntentID}, sweepDelay); err != nil {
		logger.Warnw("checkout_intent_sweep_enqueue_failed", "intent_id", result.IntentID, "error", err)
	}

	logger.Infow("checkout_intent_created",
		"intent_id", result.IntentID,
		"user_id", userID,
		"amount", record.Amount.String(),
		"currency", record.Currency,
	)
	return &CheckoutIntentView{
		IntentID:         record.IntentID,
		ClientSecret:     record.ClientSecret,
		Currency:         record.Currency,
		Subtotal:         record.Subtotal,
		TaxAmount:        record.TaxAmount,
		DeliveryFee:      record.DeliveryFee,
		TotalAmount:      record.Amount,
		DistanceKm:       record.DistanceKm,
		EstimatedMinutes: record.EstimatedMinutes,
	}, nil
}

// Confirm 确认支付并物化订单
// 以 payment_intent_id 唯一索引兜底并发确认，冲突时返回已存在订单。
func (s *CheckoutService) Confirm(ctx context.Context, userID uint, intentID string, addr models.ShippingAddress, paymentMethod string) (*models.Order, error) {
	if !addr.Complete() {
		return nil, ErrAddressIncomplete
	}
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		paymentMethod = constants.PaymentMethodDefault
	}

	record, err := s.intentRepo.GetByIntentID(intentID)
	if err != nil {
		return nil, err
	}
	if record == nil || record.UserID != userID {
		return nil, ErrPaymentIntentNotFound
	}

	if existing, err := s.orderRepo.GetByPaymentIntentID(intentID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	result, err := s.gateway.GetIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	}
	if result.Status != "succeeded" && result.Status != "processing" {
		return nil, ErrPaymentNotSucceeded
	}

	order := s.buildOrderFromIntent(record, addr, paymentMethod)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order, order.Items); err != nil {
			return err
		}
		return s.cartRepo.WithTx(tx).ClearByUser(userID)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			existing, getErr := s.orderRepo.GetByPaymentIntentID(intentID)
			if getErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	if err := s.intentRepo.UpdateStatus(intentID, mapGatewayStatus(result.Status)); err != nil {
		logger.Warnw("checkout_intent_status_update_failed", "intent_id", intentID, "error", err)
	}
	if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: order.ID,
		Status:  order.Status,
	}); err != nil {
		logger.Warnw("order_status_email_enqueue_failed", "order_id", order.ID, "error", err)
	}

	logger.Infow("checkout_order_created",
		"order_no", order.OrderNo,
		"intent_id", intentID,
		"user_id", userID,
		"total", order.TotalAmount.String(),
	)
	return order, nil
}

// buildOrderFromIntent 用意图记录里的快照与金额物化订单，不回读实时购物车
func (s *CheckoutService) buildOrderFromIntent(record *models.PaymentIntent, addr models.ShippingAddress, paymentMethod string) *models.Order {
	items := make([]models.OrderItem, 0, len(record.CartSnapshot))
	for _, line := range record.CartSnapshot {
		lineTotal := line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, models.OrderItem{
			ProductID:  line.ProductID,
			Name:       line.Name,
			Brand:      line.Brand,
			Category:   line.Category,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			TotalPrice: models.NewMoneyFromDecimal(Round2(lineTotal)),
		})
	}
	return &models.Order{
		OrderNo:          GenerateOrderNo(),
		UserID:           record.UserID,
		PaymentIntentID:  record.IntentID,
		PaymentMethod:    paymentMethod,
		Status:           constants.OrderStatusPending,
		Currency:         record.Currency,
		Subtotal:         record.Subtotal,
		TaxAmount:        record.TaxAmount,
		DeliveryFee:      record.DeliveryFee,
		TotalAmount:      record.Amount,
		ShippingAddress:  addr,
		DistanceKm:       record.DistanceKm,
		EstimatedMinutes: record.EstimatedMinutes,
		Items:            items,
	}
}

// SweepIntent 回收孤儿支付意图（延迟任务触发）
// 已成单或网关仍在推进的意图不动，其余标记过期。
func (s *CheckoutService) SweepIntent(ctx context.Context, intentID string) error {
	record, err := s.intentRepo.GetByIntentID(intentID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	if record.Status == constants.IntentStatusSucceeded ||
		record.Status == constants.IntentStatusExpired ||
		record.Status == constants.IntentStatusCanceled {
		return nil
	}

	if existing, err := s.orderRepo.GetByPaymentIntentID(intentID); err != nil {
		return err
	} else if existing != nil {
		return s.intentRepo.UpdateStatus(intentID, constants.IntentStatusSucceeded)
	}

	result, err := s.gateway.GetIntent(ctx, intentID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	}
	if result.Status == "succeeded" || result.Status == "processing" {
		return s.intentRepo.UpdateStatus(intentID, mapGatewayStatus(result.Status))
	}

	logger.Infow("checkout_intent_expired", "intent_id", intentID, "gateway_status", result.Status)
	return s.intentRepo.UpdateStatus(intentID, constants.IntentStatusExpired)
}

// cartLinesDigest 压缩购物车行为“商品IDx数量”摘要，随意图 metadata 留痕
func cartLinesDigest(items []models.CartItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx%d", item.ProductID, item.Quantity))
	}
	return strings.Join(parts, ",")
}

func mapGatewayStatus(status string) string {
	switch status {
	case "succeeded":
		return constants.IntentStatusSucceeded
	case "processing":
		return constants.IntentStatusProcessing
	case "canceled":
		return constants.IntentStatusCanceled
	default:
		return constants.IntentStatusRequiresPayment
	}
}
