package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/freshcart-next/internal/constants"
	"github.com/freshcart-next/internal/logger"
	"github.com/freshcart-next/internal/models"
	"github.com/freshcart-next/internal/queue"
	"github.com/freshcart-next/internal/repository"
)

// allowedTransitions 订单状态机，送达与取消为终态
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
}

// GenerateOrderNo 生成订单号 ORD-<毫秒时间戳>-<随机数字>
func GenerateOrderNo() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

// OrderService 订单服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	queueClient *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, queueClient *queue.Client) *OrderService {
	return &OrderService{orderRepo: orderRepo, queueClient: queueClient}
}

// ListByUser 查询用户订单列表
func (s *OrderService) ListByUser(userID uint, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.UserID = userID
	return s.orderRepo.ListByUser(filter)
}

// GetByIDAndUser 查询用户订单详情
func (s *OrderService) GetByIDAndUser(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Cancel 用户取消订单，已送达或已取消的订单不可取消
func (s *OrderService) Cancel(orderID, userID uint) (*models.Order, error) {
	order, err := s.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.Status == constants.OrderStatusDelivered || order.Status == constants.OrderStatusCancelled {
		return nil, ErrOrderNotCancellable
	}

	now := time.Now()
	rows, err := s.orderRepo.UpdateStatusFrom(orderID, order.Status, constants.OrderStatusCancelled, map[string]interface{}{
		"canceled_at": &now,
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// 并发写已把状态改走
		return nil, ErrOrderNotCancellable
	}
	order.Status = constants.OrderStatusCancelled
	order.CanceledAt = &now

	s.notifyStatusChange(order)
	logger.Infow("order_cancelled", "order_no", order.OrderNo, "user_id", userID)
	return order, nil
}

// ListStaff 员工侧订单列表
func (s *OrderService) ListStaff(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListStaff(filter)
}

// GetByID 员工侧订单详情
func (s *OrderService) GetByID(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// AdvanceStatus 员工侧推进订单状态，仅允许状态机内的迁移
func (s *OrderService) AdvanceStatus(orderID uint, next string) (*models.Order, error) {
	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !allowedTransitions[order.Status][next] {
		return nil, ErrOrderStatusInvalid
	}

	now := time.Now()
	updates := map[string]interface{}{}
	switch next {
	case constants.OrderStatusDelivered:
		updates["delivered_at"] = &now
	case constants.OrderStatusCancelled:
		updates["canceled_at"] = &now
	}
	rows, err := s.orderRepo.UpdateStatusFrom(orderID, order.Status, next, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrOrderStatusInvalid
	}
	order.Status = next
	switch next {
	case constants.OrderStatusDelivered:
		order.DeliveredAt = &now
	case constants.OrderStatusCancelled:
		order.CanceledAt = &now
	}

	s.notifyStatusChange(order)
	logger.Infow("order_status_advanced", "order_no", order.OrderNo, "status", next)
	return order, nil
}

func (s *OrderService) notifyStatusChange(order *models.Order) {
	if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: order.ID,
		Status:  order.Status,
	}); err != nil {
		logger.Warnw("order_status_email_enqueue_failed", "order_id", order.ID, "error", err)
	}
}
