package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/freshcart-next/internal/logger"
	"github.com/freshcart-next/internal/provider"
	"github.com/freshcart-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
	mux.HandleFunc(queue.TaskCheckoutIntentSweep, c.handleCheckoutIntentSweep)
}

func (c *Consumer) handleOrderStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_status_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_status_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_status_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	user, err := c.UserRepo.GetByID(order.UserID)
	if err != nil {
		logger.Warnw("worker_order_status_email_fetch_user_failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
		return err
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		logger.Debugw("worker_order_status_email_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = order.Status
	}
	// TODO: 接入邮件发送渠道后替换为真实投递
	logger.Infow("order_status_notification",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"status", status,
		"receiver_email", strings.TrimSpace(user.Email),
		"locale", strings.TrimSpace(user.Locale),
		"total_amount", order.TotalAmount,
		"currency", order.Currency,
	)
	return nil
}

func (c *Consumer) handleCheckoutIntentSweep(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_checkout_intent_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CheckoutIntentSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_checkout_intent_sweep_unmarshal_failed", "error", err)
		return err
	}
	intentID := strings.TrimSpace(payload.IntentID)
	if intentID == "" {
		logger.Debugw("worker_checkout_intent_sweep_skip_invalid_payload")
		return nil
	}
	if c.CheckoutService == nil {
		logger.Warnw("worker_checkout_intent_sweep_skip_checkout_service_nil", "intent_id", intentID)
		return nil
	}
	if err := c.CheckoutService.SweepIntent(ctx, intentID); err != nil {
		logger.Warnw("worker_checkout_intent_sweep_failed", "intent_id", intentID, "error", err)
		return err
	}
	return nil
}
