package queue

import (
	"encoding/json"

	"github.com/freshcart-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusEmail 订单状态邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskCheckoutIntentSweep 孤儿支付意图回收任务
	TaskCheckoutIntentSweep = constants.TaskCheckoutIntentSweep
)

// OrderStatusEmailPayload 订单状态邮件任务载荷
type OrderStatusEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// CheckoutIntentSweepPayload 孤儿支付意图回收任务载荷
type CheckoutIntentSweepPayload struct {
	IntentID string `json:"intent_id"`
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusEmail, body), nil
}

// NewCheckoutIntentSweepTask 创建孤儿支付意图回收任务
func NewCheckoutIntentSweepTask(payload CheckoutIntentSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCheckoutIntentSweep, body), nil
}
