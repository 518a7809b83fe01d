package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/freshcart-next/internal/constants"
	"github.com/freshcart-next/internal/models"
	"github.com/freshcart-next/internal/queue"
	"github.com/freshcart-next/internal/repository"
)

func newOrderTestService(t *testing.T) (*OrderService, *repository.GormOrderRepository) {
	t.Helper()
	db := openServiceTestDB(t)
	orderRepo := repository.NewOrderRepository(db)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	return NewOrderService(orderRepo, queueClient), orderRepo
}

var orderSeedSeq int

func seedOrder(t *testing.T, repo *repository.GormOrderRepository, userID uint, status string) *models.Order {
	t.Helper()
	orderSeedSeq++
	order := &models.Order{
		OrderNo:         fmt.Sprintf("ORD-TEST-%06d", orderSeedSeq),
		UserID:          userID,
		PaymentIntentID: fmt.Sprintf("pi_seed_%d", orderSeedSeq),
		Status:          status,
		Currency:        "EUR",
		Subtotal:        mustMoney(t, "25.50"),
		TaxAmount:       mustMoney(t, "2.55"),
		DeliveryFee:     mustMoney(t, "3.00"),
		TotalAmount:     mustMoney(t, "31.05"),
		ShippingAddress: testShippingAddress(),
	}
	items := []models.OrderItem{
		{ProductID: 101, Name: "Comté AOP 250g", UnitPrice: mustMoney(t, "5.10"), Quantity: 5, TotalPrice: mustMoney(t, "25.50")},
	}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

func TestGenerateOrderNoFormat(t *testing.T) {
	orderNo := GenerateOrderNo()
	if !strings.HasPrefix(orderNo, "ORD-") {
		t.Fatalf("order no %q missing ORD- prefix", orderNo)
	}
	parts := strings.Split(orderNo, "-")
	if len(parts) != 3 {
		t.Fatalf("order no %q has %d segments, want 3", orderNo, len(parts))
	}
	if len(parts[2]) != 6 {
		t.Fatalf("random segment %q has length %d, want 6", parts[2], len(parts[2]))
	}
	for _, r := range parts[2] {
		if r < '0' || r > '9' {
			t.Fatalf("random segment %q contains non-digit", parts[2])
		}
	}
}

func TestAdvanceStatusTransitions(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{constants.OrderStatusPending, constants.OrderStatusProcessing, true},
		{constants.OrderStatusPending, constants.OrderStatusCancelled, true},
		{constants.OrderStatusPending, constants.OrderStatusShipped, false},
		{constants.OrderStatusPending, constants.OrderStatusDelivered, false},
		{constants.OrderStatusProcessing, constants.OrderStatusShipped, true},
		{constants.OrderStatusProcessing, constants.OrderStatusDelivered, false},
		{constants.OrderStatusShipped, constants.OrderStatusDelivered, true},
		{constants.OrderStatusShipped, constants.OrderStatusCancelled, true},
		{constants.OrderStatusDelivered, constants.OrderStatusCancelled, false},
		{constants.OrderStatusCancelled, constants.OrderStatusProcessing, false},
	}
	for _, tc := range cases {
		t.Run(tc.from+"_to_"+tc.to, func(t *testing.T) {
			svc, repo := newOrderTestService(t)
			order := seedOrder(t, repo, 1, tc.from)

			updated, err := svc.AdvanceStatus(order.ID, tc.to)
			if !tc.allowed {
				if !errors.Is(err, ErrOrderStatusInvalid) {
					t.Fatalf("err = %v, want ErrOrderStatusInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("advance failed: %v", err)
			}
			if updated.Status != tc.to {
				t.Fatalf("status = %q, want %q", updated.Status, tc.to)
			}
			stored, _ := repo.GetByID(order.ID)
			if stored.Status != tc.to {
				t.Fatalf("stored status = %q, want %q", stored.Status, tc.to)
			}
			switch tc.to {
			case constants.OrderStatusDelivered:
				if stored.DeliveredAt == nil {
					t.Fatalf("delivered_at not set")
				}
			case constants.OrderStatusCancelled:
				if stored.CanceledAt == nil {
					t.Fatalf("canceled_at not set")
				}
			}
		})
	}
}

func TestCancelOrder(t *testing.T) {
	svc, repo := newOrderTestService(t)
	order := seedOrder(t, repo, 1, constants.OrderStatusPending)

	cancelled, err := svc.Cancel(order.ID, 1)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled || cancelled.CanceledAt == nil {
		t.Fatalf("cancel result: status=%q canceled_at=%v", cancelled.Status, cancelled.CanceledAt)
	}

	if _, err := svc.Cancel(order.ID, 1); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("repeat cancel err = %v, want ErrOrderNotCancellable", err)
	}

	delivered := seedOrder(t, repo, 1, constants.OrderStatusDelivered)
	if _, err := svc.Cancel(delivered.ID, 1); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("cancel delivered err = %v, want ErrOrderNotCancellable", err)
	}
}

func TestGetByIDAndUserScoping(t *testing.T) {
	svc, repo := newOrderTestService(t)
	order := seedOrder(t, repo, 1, constants.OrderStatusPending)

	got, err := svc.GetByIDAndUser(order.ID, 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.OrderNo != order.OrderNo {
		t.Fatalf("order no = %q, want %q", got.OrderNo, order.OrderNo)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items not preloaded: %d", len(got.Items))
	}

	if _, err := svc.GetByIDAndUser(order.ID, 2); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign user err = %v, want ErrOrderNotFound", err)
	}
}

func TestListByUserStatusFilter(t *testing.T) {
	svc, repo := newOrderTestService(t)
	seedOrder(t, repo, 1, constants.OrderStatusPending)
	seedOrder(t, repo, 1, constants.OrderStatusDelivered)
	seedOrder(t, repo, 2, constants.OrderStatusPending)

	orders, total, err := svc.ListByUser(1, repository.OrderListFilter{Status: constants.OrderStatusPending})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(orders) != 1 {
		t.Fatalf("got %d orders (total %d), want 1", len(orders), total)
	}
	if orders[0].UserID != 1 || orders[0].Status != constants.OrderStatusPending {
		t.Fatalf("unexpected order in list: user=%d status=%q", orders[0].UserID, orders[0].Status)
	}
}
