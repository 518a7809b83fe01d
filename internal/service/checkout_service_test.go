package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/freshcart-next/internal/config"
	"github.com/freshcart-next/internal/constants"
	"github.com/freshcart-next/internal/models"
	"github.com/freshcart-next/internal/payment/stripe"
	"github.com/freshcart-next/internal/queue"
	"github.com/freshcart-next/internal/repository"
	"github.com/freshcart-next/internal/routing"

	"gorm.io/gorm"
)

// fakeGateway 内存支付网关，可配置创建/查询结果
type fakeGateway struct {
	mu        sync.Mutex
	createErr error
	getErr    error
	getStatus string
	creates   int
	lastInput stripe.CreateIntentInput
}

func (g *fakeGateway) CreateIntent(_ context.Context, input stripe.CreateIntentInput) (*stripe.IntentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.creates++
	g.lastInput = input
	intentID := fmt.Sprintf("pi_test_%d", g.creates)
	return &stripe.IntentResult{
		IntentID:     intentID,
		ClientSecret: intentID + "_secret",
		Status:       "requires_payment_method",
		Amount:       input.Amount,
		Currency:     input.Currency,
	}, nil
}

func (g *fakeGateway) GetIntent(_ context.Context, intentID string) (*stripe.IntentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getErr != nil {
		return nil, g.getErr
	}
	status := g.getStatus
	if status == "" {
		status = "succeeded"
	}
	return &stripe.IntentResult{IntentID: intentID, Status: status}, nil
}

func (g *fakeGateway) createCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.creates
}

type checkoutTestEnv struct {
	db          *gorm.DB
	cartRepo    *repository.GormCartRepository
	intentRepo  *repository.GormPaymentIntentRepository
	orderRepo   *repository.GormOrderRepository
	cartSvc     *CartService
	deliverySvc *DeliveryService
	provider    *fakeRouteProvider
	gateway     *fakeGateway
	queueClient *queue.Client
	svc         *CheckoutService
}

func newCheckoutTestEnv(t *testing.T) *checkoutTestEnv {
	t.Helper()
	db := openServiceTestDB(t)
	env := &checkoutTestEnv{
		db:         db,
		cartRepo:   repository.NewCartRepository(db),
		intentRepo: repository.NewPaymentIntentRepository(db),
		orderRepo:  repository.NewOrderRepository(db),
		provider:   &fakeRouteProvider{summary: routing.RouteSummary{DistanceKm: 8, DurationMinutes: 25}},
		gateway:    &fakeGateway{},
	}
	env.cartSvc = NewCartService(env.cartRepo, repository.NewProductRepository(db))
	env.deliverySvc = NewDeliveryService(testStoreConfig(), testDeliveryConfig(), env.provider)
	t.Cleanup(env.deliverySvc.StopScheduler)

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	env.queueClient = queueClient
	env.svc = NewCheckoutService(
		db,
		config.PaymentConfig{Currency: "EUR"},
		config.CheckoutConfig{},
		env.cartSvc,
		env.deliverySvc,
		env.gateway,
		env.cartRepo,
		env.intentRepo,
		env.orderRepo,
		queueClient,
	)
	return env
}

// 两行合计 25.50，税 2.55，8 公里档配送费 3.00，应付 31.05
func seedCheckoutCart(t *testing.T, env *checkoutTestEnv, userID uint) {
	t.Helper()
	lines := []models.CartItem{
		{LineID: fmt.Sprintf("line-a-%d", userID), UserID: userID, ProductID: 101, Name: "Comté AOP 250g", UnitPrice: mustMoney(t, "5.10"), Quantity: 3},
		{LineID: fmt.Sprintf("line-b-%d", userID), UserID: userID, ProductID: 102, Name: "Sparkling Water 6x1L", UnitPrice: mustMoney(t, "5.10"), Quantity: 2},
	}
	for i := range lines {
		if err := env.cartRepo.Create(&lines[i]); err != nil {
			t.Fatalf("seed cart line failed: %v", err)
		}
	}
}

func (env *checkoutTestEnv) countIntents(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := env.db.Model(&models.PaymentIntent{}).Count(&count).Error; err != nil {
		t.Fatalf("count intents failed: %v", err)
	}
	return count
}

func (env *checkoutTestEnv) countOrders(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := env.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	return count
}

func TestCreateIntentComputesAmounts(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)

	view, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}
	if view.Subtotal.String() != "25.50" || view.TaxAmount.String() != "2.55" ||
		view.DeliveryFee.String() != "3.00" || view.TotalAmount.String() != "31.05" {
		t.Fatalf("amounts = %s/%s/%s/%s, want 25.50/2.55/3.00/31.05",
			view.Subtotal.String(), view.TaxAmount.String(), view.DeliveryFee.String(), view.TotalAmount.String())
	}
	if view.Currency != "EUR" || view.ClientSecret == "" {
		t.Fatalf("unexpected view: currency=%q secret=%q", view.Currency, view.ClientSecret)
	}
	if view.DistanceKm != 8 || view.EstimatedMinutes != 25 {
		t.Fatalf("route summary = %.1f km / %d min, want 8 / 25", view.DistanceKm, view.EstimatedMinutes)
	}
	if env.gateway.lastInput.Amount != "31.05" {
		t.Fatalf("gateway amount = %q, want 31.05", env.gateway.lastInput.Amount)
	}
	metadata := env.gateway.lastInput.Metadata
	if metadata["user_id"] != "1" || metadata["item_count"] != "2" {
		t.Fatalf("gateway metadata = %v, want user_id=1 item_count=2", metadata)
	}
	if metadata["items"] != "101x3,102x2" {
		t.Fatalf("metadata items = %q, want 101x3,102x2", metadata["items"])
	}
	if metadata["address"] != testShippingAddress().RouteQuery() {
		t.Fatalf("metadata address = %q, want %q", metadata["address"], testShippingAddress().RouteQuery())
	}

	record, err := env.intentRepo.GetByIntentID(view.IntentID)
	if err != nil || record == nil {
		t.Fatalf("stored intent not found: %v", err)
	}
	if len(record.CartSnapshot) != 2 {
		t.Fatalf("snapshot has %d lines, want 2", len(record.CartSnapshot))
	}
	if record.Status != constants.IntentStatusRequiresPayment {
		t.Fatalf("intent status = %q, want %q", record.Status, constants.IntentStatusRequiresPayment)
	}
}

func TestCreateIntentEmptyCart(t *testing.T) {
	env := newCheckoutTestEnv(t)
	if _, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress()); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("err = %v, want ErrCartEmpty", err)
	}
}

func TestCreateIntentIncompleteAddress(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)

	addr := testShippingAddress()
	addr.Country = ""
	if _, err := env.svc.CreateIntent(context.Background(), 1, addr); !errors.Is(err, ErrAddressIncomplete) {
		t.Fatalf("err = %v, want ErrAddressIncomplete", err)
	}
	if env.gateway.createCalls() != 0 {
		t.Fatalf("gateway called for incomplete address")
	}
}

func TestCreateIntentBelowGatewayMinimum(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)

	svc := NewCheckoutService(
		env.db,
		config.PaymentConfig{Currency: "EUR", MinAmount: "50.00"},
		config.CheckoutConfig{},
		env.cartSvc,
		env.deliverySvc,
		env.gateway,
		env.cartRepo,
		env.intentRepo,
		env.orderRepo,
		env.queueClient,
	)
	if _, err := svc.CreateIntent(context.Background(), 1, testShippingAddress()); !errors.Is(err, ErrAmountTooSmall) {
		t.Fatalf("err = %v, want ErrAmountTooSmall", err)
	}
}

func TestCreateIntentGatewayFailureLeavesNoRecord(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)
	env.gateway.createErr = errors.New("stripe 502")

	_, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if !errors.Is(err, ErrPaymentGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrPaymentGatewayUnavailable", err)
	}
	if count := env.countIntents(t); count != 0 {
		t.Fatalf("%d intent records persisted after gateway failure, want 0", count)
	}
}

func TestCreateIntentAlwaysMintsNewIntent(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)

	first, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if first.IntentID == second.IntentID {
		t.Fatalf("expected a fresh intent per call, both = %s", first.IntentID)
	}
	if count := env.countIntents(t); count != 2 {
		t.Fatalf("%d intent records, want 2", count)
	}
}

func TestConfirmRequiresSucceededPayment(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)
	view, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}

	env.gateway.getStatus = "requires_payment_method"
	if _, err := env.svc.Confirm(context.Background(), 1, view.IntentID, testShippingAddress(), ""); !errors.Is(err, ErrPaymentNotSucceeded) {
		t.Fatalf("err = %v, want ErrPaymentNotSucceeded", err)
	}
	if count := env.countOrders(t); count != 0 {
		t.Fatalf("%d orders created for unpaid intent, want 0", count)
	}
	items, _ := env.cartRepo.ListByUser(1)
	if len(items) != 2 {
		t.Fatalf("cart has %d lines after failed confirm, want 2", len(items))
	}
}

func TestConfirmMaterializesOrderFromSnapshot(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)
	view, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}

	// 意图创建后继续改购物车：订单必须按快照金额物化
	if err := env.cartRepo.UpdateQuantity(1, fmt.Sprintf("line-a-%d", 1), 10); err != nil {
		t.Fatalf("mutate cart failed: %v", err)
	}

	order, err := env.svc.Confirm(context.Background(), 1, view.IntentID, testShippingAddress(), "")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("order status = %q, want pending", order.Status)
	}
	if order.PaymentIntentID != view.IntentID {
		t.Fatalf("order intent = %q, want %q", order.PaymentIntentID, view.IntentID)
	}
	if order.PaymentMethod != constants.PaymentMethodDefault {
		t.Fatalf("payment method = %q, want %q", order.PaymentMethod, constants.PaymentMethodDefault)
	}
	if order.ShippingAddress != testShippingAddress() {
		t.Fatalf("order address = %+v, want submitted address", order.ShippingAddress)
	}
	if order.TotalAmount.String() != "31.05" || order.Subtotal.String() != "25.50" {
		t.Fatalf("order amounts = %s/%s, want 31.05/25.50", order.TotalAmount.String(), order.Subtotal.String())
	}
	if len(order.Items) != 2 {
		t.Fatalf("order has %d items, want 2", len(order.Items))
	}
	for _, item := range order.Items {
		if item.Quantity == 10 {
			t.Fatalf("order picked up live cart quantity instead of snapshot")
		}
	}

	items, _ := env.cartRepo.ListByUser(1)
	if len(items) != 0 {
		t.Fatalf("cart has %d lines after confirm, want 0", len(items))
	}

	record, err := env.intentRepo.GetByIntentID(view.IntentID)
	if err != nil || record == nil {
		t.Fatalf("intent record missing: %v", err)
	}
	if record.Status != constants.IntentStatusSucceeded {
		t.Fatalf("intent status = %q, want succeeded", record.Status)
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)
	view, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}

	first, err := env.svc.Confirm(context.Background(), 1, view.IntentID, testShippingAddress(), "")
	if err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	second, err := env.svc.Confirm(context.Background(), 1, view.IntentID, testShippingAddress(), "")
	if err != nil {
		t.Fatalf("second confirm failed: %v", err)
	}
	if second == nil {
		t.Fatalf("repeat confirm returned no order")
	}
	if first.ID != second.ID || first.OrderNo != second.OrderNo {
		t.Fatalf("repeat confirm produced different orders: %d/%s vs %d/%s",
			first.ID, first.OrderNo, second.ID, second.OrderNo)
	}
	if count := env.countOrders(t); count != 1 {
		t.Fatalf("%d orders, want 1", count)
	}
}

func TestConfirmIncompleteAddress(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)
	view, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}

	addr := testShippingAddress()
	addr.PostalCode = ""
	if _, err := env.svc.Confirm(context.Background(), 1, view.IntentID, addr, ""); !errors.Is(err, ErrAddressIncomplete) {
		t.Fatalf("err = %v, want ErrAddressIncomplete", err)
	}
	if count := env.countOrders(t); count != 0 {
		t.Fatalf("%d orders created with incomplete address, want 0", count)
	}
}

func TestConfirmKeepsProvidedPaymentMethod(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)
	view, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}

	order, err := env.svc.Confirm(context.Background(), 1, view.IntentID, testShippingAddress(), "sepa_debit")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if order.PaymentMethod != "sepa_debit" {
		t.Fatalf("payment method = %q, want sepa_debit", order.PaymentMethod)
	}
}

func TestConfirmConcurrentSingleOrder(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)
	view, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}

	const workers = 8
	type confirmResult struct {
		order *models.Order
		err   error
	}
	results := make(chan confirmResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := env.svc.Confirm(context.Background(), 1, view.IntentID, testShippingAddress(), "")
			results <- confirmResult{order: order, err: err}
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	var orderID uint
	for result := range results {
		if result.order == nil && result.err == nil {
			t.Fatalf("confirm returned neither order nor error")
		}
		if result.err != nil {
			continue
		}
		succeeded++
		if orderID == 0 {
			orderID = result.order.ID
		}
		if result.order.ID != orderID {
			t.Fatalf("confirms produced different orders: %d vs %d", result.order.ID, orderID)
		}
	}
	if succeeded == 0 {
		t.Fatalf("no confirm succeeded")
	}
	if count := env.countOrders(t); count != 1 {
		t.Fatalf("%d orders after concurrent confirms, want 1", count)
	}
}

func TestConfirmRejectsForeignIntent(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)
	view, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}

	if _, err := env.svc.Confirm(context.Background(), 2, view.IntentID, testShippingAddress(), ""); !errors.Is(err, ErrPaymentIntentNotFound) {
		t.Fatalf("foreign user err = %v, want ErrPaymentIntentNotFound", err)
	}
	if _, err := env.svc.Confirm(context.Background(), 1, "pi_unknown", testShippingAddress(), ""); !errors.Is(err, ErrPaymentIntentNotFound) {
		t.Fatalf("unknown intent err = %v, want ErrPaymentIntentNotFound", err)
	}
}

func TestSweepIntentExpiresAbandoned(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)
	view, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}

	env.gateway.getStatus = "requires_payment_method"
	if err := env.svc.SweepIntent(context.Background(), view.IntentID); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	record, _ := env.intentRepo.GetByIntentID(view.IntentID)
	if record.Status != constants.IntentStatusExpired {
		t.Fatalf("swept intent status = %q, want expired", record.Status)
	}
}

func TestSweepIntentKeepsInFlightPayment(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)
	view, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}

	env.gateway.getStatus = "processing"
	if err := env.svc.SweepIntent(context.Background(), view.IntentID); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	record, _ := env.intentRepo.GetByIntentID(view.IntentID)
	if record.Status != constants.IntentStatusProcessing {
		t.Fatalf("intent status = %q, want processing", record.Status)
	}
}

func TestSweepIntentAfterOrderExists(t *testing.T) {
	env := newCheckoutTestEnv(t)
	seedCheckoutCart(t, env, 1)
	view, err := env.svc.CreateIntent(context.Background(), 1, testShippingAddress())
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}
	if _, err := env.svc.Confirm(context.Background(), 1, view.IntentID, testShippingAddress(), ""); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	env.gateway.getStatus = "canceled"
	if err := env.svc.SweepIntent(context.Background(), view.IntentID); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	record, _ := env.intentRepo.GetByIntentID(view.IntentID)
	if record.Status != constants.IntentStatusSucceeded {
		t.Fatalf("intent status = %q, want succeeded (order exists)", record.Status)
	}
}

func TestSweepIntentUnknownID(t *testing.T) {
	env := newCheckoutTestEnv(t)
	if err := env.svc.SweepIntent(context.Background(), "pi_missing"); err != nil {
		t.Fatalf("sweep of unknown intent returned %v, want nil", err)
	}
}
