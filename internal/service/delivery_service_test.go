package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/freshcart-next/internal/config"
	"github.com/freshcart-next/internal/models"
	"github.com/freshcart-next/internal/routing"
)

// fakeRouteProvider 固定返回配置的路线摘要并计数
type fakeRouteProvider struct {
	mu      sync.Mutex
	calls   int
	summary routing.RouteSummary
	err     error
}

func (p *fakeRouteProvider) Route(_ context.Context, _, _ string) (*routing.RouteSummary, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	summary := p.summary
	return &summary, nil
}

func (p *fakeRouteProvider) routeCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func testStoreConfig() config.StoreConfig {
	return config.StoreConfig{
		Name:          "FreshCart Créteil",
		OriginAddress: "4 allée Carpentier, 94000 Créteil, France",
	}
}

func testDeliveryConfig() config.DeliveryConfig {
	return config.DeliveryConfig{
		MaxDistanceKm: 40,
		FeeTiers: []config.DeliveryFeeTier{
			{MaxKm: 10, Fee: "3.00"},
			{MaxKm: 20, Fee: "5.00"},
			{MaxKm: 30, Fee: "8.00"},
			{MaxKm: 40, Fee: "12.00"},
		},
		DebounceMS: 20,
	}
}

func testShippingAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FirstName:  "Claire",
		LastName:   "Dupont",
		Street:     "12 rue de la Paix",
		City:       "Créteil",
		PostalCode: "94000",
		Country:    "France",
	}
}

func TestQuoteRejectsIncompleteAddress(t *testing.T) {
	provider := &fakeRouteProvider{summary: routing.RouteSummary{DistanceKm: 5, DurationMinutes: 12}}
	svc := NewDeliveryService(testStoreConfig(), testDeliveryConfig(), provider)
	defer svc.StopScheduler()

	addr := testShippingAddress()
	addr.PostalCode = "  "
	if _, err := svc.Quote(context.Background(), addr); !errors.Is(err, ErrAddressIncomplete) {
		t.Fatalf("err = %v, want ErrAddressIncomplete", err)
	}
	if provider.routeCalls() != 0 {
		t.Fatalf("route provider called %d times for incomplete address, want 0", provider.routeCalls())
	}
}

func TestQuoteFeeTiers(t *testing.T) {
	cases := []struct {
		distanceKm float64
		wantFee    string
	}{
		{2.4, "3.00"},
		{10, "3.00"},
		{15.5, "5.00"},
		{29.9, "8.00"},
		{40, "12.00"},
	}
	for _, tc := range cases {
		provider := &fakeRouteProvider{summary: routing.RouteSummary{DistanceKm: tc.distanceKm, DurationMinutes: 30}}
		svc := NewDeliveryService(testStoreConfig(), testDeliveryConfig(), provider)

		quote, err := svc.Quote(context.Background(), testShippingAddress())
		if err != nil {
			t.Fatalf("quote at %.1f km failed: %v", tc.distanceKm, err)
		}
		if quote.Fee.String() != tc.wantFee {
			t.Fatalf("fee at %.1f km = %s, want %s", tc.distanceKm, quote.Fee.String(), tc.wantFee)
		}
		if quote.DistanceKm != tc.distanceKm || quote.EstimatedMinutes != 30 {
			t.Fatalf("quote summary mismatch: %+v", quote)
		}
		svc.StopScheduler()
	}
}

func TestQuoteOutOfDeliveryRange(t *testing.T) {
	provider := &fakeRouteProvider{summary: routing.RouteSummary{DistanceKm: 45, DurationMinutes: 70}}
	svc := NewDeliveryService(testStoreConfig(), testDeliveryConfig(), provider)
	defer svc.StopScheduler()

	if _, err := svc.Quote(context.Background(), testShippingAddress()); !errors.Is(err, ErrOutOfDeliveryRange) {
		t.Fatalf("err = %v, want ErrOutOfDeliveryRange", err)
	}
}

func TestQuoteProviderFailure(t *testing.T) {
	provider := &fakeRouteProvider{err: errors.New("nominatim timeout")}
	svc := NewDeliveryService(testStoreConfig(), testDeliveryConfig(), provider)
	defer svc.StopScheduler()

	_, err := svc.Quote(context.Background(), testShippingAddress())
	if !errors.Is(err, ErrQuoteUnavailable) {
		t.Fatalf("err = %v, want ErrQuoteUnavailable", err)
	}
}

func TestScheduleQuoteRefreshIncompleteCancelsPending(t *testing.T) {
	provider := &fakeRouteProvider{summary: routing.RouteSummary{DistanceKm: 5, DurationMinutes: 12}}
	svc := NewDeliveryService(testStoreConfig(), testDeliveryConfig(), provider)
	defer svc.StopScheduler()

	addr := testShippingAddress()
	svc.ScheduleQuoteRefresh(addr.NormalizedKey(), addr)

	incomplete := addr
	incomplete.Street = ""
	svc.ScheduleQuoteRefresh(addr.NormalizedKey(), incomplete)

	time.Sleep(120 * time.Millisecond)
	if provider.routeCalls() != 0 {
		t.Fatalf("route provider called %d times after cancel, want 0", provider.routeCalls())
	}
}

func TestScheduleQuoteRefreshFiresAfterDebounce(t *testing.T) {
	provider := &fakeRouteProvider{summary: routing.RouteSummary{DistanceKm: 5, DurationMinutes: 12}}
	svc := NewDeliveryService(testStoreConfig(), testDeliveryConfig(), provider)
	defer svc.StopScheduler()

	addr := testShippingAddress()
	svc.ScheduleQuoteRefresh(addr.NormalizedKey(), addr)

	deadline := time.Now().Add(2 * time.Second)
	for provider.routeCalls() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if provider.routeCalls() != 1 {
		t.Fatalf("route provider called %d times, want 1", provider.routeCalls())
	}
}
