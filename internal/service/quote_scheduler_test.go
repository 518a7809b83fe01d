package service

import (
	"context"
	"testing"
	"time"

	"github.com/freshcart-next/internal/models"
)

func collectFired(t *testing.T, fired <-chan models.ShippingAddress, wait time.Duration) []models.ShippingAddress {
	t.Helper()
	var got []models.ShippingAddress
	deadline := time.After(wait)
	for {
		select {
		case addr := <-fired:
			got = append(got, addr)
		case <-deadline:
			return got
		}
	}
}

func TestQuoteSchedulerOnlyLatestFires(t *testing.T) {
	fired := make(chan models.ShippingAddress, 8)
	scheduler := NewQuoteScheduler(30*time.Millisecond, func(_ context.Context, addr models.ShippingAddress) {
		fired <- addr
	})
	defer scheduler.Stop()

	first := testShippingAddress()
	first.Street = "1 rue Ancienne"
	second := testShippingAddress()
	second.Street = "2 rue Nouvelle"

	scheduler.Schedule("cart:1", first)
	scheduler.Schedule("cart:1", second)

	got := collectFired(t, fired, 300*time.Millisecond)
	if len(got) != 1 {
		t.Fatalf("fired %d times, want 1", len(got))
	}
	if got[0].Street != "2 rue Nouvelle" {
		t.Fatalf("fired with street %q, want latest schedule", got[0].Street)
	}
}

func TestQuoteSchedulerCancel(t *testing.T) {
	fired := make(chan models.ShippingAddress, 1)
	scheduler := NewQuoteScheduler(20*time.Millisecond, func(_ context.Context, addr models.ShippingAddress) {
		fired <- addr
	})
	defer scheduler.Stop()

	scheduler.Schedule("cart:1", testShippingAddress())
	scheduler.Cancel("cart:1")

	if got := collectFired(t, fired, 150*time.Millisecond); len(got) != 0 {
		t.Fatalf("fired %d times after cancel, want 0", len(got))
	}
}

func TestQuoteSchedulerIndependentKeys(t *testing.T) {
	fired := make(chan models.ShippingAddress, 4)
	scheduler := NewQuoteScheduler(20*time.Millisecond, func(_ context.Context, addr models.ShippingAddress) {
		fired <- addr
	})
	defer scheduler.Stop()

	addrA := testShippingAddress()
	addrB := testShippingAddress()
	addrB.City = "Paris"
	scheduler.Schedule("cart:1", addrA)
	scheduler.Schedule("cart:2", addrB)

	if got := collectFired(t, fired, 300*time.Millisecond); len(got) != 2 {
		t.Fatalf("fired %d times, want 2 (one per key)", len(got))
	}
}

func TestQuoteSchedulerStopRejectsNewWork(t *testing.T) {
	fired := make(chan models.ShippingAddress, 2)
	scheduler := NewQuoteScheduler(20*time.Millisecond, func(_ context.Context, addr models.ShippingAddress) {
		fired <- addr
	})

	scheduler.Schedule("cart:1", testShippingAddress())
	scheduler.Stop()
	scheduler.Schedule("cart:2", testShippingAddress())

	if got := collectFired(t, fired, 150*time.Millisecond); len(got) != 0 {
		t.Fatalf("fired %d times after stop, want 0", len(got))
	}
}
