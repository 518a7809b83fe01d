package stripe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("nil config err = %v, want ErrConfigInvalid", err)
	}
	if err := ValidateConfig(&Config{}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing secret err = %v, want ErrConfigInvalid", err)
	}
	if err := ValidateConfig(&Config{SecretKey: "sk_test_x", APIBaseURL: "://bad"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("bad base url err = %v, want ErrConfigInvalid", err)
	}
	if err := ValidateConfig(&Config{SecretKey: "sk_test_x"}); err != nil {
		t.Fatalf("valid config err = %v", err)
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk_test_x" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form failed: %v", err)
		}
		// 31.05 EUR 按最小货币单位提交
		if r.PostForm.Get("amount") != "3105" || r.PostForm.Get("currency") != "eur" {
			t.Errorf("form = %v", r.PostForm)
		}
		if r.PostForm.Get("metadata[user_id]") != "1" {
			t.Errorf("metadata missing: %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret","status":"requires_payment_method","amount":3105,"currency":"eur","created":1735000000}`))
	}))
	defer server.Close()

	cfg := &Config{SecretKey: "sk_test_x", APIBaseURL: server.URL}
	result, err := CreatePaymentIntent(context.Background(), cfg, CreateIntentInput{
		Amount:   "31.05",
		Currency: "EUR",
		Metadata: map[string]string{"user_id": "1"},
	})
	if err != nil {
		t.Fatalf("create payment intent failed: %v", err)
	}
	if result.IntentID != "pi_123" || result.ClientSecret != "pi_123_secret" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Status != "requires_payment_method" || result.Amount != "31.05" || result.Currency != "EUR" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.CreatedAt == nil {
		t.Fatalf("created_at not decoded")
	}
}

func TestCreatePaymentIntentValidation(t *testing.T) {
	cfg := &Config{SecretKey: "sk_test_x"}
	if _, err := CreatePaymentIntent(context.Background(), cfg, CreateIntentInput{Amount: "1.00"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing currency err = %v, want ErrConfigInvalid", err)
	}
	if _, err := CreatePaymentIntent(context.Background(), cfg, CreateIntentInput{Amount: "0", Currency: "EUR"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("zero amount err = %v, want ErrConfigInvalid", err)
	}
	if _, err := CreatePaymentIntent(context.Background(), cfg, CreateIntentInput{Amount: "abc", Currency: "EUR"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("bad amount err = %v, want ErrConfigInvalid", err)
	}
}

func TestCreatePaymentIntentUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer server.Close()

	cfg := &Config{SecretKey: "sk_test_x", APIBaseURL: server.URL}
	_, err := CreatePaymentIntent(context.Background(), cfg, CreateIntentInput{Amount: "31.05", Currency: "EUR"})
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("err = %v, want ErrResponseInvalid", err)
	}
}

func TestGetPaymentIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents/pi_123" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","status":"succeeded","amount":3105,"currency":"eur"}`))
	}))
	defer server.Close()

	cfg := &Config{SecretKey: "sk_test_x", APIBaseURL: server.URL}
	result, err := GetPaymentIntent(context.Background(), cfg, "pi_123")
	if err != nil {
		t.Fatalf("get payment intent failed: %v", err)
	}
	if result.Status != "succeeded" || result.Amount != "31.05" {
		t.Fatalf("unexpected result: %+v", result)
	}

	if _, err := GetPaymentIntent(context.Background(), cfg, "  "); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("blank intent id err = %v, want ErrConfigInvalid", err)
	}
}

func TestMinorAmountConversion(t *testing.T) {
	cases := []struct {
		amount   string
		currency string
		want     int64
	}{
		{"31.05", "EUR", 3105},
		{"0.50", "EUR", 50},
		{"1200", "JPY", 1200}, // 零小数货币
	}
	for _, tc := range cases {
		got, err := toMinorAmount(tc.amount, tc.currency)
		if err != nil {
			t.Fatalf("toMinorAmount(%s, %s) failed: %v", tc.amount, tc.currency, err)
		}
		if got != tc.want {
			t.Fatalf("toMinorAmount(%s, %s) = %d, want %d", tc.amount, tc.currency, got, tc.want)
		}
	}

	if got := fromMinorAmount(3105, "EUR"); got != "31.05" {
		t.Fatalf("fromMinorAmount(3105, EUR) = %q, want 31.05", got)
	}
	if got := fromMinorAmount(1200, "JPY"); got != "1200" {
		t.Fatalf("fromMinorAmount(1200, JPY) = %q, want 1200", got)
	}
}
