package service

import (
	"context"

	"github.com/freshcart-next/internal/config"
	"github.com/freshcart-next/internal/payment/stripe"
)

// PaymentGateway 支付网关抽象（创建与查询支付意图）
type PaymentGateway interface {
	CreateIntent(ctx context.Context, input stripe.CreateIntentInput) (*stripe.IntentResult, error)
	GetIntent(ctx context.Context, intentID string) (*stripe.IntentResult, error)
}

type stripeGateway struct {
	cfg *stripe.Config
}

// NewStripeGateway 基于 Stripe PaymentIntents 的网关实现
func NewStripeGateway(cfg config.PaymentConfig) PaymentGateway {
	return &stripeGateway{
		cfg: &stripe.Config{
			SecretKey:      cfg.SecretKey,
			PublishableKey: cfg.PublishableKey,
			APIBaseURL:     cfg.APIBaseURL,
			TimeoutMS:      cfg.TimeoutMS,
		},
	}
}

func (g *stripeGateway) CreateIntent(ctx context.Context, input stripe.CreateIntentInput) (*stripe.IntentResult, error) {
	return stripe.CreatePaymentIntent(ctx, g.cfg, input)
}

func (g *stripeGateway) GetIntent(ctx context.Context, intentID string) (*stripe.IntentResult, error) {
	return stripe.GetPaymentIntent(ctx, g.cfg, intentID)
}
