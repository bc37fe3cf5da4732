package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"showtix/internal/shared/config"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

var ErrProviderUnavailable = errors.New("payment provider unavailable")

// CheckoutSession is the provider-agnostic result of opening a payment
// session
type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// SessionRequest describes the payment to collect. Amount is in major
// currency units; metadata is round-tripped back on the settlement webhook.
type SessionRequest struct {
	Amount      float64
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Provider abstracts the external payment gateway
type Provider interface {
	CreateSession(ctx context.Context, req *SessionRequest) (*CheckoutSession, error)
}

// StripeProvider implements Provider against the Stripe Checkout API
type StripeProvider struct {
	currency      string
	sessionExpiry time.Duration
}

// NewStripeProvider configures the Stripe SDK and returns a provider
func NewStripeProvider(cfg config.PaymentsConfig) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("payment secret key is required")
	}
	stripe.Key = cfg.SecretKey

	return &StripeProvider{
		currency:      cfg.Currency,
		sessionExpiry: cfg.SessionExpiry,
	}, nil
}

// CreateSession opens a hosted checkout session for the given amount. The
// session carries the booking id in metadata so the settlement webhook can
// find its way back.
func (p *StripeProvider) CreateSession(ctx context.Context, req *SessionRequest) (*CheckoutSession, error) {
	// Stripe wants minor units
	unitAmount := int64(math.Round(req.Amount * 100))

	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Context:  ctx,
			Metadata: req.Metadata,
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		ExpiresAt:  stripe.Int64(time.Now().Add(p.sessionExpiry).Unix()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.currency),
					UnitAmount: stripe.Int64(unitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return &CheckoutSession{
		SessionID:   s.ID,
		RedirectURL: s.URL,
	}, nil
}
