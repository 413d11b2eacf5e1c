// Package payment provides the Stripe Checkout adapter for fiat top-ups.
package payment

import (
	"context"
	"fmt"

	portsgw "github.com/digiwallet/wallet_backend/internal/core/ports/gateways"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeProvider creates hosted checkout sessions. The API client is an
// explicit instance; no package-global key is set.
type StripeProvider struct {
	api        *client.API
	successURL string
	cancelURL  string
}

// NewStripeProvider creates a provider with its own API client.
func NewStripeProvider(apiKey, successURL, cancelURL string) *StripeProvider {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeProvider{
		api:        api,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

var _ portsgw.PaymentProvider = (*StripeProvider)(nil)

// CreateCheckoutSession creates a single-line-item payment session for a
// top-up and returns the hosted page URL. amount is in minor units.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, email string, amount int64, currency string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Params:        stripe.Params{Context: ctx},
		CustomerEmail: stripe.String(email),
		SubmitType:    stripe.String("pay"),
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(p.successURL),
		CancelURL:     stripe.String(p.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Topup"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session.URL, nil
}
