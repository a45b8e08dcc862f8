package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"ms-linkmarket/internal/config"
	"ms-linkmarket/internal/logger"
	"ms-linkmarket/internal/models"
)

var ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")

// StripePayments creates the hosted checkout redirect for an order. It is
// the only place the payment collaborator is invoked.
type StripePayments struct {
	client     *client.API
	successURL string
	cancelURL  string
	log        *logger.Logger
}

func NewStripePayments(cfg config.StripeConfig, log *logger.Logger) (*StripePayments, error) {
	if cfg.SecretKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY not configured")
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(cfg.SecretKey, nil)
	if sc == nil {
		return nil, ErrStripeClientInitFailed
	}

	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripePayments{
		client:     sc,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		log:        log,
	}, nil
}

// CreateCheckoutSession builds a one-item checkout session priced at the
// order's frozen final price and returns the redirect URL.
func (p *StripePayments) CreateCheckoutSession(order models.Order) (string, error) {
	amountInCents := int64(order.FinalPrice * 100)

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.successURL),
		CancelURL:  stripe.String(p.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(order.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Placement on outlet %s", order.OutletID)),
					},
					UnitAmount: stripe.Int64(amountInCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("order_id", order.OrderID)

	session, err := p.client.CheckoutSessions.New(params)
	if err != nil {
		p.log.Error("STRIPE", fmt.Sprintf("Failed to create checkout session for order %s: %v", order.OrderID, err))
		return "", err
	}

	p.log.Info("STRIPE", fmt.Sprintf("Created checkout session %s for order %s (%0.2f %s)",
		session.ID, order.OrderID, order.FinalPrice, order.Currency))
	return session.URL, nil
}
