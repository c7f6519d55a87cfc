package stripe

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	stripeapi "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
)

// Client implements port.PaymentGateway against Stripe Checkout.
//
// In sandbox mode no call leaves the process: a mock session with a test id
// is minted so the rest of the pipeline can run without a Stripe account.
// Sandbox is forced when no API key is configured; it is never entered
// silently otherwise.
type Client struct {
	api     *client.API
	sandbox bool
	logger  *zap.Logger
}

// NewClient creates a Stripe payment client. An empty secret key forces
// sandbox mode.
func NewClient(secretKey string, sandbox bool, logger *zap.Logger) *Client {
	if secretKey == "" && !sandbox {
		logger.Warn("No Stripe secret key configured, forcing sandbox mode")
		sandbox = true
	}

	api := &client.API{}
	api.Init(secretKey, nil)

	return &Client{
		api:     api,
		sandbox: sandbox,
		logger:  logger,
	}
}

// CreateCheckout creates a hosted checkout session for the given payable.
func (c *Client) CreateCheckout(ctx context.Context, req port.PaymentRequest) (*port.PaymentSession, error) {
	if c.sandbox {
		return c.mockSession(req), nil
	}

	params := &stripeapi.CheckoutSessionParams{
		Params: stripeapi.Params{Context: ctx},
		Mode:   stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripeapi.String(req.Currency),
					UnitAmount: stripeapi.Int64(req.Amount),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(req.Description),
					},
				},
				Quantity: stripeapi.Int64(1),
			},
		},
		SuccessURL: stripeapi.String(req.SuccessURL),
		CancelURL:  stripeapi.String(req.CancelURL),
	}
	params.AddMetadata("application_id", req.ApplicationID)

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe checkout: %v", port.ErrProviderFailure, err)
	}

	c.logger.Info("Stripe checkout session created",
		zap.String("session_id", session.ID),
		zap.String("application_id", req.ApplicationID))

	return &port.PaymentSession{
		SessionID:   session.ID,
		RedirectURL: session.URL,
	}, nil
}

func (c *Client) mockSession(req port.PaymentRequest) *port.PaymentSession {
	sessionID := "cs_test_" + uuid.NewString()

	c.logger.Info("Sandbox checkout session minted",
		zap.String("session_id", sessionID),
		zap.String("application_id", req.ApplicationID),
		zap.Int64("amount", req.Amount))

	return &port.PaymentSession{
		SessionID:   sessionID,
		RedirectURL: req.SuccessURL,
	}
}

// Verify interface compliance
var _ port.PaymentGateway = (*Client)(nil)
