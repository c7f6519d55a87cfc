package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/domain/entity"
)

// Application fees by visa type, in whole dollars. The payment provider
// expects minor units, so CreatePayable multiplies by 100.
var visaFees = map[string]int64{
	entity.VisaTypeTourist:  100,
	entity.VisaTypeBusiness: 200,
	entity.VisaTypeStudent:  150,
	entity.VisaTypeWork:     250,
	entity.VisaTypeFamily:   175,
}

// defaultFee applies when the visa type is unknown.
const defaultFee int64 = 100

// PaymentService computes application fees and obtains a redirectable
// payment target from the payment collaborator.
type PaymentService interface {
	// FeeFor returns the fee for a visa type in whole dollars. Pure.
	FeeFor(visaType string) int64

	// CreatePayable asks the provider for a hosted checkout session for
	// the application's fee. The caller performs the browser redirect.
	CreatePayable(ctx context.Context, app *entity.VisaApplication, successURL, cancelURL string) (*port.PaymentSession, error)
}

type paymentService struct {
	gateway  port.PaymentGateway
	currency string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewPaymentService creates the payment orchestrator. The timeout caps each
// provider call; zero falls back to 30 seconds.
func NewPaymentService(gateway port.PaymentGateway, currency string, timeout time.Duration, logger *zap.Logger) PaymentService {
	if currency == "" {
		currency = "usd"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &paymentService{gateway: gateway, currency: currency, timeout: timeout, logger: logger}
}

func (s *paymentService) FeeFor(visaType string) int64 {
	if fee, ok := visaFees[visaType]; ok {
		return fee
	}
	return defaultFee
}

func (s *paymentService) CreatePayable(ctx context.Context, app *entity.VisaApplication, successURL, cancelURL string) (*port.PaymentSession, error) {
	amount := s.FeeFor(app.VisaType) * 100

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session, err := s.gateway.CreateCheckout(ctx, port.PaymentRequest{
		Amount:        amount,
		Currency:      s.currency,
		Description:   fmt.Sprintf("Visa Application - %s", app.VisaType),
		ApplicationID: app.ID,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: checkout for application %s: %v", port.ErrProviderTimeout, app.ID, err)
		}
		s.logger.Error("Checkout creation failed",
			zap.String("application_id", app.ID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Checkout session created",
		zap.String("application_id", app.ID),
		zap.String("session_id", session.SessionID),
		zap.Int64("amount", amount),
		zap.String("currency", s.currency))

	return session, nil
}
