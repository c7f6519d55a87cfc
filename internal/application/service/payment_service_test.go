package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/domain/entity"
)

type mockGateway struct {
	createCheckoutFunc func(ctx context.Context, req port.PaymentRequest) (*port.PaymentSession, error)
}

func (m *mockGateway) CreateCheckout(ctx context.Context, req port.PaymentRequest) (*port.PaymentSession, error) {
	if m.createCheckoutFunc != nil {
		return m.createCheckoutFunc(ctx, req)
	}
	return &port.PaymentSession{SessionID: "cs_test_1", RedirectURL: "https://checkout.example/cs_test_1"}, nil
}

func TestPaymentService_FeeFor(t *testing.T) {
	svc := NewPaymentService(&mockGateway{}, "usd", 0, zap.NewNop())

	tests := []struct {
		visaType string
		want     int64
	}{
		{entity.VisaTypeTourist, 100},
		{entity.VisaTypeBusiness, 200},
		{entity.VisaTypeStudent, 150},
		{entity.VisaTypeWork, 250},
		{entity.VisaTypeFamily, 175},
		{"diplomatic", 100},
		{"", 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.FeeFor(tt.visaType), "fee for %q", tt.visaType)
	}
}

func TestPaymentService_CreatePayable(t *testing.T) {
	var captured port.PaymentRequest
	gateway := &mockGateway{
		createCheckoutFunc: func(ctx context.Context, req port.PaymentRequest) (*port.PaymentSession, error) {
			captured = req
			return &port.PaymentSession{SessionID: "cs_test_42", RedirectURL: "https://checkout.example/42"}, nil
		},
	}
	svc := NewPaymentService(gateway, "usd", 0, zap.NewNop())

	app := &entity.VisaApplication{ID: "app-1", VisaType: entity.VisaTypeBusiness}
	session, err := svc.CreatePayable(context.Background(), app, "https://back/success", "https://back/cancel")
	require.NoError(t, err)

	// 200 dollars in minor units
	assert.Equal(t, int64(20000), captured.Amount)
	assert.Equal(t, "usd", captured.Currency)
	assert.Equal(t, "app-1", captured.ApplicationID)
	assert.Equal(t, "https://back/success", captured.SuccessURL)
	assert.Equal(t, "cs_test_42", session.SessionID)
}

func TestPaymentService_CreatePayable_Timeout(t *testing.T) {
	gateway := &mockGateway{
		createCheckoutFunc: func(ctx context.Context, req port.PaymentRequest) (*port.PaymentSession, error) {
			return nil, context.DeadlineExceeded
		},
	}
	svc := NewPaymentService(gateway, "usd", 0, zap.NewNop())

	_, err := svc.CreatePayable(context.Background(), &entity.VisaApplication{ID: "app-1"}, "s", "c")
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrProviderTimeout)
}

func TestPaymentService_CreatePayable_GatewayError(t *testing.T) {
	wantErr := errors.New("card network down")
	gateway := &mockGateway{
		createCheckoutFunc: func(ctx context.Context, req port.PaymentRequest) (*port.PaymentSession, error) {
			return nil, wantErr
		},
	}
	svc := NewPaymentService(gateway, "", 0, zap.NewNop())

	_, err := svc.CreatePayable(context.Background(), &entity.VisaApplication{ID: "app-1"}, "s", "c")
	assert.ErrorIs(t, err, wantErr)
}
