package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/application/service"
	"github.com/hcaumo/VisaProject/internal/domain/entity"
	domainwf "github.com/hcaumo/VisaProject/internal/domain/workflow"
	"github.com/hcaumo/VisaProject/internal/infrastructure/persistence/memory"
)

type mockGateway struct {
	createCheckoutFunc func(ctx context.Context, req port.PaymentRequest) (*port.PaymentSession, error)
	calls              int
}

func (m *mockGateway) CreateCheckout(ctx context.Context, req port.PaymentRequest) (*port.PaymentSession, error) {
	m.calls++
	if m.createCheckoutFunc != nil {
		return m.createCheckoutFunc(ctx, req)
	}
	return &port.PaymentSession{SessionID: "cs_test_1", RedirectURL: "https://checkout.example/cs_test_1"}, nil
}

type mockSignatureClient struct {
	createDocumentFunc func(ctx context.Context, req port.SignatureRequest) (string, error)
	getSignedURLFunc   func(ctx context.Context, documentID string) (string, error)
	createCalls        int
}

func (m *mockSignatureClient) CreateDocument(ctx context.Context, req port.SignatureRequest) (string, error) {
	m.createCalls++
	if m.createDocumentFunc != nil {
		return m.createDocumentFunc(ctx, req)
	}
	return "doc-1", nil
}

func (m *mockSignatureClient) GetDocumentStatus(ctx context.Context, documentID string) (string, error) {
	return "pending", nil
}

func (m *mockSignatureClient) GetSignedURL(ctx context.Context, documentID string) (string, error) {
	if m.getSignedURLFunc != nil {
		return m.getSignedURLFunc(ctx, documentID)
	}
	return "", nil
}

type engineFixture struct {
	engine    Engine
	apps      *memory.ApplicationRepository
	history   *memory.HistoryRepository
	gateway   *mockGateway
	signature *mockSignatureClient
}

func newEngineFixture() *engineFixture {
	apps := memory.NewApplicationRepository()
	history := memory.NewHistoryRepository()
	gateway := &mockGateway{}
	signature := &mockSignatureClient{}
	logger := zap.NewNop()

	payments := service.NewPaymentService(gateway, "usd", 0, logger)
	agreements := service.NewAgreementService(signature, service.AgreementDefaults{}, 0, logger)

	return &engineFixture{
		engine:    NewEngine(apps, history, payments, agreements, memory.NewTransactionManager(), logger),
		apps:      apps,
		history:   history,
		gateway:   gateway,
		signature: signature,
	}
}

func submittableApplication() *entity.VisaApplication {
	return &entity.VisaApplication{
		UserID:         "user-1",
		Status:         entity.StatusDraft,
		VisaType:       entity.VisaTypeTourist,
		ApplicantCount: 2,
		Applicants: []entity.Applicant{
			{
				FirstName:          "Maria",
				LastName:           "Silva",
				DateOfBirth:        "1990-04-12",
				Nationality:        "Brazilian",
				PassportNumber:     "BR123456",
				PassportExpiryDate: "2030-01-01",
				Email:              "maria@example.com",
				Phone:              "+351911111111",
			},
			{
				FirstName:          "Joao",
				LastName:           "Silva",
				DateOfBirth:        "1988-11-02",
				Nationality:        "Brazilian",
				PassportNumber:     "BR654321",
				PassportExpiryDate: "2031-06-01",
				Email:              "joao@example.com",
				Phone:              "+351922222222",
			},
		},
		PlannedArrivalDate:   "2026-10-01",
		PlannedDepartureDate: "2026-10-15",
		AccommodationAddress: "Rua Augusta 100, Lisbon",
	}
}

func (f *engineFixture) seed(t *testing.T, app *entity.VisaApplication) string {
	t.Helper()
	require.NoError(t, f.apps.Create(context.Background(), app))
	return app.ID
}

func (f *engineFixture) statusOf(t *testing.T, id string) string {
	t.Helper()
	app, err := f.apps.GetByID(context.Background(), id)
	require.NoError(t, err)
	return app.Status
}

func TestEngine_SubmitToSignatures(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	var captured port.PaymentRequest
	f.gateway.createCheckoutFunc = func(ctx context.Context, req port.PaymentRequest) (*port.PaymentSession, error) {
		captured = req
		return &port.PaymentSession{SessionID: "cs_test_7", RedirectURL: "https://checkout.example/7"}, nil
	}

	id := f.seed(t, submittableApplication())

	result, err := f.engine.Submit(ctx, id, SubmitOptions{
		SuccessURL: "https://back/success",
		CancelURL:  "https://back/cancel",
		Actor:      "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusWaitingPayment, result.Application.Status)
	assert.Equal(t, "cs_test_7", result.Payment.SessionID)
	// Flat tourist fee in minor units, independent of applicant count.
	assert.Equal(t, int64(10000), captured.Amount)
	assert.Equal(t, entity.StatusWaitingPayment, f.statusOf(t, id))

	app, err := f.engine.CompletePayment(ctx, id, "stripe")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusWaitingSignatures, app.Status)
	assert.Equal(t, "doc-1", app.LegalAgreement.DocumentID)
	assert.Equal(t, 1, f.signature.createCalls)

	entries, err := f.history.GetByApplicationID(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domainwf.TriggerSubmit.String(), entries[0].Trigger)
	assert.Equal(t, domainwf.TriggerConfirmPayment.String(), entries[1].Trigger)
	assert.Equal(t, domainwf.TriggerDispatchAgreement.String(), entries[2].Trigger)
}

func TestEngine_Submit_ValidationFailure(t *testing.T) {
	f := newEngineFixture()

	app := submittableApplication()
	app.Applicants[0].Email = ""
	id := f.seed(t, app)

	_, err := f.engine.Submit(context.Background(), id, SubmitOptions{Actor: "user-1"})
	require.Error(t, err)

	ve, ok := service.AsValidationError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	assert.NotEmpty(t, ve.Fails)
	// No payment session for a rejected submission.
	assert.Equal(t, 0, f.gateway.calls)
	assert.Equal(t, entity.StatusDraft, f.statusOf(t, id))
}

func TestEngine_Submit_PaymentFailureLeavesDraft(t *testing.T) {
	f := newEngineFixture()
	f.gateway.createCheckoutFunc = func(ctx context.Context, req port.PaymentRequest) (*port.PaymentSession, error) {
		return nil, errors.New("provider unavailable")
	}

	id := f.seed(t, submittableApplication())

	_, err := f.engine.Submit(context.Background(), id, SubmitOptions{Actor: "user-1"})
	require.Error(t, err)
	assert.Equal(t, entity.StatusDraft, f.statusOf(t, id))
}

func TestEngine_Submit_WhileWaitingPaymentMintsNewSession(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	id := f.seed(t, submittableApplication())
	_, err := f.engine.Submit(ctx, id, SubmitOptions{Actor: "user-1"})
	require.NoError(t, err)

	result, err := f.engine.Submit(ctx, id, SubmitOptions{Actor: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusWaitingPayment, result.Application.Status)
	assert.Equal(t, 2, f.gateway.calls)

	// Only the first submit transitioned.
	entries, err := f.history.GetByApplicationID(ctx, id)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEngine_Submit_FromTerminalState(t *testing.T) {
	f := newEngineFixture()

	app := submittableApplication()
	app.Status = entity.StatusApproved
	id := f.seed(t, app)

	_, err := f.engine.Submit(context.Background(), id, SubmitOptions{Actor: "user-1"})
	assert.ErrorIs(t, err, domainwf.ErrInvalidTransition)
}

func TestEngine_Submit_NotFound(t *testing.T) {
	f := newEngineFixture()

	_, err := f.engine.Submit(context.Background(), "missing", SubmitOptions{Actor: "user-1"})
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestEngine_CompletePayment_DuplicateCallback(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	id := f.seed(t, submittableApplication())
	_, err := f.engine.Submit(ctx, id, SubmitOptions{Actor: "user-1"})
	require.NoError(t, err)

	_, err = f.engine.CompletePayment(ctx, id, "stripe")
	require.NoError(t, err)

	// The second confirmation finds nothing to do.
	app, err := f.engine.CompletePayment(ctx, id, "stripe")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusWaitingSignatures, app.Status)
	assert.Equal(t, 1, f.signature.createCalls)
}

func TestEngine_DispatchFailureThenRetry(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	f.signature.createDocumentFunc = func(ctx context.Context, req port.SignatureRequest) (string, error) {
		return "", errors.New("upstream rejected the document")
	}

	id := f.seed(t, submittableApplication())
	_, err := f.engine.Submit(ctx, id, SubmitOptions{Actor: "user-1"})
	require.NoError(t, err)

	app, err := f.engine.CompletePayment(ctx, id, "stripe")
	require.Error(t, err)
	require.NotNil(t, app)
	assert.Equal(t, entity.StatusAgreementFailed, app.Status)
	assert.Contains(t, app.LastFailure, "upstream rejected the document")
	assert.Equal(t, entity.StatusAgreementFailed, f.statusOf(t, id))

	// The provider recovers and the retry lands in WAITING_SIGNATURES.
	f.signature.createDocumentFunc = nil

	app, err = f.engine.RetryAgreement(ctx, id, "admin")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusWaitingSignatures, app.Status)
	assert.Equal(t, "doc-1", app.LegalAgreement.DocumentID)
	assert.Empty(t, app.LastFailure)
}

func TestEngine_DispatchRecordsSignedURLWhenAvailable(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	// Some providers hand back the signed file URL as soon as the document
	// exists; it is persisted with the dispatch transition.
	f.signature.getSignedURLFunc = func(ctx context.Context, documentID string) (string, error) {
		return "https://signed.example/" + documentID, nil
	}

	id := f.seed(t, submittableApplication())
	_, err := f.engine.Submit(ctx, id, SubmitOptions{Actor: "user-1"})
	require.NoError(t, err)

	app, err := f.engine.CompletePayment(ctx, id, "stripe")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/doc-1", app.LegalAgreement.SignedURL)

	stored, err := f.apps.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/doc-1", stored.LegalAgreement.SignedURL)
}

func TestEngine_DispatchSignedURLFailureIsNotFatal(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	f.signature.getSignedURLFunc = func(ctx context.Context, documentID string) (string, error) {
		return "", errors.New("provider down")
	}

	id := f.seed(t, submittableApplication())
	_, err := f.engine.Submit(ctx, id, SubmitOptions{Actor: "user-1"})
	require.NoError(t, err)

	app, err := f.engine.CompletePayment(ctx, id, "stripe")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusWaitingSignatures, app.Status)
	assert.Empty(t, app.LegalAgreement.SignedURL)
}

func TestEngine_RetryAgreement_WrongState(t *testing.T) {
	f := newEngineFixture()

	id := f.seed(t, submittableApplication())

	_, err := f.engine.RetryAgreement(context.Background(), id, "admin")
	assert.ErrorIs(t, err, domainwf.ErrInvalidTransition)
}

func TestEngine_RetryAgreement_SkipsRedispatch(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	// A previous attempt created the document but failed afterwards.
	app := submittableApplication()
	app.Status = entity.StatusAgreementFailed
	app.LegalAgreement.DocumentID = "doc-55"
	id := f.seed(t, app)

	got, err := f.engine.RetryAgreement(ctx, id, "admin")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusWaitingSignatures, got.Status)
	assert.Equal(t, "doc-55", got.LegalAgreement.DocumentID)
	assert.Equal(t, 0, f.signature.createCalls)
}

func TestEngine_Decide(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	id := f.seed(t, submittableApplication())
	_, err := f.engine.Submit(ctx, id, SubmitOptions{Actor: "user-1"})
	require.NoError(t, err)
	_, err = f.engine.CompletePayment(ctx, id, "stripe")
	require.NoError(t, err)

	// The document gets signed while the application waits.
	f.signature.getSignedURLFunc = func(ctx context.Context, documentID string) (string, error) {
		return "https://signed.example/" + documentID, nil
	}

	app, err := f.engine.Decide(ctx, id, entity.StatusCompleted, "admin")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusCompleted, app.Status)
	assert.Equal(t, "https://signed.example/doc-1", app.LegalAgreement.SignedURL)
	assert.Equal(t, entity.StatusCompleted, f.statusOf(t, id))
}

func TestEngine_Decide_DeniedSkipsSignedURL(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	id := f.seed(t, submittableApplication())
	_, err := f.engine.Submit(ctx, id, SubmitOptions{Actor: "user-1"})
	require.NoError(t, err)
	_, err = f.engine.CompletePayment(ctx, id, "stripe")
	require.NoError(t, err)

	f.signature.getSignedURLFunc = func(ctx context.Context, documentID string) (string, error) {
		t.Fatal("signed URL should not be fetched for a denial")
		return "", nil
	}

	app, err := f.engine.Decide(ctx, id, entity.StatusDenied, "admin")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDenied, app.Status)
	assert.Empty(t, app.LegalAgreement.SignedURL)
}

func TestEngine_Decide_SignedURLFailureDoesNotUndoDecision(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	id := f.seed(t, submittableApplication())
	_, err := f.engine.Submit(ctx, id, SubmitOptions{Actor: "user-1"})
	require.NoError(t, err)
	_, err = f.engine.CompletePayment(ctx, id, "stripe")
	require.NoError(t, err)

	f.signature.getSignedURLFunc = func(ctx context.Context, documentID string) (string, error) {
		return "", errors.New("provider down")
	}

	app, err := f.engine.Decide(ctx, id, entity.StatusApproved, "admin")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, app.Status)
	assert.Empty(t, app.LegalAgreement.SignedURL)
}

func TestEngine_Decide_UnknownDecision(t *testing.T) {
	f := newEngineFixture()

	_, err := f.engine.Decide(context.Background(), "app-1", "ESCALATED", "admin")
	assert.ErrorIs(t, err, domainwf.ErrInvalidTransition)
}

func TestEngine_Decide_WrongState(t *testing.T) {
	f := newEngineFixture()

	id := f.seed(t, submittableApplication())

	_, err := f.engine.Decide(context.Background(), id, entity.StatusApproved, "admin")
	assert.ErrorIs(t, err, domainwf.ErrInvalidTransition)
}

func TestEngine_CurrentState(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	id := f.seed(t, submittableApplication())

	state, triggers, err := f.engine.CurrentState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domainwf.StateDraft, state)
	assert.Contains(t, triggers, domainwf.TriggerSubmit)

	_, err = f.engine.Submit(ctx, id, SubmitOptions{Actor: "user-1"})
	require.NoError(t, err)

	state, triggers, err = f.engine.CurrentState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domainwf.StateWaitingPayment, state)
	assert.Contains(t, triggers, domainwf.TriggerConfirmPayment)
}

type countingTxManager struct {
	inner port.TransactionManager
	calls int
}

func (m *countingTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return m.inner.WithTransaction(ctx, fn)
}

func TestEngine_TransitionsRunThroughTransactionManager(t *testing.T) {
	apps := memory.NewApplicationRepository()
	history := memory.NewHistoryRepository()
	logger := zap.NewNop()
	txm := &countingTxManager{inner: memory.NewTransactionManager()}

	payments := service.NewPaymentService(&mockGateway{}, "usd", 0, logger)
	agreements := service.NewAgreementService(&mockSignatureClient{}, service.AgreementDefaults{}, 0, logger)
	eng := NewEngine(apps, history, payments, agreements, txm, logger)

	ctx := context.Background()
	app := submittableApplication()
	require.NoError(t, apps.Create(ctx, app))

	_, err := eng.Submit(ctx, app.ID, SubmitOptions{Actor: "user-1"})
	require.NoError(t, err)
	_, err = eng.CompletePayment(ctx, app.ID, "stripe")
	require.NoError(t, err)

	// One transaction per transition: submit, payment confirm, dispatch.
	assert.Equal(t, 3, txm.calls)
}
