package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/application/service"
	domainwf "github.com/hcaumo/VisaProject/internal/domain/workflow"

	"github.com/hcaumo/VisaProject/internal/domain/entity"
)

// SubmitOptions carries the caller-provided parts of a submission: where the
// payment provider should send the browser afterwards, and who is acting.
type SubmitOptions struct {
	SuccessURL string
	CancelURL  string
	Actor      string
}

// SubmitResult is the outcome of a successful submission: the application in
// its new state and the payment session the caller must redirect to.
type SubmitResult struct {
	Application *entity.VisaApplication
	Payment     *port.PaymentSession
}

// Engine drives applications through the lifecycle. All transitions for one
// application are serialized; concurrent calls for the same id queue up and
// observe each other's results.
type Engine interface {
	// Submit validates the application, creates a payment session and moves
	// the application to WAITING_PAYMENT. Called again while already in
	// WAITING_PAYMENT it creates a fresh payment session without changing
	// state, so an abandoned checkout can be retried.
	Submit(ctx context.Context, id string, opts SubmitOptions) (*SubmitResult, error)

	// CompletePayment confirms payment and dispatches the legal agreement
	// for signature. Outside WAITING_PAYMENT it is a no-op returning the
	// unchanged application, so duplicate provider callbacks are harmless.
	// On a dispatch failure the application lands in AGREEMENT_FAILED with
	// the failure recorded, and both the application and the error return.
	CompletePayment(ctx context.Context, id, actor string) (*entity.VisaApplication, error)

	// RetryAgreement re-attempts agreement dispatch for an application in
	// AGREEMENT_FAILED.
	RetryAgreement(ctx context.Context, id, actor string) (*entity.VisaApplication, error)

	// Decide records a terminal decision on an application awaiting
	// signatures. Decision is one of COMPLETED, APPROVED or DENIED.
	Decide(ctx context.Context, id, decision, actor string) (*entity.VisaApplication, error)

	// CurrentState returns the application's state and the triggers
	// permitted from it.
	CurrentState(ctx context.Context, id string) (domainwf.State, []domainwf.Trigger, error)
}

type engine struct {
	apps       port.ApplicationRepository
	history    port.HistoryRepository
	payments   service.PaymentService
	agreements service.AgreementService
	txm        port.TransactionManager
	locks      keyedMutex
	logger     *zap.Logger
}

// NewEngine creates the lifecycle engine.
func NewEngine(
	apps port.ApplicationRepository,
	history port.HistoryRepository,
	payments service.PaymentService,
	agreements service.AgreementService,
	txm port.TransactionManager,
	logger *zap.Logger,
) Engine {
	return &engine{
		apps:       apps,
		history:    history,
		payments:   payments,
		agreements: agreements,
		txm:        txm,
		logger:     logger,
	}
}

func (e *engine) Submit(ctx context.Context, id string, opts SubmitOptions) (*SubmitResult, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	app, err := e.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// A second submit while payment is outstanding just mints a fresh
	// checkout session; the application stays where it is.
	if app.Status == entity.StatusWaitingPayment {
		session, err := e.payments.CreatePayable(ctx, app, opts.SuccessURL, opts.CancelURL)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{Application: app, Payment: session}, nil
	}

	machine := BuildVisaStateMachine(domainwf.State(app.Status))
	if !machine.CanFire(domainwf.TriggerSubmit) {
		return nil, fmt.Errorf("%w: trigger %s from state %s",
			domainwf.ErrInvalidTransition, domainwf.TriggerSubmit, app.Status)
	}

	if fails := entity.ValidateForSubmission(app); len(fails) > 0 {
		return nil, &service.ValidationError{Fails: fails}
	}

	// Create the payable before committing the transition: if the provider
	// fails the application stays editable and nothing has changed.
	session, err := e.payments.CreatePayable(ctx, app, opts.SuccessURL, opts.CancelURL)
	if err != nil {
		return nil, err
	}

	if err := e.transition(ctx, app, machine, domainwf.TriggerSubmit, opts.Actor,
		fmt.Sprintf("Payment session %s created", session.SessionID)); err != nil {
		return nil, err
	}

	e.logger.Info("Application submitted",
		zap.String("application_id", app.ID),
		zap.String("session_id", session.SessionID))

	return &SubmitResult{Application: app, Payment: session}, nil
}

func (e *engine) CompletePayment(ctx context.Context, id, actor string) (*entity.VisaApplication, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	app, err := e.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Payment confirmations can arrive more than once. Only the first one
	// that finds the application waiting does anything.
	if app.Status != entity.StatusWaitingPayment {
		return app, nil
	}

	machine := BuildVisaStateMachine(domainwf.State(app.Status))
	if err := e.transition(ctx, app, machine, domainwf.TriggerConfirmPayment, actor, "Payment confirmed"); err != nil {
		return nil, err
	}

	return e.dispatchAgreement(ctx, app, machine, actor)
}

func (e *engine) RetryAgreement(ctx context.Context, id, actor string) (*entity.VisaApplication, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	app, err := e.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	machine := BuildVisaStateMachine(domainwf.State(app.Status))
	if err := e.transition(ctx, app, machine, domainwf.TriggerRetryAgreement, actor, "Agreement dispatch retried"); err != nil {
		return nil, err
	}

	return e.dispatchAgreement(ctx, app, machine, actor)
}

// decisionTriggers maps a terminal decision to its trigger.
var decisionTriggers = map[string]domainwf.Trigger{
	entity.StatusCompleted: domainwf.TriggerComplete,
	entity.StatusApproved:  domainwf.TriggerApprove,
	entity.StatusDenied:    domainwf.TriggerDeny,
}

func (e *engine) Decide(ctx context.Context, id, decision, actor string) (*entity.VisaApplication, error) {
	trigger, ok := decisionTriggers[decision]
	if !ok {
		return nil, fmt.Errorf("%w: unknown decision %q", domainwf.ErrInvalidTransition, decision)
	}

	unlock := e.locks.lock(id)
	defer unlock()

	app, err := e.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	machine := BuildVisaStateMachine(domainwf.State(app.Status))
	if err := e.transition(ctx, app, machine, trigger, actor,
		fmt.Sprintf("Decision recorded: %s", decision)); err != nil {
		return nil, err
	}

	// The signed document URL is best-effort; the decision stands even if
	// the provider cannot be reached right now.
	if decision != entity.StatusDenied && e.fetchSignedURL(ctx, app) {
		if err := e.apps.Update(ctx, app); err != nil {
			return nil, err
		}
	}

	e.logger.Info("Application decided",
		zap.String("application_id", app.ID),
		zap.String("decision", decision),
		zap.String("actor", actor))

	return app, nil
}

func (e *engine) CurrentState(ctx context.Context, id string) (domainwf.State, []domainwf.Trigger, error) {
	app, err := e.apps.GetByID(ctx, id)
	if err != nil {
		return "", nil, err
	}
	machine := BuildVisaStateMachine(domainwf.State(app.Status))
	return machine.State(), machine.PermittedTriggers(), nil
}

// dispatchAgreement moves a PENDING application onward: render and send the
// agreement, then WAITING_SIGNATURES on success or AGREEMENT_FAILED on
// error. If an agreement document already exists from a previous attempt the
// dispatch is skipped; the provider must never see the document twice.
func (e *engine) dispatchAgreement(ctx context.Context, app *entity.VisaApplication, machine *domainwf.Machine, actor string) (*entity.VisaApplication, error) {
	if app.LegalAgreement.DocumentID != "" {
		e.fetchSignedURL(ctx, app)
		if err := e.transition(ctx, app, machine, domainwf.TriggerDispatchAgreement, actor,
			fmt.Sprintf("Agreement %s already dispatched", app.LegalAgreement.DocumentID)); err != nil {
			return nil, err
		}
		return app, nil
	}

	docID, dispatchErr := e.agreements.Dispatch(ctx, app)
	if dispatchErr != nil {
		app.LastFailure = dispatchErr.Error()
		if err := e.transition(ctx, app, machine, domainwf.TriggerAgreementFailed, actor,
			fmt.Sprintf("Agreement dispatch failed: %v", dispatchErr)); err != nil {
			return nil, err
		}
		return app, dispatchErr
	}

	app.LegalAgreement.DocumentID = docID
	app.LastFailure = ""
	e.fetchSignedURL(ctx, app)
	if err := e.transition(ctx, app, machine, domainwf.TriggerDispatchAgreement, actor,
		fmt.Sprintf("Agreement %s dispatched for signature", docID)); err != nil {
		return nil, err
	}
	return app, nil
}

// fetchSignedURL asks the provider for the signed document URL and records
// it on the application, reporting whether it changed anything. An absent
// URL and a provider failure are both fine: the signature poller and the
// decision path will pick the URL up later.
func (e *engine) fetchSignedURL(ctx context.Context, app *entity.VisaApplication) bool {
	if app.LegalAgreement.DocumentID == "" || app.LegalAgreement.SignedURL != "" {
		return false
	}

	url, err := e.agreements.SignedURL(ctx, app.LegalAgreement.DocumentID)
	if err != nil {
		e.logger.Warn("Could not fetch signed document URL",
			zap.String("application_id", app.ID),
			zap.Error(err))
		return false
	}
	if url == "" {
		return false
	}
	app.LegalAgreement.SignedURL = url
	return true
}

// transition fires the trigger, persists the full record in its new state
// and appends a history entry, both inside one transaction so a status
// change never lands without its audit row. The in-memory application is
// the source of truth for everything but status, which the machine owns.
func (e *engine) transition(ctx context.Context, app *entity.VisaApplication, machine *domainwf.Machine, trigger domainwf.Trigger, actor, detail string) error {
	previous := app.Status
	if err := machine.Fire(ctx, trigger); err != nil {
		return err
	}
	app.Status = machine.State().String()

	err := e.txm.WithTransaction(ctx, func(ctx context.Context) error {
		if err := e.apps.Update(ctx, app); err != nil {
			return err
		}
		return e.history.Create(ctx, &entity.StatusHistory{
			ApplicationID:  app.ID,
			Actor:          actor,
			PreviousStatus: previous,
			NewStatus:      app.Status,
			Trigger:        trigger.String(),
			Detail:         detail,
			Timestamp:      time.Now(),
		})
	})
	if err != nil {
		return err
	}

	e.logger.Info("Application transitioned",
		zap.String("application_id", app.ID),
		zap.String("from", previous),
		zap.String("to", app.Status),
		zap.String("trigger", trigger.String()))

	return nil
}

// keyedMutex serializes work per application id. The zero value is ready to
// use.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*lockEntry)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
