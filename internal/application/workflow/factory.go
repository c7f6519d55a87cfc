package workflow

import (
	domainwf "github.com/hcaumo/VisaProject/internal/domain/workflow"
)

// BuildVisaStateMachine creates a state machine configured for the visa
// application lifecycle. Transitions are monotonic; the only way back is
// the agreement-retry loop, and there is no path back to DRAFT once an
// application has been submitted.
func BuildVisaStateMachine(initialState domainwf.State) *domainwf.Machine {
	builder := domainwf.NewBuilder()

	// DRAFT and STARTED are both editable pre-submission states. STARTED
	// exists for applications created through the multi-step form before
	// the first save completed.
	builder.Configure(domainwf.StateDraft).
		Permit(domainwf.TriggerSubmit, domainwf.StateWaitingPayment)

	builder.Configure(domainwf.StateStarted).
		Permit(domainwf.TriggerSubmit, domainwf.StateWaitingPayment)

	// Payment confirmation moves to PENDING, a transient state that holds
	// the application while the agreement is rendered and dispatched.
	builder.Configure(domainwf.StateWaitingPayment).
		Permit(domainwf.TriggerConfirmPayment, domainwf.StatePending)

	builder.Configure(domainwf.StatePending).
		Permit(domainwf.TriggerDispatchAgreement, domainwf.StateWaitingSignatures).
		Permit(domainwf.TriggerAgreementFailed, domainwf.StateAgreementFailed)

	builder.Configure(domainwf.StateAgreementFailed).
		Permit(domainwf.TriggerRetryAgreement, domainwf.StatePending)

	// Terminal decisions arrive from the signer callback or an operator;
	// nothing flips them automatically.
	builder.Configure(domainwf.StateWaitingSignatures).
		Permit(domainwf.TriggerComplete, domainwf.StateCompleted).
		Permit(domainwf.TriggerApprove, domainwf.StateApproved).
		Permit(domainwf.TriggerDeny, domainwf.StateDenied)

	// COMPLETED, APPROVED and DENIED are terminal - no outgoing transitions.

	return builder.Build(initialState)
}
