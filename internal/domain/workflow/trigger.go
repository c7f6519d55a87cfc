package workflow

// Trigger represents an event that can cause a state transition.
type Trigger string

const (
	TriggerSubmit            Trigger = "SUBMIT"
	TriggerConfirmPayment    Trigger = "CONFIRM_PAYMENT"
	TriggerDispatchAgreement Trigger = "DISPATCH_AGREEMENT"
	TriggerAgreementFailed   Trigger = "AGREEMENT_FAILED"
	TriggerRetryAgreement    Trigger = "RETRY_AGREEMENT"
	TriggerComplete          Trigger = "COMPLETE"
	TriggerApprove           Trigger = "APPROVE"
	TriggerDeny              Trigger = "DENY"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
