package workflow

// State represents a lifecycle state of a visa application.
type State string

const (
	StateDraft             State = "DRAFT"
	StateStarted           State = "STARTED"
	StateWaitingPayment    State = "WAITING_PAYMENT"
	StatePending           State = "PENDING"
	StateWaitingSignatures State = "WAITING_SIGNATURES"
	StateAgreementFailed   State = "AGREEMENT_FAILED"
	StateCompleted         State = "COMPLETED"
	StateApproved          State = "APPROVED"
	StateDenied            State = "DENIED"
)

var validStates = map[State]bool{
	StateDraft:             true,
	StateStarted:           true,
	StateWaitingPayment:    true,
	StatePending:           true,
	StateWaitingSignatures: true,
	StateAgreementFailed:   true,
	StateCompleted:         true,
	StateApproved:          true,
	StateDenied:            true,
}

var terminalStates = map[State]bool{
	StateCompleted: true,
	StateApproved:  true,
	StateDenied:    true,
}

var editableStates = map[State]bool{
	StateDraft:   true,
	StateStarted: true,
}

// IsValid returns true if the state is a known lifecycle state.
func (s State) IsValid() bool {
	return validStates[s]
}

// IsTerminal returns true if no further transitions are allowed.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsEditable returns true while the application form can still be changed.
func (s State) IsEditable() bool {
	return editableStates[s]
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}
