package lifecycle

// State represents a case state in the police → court lifecycle
type State string

const (
	StateFIRRegistered          State = "FIR_REGISTERED"
	StateUnderInvestigation     State = "UNDER_INVESTIGATION"
	StateInvestigationCompleted State = "INVESTIGATION_COMPLETED"
	StateChargeSheetPrepared    State = "CHARGE_SHEET_PREPARED"
	StateSubmittedToCourt       State = "SUBMITTED_TO_COURT"
	StateCourtAccepted          State = "COURT_ACCEPTED"
	StateTrialOngoing           State = "TRIAL_ONGOING"
	StateJudgmentReserved       State = "JUDGMENT_RESERVED"
	StateDisposed               State = "DISPOSED"
	StateReopened               State = "REOPENED"
	StateArchived               State = "ARCHIVED"
)

var validStates = map[State]bool{
	StateFIRRegistered:          true,
	StateUnderInvestigation:     true,
	StateInvestigationCompleted: true,
	StateChargeSheetPrepared:    true,
	StateSubmittedToCourt:       true,
	StateCourtAccepted:          true,
	StateTrialOngoing:           true,
	StateJudgmentReserved:       true,
	StateDisposed:               true,
	StateReopened:               true,
	StateArchived:               true,
}

var terminalStates = map[State]bool{
	StateArchived: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid case state
func (s State) IsValid() bool {
	return validStates[s]
}
