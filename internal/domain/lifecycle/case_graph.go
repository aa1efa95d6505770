package lifecycle

// NewCaseGraph builds the canonical case lifecycle graph.
//
// The main chain runs FIR_REGISTERED → ... → DISPOSED → ARCHIVED. Any
// non-terminal state may be reopened by judicial order, which re-enters
// UNDER_INVESTIGATION. ARCHIVED is reachable only from DISPOSED,
// JUDGMENT_RESERVED, TRIAL_ONGOING and COURT_ACCEPTED.
func NewCaseGraph() *Graph {
	b := NewGraphBuilder()

	policeSide := Roles(RolePolice, RoleSHO)
	judgeOnly := Roles(RoleJudge)
	courtSide := Roles(RoleCourtClerk, RoleJudge)

	b.From(StateFIRRegistered).
		Permit(StateUnderInvestigation, Roles(RoleSHO), StationScoped()).
		Permit(StateReopened, judgeOnly)

	b.From(StateUnderInvestigation).
		Permit(StateInvestigationCompleted, policeSide, StationScoped(), RequiresAssignment()).
		Permit(StateReopened, judgeOnly)

	b.From(StateInvestigationCompleted).
		Permit(StateChargeSheetPrepared, policeSide, StationScoped()).
		Permit(StateReopened, judgeOnly)

	b.From(StateChargeSheetPrepared).
		Permit(StateSubmittedToCourt, policeSide, StationScoped()).
		Permit(StateReopened, judgeOnly)

	b.From(StateSubmittedToCourt).
		Permit(StateCourtAccepted, courtSide, CourtScoped()).
		Permit(StateReopened, judgeOnly)

	b.From(StateCourtAccepted).
		Permit(StateTrialOngoing, judgeOnly, CourtScoped()).
		Permit(StateArchived, judgeOnly, CourtScoped()).
		Permit(StateReopened, judgeOnly, CourtScoped())

	b.From(StateTrialOngoing).
		Permit(StateJudgmentReserved, judgeOnly, CourtScoped()).
		Permit(StateArchived, judgeOnly, CourtScoped()).
		Permit(StateReopened, judgeOnly, CourtScoped())

	b.From(StateJudgmentReserved).
		Permit(StateDisposed, judgeOnly, CourtScoped()).
		Permit(StateArchived, judgeOnly, CourtScoped()).
		Permit(StateReopened, judgeOnly, CourtScoped())

	b.From(StateDisposed).
		Permit(StateArchived, judgeOnly, CourtScoped()).
		Permit(StateReopened, judgeOnly, CourtScoped())

	b.From(StateReopened).
		Permit(StateUnderInvestigation, policeSide, StationScoped())

	// ARCHIVED is terminal - no outgoing edges

	return b.Build()
}
