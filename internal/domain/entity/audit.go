package entity

import "time"

// Audit action codes recorded alongside case mutations
const (
	AuditCaseCreated            = "CASE_CREATED"
	AuditCaseAssigned           = "CASE_ASSIGNED"
	AuditCaseUnassigned         = "CASE_UNASSIGNED"
	AuditInvestigationStarted   = "INVESTIGATION_STARTED"
	AuditInvestigationCompleted = "INVESTIGATION_COMPLETED"
	AuditChargeSheetPrepared    = "CHARGE_SHEET_PREPARED"
	AuditCaseSubmittedToCourt   = "CASE_SUBMITTED_TO_COURT"
	AuditCaseAcceptedByCourt    = "CASE_ACCEPTED_BY_COURT"
	AuditTrialStarted           = "TRIAL_STARTED"
	AuditJudgmentReserved       = "JUDGMENT_RESERVED"
	AuditCaseDisposed           = "CASE_DISPOSED"
	AuditCaseReopened           = "CASE_REOPENED"
	AuditCaseClosedByJudge      = "CASE_CLOSED_BY_JUDGE"
	AuditClosureReportGenerated = "CLOSURE_REPORT_GENERATED"
)

// AuditEntry is one append-only audit-log record
type AuditEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	CreatedAt time.Time `json:"created_at"`
}
