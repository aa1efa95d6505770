package entity

import (
	"time"

	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
)

// Case is the aggregate root of the case lifecycle
type Case struct {
	ID               string    `json:"id"`
	FIRID            string    `json:"fir_id"`
	PoliceStationID  string    `json:"police_station_id"`
	IsArchived       bool      `json:"is_archived"`
	ClosureReportURL *string   `json:"closure_report_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CaseState is the single mutable current-state record of a case. It is
// created at case creation and mutated only by the lifecycle engine.
type CaseState struct {
	CaseID       string          `json:"case_id"`
	CurrentState lifecycle.State `json:"current_state"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StateTransition is one immutable entry of a case's state history
type StateTransition struct {
	ID           int64           `json:"id"`
	CaseID       string          `json:"case_id"`
	FromState    lifecycle.State `json:"from_state"`
	ToState      lifecycle.State `json:"to_state"`
	ChangedBy    string          `json:"changed_by"`
	ChangeReason string          `json:"change_reason,omitempty"`
	ChangedAt    time.Time       `json:"changed_at"`
}

// FIR is the First Information Report that originated the case. Immutable
// after intake.
type FIR struct {
	ID              string    `json:"id"`
	FIRNumber       string    `json:"fir_number"`
	PoliceStationID string    `json:"police_station_id"`
	IncidentDate    time.Time `json:"incident_date"`
	SectionsApplied string    `json:"sections_applied"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Assignment relates an officer to a case over an interval. At most one
// assignment per case has a nil UnassignedAt.
type Assignment struct {
	ID           int64      `json:"id"`
	CaseID       string     `json:"case_id"`
	OfficerID    string     `json:"officer_id"`
	AssignedBy   string     `json:"assigned_by"`
	AssignedAt   time.Time  `json:"assigned_at"`
	UnassignedAt *time.Time `json:"unassigned_at,omitempty"`
}

// IsOpen returns true if the assignment is the case's current assignment
func (a *Assignment) IsOpen() bool {
	return a.UnassignedAt == nil
}

// CourtSubmission records a case being formally handed from police to a
// specific court. Versions are monotonically increasing per case.
type CourtSubmission struct {
	ID                int64     `json:"id"`
	CaseID            string    `json:"case_id"`
	CourtID           string    `json:"court_id"`
	SubmittedBy       string    `json:"submitted_by"`
	SubmissionVersion int       `json:"submission_version"`
	SubmittedAt       time.Time `json:"submitted_at"`
}
