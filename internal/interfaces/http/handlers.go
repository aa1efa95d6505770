package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/engine"
	"github.com/kalp-cg/nyayasankalan/internal/application/service"
	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
	"github.com/kalp-cg/nyayasankalan/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine            engine.Engine
	caseService       service.CaseService
	assignmentService service.AssignmentService
	submissionService service.SubmissionService
	logger            *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	eng engine.Engine,
	caseService service.CaseService,
	assignmentService service.AssignmentService,
	submissionService service.SubmissionService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		engine:            eng,
		caseService:       caseService,
		assignmentService: assignmentService,
		submissionService: submissionService,
		logger:            logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`

	// CurrentState and LegalNextStates guide the client after an illegal
	// transition attempt
	CurrentState    string   `json:"current_state,omitempty"`
	LegalNextStates []string `json:"legal_next_states,omitempty"`
}

// respondError maps engine failure kinds to HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	resp := Response{Success: false, Error: err.Error()}

	var te *lifecycle.TransitionError
	if errors.As(err, &te) {
		resp.CurrentState = te.Current.String()
		for _, s := range te.Legal {
			resp.LegalNextStates = append(resp.LegalNextStates, s.String())
		}
	}

	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		c.JSON(http.StatusNotFound, resp)
	case errors.Is(err, lifecycle.ErrForbidden):
		c.JSON(http.StatusForbidden, resp)
	case errors.Is(err, lifecycle.ErrInvalidState):
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		c.JSON(http.StatusConflict, resp)
	case errors.Is(err, lifecycle.ErrConflict):
		c.JSON(http.StatusConflict, resp)
	case errors.Is(err, lifecycle.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, resp)
	default:
		h.logger.Error("Unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "case-lifecycle",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// RegisterCaseRequest is the payload of POST /api/v1/cases
type RegisterCaseRequest struct {
	FIRNumber       string    `json:"fir_number" binding:"required"`
	IncidentDate    time.Time `json:"incident_date"`
	SectionsApplied string    `json:"sections_applied"`
	Description     string    `json:"description"`
}

// RegisterCase handles POST /api/v1/cases
func (h *Handlers) RegisterCase(c *gin.Context) {
	var req RegisterCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	kase, err := h.caseService.RegisterCase(c.Request.Context(), service.FIRIntake{
		FIRNumber:       req.FIRNumber,
		IncidentDate:    req.IncidentDate,
		SectionsApplied: req.SectionsApplied,
		Description:     req.Description,
	}, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: kase})
}

// GetCase handles GET /api/v1/cases/:caseId
func (h *Handlers) GetCase(c *gin.Context) {
	kase, err := h.caseService.GetCase(c.Request.Context(), c.Param("caseId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	state, err := h.caseService.GetState(c.Request.Context(), kase.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"case":  kase,
		"state": state,
	}})
}

// ListCases handles GET /api/v1/cases
func (h *Handlers) ListCases(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	cases, err := h.caseService.ListCases(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: cases})
}

// TransitionRequest is the payload of POST /api/v1/cases/:caseId/transition
type TransitionRequest struct {
	TargetState string `json:"target_state" binding:"required"`
	Reason      string `json:"reason"`
}

// Transition handles POST /api/v1/cases/:caseId/transition
func (h *Handlers) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	if err := utils.ValidateReason(req.Reason); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	result, err := h.engine.RequestTransition(
		c.Request.Context(),
		c.Param("caseId"),
		lifecycle.State(req.TargetState),
		actorFrom(c),
		engine.TransitionContext{Reason: utils.SanitizeString(req.Reason)},
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// CanTransition handles GET /api/v1/cases/:caseId/can-transition?target=STATE
func (h *Handlers) CanTransition(c *gin.Context) {
	target := c.Query("target")
	if target == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "target query parameter is required"})
		return
	}

	decision, err := h.engine.CanTransition(
		c.Request.Context(),
		c.Param("caseId"),
		lifecycle.State(target),
		actorFrom(c),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: decision})
}

// NextStates handles GET /api/v1/cases/:caseId/next-states
func (h *Handlers) NextStates(c *gin.Context) {
	targets, err := h.engine.PermittedTargets(c.Request.Context(), c.Param("caseId"), actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	states := make([]string, 0, len(targets))
	for _, s := range targets {
		states = append(states, s.String())
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"next_states": states}})
}

// History handles GET /api/v1/cases/:caseId/history
func (h *Handlers) History(c *gin.Context) {
	history, err := h.caseService.GetHistory(c.Request.Context(), c.Param("caseId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: history})
}

// AssignRequest is the payload of POST /api/v1/cases/:caseId/assign
type AssignRequest struct {
	OfficerID string `json:"officer_id" binding:"required"`
}

// Assign handles POST /api/v1/cases/:caseId/assign
func (h *Handlers) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	assignment, err := h.assignmentService.Assign(c.Request.Context(), c.Param("caseId"), req.OfficerID, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: assignment})
}

// SubmitRequest is the payload of POST /api/v1/cases/:caseId/submit
type SubmitRequest struct {
	CourtID string `json:"court_id" binding:"required"`
}

// Submit handles POST /api/v1/cases/:caseId/submit
func (h *Handlers) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	submission, err := h.submissionService.SubmitToCourt(c.Request.Context(), c.Param("caseId"), req.CourtID, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: submission})
}

// CloseRequest is the payload of POST /api/v1/cases/:caseId/close
type CloseRequest struct {
	Reason string `json:"reason"`
}

// Close handles POST /api/v1/cases/:caseId/close - judicial closure: a
// transition to ARCHIVED with closure-report generation
func (h *Handlers) Close(c *gin.Context) {
	var req CloseRequest
	_ = c.ShouldBindJSON(&req)
	if err := utils.ValidateReason(req.Reason); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	result, err := h.engine.RequestTransition(
		c.Request.Context(),
		c.Param("caseId"),
		lifecycle.StateArchived,
		actorFrom(c),
		engine.TransitionContext{Reason: utils.SanitizeString(req.Reason)},
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := "Case closed successfully. Closure report generation pending."
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"case_id":          result.Snapshot.CaseID,
		"archived":         true,
		"report_requested": result.ReportRequested,
		"message":          message,
	}})
}
