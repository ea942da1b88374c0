package handlers

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unionhub/unionhub-api/internal/domain/election"
	"github.com/unionhub/unionhub-api/internal/logger"
	"github.com/unionhub/unionhub-api/internal/response"
	"github.com/unionhub/unionhub-api/internal/services"
	"github.com/unionhub/unionhub-api/internal/storage/postgres"
)

// ElectionTallier is the part of services.ElectionService the handler needs
type ElectionTallier interface {
	Tally(ctx context.Context, electionID uuid.UUID) (*services.TallyReport, error)
	PublishResults(ctx context.Context, electionID uuid.UUID) (*election.Result, error)
	GetResults(ctx context.Context, electionID uuid.UUID) (*election.Result, error)
	Nominate(ctx context.Context, n *election.Nomination) error
}

// ElectionHandler serves nomination, tally and result routes
type ElectionHandler struct {
	elections ElectionTallier
	log       *log.Logger
}

// NewElectionHandler creates a handler over the election service
func NewElectionHandler(elections ElectionTallier) *ElectionHandler {
	return &ElectionHandler{
		elections: elections,
		log:       logger.Handler("election"),
	}
}

// NominateRequest is the body of POST /api/elections/:election_id/nominations
type NominateRequest struct {
	NomineeID   uuid.UUID `json:"nominee_id" binding:"required"`
	NominatorID uuid.UUID `json:"nominator_id" binding:"required"`
	Position    string    `json:"position" binding:"required,max=100"`
	Reason      string    `json:"reason" binding:"max=1000"`
}

var electionErrors = map[error]func(*gin.Context, string){
	postgres.ErrNotFound:          response.NotFoundError,
	election.ErrInvalidTransition: response.ConflictError,
	election.ErrNominationsClosed: response.ConflictError,
	election.ErrUnknownPosition:   response.BadRequestError,
	election.ErrInvalidNomination: response.BadRequestError,
}

func (h *ElectionHandler) fail(c *gin.Context, action string, electionID uuid.UUID, err error) {
	if statusFor(c, err, electionErrors) {
		return
	}
	h.log.Error("Failed to "+action, "election_id", electionID, "error", err)
	response.InternalServerError(c, "Failed to "+action)
}

// Tally handles GET /api/elections/:election_id/tally
func (h *ElectionHandler) Tally(c *gin.Context) {
	electionID, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}

	report, err := h.elections.Tally(c.Request.Context(), electionID)
	if err != nil {
		h.fail(c, "tally election", electionID, err)
		return
	}

	response.OK(c, "Tally computed", report)
}

// PublishResults handles POST /api/elections/:election_id/results
func (h *ElectionHandler) PublishResults(c *gin.Context) {
	electionID, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}

	result, err := h.elections.PublishResults(c.Request.Context(), electionID)
	if err != nil {
		h.fail(c, "publish results", electionID, err)
		return
	}

	response.Created(c, "Results published", result)
}

// GetResults handles GET /api/elections/:election_id/results
func (h *ElectionHandler) GetResults(c *gin.Context) {
	electionID, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}

	result, err := h.elections.GetResults(c.Request.Context(), electionID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFoundError(c, "Results have not been published")
			return
		}
		h.fail(c, "get results", electionID, err)
		return
	}

	response.OK(c, "Results retrieved", result)
}

// Nominate handles POST /api/elections/:election_id/nominations
func (h *ElectionHandler) Nominate(c *gin.Context) {
	electionID, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}

	var req NominateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request body: "+err.Error())
		return
	}

	n := &election.Nomination{
		ID:          uuid.New(),
		ElectionID:  electionID,
		NomineeID:   req.NomineeID,
		NominatorID: req.NominatorID,
		Position:    req.Position,
		Reason:      req.Reason,
	}
	if err := h.elections.Nominate(c.Request.Context(), n); err != nil {
		h.fail(c, "record nomination", electionID, err)
		return
	}

	response.Created(c, "Nomination recorded", n)
}
