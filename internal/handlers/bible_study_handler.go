package handlers

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unionhub/unionhub-api/internal/domain/biblestudy"
	"github.com/unionhub/unionhub-api/internal/logger"
	"github.com/unionhub/unionhub-api/internal/response"
	"github.com/unionhub/unionhub-api/internal/services"
	"github.com/unionhub/unionhub-api/internal/validation"
)

// GroupAssigner is the part of services.BibleStudyService the handler needs
type GroupAssigner interface {
	AssignGroups(ctx context.Context, req services.AssignGroupsRequest) ([]services.Group, error)
	ListGroups(ctx context.Context, sessionID, locationID uuid.UUID) ([]services.Group, error)
}

// BibleStudyHandler serves the group assignment routes
type BibleStudyHandler struct {
	groups GroupAssigner
	log    *log.Logger
}

// NewBibleStudyHandler creates a handler over the group service
func NewBibleStudyHandler(groups GroupAssigner) *BibleStudyHandler {
	return &BibleStudyHandler{
		groups: groups,
		log:    logger.Handler("bible_study"),
	}
}

// AssignGroupsRequest is the optional body of an assignment call
type AssignGroupsRequest struct {
	GroupSize int    `json:"group_size"`
	Strategy  string `json:"strategy"`
}

// GroupsResponse lists the groups of one session and location
type GroupsResponse struct {
	SessionID  uuid.UUID        `json:"session_id"`
	LocationID uuid.UUID        `json:"location_id"`
	GroupCount int              `json:"group_count"`
	Members    int              `json:"member_count"`
	Groups     []services.Group `json:"groups"`
}

func newGroupsResponse(sessionID, locationID uuid.UUID, groups []services.Group) GroupsResponse {
	members := 0
	for _, g := range groups {
		members += len(g.Members)
	}
	if groups == nil {
		groups = []services.Group{}
	}
	return GroupsResponse{
		SessionID:  sessionID,
		LocationID: locationID,
		GroupCount: len(groups),
		Members:    members,
		Groups:     groups,
	}
}

func (h *BibleStudyHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	sessionID, ok := uuidParam(c, "session_id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	locationID, ok := uuidParam(c, "location_id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return sessionID, locationID, true
}

// AssignGroups handles POST /api/bible-study/sessions/:session_id/locations/:location_id/groups
func (h *BibleStudyHandler) AssignGroups(c *gin.Context) {
	sessionID, locationID, ok := h.scope(c)
	if !ok {
		return
	}

	var req AssignGroupsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, "Invalid request body: "+err.Error())
			return
		}
	}
	if req.GroupSize != 0 {
		if err := validation.ValidateGroupSize(req.GroupSize); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
	}

	groups, err := h.groups.AssignGroups(c.Request.Context(), services.AssignGroupsRequest{
		SessionID:  sessionID,
		LocationID: locationID,
		GroupSize:  req.GroupSize,
		Strategy:   req.Strategy,
	})
	if err != nil {
		if statusFor(c, err, map[error]func(*gin.Context, string){
			biblestudy.ErrInvalidConfiguration:  response.BadRequestError,
			biblestudy.ErrDuplicateRegistration: response.ConflictError,
		}) {
			return
		}
		h.log.Error("Failed to assign groups", "session_id", sessionID, "location_id", locationID, "error", err)
		response.InternalServerError(c, "Failed to assign groups")
		return
	}

	response.OK(c, "Groups assigned", newGroupsResponse(sessionID, locationID, groups))
}

// ListGroups handles GET /api/bible-study/sessions/:session_id/locations/:location_id/groups
func (h *BibleStudyHandler) ListGroups(c *gin.Context) {
	sessionID, locationID, ok := h.scope(c)
	if !ok {
		return
	}

	groups, err := h.groups.ListGroups(c.Request.Context(), sessionID, locationID)
	if err != nil {
		h.log.Error("Failed to list groups", "session_id", sessionID, "location_id", locationID, "error", err)
		response.InternalServerError(c, "Failed to list groups")
		return
	}

	response.OK(c, "Groups retrieved", newGroupsResponse(sessionID, locationID, groups))
}
