package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/polyhx/event-api/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TeamController struct {
	TeamService *service.TeamService
}

func NewTeamController(teamService *service.TeamService) *TeamController {
	return &TeamController{
		TeamService: teamService,
	}
}

type createOrJoinTeamRequest struct {
	Name  string `json:"name" binding:"required"`
	Event string `json:"event" binding:"required"`
}

func (h *TeamController) CreateOrJoin(ctx *gin.Context) {
	userID := ctx.GetHeader(userIDHeader)

	var req createOrJoinTeamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventID, err := primitive.ObjectIDFromHex(req.Event)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.TeamService.CreateOrJoin(ctx.Request.Context(), eventID, req.Name, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"team": team})
}

func (h *TeamController) GetAll(ctx *gin.Context) {
	teams, err := h.TeamService.FindAll(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"teams": teams})
}

// GetInfo returns the caller's team for the event given in the query string.
func (h *TeamController) GetInfo(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Query("event"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.TeamService.GetByUserAndEvent(ctx.Request.Context(), eventID, ctx.GetHeader(userIDHeader))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"team": team})
}

func (h *TeamController) GetByUserAndEvent(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.TeamService.GetByUserAndEvent(ctx.Request.Context(), eventID, ctx.Param("userId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"team": team})
}

func (h *TeamController) Get(ctx *gin.Context) {
	teamID, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.TeamService.Get(ctx.Request.Context(), teamID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"team": team})
}

func (h *TeamController) Leave(ctx *gin.Context) {
	teamID, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.TeamService.LeaveByUser(ctx.Request.Context(), teamID, ctx.GetHeader(userIDHeader))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}
