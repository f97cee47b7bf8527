package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/polyhx/event-api/entity"
	"github.com/polyhx/event-api/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityController struct {
	ActivityService *service.ActivityService
}

func NewActivityController(activityService *service.ActivityService) *ActivityController {
	return &ActivityController{
		ActivityService: activityService,
	}
}

func (h *ActivityController) Create(ctx *gin.Context) {
	var activity entity.Activity
	if err := ctx.ShouldBindJSON(&activity); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.ActivityService.Create(ctx.Request.Context(), activity)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"activity": created})
}

func (h *ActivityController) GetAll(ctx *gin.Context) {
	activities, err := h.ActivityService.FindAll(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"activities": activities})
}

func (h *ActivityController) Get(ctx *gin.Context) {
	activityID, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity, err := h.ActivityService.FindOneByID(ctx.Request.Context(), activityID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"activity": activity})
}

func (h *ActivityController) AddAttendee(ctx *gin.Context) {
	activityID, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attendeeID, err := primitive.ObjectIDFromHex(ctx.Param("attendeeId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity, err := h.ActivityService.AddAttendee(ctx.Request.Context(), activityID, attendeeID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"activity": activity})
}

func (h *ActivityController) Raffle(ctx *gin.Context) {
	activityID, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	winner, err := h.ActivityService.Raffle(ctx.Request.Context(), activityID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"winner": winner})
}
