package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/polyhx/event-api/entity"
	"github.com/polyhx/event-api/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventController struct {
	EventService        *service.EventService
	NotificationService *service.NotificationService
}

func NewEventController(eventService *service.EventService, notificationService *service.NotificationService) *EventController {
	return &EventController{
		EventService:        eventService,
		NotificationService: notificationService,
	}
}

func (h *EventController) GetAll(ctx *gin.Context) {
	events, err := h.EventService.FindAll(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *EventController) Get(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.EventService.FindOneByID(ctx.Request.Context(), eventID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"event": event})
}

func (h *EventController) Upsert(ctx *gin.Context) {
	var event entity.Event
	if err := ctx.ShouldBindJSON(&event); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.EventService.UpdateOne(ctx.Request.Context(), event)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"event": saved})
}

type addAttendeeRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

func (h *EventController) AddAttendee(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req addAttendeeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.EventService.AddAttendee(ctx.Request.Context(), eventID, req.UserID, req.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *EventController) HasAttendee(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	registered, err := h.EventService.HasAttendeeForUser(ctx.Request.Context(), eventID, ctx.Param("userId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"registered": registered})
}

type confirmAttendeeRequest struct {
	Email                  string  `json:"email" binding:"required"`
	PhoneNumber            *string `json:"phoneNumber"`
	School                 *string `json:"school"`
	Github                 *string `json:"github"`
	Linkedin               *string `json:"linkedin"`
	TShirt                 *string `json:"tshirt"`
	AcceptSMSNotifications *bool   `json:"acceptSMSNotifications"`
}

func (h *EventController) ConfirmAttendee(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req confirmAttendeeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := service.ProfileUpdate{
		PhoneNumber:            req.PhoneNumber,
		School:                 req.School,
		Github:                 req.Github,
		Linkedin:               req.Linkedin,
		TShirt:                 req.TShirt,
		AcceptSMSNotifications: req.AcceptSMSNotifications,
	}

	err = h.EventService.ConfirmAttendee(ctx.Request.Context(), eventID, req.Email, update, nil)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

type scanAttendeeRequest struct {
	ScannedAttendee string `json:"scannedAttendee" binding:"required"`
}

func (h *EventController) ScanAttendee(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scannerID, err := primitive.ObjectIDFromHex(ctx.Param("attendeeId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req scanAttendeeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scannedID, err := primitive.ObjectIDFromHex(req.ScannedAttendee)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.EventService.ScanAttendee(ctx.Request.Context(), eventID, scannerID, scannedID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *EventController) CreateActivity(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var activity entity.Activity
	if err := ctx.ShouldBindJSON(&activity); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.EventService.CreateActivity(ctx.Request.Context(), eventID, activity)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"activity": created})
}

func (h *EventController) GetActivities(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activities, err := h.EventService.GetActivities(ctx.Request.Context(), eventID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"activities": activities})
}

func (h *EventController) AddSponsor(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var sponsor entity.EventSponsor
	if err := ctx.ShouldBindJSON(&sponsor); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.EventService.AddSponsor(ctx.Request.Context(), eventID, sponsor)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *EventController) GetSponsors(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sponsors, err := h.EventService.GetSponsors(ctx.Request.Context(), eventID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"sponsors": sponsors})
}

func (h *EventController) SendNotification(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var message service.SendNotification
	if err := ctx.ShouldBindJSON(&message); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notification, err := h.NotificationService.SendToEvent(ctx.Request.Context(), eventID, message)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"notification": notification})
}

func (h *EventController) GetNotifications(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := ctx.GetHeader(userIDHeader)

	var seen *bool
	if raw, ok := ctx.GetQuery("seen"); ok {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		seen = &value
	}

	notifications, err := h.NotificationService.ListForUser(ctx.Request.Context(), eventID, userID, seen)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

type markSeenRequest struct {
	Seen *bool `json:"seen" binding:"required"`
}

func (h *EventController) MarkNotificationSeen(ctx *gin.Context) {
	notificationID, err := primitive.ObjectIDFromHex(ctx.Param("notificationId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req markSeenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.NotificationService.MarkSeen(ctx.Request.Context(), ctx.GetHeader(userIDHeader), notificationID, *req.Seen)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

type sendSMSRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *EventController) SendSMS(ctx *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(ctx.Param("eventId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req sendSMSRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.NotificationService.BroadcastSMS(ctx.Request.Context(), eventID, req.Text)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
