package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"
	"github.com/polyhx/event-api/entity"
	"github.com/polyhx/event-api/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AttendeeController struct {
	AttendeeService *service.AttendeeService

	queryDecoder *schema.Decoder
}

func NewAttendeeController(attendeeService *service.AttendeeService) *AttendeeController {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &AttendeeController{
		AttendeeService: attendeeService,
		queryDecoder:    decoder,
	}
}

type createAttendeeRequest struct {
	Email                  string `json:"email" binding:"required"`
	PhoneNumber            string `json:"phoneNumber"`
	School                 string `json:"school"`
	Github                 string `json:"github"`
	Linkedin               string `json:"linkedin"`
	TShirt                 string `json:"tshirt"`
	AcceptSMSNotifications bool   `json:"acceptSMSNotifications"`
}

func (h *AttendeeController) Create(ctx *gin.Context) {
	userID := ctx.GetHeader(userIDHeader)
	if userID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing user id claim"})
		return
	}

	var req createAttendeeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attendee := entity.Attendee{
		UserID:                 userID,
		Email:                  req.Email,
		PhoneNumber:            req.PhoneNumber,
		School:                 req.School,
		Github:                 req.Github,
		Linkedin:               req.Linkedin,
		TShirt:                 req.TShirt,
		AcceptSMSNotifications: req.AcceptSMSNotifications,
	}

	created, err := h.AttendeeService.Create(ctx.Request.Context(), attendee, nil)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"attendee": created})
}

func (h *AttendeeController) GetInfo(ctx *gin.Context) {
	userID := ctx.GetHeader(userIDHeader)

	attendee, err := h.AttendeeService.FindOneByUserID(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"attendee": attendee})
}

func (h *AttendeeController) GetByPublicID(ctx *gin.Context) {
	attendee, err := h.AttendeeService.FindOneByPublicID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"attendee": attendee})
}

func (h *AttendeeController) GetByUserID(ctx *gin.Context) {
	attendee, err := h.AttendeeService.FindOneByUserID(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"attendee": attendee})
}

type updateAttendeeRequest struct {
	Email                  *string `json:"email"`
	PhoneNumber            *string `json:"phoneNumber"`
	School                 *string `json:"school"`
	Github                 *string `json:"github"`
	Linkedin               *string `json:"linkedin"`
	TShirt                 *string `json:"tshirt"`
	AcceptSMSNotifications *bool   `json:"acceptSMSNotifications"`
}

func (h *AttendeeController) Update(ctx *gin.Context) {
	userID := ctx.GetHeader(userIDHeader)

	var req updateAttendeeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := service.ProfileUpdate{
		Email:                  req.Email,
		PhoneNumber:            req.PhoneNumber,
		School:                 req.School,
		Github:                 req.Github,
		Linkedin:               req.Linkedin,
		TShirt:                 req.TShirt,
		AcceptSMSNotifications: req.AcceptSMSNotifications,
	}

	attendee, err := h.AttendeeService.UpdateProfile(ctx.Request.Context(), userID, update, nil)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"attendee": attendee})
}

func (h *AttendeeController) GetCVURL(ctx *gin.Context) {
	userID := ctx.GetHeader(userIDHeader)

	url, err := h.AttendeeService.GetCVDownloadURL(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"url": url})
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *AttendeeController) AddToken(ctx *gin.Context) {
	userID := ctx.GetHeader(userIDHeader)

	var req tokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.AttendeeService.AddToken(ctx.Request.Context(), userID, req.Token)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *AttendeeController) RemoveToken(ctx *gin.Context) {
	userID := ctx.GetHeader(userIDHeader)

	err := h.AttendeeService.RemoveToken(ctx.Request.Context(), userID, ctx.Param("token"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *AttendeeController) SetPublicID(ctx *gin.Context) {
	attendeeID, err := primitive.ObjectIDFromHex(ctx.Param("attendeeId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.AttendeeService.SetPublicID(ctx.Request.Context(), attendeeID, ctx.Param("publicId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

type searchAttendeesRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// Search pages through a posted id set, with term/school filters taken from
// the query string.
func (h *AttendeeController) Search(ctx *gin.Context) {
	var req searchAttendeesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.IDs))
	for _, hex := range req.IDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ids = append(ids, id)
	}

	var query service.SearchQuery
	if err := h.queryDecoder.Decode(&query, ctx.Request.URL.Query()); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.AttendeeService.Search(ctx.Request.Context(), ids, query)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}
