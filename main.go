package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/polyhx/event-api/config"
	"github.com/polyhx/event-api/controller"
	"github.com/polyhx/event-api/identity"
	"github.com/polyhx/event-api/messaging"
	"github.com/polyhx/event-api/repository"
	"github.com/polyhx/event-api/service"
	"github.com/polyhx/event-api/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal().Err(err).Msg("connect to mongo")
	}
	defer mongoClient.Disconnect(context.Background())

	err = mongoClient.Ping(ctx, readpref.Primary())
	if err != nil {
		log.Fatal().Err(err).Msg("ping mongo")
	}

	err = repository.EnsureIndexes(ctx, mongoClient, cfg.Mongo.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	var store storage.Storage = storage.NopStorage{}
	if cfg.Storage.Credentials != "" {
		driveClient, err := drive.NewService(ctx, option.WithCredentialsJSON([]byte(cfg.Storage.Credentials)))
		if err != nil {
			log.Fatal().Err(err).Msg("create drive client")
		}
		store = storage.NewDriveStorage(driveClient, cfg.Storage.FolderID)
	}

	var sender messaging.Sender = messaging.NopSender{}
	if cfg.Messaging.GatewayURL != "" {
		sender = messaging.NewHTTPSender(cfg.Messaging.GatewayURL, cfg.Messaging.SenderID)
	}

	resolver := identity.NewHTTPResolver(cfg.Identity.URL)

	attendeeRepository := repository.NewAttendeeRepository(mongoClient, cfg.Mongo.Database)
	eventRepository := repository.NewEventRepository(mongoClient, cfg.Mongo.Database)
	teamRepository := repository.NewTeamRepository(mongoClient, cfg.Mongo.Database)
	notificationRepository := repository.NewNotificationRepository(mongoClient, cfg.Mongo.Database)
	activityRepository := repository.NewActivityRepository(mongoClient, cfg.Mongo.Database)

	var search service.SearchStrategy
	switch cfg.Search.Strategy {
	case "fuzzy":
		search = service.NewFuzzySearch(attendeeRepository)
	default:
		search = service.NewPlainSearch(attendeeRepository)
	}

	attendeeService := service.NewAttendeeService(attendeeRepository, resolver, store, search)
	eventService := service.NewEventService(eventRepository, attendeeRepository, activityRepository, attendeeService)
	teamService := service.NewTeamService(teamRepository, attendeeRepository, eventRepository, resolver, cfg.Team.MaxSize)
	notificationService := service.NewNotificationService(notificationRepository, attendeeRepository, eventRepository, sender)
	activityService := service.NewActivityService(activityRepository, attendeeRepository, resolver, service.NewRandomSource())

	attendeeController := controller.NewAttendeeController(attendeeService)
	eventController := controller.NewEventController(eventService, notificationService)
	teamController := controller.NewTeamController(teamService)
	activityController := controller.NewActivityController(activityService)

	r := gin.New()
	r.Use(gin.Recovery(), controller.RequestLogger())

	attendee := r.Group("/attendee")
	{
		attendee.POST("", attendeeController.Create)
		attendee.GET("/info", attendeeController.GetInfo)
		attendee.GET("/public/:id", attendeeController.GetByPublicID)
		attendee.GET("/user/:userId", attendeeController.GetByUserID)
		attendee.PUT("", attendeeController.Update)
		attendee.GET("/cv/url", attendeeController.GetCVURL)
		attendee.PUT("/token", attendeeController.AddToken)
		attendee.DELETE("/token/:token", attendeeController.RemoveToken)
		attendee.PUT("/:attendeeId/public-id/:publicId", attendeeController.SetPublicID)
		attendee.POST("/search", attendeeController.Search)
	}

	event := r.Group("/event")
	{
		event.GET("", eventController.GetAll)
		event.PUT("", eventController.Upsert)
		event.GET("/:eventId", eventController.Get)
		event.POST("/:eventId/attendee", eventController.AddAttendee)
		event.GET("/:eventId/attendee/:userId", eventController.HasAttendee)
		event.PUT("/:eventId/confirm", eventController.ConfirmAttendee)
		event.PUT("/:eventId/attendee/:attendeeId/scan", eventController.ScanAttendee)
		event.POST("/:eventId/activity", eventController.CreateActivity)
		event.GET("/:eventId/activity", eventController.GetActivities)
		event.PUT("/:eventId/sponsor", eventController.AddSponsor)
		event.GET("/:eventId/sponsor", eventController.GetSponsors)
		event.POST("/:eventId/notification", eventController.SendNotification)
		event.GET("/:eventId/notification", eventController.GetNotifications)
		event.POST("/:eventId/sms", eventController.SendSMS)
	}

	r.PUT("/notification/:notificationId/seen", eventController.MarkNotificationSeen)

	team := r.Group("/team")
	{
		team.POST("", teamController.CreateOrJoin)
		team.GET("", teamController.GetAll)
		team.GET("/info", teamController.GetInfo)
		team.GET("/event/:eventId/user/:userId", teamController.GetByUserAndEvent)
		team.GET("/:id", teamController.Get)
		team.DELETE("/:id/leave", teamController.Leave)
	}

	activity := r.Group("/activity")
	{
		activity.POST("", activityController.Create)
		activity.GET("", activityController.GetAll)
		activity.GET("/:id", activityController.Get)
		activity.PUT("/:id/attendee/:attendeeId", activityController.AddAttendee)
		activity.GET("/:id/raffle", activityController.Raffle)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Info().Str("addr", srv.Addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
