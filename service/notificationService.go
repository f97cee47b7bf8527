package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/polyhx/event-api/apperr"
	"github.com/polyhx/event-api/entity"
	"github.com/polyhx/event-api/messaging"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

const fanOutConcurrency = 8

// SendNotification is the payload of a broadcast to an event's roster.
type SendNotification struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

type NotificationService struct {
	notificationRepository NotificationRepository
	attendeeRepository     AttendeeRepository
	eventRepository        EventRepository
	sender                 messaging.Sender
}

func NewNotificationService(notificationRepository NotificationRepository, attendeeRepository AttendeeRepository, eventRepository EventRepository, sender messaging.Sender) *NotificationService {
	return &NotificationService{
		notificationRepository: notificationRepository,
		attendeeRepository:     attendeeRepository,
		eventRepository:        eventRepository,
		sender:                 sender,
	}
}

// SendToEvent creates one notification record addressed to the event's
// current roster and fans an inbox entry out to every recipient. The record
// insert happens before any inbox write; fan-out is parallel per recipient
// and idempotent, so a partial failure is fixed by sending the same fan-out
// again.
func (s *NotificationService) SendToEvent(ctx context.Context, eventID primitive.ObjectID, message SendNotification) (*entity.Notification, error) {
	event, err := s.eventRepository.FindOneByID(ctx, eventID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrEventNotFound)
	}

	recipients := make([]primitive.ObjectID, 0, len(event.Attendees))
	for _, entry := range event.Attendees {
		recipients = append(recipients, entry.AttendeeID)
	}

	notification := entity.Notification{
		EventID:     eventID,
		AttendeeIDs: recipients,
		Title:       message.Title,
		Body:        message.Body,
		Data: entity.NotificationData{
			Type:        entity.NotificationDataTypeEvent,
			EventID:     &eventID,
			DynamicLink: fmt.Sprintf("event/%s", eventID.Hex()),
		},
	}
	if err := notification.Data.Validate(); err != nil {
		return nil, err
	}

	created, err := s.notificationRepository.InsertOne(ctx, notification)
	if err != nil {
		return nil, err
	}

	err = s.FanOut(ctx, created.ID, recipients)
	if err != nil {
		return created, err
	}

	s.pushToDevices(ctx, created, recipients)

	return created, nil
}

// FanOut appends the inbox entry to each recipient, a few at a time. Each
// append retries on its own; an already delivered entry is a no-op.
func (s *NotificationService) FanOut(ctx context.Context, notificationID primitive.ObjectID, recipients []primitive.ObjectID) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutConcurrency)

	for _, attendeeID := range recipients {
		g.Go(func() error {
			retrier := retry.NewRetrier(3, 50*time.Millisecond, time.Second)
			return retrier.RunContext(ctx, func(ctx context.Context) error {
				return s.attendeeRepository.PushNotification(ctx, attendeeID, notificationID)
			})
		})
	}

	return g.Wait()
}

// pushToDevices forwards the notification to the recipients' device tokens,
// fire and forget.
func (s *NotificationService) pushToDevices(ctx context.Context, notification *entity.Notification, recipients []primitive.ObjectID) {
	attendees, err := s.attendeeRepository.FindManyByIDs(ctx, recipients)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load recipients for push delivery")
		return
	}

	var tokens []string
	for _, a := range attendees {
		tokens = append(tokens, a.MessagingTokens...)
	}
	if len(tokens) == 0 {
		return
	}

	err = s.sender.SendPush(ctx, tokens, messaging.PushMessage{
		Title: notification.Title,
		Body:  notification.Body,
		Data: map[string]string{
			"type":        notification.Data.Type,
			"dynamicLink": notification.Data.DynamicLink,
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("notification", notification.ID.Hex()).Msg("push delivery failed")
	}
}

// ListForUser returns the user's inbox entries belonging to notifications of
// the given event, optionally filtered by seen state.
func (s *NotificationService) ListForUser(ctx context.Context, eventID primitive.ObjectID, userID string, seen *bool) ([]entity.AttendeeNotification, error) {
	notifications, err := s.notificationRepository.FindManyByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(notifications) == 0 {
		return []entity.AttendeeNotification{}, nil
	}

	attendee, err := s.attendeeRepository.FindOneByUserIDWithInbox(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// An unknown user simply has an empty inbox.
		return []entity.AttendeeNotification{}, nil
	}
	if err != nil {
		return nil, err
	}

	inEvent := make(map[primitive.ObjectID]bool, len(notifications))
	for _, n := range notifications {
		inEvent[n.ID] = true
	}

	entries := make([]entity.AttendeeNotification, 0, len(attendee.Notifications))
	for _, entry := range attendee.Notifications {
		if !inEvent[entry.NotificationID] {
			continue
		}
		if seen != nil && entry.Seen != *seen {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// MarkSeen flips the seen flag on the one inbox entry referencing the
// notification.
func (s *NotificationService) MarkSeen(ctx context.Context, userID string, notificationID primitive.ObjectID, seen bool) error {
	matched, err := s.attendeeRepository.SetNotificationSeen(ctx, userID, notificationID, seen)
	if err != nil {
		return err
	}
	if matched {
		return nil
	}

	_, err = s.attendeeRepository.FindOneByUserID(ctx, userID)
	if err != nil {
		return mapNotFound(err, apperr.ErrAttendeeNotFound)
	}
	return apperr.ErrNotificationNotFound
}

// BroadcastSMS sends the text to every roster attendee that opted in and has
// a phone number. Nothing is persisted.
func (s *NotificationService) BroadcastSMS(ctx context.Context, eventID primitive.ObjectID, text string) error {
	event, err := s.eventRepository.FindOneByID(ctx, eventID)
	if err != nil {
		return mapNotFound(err, apperr.ErrEventNotFound)
	}

	ids := make([]primitive.ObjectID, 0, len(event.Attendees))
	for _, entry := range event.Attendees {
		ids = append(ids, entry.AttendeeID)
	}

	attendees, err := s.attendeeRepository.FindManyByIDs(ctx, ids)
	if err != nil {
		return err
	}

	var numbers []string
	for _, a := range attendees {
		if a.AcceptSMSNotifications && a.PhoneNumber != "" {
			numbers = append(numbers, a.PhoneNumber)
		}
	}
	if len(numbers) == 0 {
		return nil
	}

	return s.sender.SendSMS(ctx, numbers, text)
}
