package service

import (
	"context"

	"github.com/polyhx/event-api/apperr"
	"github.com/polyhx/event-api/entity"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventService struct {
	eventRepository    EventRepository
	attendeeRepository AttendeeRepository
	activityRepository ActivityRepository
	attendeeService    *AttendeeService
}

func NewEventService(eventRepository EventRepository, attendeeRepository AttendeeRepository, activityRepository ActivityRepository, attendeeService *AttendeeService) *EventService {
	return &EventService{
		eventRepository:    eventRepository,
		attendeeRepository: attendeeRepository,
		activityRepository: activityRepository,
		attendeeService:    attendeeService,
	}
}

func (s *EventService) FindAll(ctx context.Context) ([]*entity.Event, error) {
	return s.eventRepository.FindAll(ctx)
}

func (s *EventService) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Event, error) {
	event, err := s.eventRepository.FindOneByID(ctx, ID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrEventNotFound)
	}
	return event, nil
}

func (s *EventService) UpdateOne(ctx context.Context, event entity.Event) (*entity.Event, error) {
	return s.eventRepository.UpdateOne(ctx, event)
}

// AddAttendee appends a roster entry for the attendee, resolving a raw user
// id first. The push is guarded, so a concurrent duplicate add loses the
// race instead of producing a second entry.
func (s *EventService) AddAttendee(ctx context.Context, eventID primitive.ObjectID, userID, role string) error {
	attendee, err := s.attendeeRepository.FindOneByUserID(ctx, userID)
	if err != nil {
		return mapNotFound(err, apperr.ErrUserNotAttendee)
	}

	return s.AddAttendeeByID(ctx, eventID, attendee.ID, role)
}

func (s *EventService) AddAttendeeByID(ctx context.Context, eventID, attendeeID primitive.ObjectID, role string) error {
	exists, err := s.eventRepository.Exists(ctx, eventID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.ErrEventNotFound
	}

	registered, err := s.eventRepository.HasRosterEntry(ctx, eventID, attendeeID)
	if err != nil {
		return err
	}
	if registered {
		return apperr.ErrAlreadyRegistered
	}

	pushed, err := s.eventRepository.PushRosterEntry(ctx, eventID, attendeeID, role)
	if err != nil {
		return err
	}
	if !pushed {
		// Lost the race against a concurrent add for the same pair.
		return apperr.ErrAlreadyRegistered
	}

	return nil
}

func (s *EventService) HasAttendee(ctx context.Context, eventID, attendeeID primitive.ObjectID) (bool, error) {
	return s.eventRepository.HasRosterEntry(ctx, eventID, attendeeID)
}

func (s *EventService) HasAttendeeForUser(ctx context.Context, eventID primitive.ObjectID, userID string) (bool, error) {
	attendee, err := s.attendeeRepository.FindOneByUserID(ctx, userID)
	if err != nil {
		return false, mapNotFound(err, apperr.ErrUserNotAttendee)
	}

	return s.eventRepository.HasRosterEntry(ctx, eventID, attendee.ID)
}

// ConfirmAttendee flips the roster confirmation flag and then forwards the
// profile update. The two writes are deliberately independent: a crash in
// between leaves a confirmed roster entry and an unchanged profile, and the
// profile update is safe to retry on its own.
func (s *EventService) ConfirmAttendee(ctx context.Context, eventID primitive.ObjectID, email string, update ProfileUpdate, file *Upload) error {
	attendee, err := s.attendeeRepository.FindOneByEmail(ctx, email)
	if err != nil {
		return mapNotFound(err, apperr.ErrUserNotAttendee)
	}

	flipped, err := s.eventRepository.SetRegistered(ctx, eventID, attendee.ID)
	if err != nil {
		return err
	}
	if !flipped {
		return apperr.ErrRosterEntryNotFound
	}

	_, err = s.attendeeService.UpdateProfile(ctx, attendee.UserID, update, file)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("roster confirmed but profile update failed, retry the profile update")
		return err
	}

	return nil
}

// ScanAttendee records a directed scan edge from scanner to scanned. Edges
// accumulate and are never removed.
func (s *EventService) ScanAttendee(ctx context.Context, eventID, scannerID, scannedID primitive.ObjectID) error {
	if scannerID == scannedID {
		return apperr.ErrSelfScan
	}

	event, err := s.eventRepository.FindOneByID(ctx, eventID)
	if err != nil {
		return mapNotFound(err, apperr.ErrEventNotFound)
	}

	scanner := event.RosterEntry(scannerID)
	if scanner == nil {
		return apperr.ErrRosterEntryNotFound
	}
	if event.RosterEntry(scannedID) == nil {
		return apperr.ErrRosterEntryNotFound
	}
	if scanner.HasScanned(scannedID) {
		return apperr.ErrAlreadyScanned
	}

	pushed, err := s.eventRepository.PushScanned(ctx, eventID, scannerID, scannedID)
	if err != nil {
		return err
	}
	if !pushed {
		return apperr.ErrAlreadyScanned
	}

	return nil
}

// AttendeeStatus is the read-time join used by team views: derived from the
// roster on every call, never cached.
func (s *EventService) AttendeeStatus(ctx context.Context, eventID, attendeeID primitive.ObjectID) (string, error) {
	event, err := s.eventRepository.FindOneByID(ctx, eventID)
	if err != nil {
		return "", mapNotFound(err, apperr.ErrEventNotFound)
	}

	return event.AttendeeStatus(attendeeID), nil
}

func (s *EventService) CreateActivity(ctx context.Context, eventID primitive.ObjectID, activity entity.Activity) (*entity.Activity, error) {
	exists, err := s.eventRepository.Exists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.ErrEventNotFound
	}

	created, err := s.activityRepository.InsertOne(ctx, activity)
	if err != nil {
		return nil, err
	}

	err = s.eventRepository.PushActivityID(ctx, eventID, created.ID)
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *EventService) GetActivities(ctx context.Context, eventID primitive.ObjectID) ([]*entity.Activity, error) {
	event, err := s.eventRepository.FindOneByID(ctx, eventID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrEventNotFound)
	}

	if len(event.ActivityIDs) == 0 {
		return []*entity.Activity{}, nil
	}

	return s.activityRepository.FindManyByIDs(ctx, event.ActivityIDs)
}

func (s *EventService) AddSponsor(ctx context.Context, eventID primitive.ObjectID, sponsor entity.EventSponsor) error {
	err := s.eventRepository.PushSponsor(ctx, eventID, sponsor)
	if err != nil {
		return mapNotFound(err, apperr.ErrEventNotFound)
	}
	return nil
}

// GetSponsors groups the event's sponsors by tier.
func (s *EventService) GetSponsors(ctx context.Context, eventID primitive.ObjectID) (map[string][]entity.EventSponsor, error) {
	event, err := s.eventRepository.FindOneByID(ctx, eventID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrEventNotFound)
	}

	byTier := make(map[string][]entity.EventSponsor)
	for _, sponsor := range event.Sponsors {
		byTier[sponsor.Tier] = append(byTier[sponsor.Tier], sponsor)
	}

	return byTier, nil
}
