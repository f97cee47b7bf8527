package service

import (
	"context"
	"errors"
	"io"

	"github.com/polyhx/event-api/apperr"
	"github.com/polyhx/event-api/entity"
	"github.com/polyhx/event-api/identity"
	"github.com/polyhx/event-api/storage"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Upload carries an incoming resume file.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// ProfileUpdate holds the optional profile fields an attendee may change.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Email                  *string
	PhoneNumber            *string
	School                 *string
	Github                 *string
	Linkedin               *string
	TShirt                 *string
	AcceptSMSNotifications *bool
}

func (u *ProfileUpdate) fields() bson.M {
	fields := bson.M{}
	if u.Email != nil {
		fields["email"] = *u.Email
	}
	if u.PhoneNumber != nil {
		fields["phoneNumber"] = *u.PhoneNumber
	}
	if u.School != nil {
		fields["school"] = *u.School
	}
	if u.Github != nil {
		fields["github"] = *u.Github
	}
	if u.Linkedin != nil {
		fields["linkedin"] = *u.Linkedin
	}
	if u.TShirt != nil {
		fields["tshirt"] = *u.TShirt
	}
	if u.AcceptSMSNotifications != nil {
		fields["acceptSMSNotifications"] = *u.AcceptSMSNotifications
	}
	return fields
}

type AttendeeService struct {
	attendeeRepository AttendeeRepository
	identityResolver   identity.Resolver
	storage            storage.Storage
	search             SearchStrategy
}

func NewAttendeeService(attendeeRepository AttendeeRepository, identityResolver identity.Resolver, store storage.Storage, search SearchStrategy) *AttendeeService {
	return &AttendeeService{
		attendeeRepository: attendeeRepository,
		identityResolver:   identityResolver,
		storage:            store,
		search:             search,
	}
}

// Create registers a new attendee. The userId uniqueness rule is enforced by
// the insert itself, so concurrent creates for the same user cannot both
// succeed.
func (s *AttendeeService) Create(ctx context.Context, attendee entity.Attendee, file *Upload) (*entity.Attendee, error) {
	if file != nil {
		key, err := s.storage.Upload(ctx, file.Filename, file.ContentType, file.Content)
		if err != nil {
			return nil, err
		}
		attendee.CV = key
	}

	created, inserted, err := s.attendeeRepository.InsertOne(ctx, attendee)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, apperr.ErrAttendeeExists
	}

	return created, nil
}

func (s *AttendeeService) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Attendee, error) {
	attendee, err := s.attendeeRepository.FindOneByID(ctx, ID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrAttendeeNotFound)
	}
	return attendee, nil
}

func (s *AttendeeService) FindOneByUserID(ctx context.Context, userID string) (*entity.Attendee, error) {
	attendee, err := s.attendeeRepository.FindOneByUserID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrAttendeeNotFound)
	}
	return attendee, nil
}

func (s *AttendeeService) FindOneByPublicID(ctx context.Context, publicID string) (*entity.Attendee, error) {
	attendee, err := s.attendeeRepository.FindOneByPublicID(ctx, publicID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrAttendeeNotFound)
	}
	return attendee, nil
}

// UpdateProfile applies the partial update for the attendee identified by
// userID, replacing the stored resume when a new file comes in.
func (s *AttendeeService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate, file *Upload) (*entity.Attendee, error) {
	attendee, err := s.attendeeRepository.FindOneByUserID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrAttendeeNotFound)
	}

	fields := update.fields()

	if file != nil {
		if attendee.CV != "" {
			if err := s.storage.Delete(ctx, attendee.CV); err != nil {
				log.Warn().Err(err).Str("key", attendee.CV).Msg("failed to delete previous resume")
			}
		}
		key, err := s.storage.Upload(ctx, file.Filename, file.ContentType, file.Content)
		if err != nil {
			return nil, err
		}
		fields["cv"] = key
	}

	if len(fields) > 0 {
		err = s.attendeeRepository.UpdateProfileByUserID(ctx, userID, fields)
		if err != nil {
			return nil, err
		}
	}

	return s.attendeeRepository.FindOneByUserID(ctx, userID)
}

func (s *AttendeeService) SetPublicID(ctx context.Context, attendeeID primitive.ObjectID, publicID string) error {
	err := s.attendeeRepository.SetPublicID(ctx, attendeeID, publicID)
	if err != nil {
		return mapNotFound(err, apperr.ErrAttendeeNotFound)
	}
	return nil
}

func (s *AttendeeService) GetCVDownloadURL(ctx context.Context, userID string) (string, error) {
	attendee, err := s.attendeeRepository.FindOneByUserID(ctx, userID)
	if err != nil {
		return "", mapNotFound(err, apperr.ErrAttendeeNotFound)
	}
	if attendee.CV == "" {
		return "", apperr.New(apperr.KindInvalidOperation, "NO_CV", "attendee has no resume on file")
	}

	return s.storage.GetDownloadURL(ctx, attendee.CV)
}

// AddToken registers a device token for push delivery. The push itself is
// conditional, so a concurrent duplicate add cannot slip through between the
// existence check and the write.
func (s *AttendeeService) AddToken(ctx context.Context, userID, token string) error {
	attendee, err := s.attendeeRepository.FindOneByUserID(ctx, userID)
	if err != nil {
		return mapNotFound(err, apperr.ErrAttendeeNotFound)
	}
	if attendee.HasToken(token) {
		return apperr.ErrTokenExists
	}

	pushed, err := s.attendeeRepository.PushToken(ctx, userID, token)
	if err != nil {
		return err
	}
	if !pushed {
		return apperr.ErrTokenExists
	}
	return nil
}

func (s *AttendeeService) RemoveToken(ctx context.Context, userID, token string) error {
	_, err := s.attendeeRepository.FindOneByUserID(ctx, userID)
	if err != nil {
		return mapNotFound(err, apperr.ErrAttendeeNotFound)
	}

	pulled, err := s.attendeeRepository.PullToken(ctx, userID, token)
	if err != nil {
		return err
	}
	if !pulled {
		return apperr.ErrTokenNotFound
	}
	return nil
}

// Search runs the configured search strategy over the given attendee id set.
func (s *AttendeeService) Search(ctx context.Context, IDs []primitive.ObjectID, query SearchQuery) (*SearchResult, error) {
	result, err := s.search.Search(ctx, IDs, query)
	if err != nil {
		return nil, err
	}

	if len(result.Attendees) > 0 {
		s.EnrichFromDirectory(ctx, result.Attendees)
	}

	return result, nil
}

// EnrichFromDirectory fills directory profile fields onto the attendees.
// Users the directory does not know are blanked, never fatal.
func (s *AttendeeService) EnrichFromDirectory(ctx context.Context, attendees []*entity.Attendee) {
	userIDs := make([]string, 0, len(attendees))
	for _, a := range attendees {
		userIDs = append(userIDs, a.UserID)
	}

	users, err := s.identityResolver.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		log.Warn().Err(err).Msg("identity directory lookup failed, leaving profiles blank")
		return
	}

	byID := identity.Index(users)
	for _, a := range attendees {
		if u, ok := byID[a.UserID]; ok {
			a.FirstName = u.FirstName
			a.LastName = u.LastName
			a.Email = u.Username
			a.BirthDate = u.BirthDate
		} else {
			a.FirstName = ""
			a.LastName = ""
			a.BirthDate = ""
		}
	}
}

// mapNotFound converts the driver's no-document error into the given
// sentinel, passing everything else through.
func mapNotFound(err error, sentinel *apperr.Error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return sentinel
	}
	return err
}
