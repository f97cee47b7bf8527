package service

import (
	"context"
	"math/rand"

	"github.com/polyhx/event-api/apperr"
	"github.com/polyhx/event-api/entity"
	"github.com/polyhx/event-api/identity"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RandomSource supplies the raffle draw. Production uses math/rand; tests
// substitute a deterministic source.
type RandomSource interface {
	Intn(n int) int
}

type mathRand struct{}

func (mathRand) Intn(n int) int { return rand.Intn(n) }

// NewRandomSource returns the default uniform source.
func NewRandomSource() RandomSource { return mathRand{} }

// RaffleWinner pairs the drawn attendee with its directory profile.
type RaffleWinner struct {
	Attendee *entity.Attendee `json:"attendee"`
	User     *identity.User   `json:"user,omitempty"`
}

type ActivityService struct {
	activityRepository ActivityRepository
	attendeeRepository AttendeeRepository
	identityResolver   identity.Resolver
	random             RandomSource
}

func NewActivityService(activityRepository ActivityRepository, attendeeRepository AttendeeRepository, identityResolver identity.Resolver, random RandomSource) *ActivityService {
	return &ActivityService{
		activityRepository: activityRepository,
		attendeeRepository: attendeeRepository,
		identityResolver:   identityResolver,
		random:             random,
	}
}

func (s *ActivityService) Create(ctx context.Context, activity entity.Activity) (*entity.Activity, error) {
	return s.activityRepository.InsertOne(ctx, activity)
}

func (s *ActivityService) FindAll(ctx context.Context) ([]*entity.Activity, error) {
	return s.activityRepository.FindAll(ctx)
}

func (s *ActivityService) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Activity, error) {
	activity, err := s.activityRepository.FindOneByID(ctx, ID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrActivityNotFound)
	}
	return activity, nil
}

// AddAttendee adds the attendee to the activity's participant list.
func (s *ActivityService) AddAttendee(ctx context.Context, activityID, attendeeID primitive.ObjectID) (*entity.Activity, error) {
	activity, err := s.activityRepository.FindOneByID(ctx, activityID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrActivityNotFound)
	}

	_, err = s.attendeeRepository.FindOneByID(ctx, attendeeID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrAttendeeNotFound)
	}

	if activity.HasAttendee(attendeeID) {
		return nil, apperr.ErrAlreadyInActivity
	}

	pushed, err := s.activityRepository.PushAttendee(ctx, activityID, attendeeID)
	if err != nil {
		return nil, err
	}
	if !pushed {
		return nil, apperr.ErrAlreadyInActivity
	}

	return s.activityRepository.FindOneByID(ctx, activityID)
}

// Raffle draws one participant uniformly at random.
func (s *ActivityService) Raffle(ctx context.Context, activityID primitive.ObjectID) (*RaffleWinner, error) {
	activity, err := s.activityRepository.FindOneByID(ctx, activityID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrActivityNotFound)
	}

	winnerID, err := s.Draw(activity.AttendeeIDs)
	if err != nil {
		return nil, err
	}

	attendee, err := s.attendeeRepository.FindOneByID(ctx, winnerID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrAttendeeNotFound)
	}

	winner := &RaffleWinner{Attendee: attendee}

	users, err := s.identityResolver.GetUsersByIDs(ctx, []string{attendee.UserID})
	if err == nil && len(users) > 0 {
		winner.User = users[0]
	}

	return winner, nil
}

// Draw picks one candidate uniformly. Exposed separately so the selection
// rule can be tested without a store.
func (s *ActivityService) Draw(candidates []primitive.ObjectID) (primitive.ObjectID, error) {
	if len(candidates) == 0 {
		return primitive.NilObjectID, apperr.ErrNoCandidates
	}
	return candidates[s.random.Intn(len(candidates))], nil
}
