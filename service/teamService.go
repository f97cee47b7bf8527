package service

import (
	"context"
	"errors"

	"github.com/polyhx/event-api/apperr"
	"github.com/polyhx/event-api/entity"
	"github.com/polyhx/event-api/identity"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type TeamService struct {
	teamRepository     TeamRepository
	attendeeRepository AttendeeRepository
	eventRepository    EventRepository
	identityResolver   identity.Resolver
	maxSize            int
}

func NewTeamService(teamRepository TeamRepository, attendeeRepository AttendeeRepository, eventRepository EventRepository, identityResolver identity.Resolver, maxSize int) *TeamService {
	return &TeamService{
		teamRepository:     teamRepository,
		attendeeRepository: attendeeRepository,
		eventRepository:    eventRepository,
		identityResolver:   identityResolver,
		maxSize:            maxSize,
	}
}

// CreateOrJoin creates the team when it does not exist for the event yet,
// with the caller as sole member, or appends the caller to the existing one.
// The capacity and duplicate-member rules sit inside a single conditional
// update, so concurrent joins cannot overfill the team.
func (s *TeamService) CreateOrJoin(ctx context.Context, eventID primitive.ObjectID, name, userID string) (*entity.Team, error) {
	attendee, err := s.attendeeRepository.FindOneByUserID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrUserNotAttendee)
	}

	_, err = s.teamRepository.FindOneByEventAndAttendee(ctx, eventID, attendee.ID)
	if err == nil {
		return nil, apperr.ErrAlreadyOnTeam
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	team, err := s.teamRepository.FindOneByEventAndName(ctx, eventID, name)
	if errors.Is(err, mongo.ErrNoDocuments) {
		created, ok, err := s.teamRepository.CreateOne(ctx, eventID, name, attendee.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			return created, nil
		}

		// Someone created the team first; fall through to the join path.
		team, err = s.teamRepository.FindOneByEventAndName(ctx, eventID, name)
		if err != nil {
			return nil, mapNotFound(err, apperr.ErrTeamNotFound)
		}
	} else if err != nil {
		return nil, err
	}

	pushed, err := s.teamRepository.PushMember(ctx, team.ID, attendee.ID, s.maxSize)
	if err != nil {
		return nil, err
	}
	if !pushed {
		current, err := s.teamRepository.FindOneByID(ctx, team.ID)
		if err != nil {
			return nil, mapNotFound(err, apperr.ErrTeamNotFound)
		}
		if current.HasAttendee(attendee.ID) {
			return nil, apperr.ErrAlreadyOnTeam
		}
		return nil, apperr.ErrTeamFull
	}

	return s.teamRepository.FindOneByID(ctx, team.ID)
}

// Leave removes the attendee from the team and deletes the team when it
// becomes empty.
func (s *TeamService) Leave(ctx context.Context, teamID, attendeeID primitive.ObjectID) (*entity.LeaveTeamResult, error) {
	team, removed, err := s.teamRepository.PullMember(ctx, teamID, attendeeID)
	if err != nil {
		return nil, err
	}
	if !removed {
		_, err := s.teamRepository.FindOneByID(ctx, teamID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrTeamNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, apperr.ErrNotATeamMember
	}

	if len(team.AttendeeIDs) == 0 {
		deleted, err := s.teamRepository.DeleteIfEmpty(ctx, teamID)
		if err != nil {
			return nil, err
		}
		if deleted {
			return &entity.LeaveTeamResult{Deleted: true}, nil
		}
		// Someone joined between the pull and the delete; the team stays.
		current, err := s.teamRepository.FindOneByID(ctx, teamID)
		if err != nil {
			return nil, mapNotFound(err, apperr.ErrTeamNotFound)
		}
		return &entity.LeaveTeamResult{RemainingCount: len(current.AttendeeIDs)}, nil
	}

	return &entity.LeaveTeamResult{RemainingCount: len(team.AttendeeIDs)}, nil
}

func (s *TeamService) LeaveByUser(ctx context.Context, teamID primitive.ObjectID, userID string) (*entity.LeaveTeamResult, error) {
	attendee, err := s.attendeeRepository.FindOneByUserID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrUserNotAttendee)
	}

	return s.Leave(ctx, teamID, attendee.ID)
}

func (s *TeamService) FindAll(ctx context.Context) ([]*entity.Team, error) {
	teams, err := s.teamRepository.FindAll(ctx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []*entity.Team{}, nil
	}
	return teams, err
}

// Get returns the team with every member annotated with directory profile
// fields and its roster-derived event status.
func (s *TeamService) Get(ctx context.Context, teamID primitive.ObjectID) (*entity.TeamView, error) {
	team, err := s.teamRepository.FindOneByIDWithMembers(ctx, teamID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrTeamNotFound)
	}

	return s.buildView(ctx, team)
}

// GetByUserAndEvent returns the team the user belongs to in the event, or
// nil when the user has no attendee record or no team.
func (s *TeamService) GetByUserAndEvent(ctx context.Context, eventID primitive.ObjectID, userID string) (*entity.TeamView, error) {
	attendee, err := s.attendeeRepository.FindOneByUserID(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	team, err := s.teamRepository.FindOneByEventAndAttendeeWithMembers(ctx, eventID, attendee.ID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return s.buildView(ctx, team)
}

// buildView is the read-time join across teams, the identity directory and
// the event roster. Status is recomputed from the current roster on every
// call.
func (s *TeamService) buildView(ctx context.Context, team *entity.Team) (*entity.TeamView, error) {
	event, err := s.eventRepository.FindOneByID(ctx, team.EventID)
	if err != nil {
		return nil, mapNotFound(err, apperr.ErrEventNotFound)
	}

	userIDs := make([]string, 0, len(team.Members))
	for _, m := range team.Members {
		userIDs = append(userIDs, m.UserID)
	}

	users, err := s.identityResolver.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		// Directory outage degrades the view, it does not fail it.
		log.Warn().Err(err).Str("team", team.ID.Hex()).Msg("identity directory lookup failed")
		users = nil
	}
	byID := identity.Index(users)

	view := &entity.TeamView{
		ID:      team.ID,
		Name:    team.Name,
		EventID: team.EventID,
		Members: make([]*entity.TeamMember, 0, len(team.Members)),
	}

	for _, m := range team.Members {
		if u, ok := byID[m.UserID]; ok {
			m.FirstName = u.FirstName
			m.LastName = u.LastName
			m.Email = u.Username
			m.BirthDate = u.BirthDate
		}
		view.Members = append(view.Members, &entity.TeamMember{
			Attendee: m,
			Status:   event.AttendeeStatus(m.ID),
		})
	}

	return view, nil
}
