package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/polyhx/event-api/entity"
	"github.com/polyhx/event-api/identity"
	"github.com/polyhx/event-api/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory repositories with the same conditional-write semantics as the
// mongo implementations. Single mutex per repository so the concurrency
// tests exercise real interleavings.

type memAttendeeRepository struct {
	mu        sync.Mutex
	attendees map[primitive.ObjectID]*entity.Attendee
}

func newMemAttendeeRepository() *memAttendeeRepository {
	return &memAttendeeRepository{attendees: make(map[primitive.ObjectID]*entity.Attendee)}
}

func (r *memAttendeeRepository) add(a entity.Attendee) *entity.Attendee {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	r.attendees[a.ID] = &a
	return &a
}

func (r *memAttendeeRepository) FindOneByID(_ context.Context, ID primitive.ObjectID) (*entity.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.attendees[ID]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memAttendeeRepository) FindOneByUserID(_ context.Context, userID string) (*entity.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendees {
		if a.UserID == userID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memAttendeeRepository) FindOneByEmail(_ context.Context, email string) (*entity.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendees {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memAttendeeRepository) FindOneByPublicID(_ context.Context, publicID string) (*entity.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendees {
		if a.PublicID == publicID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memAttendeeRepository) FindManyByIDs(_ context.Context, IDs []primitive.ObjectID) ([]*entity.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*entity.Attendee
	for _, id := range IDs {
		if a, ok := r.attendees[id]; ok {
			copied := *a
			found = append(found, &copied)
		}
	}
	return found, nil
}

func (r *memAttendeeRepository) FindManyByIDsPaged(ctx context.Context, IDs []primitive.ObjectID, schools []string, skip, limit int64) ([]*entity.Attendee, int64, error) {
	all, _ := r.FindManyByIDs(ctx, IDs)
	if len(schools) > 0 {
		filtered := all[:0]
		for _, a := range all {
			for _, school := range schools {
				if a.School == school {
					filtered = append(filtered, a)
					break
				}
			}
		}
		all = filtered
	}

	total := int64(len(all))
	if skip > total {
		skip = total
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (r *memAttendeeRepository) InsertOne(_ context.Context, attendee entity.Attendee) (*entity.Attendee, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendees {
		if a.UserID == attendee.UserID {
			copied := *a
			return &copied, false, nil
		}
	}
	attendee.ID = primitive.NewObjectID()
	r.attendees[attendee.ID] = &attendee
	copied := attendee
	return &copied, true, nil
}

func (r *memAttendeeRepository) updateProfile(a *entity.Attendee, fields bson.M) {
	if v, ok := fields["email"]; ok {
		a.Email = v.(string)
	}
	if v, ok := fields["phoneNumber"]; ok {
		a.PhoneNumber = v.(string)
	}
	if v, ok := fields["school"]; ok {
		a.School = v.(string)
	}
	if v, ok := fields["github"]; ok {
		a.Github = v.(string)
	}
	if v, ok := fields["linkedin"]; ok {
		a.Linkedin = v.(string)
	}
	if v, ok := fields["tshirt"]; ok {
		a.TShirt = v.(string)
	}
	if v, ok := fields["acceptSMSNotifications"]; ok {
		a.AcceptSMSNotifications = v.(bool)
	}
	if v, ok := fields["cv"]; ok {
		a.CV = v.(string)
	}
}

func (r *memAttendeeRepository) UpdateProfileByUserID(_ context.Context, userID string, fields bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendees {
		if a.UserID == userID {
			r.updateProfile(a, fields)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *memAttendeeRepository) SetPublicID(_ context.Context, attendeeID primitive.ObjectID, publicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attendees[attendeeID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	a.PublicID = publicID
	return nil
}

func (r *memAttendeeRepository) PushToken(_ context.Context, userID, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendees {
		if a.UserID != userID {
			continue
		}
		if a.HasToken(token) {
			return false, nil
		}
		a.MessagingTokens = append(a.MessagingTokens, token)
		return true, nil
	}
	return false, nil
}

func (r *memAttendeeRepository) PullToken(_ context.Context, userID, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendees {
		if a.UserID != userID {
			continue
		}
		for i, t := range a.MessagingTokens {
			if t == token {
				a.MessagingTokens = append(a.MessagingTokens[:i], a.MessagingTokens[i+1:]...)
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

func (r *memAttendeeRepository) PushNotification(_ context.Context, attendeeID, notificationID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attendees[attendeeID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if a.InboxEntry(notificationID) != nil {
		return nil
	}
	a.Notifications = append(a.Notifications, entity.AttendeeNotification{NotificationID: notificationID})
	return nil
}

func (r *memAttendeeRepository) SetNotificationSeen(_ context.Context, userID string, notificationID primitive.ObjectID, seen bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendees {
		if a.UserID != userID {
			continue
		}
		if entry := a.InboxEntry(notificationID); entry != nil {
			entry.Seen = seen
			return true, nil
		}
		return false, nil
	}
	return false, nil
}

func (r *memAttendeeRepository) FindOneByUserIDWithInbox(ctx context.Context, userID string) (*entity.Attendee, error) {
	return r.FindOneByUserID(ctx, userID)
}

type memEventRepository struct {
	mu     sync.Mutex
	events map[primitive.ObjectID]*entity.Event
}

func newMemEventRepository() *memEventRepository {
	return &memEventRepository{events: make(map[primitive.ObjectID]*entity.Event)}
}

func (r *memEventRepository) add(e entity.Event) *entity.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	r.events[e.ID] = &e
	return &e
}

func (r *memEventRepository) FindAll(_ context.Context) ([]*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]*entity.Event, 0, len(r.events))
	for _, e := range r.events {
		copied := *e
		events = append(events, &copied)
	}
	return events, nil
}

func (r *memEventRepository) FindOneByID(_ context.Context, ID primitive.ObjectID) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[ID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *e
	copied.Attendees = append([]entity.RosterEntry(nil), e.Attendees...)
	return &copied, nil
}

func (r *memEventRepository) UpdateOne(_ context.Context, event entity.Event) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if existing, ok := r.events[event.ID]; ok {
		event.Attendees = existing.Attendees
		event.ActivityIDs = existing.ActivityIDs
		event.Sponsors = existing.Sponsors
	}
	r.events[event.ID] = &event
	copied := event
	return &copied, nil
}

func (r *memEventRepository) Exists(_ context.Context, ID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.events[ID]
	return ok, nil
}

func (r *memEventRepository) HasRosterEntry(_ context.Context, eventID, attendeeID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return false, nil
	}
	return e.RosterEntry(attendeeID) != nil, nil
}

func (r *memEventRepository) PushRosterEntry(_ context.Context, eventID, attendeeID primitive.ObjectID, role string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return false, nil
	}
	if e.RosterEntry(attendeeID) != nil {
		return false, nil
	}
	e.Attendees = append(e.Attendees, entity.RosterEntry{
		AttendeeID: attendeeID,
		Role:       role,
		Scanned:    []primitive.ObjectID{},
	})
	return true, nil
}

func (r *memEventRepository) SetRegistered(_ context.Context, eventID, attendeeID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return false, nil
	}
	entry := e.RosterEntry(attendeeID)
	if entry == nil {
		return false, nil
	}
	entry.Registered = true
	return true, nil
}

func (r *memEventRepository) PushScanned(_ context.Context, eventID, scannerID, scannedID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return false, nil
	}
	scanner := e.RosterEntry(scannerID)
	if scanner == nil || scanner.HasScanned(scannedID) {
		return false, nil
	}
	scanner.Scanned = append(scanner.Scanned, scannedID)
	return true, nil
}

func (r *memEventRepository) PushActivityID(_ context.Context, eventID, activityID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for _, id := range e.ActivityIDs {
		if id == activityID {
			return nil
		}
	}
	e.ActivityIDs = append(e.ActivityIDs, activityID)
	return nil
}

func (r *memEventRepository) PushSponsor(_ context.Context, eventID primitive.ObjectID, sponsor entity.EventSponsor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	e.Sponsors = append(e.Sponsors, sponsor)
	return nil
}

type memTeamRepository struct {
	mu        sync.Mutex
	teams     map[primitive.ObjectID]*entity.Team
	attendees *memAttendeeRepository
}

func newMemTeamRepository(attendees *memAttendeeRepository) *memTeamRepository {
	return &memTeamRepository{
		teams:     make(map[primitive.ObjectID]*entity.Team),
		attendees: attendees,
	}
}

func (r *memTeamRepository) copyOf(t *entity.Team) *entity.Team {
	copied := *t
	copied.AttendeeIDs = append([]primitive.ObjectID(nil), t.AttendeeIDs...)
	return &copied
}

func (r *memTeamRepository) withMembers(ctx context.Context, t *entity.Team) *entity.Team {
	copied := r.copyOf(t)
	members, _ := r.attendees.FindManyByIDs(ctx, copied.AttendeeIDs)
	copied.Members = members
	return copied
}

func (r *memTeamRepository) FindOneByID(_ context.Context, ID primitive.ObjectID) (*entity.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[ID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return r.copyOf(t), nil
}

func (r *memTeamRepository) FindOneByEventAndName(_ context.Context, eventID primitive.ObjectID, name string) (*entity.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.EventID == eventID && t.Name == name {
			return r.copyOf(t), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memTeamRepository) FindOneByEventAndAttendee(_ context.Context, eventID, attendeeID primitive.ObjectID) (*entity.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.EventID == eventID && t.HasAttendee(attendeeID) {
			return r.copyOf(t), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memTeamRepository) FindAll(_ context.Context) ([]*entity.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	teams := make([]*entity.Team, 0, len(r.teams))
	for _, t := range r.teams {
		teams = append(teams, r.copyOf(t))
	}
	return teams, nil
}

func (r *memTeamRepository) FindOneByIDWithMembers(ctx context.Context, ID primitive.ObjectID) (*entity.Team, error) {
	r.mu.Lock()
	t, ok := r.teams[ID]
	r.mu.Unlock()
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return r.withMembers(ctx, t), nil
}

func (r *memTeamRepository) FindOneByEventAndAttendeeWithMembers(ctx context.Context, eventID, attendeeID primitive.ObjectID) (*entity.Team, error) {
	r.mu.Lock()
	var found *entity.Team
	for _, t := range r.teams {
		if t.EventID == eventID && t.HasAttendee(attendeeID) {
			found = t
			break
		}
	}
	r.mu.Unlock()
	if found == nil {
		return nil, mongo.ErrNoDocuments
	}
	return r.withMembers(ctx, found), nil
}

func (r *memTeamRepository) CreateOne(_ context.Context, eventID primitive.ObjectID, name string, attendeeID primitive.ObjectID) (*entity.Team, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.EventID == eventID && t.Name == name {
			return r.copyOf(t), false, nil
		}
	}
	t := &entity.Team{
		ID:          primitive.NewObjectID(),
		Name:        name,
		EventID:     eventID,
		AttendeeIDs: []primitive.ObjectID{attendeeID},
	}
	r.teams[t.ID] = t
	return r.copyOf(t), true, nil
}

func (r *memTeamRepository) PushMember(_ context.Context, teamID, attendeeID primitive.ObjectID, maxSize int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return false, nil
	}
	if t.HasAttendee(attendeeID) || len(t.AttendeeIDs) >= maxSize {
		return false, nil
	}
	t.AttendeeIDs = append(t.AttendeeIDs, attendeeID)
	return true, nil
}

func (r *memTeamRepository) PullMember(_ context.Context, teamID, attendeeID primitive.ObjectID) (*entity.Team, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return nil, false, nil
	}
	for i, id := range t.AttendeeIDs {
		if id == attendeeID {
			t.AttendeeIDs = append(t.AttendeeIDs[:i], t.AttendeeIDs[i+1:]...)
			return r.copyOf(t), true, nil
		}
	}
	return nil, false, nil
}

func (r *memTeamRepository) DeleteIfEmpty(_ context.Context, teamID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok || len(t.AttendeeIDs) > 0 {
		return false, nil
	}
	delete(r.teams, teamID)
	return true, nil
}

type memNotificationRepository struct {
	mu            sync.Mutex
	notifications map[primitive.ObjectID]*entity.Notification
}

func newMemNotificationRepository() *memNotificationRepository {
	return &memNotificationRepository{notifications: make(map[primitive.ObjectID]*entity.Notification)}
}

func (r *memNotificationRepository) InsertOne(_ context.Context, notification entity.Notification) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = primitive.NewObjectID()
	notification.Timestamp = time.Now().UTC()
	r.notifications[notification.ID] = &notification
	copied := notification
	return &copied, nil
}

func (r *memNotificationRepository) FindOneByID(_ context.Context, ID primitive.ObjectID) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[ID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *n
	return &copied, nil
}

func (r *memNotificationRepository) FindManyByEventID(_ context.Context, eventID primitive.ObjectID) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*entity.Notification
	for _, n := range r.notifications {
		if n.EventID == eventID {
			copied := *n
			found = append(found, &copied)
		}
	}
	return found, nil
}

type memActivityRepository struct {
	mu         sync.Mutex
	activities map[primitive.ObjectID]*entity.Activity
}

func newMemActivityRepository() *memActivityRepository {
	return &memActivityRepository{activities: make(map[primitive.ObjectID]*entity.Activity)}
}

func (r *memActivityRepository) InsertOne(_ context.Context, activity entity.Activity) (*entity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if activity.ID.IsZero() {
		activity.ID = primitive.NewObjectID()
	}
	r.activities[activity.ID] = &activity
	copied := activity
	return &copied, nil
}

func (r *memActivityRepository) FindAll(_ context.Context) ([]*entity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	activities := make([]*entity.Activity, 0, len(r.activities))
	for _, a := range r.activities {
		copied := *a
		activities = append(activities, &copied)
	}
	return activities, nil
}

func (r *memActivityRepository) FindOneByID(_ context.Context, ID primitive.ObjectID) (*entity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.activities[ID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *a
	copied.AttendeeIDs = append([]primitive.ObjectID(nil), a.AttendeeIDs...)
	return &copied, nil
}

func (r *memActivityRepository) FindManyByIDs(_ context.Context, IDs []primitive.ObjectID) ([]*entity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*entity.Activity
	for _, id := range IDs {
		if a, ok := r.activities[id]; ok {
			copied := *a
			found = append(found, &copied)
		}
	}
	return found, nil
}

func (r *memActivityRepository) PushAttendee(_ context.Context, activityID, attendeeID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.activities[activityID]
	if !ok {
		return false, nil
	}
	if a.HasAttendee(attendeeID) {
		return false, nil
	}
	a.AttendeeIDs = append(a.AttendeeIDs, attendeeID)
	return true, nil
}

// fakeResolver serves a fixed set of directory users.
type fakeResolver struct {
	users map[string]*identity.User
	err   error
}

func (r *fakeResolver) GetUsersByIDs(_ context.Context, userIDs []string) ([]*identity.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	var found []*identity.User
	for _, id := range userIDs {
		if u, ok := r.users[id]; ok {
			found = append(found, u)
		}
	}
	return found, nil
}

// recordingSender captures outbound SMS and push calls.
type recordingSender struct {
	mu     sync.Mutex
	sms    [][]string
	texts  []string
	pushes []messaging.PushMessage
	tokens [][]string
}

func (s *recordingSender) SendSMS(_ context.Context, numbers []string, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sms = append(s.sms, numbers)
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordingSender) SendPush(_ context.Context, tokens []string, message messaging.PushMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, tokens)
	s.pushes = append(s.pushes, message)
	return nil
}

// memStorage keeps uploads in a map keyed by a counter.
type memStorage struct {
	mu      sync.Mutex
	n       int
	files   map[string]string
	deleted []string
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string]string)}
}

func (s *memStorage) Upload(_ context.Context, filename, _ string, _ io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	key := fmt.Sprintf("file-%d", s.n)
	s.files[key] = filename
	return key, nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memStorage) GetDownloadURL(_ context.Context, key string) (string, error) {
	return "https://files.example.com/" + key, nil
}

// fixedRand always draws the same index.
type fixedRand struct{ value int }

func (r fixedRand) Intn(int) int { return r.value }
