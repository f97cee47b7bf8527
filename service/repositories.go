package service

import (
	"context"

	"github.com/polyhx/event-api/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository interfaces consumed by the services. The mongo implementations
// live in the repository package; tests substitute in-memory fakes.

type AttendeeRepository interface {
	FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Attendee, error)
	FindOneByUserID(ctx context.Context, userID string) (*entity.Attendee, error)
	FindOneByEmail(ctx context.Context, email string) (*entity.Attendee, error)
	FindOneByPublicID(ctx context.Context, publicID string) (*entity.Attendee, error)
	FindManyByIDs(ctx context.Context, IDs []primitive.ObjectID) ([]*entity.Attendee, error)
	FindManyByIDsPaged(ctx context.Context, IDs []primitive.ObjectID, schools []string, skip, limit int64) ([]*entity.Attendee, int64, error)
	InsertOne(ctx context.Context, attendee entity.Attendee) (*entity.Attendee, bool, error)
	UpdateProfileByUserID(ctx context.Context, userID string, fields bson.M) error
	SetPublicID(ctx context.Context, attendeeID primitive.ObjectID, publicID string) error
	PushToken(ctx context.Context, userID, token string) (bool, error)
	PullToken(ctx context.Context, userID, token string) (bool, error)
	PushNotification(ctx context.Context, attendeeID, notificationID primitive.ObjectID) error
	SetNotificationSeen(ctx context.Context, userID string, notificationID primitive.ObjectID, seen bool) (bool, error)
	FindOneByUserIDWithInbox(ctx context.Context, userID string) (*entity.Attendee, error)
}

type EventRepository interface {
	FindAll(ctx context.Context) ([]*entity.Event, error)
	FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Event, error)
	UpdateOne(ctx context.Context, event entity.Event) (*entity.Event, error)
	Exists(ctx context.Context, ID primitive.ObjectID) (bool, error)
	HasRosterEntry(ctx context.Context, eventID, attendeeID primitive.ObjectID) (bool, error)
	PushRosterEntry(ctx context.Context, eventID, attendeeID primitive.ObjectID, role string) (bool, error)
	SetRegistered(ctx context.Context, eventID, attendeeID primitive.ObjectID) (bool, error)
	PushScanned(ctx context.Context, eventID, scannerID, scannedID primitive.ObjectID) (bool, error)
	PushActivityID(ctx context.Context, eventID, activityID primitive.ObjectID) error
	PushSponsor(ctx context.Context, eventID primitive.ObjectID, sponsor entity.EventSponsor) error
}

type TeamRepository interface {
	FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Team, error)
	FindOneByEventAndName(ctx context.Context, eventID primitive.ObjectID, name string) (*entity.Team, error)
	FindOneByEventAndAttendee(ctx context.Context, eventID, attendeeID primitive.ObjectID) (*entity.Team, error)
	FindAll(ctx context.Context) ([]*entity.Team, error)
	FindOneByIDWithMembers(ctx context.Context, ID primitive.ObjectID) (*entity.Team, error)
	FindOneByEventAndAttendeeWithMembers(ctx context.Context, eventID, attendeeID primitive.ObjectID) (*entity.Team, error)
	CreateOne(ctx context.Context, eventID primitive.ObjectID, name string, attendeeID primitive.ObjectID) (*entity.Team, bool, error)
	PushMember(ctx context.Context, teamID, attendeeID primitive.ObjectID, maxSize int) (bool, error)
	PullMember(ctx context.Context, teamID, attendeeID primitive.ObjectID) (*entity.Team, bool, error)
	DeleteIfEmpty(ctx context.Context, teamID primitive.ObjectID) (bool, error)
}

type NotificationRepository interface {
	InsertOne(ctx context.Context, notification entity.Notification) (*entity.Notification, error)
	FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Notification, error)
	FindManyByEventID(ctx context.Context, eventID primitive.ObjectID) ([]*entity.Notification, error)
}

type ActivityRepository interface {
	InsertOne(ctx context.Context, activity entity.Activity) (*entity.Activity, error)
	FindAll(ctx context.Context) ([]*entity.Activity, error)
	FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Activity, error)
	FindManyByIDs(ctx context.Context, IDs []primitive.ObjectID) ([]*entity.Activity, error)
	PushAttendee(ctx context.Context, activityID, attendeeID primitive.ObjectID) (bool, error)
}
