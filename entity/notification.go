package entity

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationData payload types. The Type discriminator decides which of the
// optional fields is meaningful.
const (
	NotificationDataTypeEvent    = "event"
	NotificationDataTypeActivity = "activity"
	NotificationDataTypeLink     = "link"
)

// NotificationData is the payload attached to a notification. It is a tagged
// union keyed by Type rather than a free-form blob.
type NotificationData struct {
	Type        string              `bson:"type" json:"type"`
	EventID     *primitive.ObjectID `bson:"event,omitempty" json:"event,omitempty"`
	ActivityID  *primitive.ObjectID `bson:"activity,omitempty" json:"activity,omitempty"`
	DynamicLink string              `bson:"dynamicLink" json:"dynamicLink"`
}

func (d *NotificationData) Validate() error {
	switch d.Type {
	case NotificationDataTypeEvent:
		if d.EventID == nil {
			return fmt.Errorf("notification data of type %q requires an event", d.Type)
		}
	case NotificationDataTypeActivity:
		if d.ActivityID == nil {
			return fmt.Errorf("notification data of type %q requires an activity", d.Type)
		}
	case NotificationDataTypeLink:
		if d.DynamicLink == "" {
			return fmt.Errorf("notification data of type %q requires a dynamic link", d.Type)
		}
	default:
		return fmt.Errorf("unknown notification data type %q", d.Type)
	}
	return nil
}

// Notification is created once per fan-out and never mutated afterwards. Per
// recipient read state lives on the attendee documents.
type Notification struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID primitive.ObjectID `bson:"event" json:"event"`

	AttendeeIDs []primitive.ObjectID `bson:"attendees" json:"attendees"`

	Title string           `bson:"title" json:"title"`
	Body  string           `bson:"body" json:"body"`
	Data  NotificationData `bson:"data" json:"data"`

	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
