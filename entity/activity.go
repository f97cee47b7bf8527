package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Activity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Type      string             `bson:"type,omitempty" json:"type,omitempty"`
	Location  string             `bson:"location,omitempty" json:"location,omitempty"`
	BeginDate time.Time          `bson:"beginDate,omitempty" json:"beginDate"`
	EndDate   time.Time          `bson:"endDate,omitempty" json:"endDate"`

	AttendeeIDs []primitive.ObjectID `bson:"attendees" json:"attendees"`
}

func (a *Activity) HasAttendee(attendeeID primitive.ObjectID) bool {
	for _, id := range a.AttendeeIDs {
		if id == attendeeID {
			return true
		}
	}
	return false
}
