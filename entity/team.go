package entity

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Team struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	EventID primitive.ObjectID `bson:"event" json:"event"`

	AttendeeIDs []primitive.ObjectID `bson:"attendees" json:"attendees"`

	// Members is populated by a lookup on read paths.
	Members []*Attendee `bson:"members,omitempty" json:"members,omitempty"`
}

func (t *Team) HasAttendee(attendeeID primitive.ObjectID) bool {
	for _, id := range t.AttendeeIDs {
		if id == attendeeID {
			return true
		}
	}
	return false
}

// TeamMember is the read-path view of a team member: the attendee document
// plus its event status, computed from the roster and never stored.
type TeamMember struct {
	*Attendee
	Status string `json:"status"`
}

// TeamView is what team read endpoints return.
type TeamView struct {
	ID      primitive.ObjectID `json:"id"`
	Name    string             `json:"name"`
	EventID primitive.ObjectID `json:"event"`
	Members []*TeamMember      `json:"attendees"`
}

// LeaveTeamResult reports the outcome of a leave operation.
type LeaveTeamResult struct {
	Deleted        bool `json:"deleted"`
	RemainingCount int  `json:"remainingCount"`
}
