package entity

import (
	"fmt"
	"time"

	"github.com/klauspost/lctime"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendee status within an event, derived from the roster entry at read time.
const (
	StatusNotRegistered = "not-registered"
	StatusRegistered    = "registered"
	StatusConfirmed     = "confirmed"
	StatusPresent       = "present"
)

// RosterEntry links one attendee to an event with a role, a confirmation flag
// and the set of attendees this attendee has scanned.
type RosterEntry struct {
	AttendeeID primitive.ObjectID   `bson:"attendee" json:"attendee"`
	Role       string               `bson:"role" json:"role"`
	Registered bool                 `bson:"registered" json:"registered"`
	Scanned    []primitive.ObjectID `bson:"scannedAttendees" json:"scannedAttendees"`
}

func (re *RosterEntry) HasScanned(attendeeID primitive.ObjectID) bool {
	for _, id := range re.Scanned {
		if id == attendeeID {
			return true
		}
	}
	return false
}

type EventSponsor struct {
	SponsorID    primitive.ObjectID `bson:"sponsor" json:"sponsor"`
	Tier         string             `bson:"tier" json:"tier"`
	Padding      []int              `bson:"padding,omitempty" json:"padding,omitempty"`
	WidthFactor  float64            `bson:"widthFactor,omitempty" json:"widthFactor,omitempty"`
	HeightFactor float64            `bson:"heightFactor,omitempty" json:"heightFactor,omitempty"`
}

type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name,omitempty" json:"name"`
	ImageURL  string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	BeginDate time.Time          `bson:"beginDate,omitempty" json:"beginDate"`
	EndDate   time.Time          `bson:"endDate,omitempty" json:"endDate"`

	Attendees []RosterEntry `bson:"attendees" json:"attendees"`

	ActivityIDs []primitive.ObjectID `bson:"activities,omitempty" json:"activities,omitempty"`
	Sponsors    []EventSponsor       `bson:"sponsors,omitempty" json:"sponsors,omitempty"`
}

func (e *Event) RosterEntry(attendeeID primitive.ObjectID) *RosterEntry {
	for i := range e.Attendees {
		if e.Attendees[i].AttendeeID == attendeeID {
			return &e.Attendees[i]
		}
	}
	return nil
}

// AttendeeStatus derives the status of an attendee from the roster: confirmed
// once registered, present once a peer has scanned them.
func (e *Event) AttendeeStatus(attendeeID primitive.ObjectID) string {
	entry := e.RosterEntry(attendeeID)
	if entry == nil {
		return StatusNotRegistered
	}

	for i := range e.Attendees {
		if e.Attendees[i].AttendeeID == attendeeID {
			continue
		}
		if e.Attendees[i].HasScanned(attendeeID) {
			return StatusPresent
		}
	}

	if entry.Registered {
		return StatusConfirmed
	}
	return StatusRegistered
}

// Alias renders the event name with its localized begin date, used as the
// title of event-scoped notifications.
func (e *Event) Alias(lang string) string {
	t, _ := lctime.StrftimeLoc(lang, "%d %B %Y", e.BeginDate)
	return fmt.Sprintf("%s (%s)", e.Name, t)
}
