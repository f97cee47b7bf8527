package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAttendeeStatus(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	c := primitive.NewObjectID()

	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{
			name:     "not on the roster",
			event:    Event{},
			expected: StatusNotRegistered,
		},
		{
			name: "on the roster, unconfirmed",
			event: Event{Attendees: []RosterEntry{
				{AttendeeID: a},
			}},
			expected: StatusRegistered,
		},
		{
			name: "confirmed",
			event: Event{Attendees: []RosterEntry{
				{AttendeeID: a, Registered: true},
			}},
			expected: StatusConfirmed,
		},
		{
			name: "scanned by a peer",
			event: Event{Attendees: []RosterEntry{
				{AttendeeID: a, Registered: true},
				{AttendeeID: b, Scanned: []primitive.ObjectID{a}},
			}},
			expected: StatusPresent,
		},
		{
			name: "a peer scan outranks an unconfirmed entry",
			event: Event{Attendees: []RosterEntry{
				{AttendeeID: a},
				{AttendeeID: b, Scanned: []primitive.ObjectID{a}},
			}},
			expected: StatusPresent,
		},
		{
			name: "own scans of others do not count",
			event: Event{Attendees: []RosterEntry{
				{AttendeeID: a, Registered: true, Scanned: []primitive.ObjectID{b, c}},
				{AttendeeID: b},
				{AttendeeID: c},
			}},
			expected: StatusConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.AttendeeStatus(a))
		})
	}
}

func TestRosterEntryHasScanned(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	entry := RosterEntry{Scanned: []primitive.ObjectID{a}}
	assert.True(t, entry.HasScanned(a))
	assert.False(t, entry.HasScanned(b))
}
