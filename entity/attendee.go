package entity

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slices"
)

// AttendeeNotification is one inbox entry on an attendee. The seen flag lives
// here, never on the notification document itself.
type AttendeeNotification struct {
	NotificationID primitive.ObjectID `bson:"notification" json:"notification"`
	Seen           bool               `bson:"seen" json:"seen"`

	Notification *Notification `bson:"notificationDoc,omitempty" json:"notificationDoc,omitempty"`
}

type Attendee struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   string             `bson:"userId" json:"userId"`
	PublicID string             `bson:"publicId,omitempty" json:"publicId,omitempty"`

	Email       string `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber string `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	School      string `bson:"school,omitempty" json:"school,omitempty"`
	Github      string `bson:"github,omitempty" json:"github,omitempty"`
	Linkedin    string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	TShirt      string `bson:"tshirt,omitempty" json:"tshirt,omitempty"`

	// CV holds the storage key of the uploaded resume, if any.
	CV string `bson:"cv,omitempty" json:"cv,omitempty"`

	AcceptSMSNotifications bool `bson:"acceptSMSNotifications" json:"acceptSMSNotifications"`

	MessagingTokens []string               `bson:"messagingTokens" json:"-"`
	Notifications   []AttendeeNotification `bson:"notifications" json:"notifications,omitempty"`

	// Filled from the identity directory on read paths, never stored.
	FirstName string `bson:"-" json:"firstName,omitempty"`
	LastName  string `bson:"-" json:"lastName,omitempty"`
	BirthDate string `bson:"-" json:"birthDate,omitempty"`
}

func (a *Attendee) HasToken(token string) bool {
	return slices.Contains(a.MessagingTokens, token)
}

func (a *Attendee) InboxEntry(notificationID primitive.ObjectID) *AttendeeNotification {
	for i := range a.Notifications {
		if a.Notifications[i].NotificationID == notificationID {
			return &a.Notifications[i]
		}
	}
	return nil
}
