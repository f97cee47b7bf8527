package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationDataValidate(t *testing.T) {
	eventID := primitive.NewObjectID()
	activityID := primitive.NewObjectID()

	tests := []struct {
		name    string
		data    NotificationData
		wantErr bool
	}{
		{
			name: "event payload",
			data: NotificationData{Type: NotificationDataTypeEvent, EventID: &eventID},
		},
		{
			name:    "event payload without event",
			data:    NotificationData{Type: NotificationDataTypeEvent},
			wantErr: true,
		},
		{
			name: "activity payload",
			data: NotificationData{Type: NotificationDataTypeActivity, ActivityID: &activityID},
		},
		{
			name:    "activity payload without activity",
			data:    NotificationData{Type: NotificationDataTypeActivity},
			wantErr: true,
		},
		{
			name: "link payload",
			data: NotificationData{Type: NotificationDataTypeLink, DynamicLink: "event/abc"},
		},
		{
			name:    "link payload without link",
			data:    NotificationData{Type: NotificationDataTypeLink},
			wantErr: true,
		},
		{
			name:    "unknown type",
			data:    NotificationData{Type: "carrier-pigeon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
