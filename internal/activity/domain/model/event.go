package model

import (
	"time"

	"lifeops/internal/shared/eventbus"
)

// Event is one recorded account activity
type Event struct {
	ID        string            `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	UserID    string            `json:"userId" bson:"user_id" gorm:"size:36;not null;index:idx_activity_user_created,priority:1"`
	Type      string            `json:"type" bson:"type" gorm:"size:64;not null"`
	SessionID string            `json:"sessionId,omitempty" bson:"session_id,omitempty" gorm:"size:36"`
	IPAddress string            `json:"ipAddress,omitempty" bson:"ip_address,omitempty" gorm:"size:64"`
	UserAgent string            `json:"userAgent,omitempty" bson:"user_agent,omitempty" gorm:"size:512"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty" gorm:"serializer:json"`
	CreatedAt time.Time         `json:"createdAt" bson:"created_at" gorm:"not null;index:idx_activity_user_created,priority:2,sort:desc"`
}

func (Event) TableName() string { return "activity_events" }

// FromAccountEvent converts a bus event into a record. It reports false for
// events that do not carry an account payload.
func FromAccountEvent(id string, event eventbus.Event) (*Event, bool) {
	var payload eventbus.AccountEvent
	switch data := event.Data().(type) {
	case eventbus.AccountEvent:
		payload = data
	case *eventbus.AccountEvent:
		if data == nil {
			return nil, false
		}
		payload = *data
	default:
		return nil, false
	}
	if payload.UserID == "" {
		return nil, false
	}
	return &Event{
		ID:        id,
		UserID:    payload.UserID,
		Type:      event.Type(),
		SessionID: payload.SessionID,
		IPAddress: payload.IPAddress,
		UserAgent: payload.UserAgent,
		Metadata:  payload.Metadata,
		CreatedAt: event.Timestamp().UTC(),
	}, true
}
