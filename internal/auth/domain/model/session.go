package model

import "time"

// Session represents a signed-in device
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"userId" gorm:"size:36;not null;index"`
	Token     string    `json:"-" gorm:"size:128;not null;uniqueIndex"`
	UserAgent string    `json:"userAgent" gorm:"size:512"`
	IPAddress string    `json:"ipAddress" gorm:"size:64"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (Session) TableName() string { return "sessions" }

// IsExpired reports whether the session is no longer valid at now
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
