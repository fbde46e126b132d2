package model

import "time"

// User is an account holder
type User struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Email         string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Name          string    `json:"name" gorm:"size:100;not null"`
	Image         *string   `json:"image" gorm:"size:2048"`
	EmailVerified bool      `json:"emailVerified" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserChanges lists the profile fields a caller may change; nil means untouched
type UserChanges struct {
	Name  *string
	Image *string
}

// Empty reports whether no field is set
func (c UserChanges) Empty() bool {
	return c.Name == nil && c.Image == nil
}
