package models

import (
	"time"
)

// User model. Identity comes from Google OAuth, so there is no password
// column; Email is the identity key. RefreshToken holds the single active
// session token for the user and is overwritten on every login and rotation.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"size:255" json:"name"`
	Picture      *string   `gorm:"size:512" json:"picture"`
	Username     string    `gorm:"size:255;uniqueIndex" json:"username"`
	RefreshToken *string   `gorm:"size:128" json:"-"`
	Blogs        []Blog    `json:"-"`
	Comments     []Comment `json:"-"`
	Likes        []Like    `json:"-"`
}
