package models

import "time"

// Comment belongs to a blog and a user. Author is the display name captured
// at creation time (username, falling back to the user's full name).
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"date_added"`
	UpdatedAt time.Time `json:"-"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	BlogID    uint      `gorm:"index;not null" json:"blog_id"`
	Author    string    `gorm:"size:255" json:"author"`
	Text      string    `gorm:"type:text;not null" json:"text"`
}
