package models

import "time"

// Blog represents a published post. Slug is derived from the title and is
// the public lookup key.
type Blog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"date_added"`
	UpdatedAt   time.Time `json:"date_last_updated"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Slug        string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Title       string    `gorm:"size:255;not null;unique" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Tag         string    `gorm:"size:64" json:"tag"`
	ReadingTime int       `json:"reading_time"`
	MembersOnly bool      `gorm:"default:false" json:"members_only"`
	Image       string    `gorm:"size:512" json:"image"`
	Comments    []Comment `json:"-"`
}

// BlogTags is the known tag vocabulary shown by the editor UI. Stored values
// are not restricted to this list.
var BlogTags = []string{
	"Technology",
	"Data Science",
	"AI / ML",
	"Web Development",
	"Mobile Development",
	"Cloud Computing",
	"DevOps",
	"Cyber Security",
	"Databases",
	"Software Engineering",
	"Project Management",
	"Startups",
	"Entrepreneurship",
	"Events",
}
