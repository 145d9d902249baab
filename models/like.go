package models

import "time"

// Like is either a blog like (BlogID set) or a comment like (CommentID set),
// never both. A user can like a given blog or comment at most once.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UserID    uint      `gorm:"index;not null;uniqueIndex:idx_user_blog_like;uniqueIndex:idx_user_comment_like" json:"user_id"`
	BlogID    *uint     `gorm:"index;uniqueIndex:idx_user_blog_like" json:"blog_id"`
	CommentID *uint     `gorm:"index;uniqueIndex:idx_user_comment_like" json:"comment_id"`
}
