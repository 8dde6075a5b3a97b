package models

import "time"

type NotificationType string

const (
	NotificationLike          NotificationType = "like"
	NotificationComment       NotificationType = "comment"
	NotificationFriendRequest NotificationType = "friend_request"
	NotificationFriendAccept  NotificationType = "friend_accept"
)

// Notification is a per-recipient event record (PostgreSQL). Only Read changes after creation.
type Notification struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	RecipientID  uint             `json:"recipient" gorm:"not null;index:idx_notifications_inbox,priority:1"`
	SenderID     uint             `json:"sender" gorm:"not null"`
	Type         NotificationType `json:"type" gorm:"type:varchar(20);not null"`
	PostID       *string          `json:"post,omitempty" gorm:"size:24;index"` // hex ObjectID
	CommentText  *string          `json:"commentText,omitempty"`
	FriendshipID *uint            `json:"friendshipId,omitempty" gorm:"index"`
	Read         bool             `json:"read" gorm:"column:is_read;not null;default:false;index:idx_notifications_inbox,priority:2"`
	CreatedAt    time.Time        `json:"createdAt" gorm:"index:idx_notifications_inbox,priority:3,sort:desc"`
}

// PostPreview is the slice of a post shown next to a notification. Content is empty once the
// post has been deleted.
type PostPreview struct {
	ID      string `json:"id"`
	Content string `json:"content,omitempty"`
}

// NotificationView includes the sender profile and the referenced post. Post shadows the
// embedded PostID in JSON, so it is set whenever PostID is.
type NotificationView struct {
	Notification
	Sender UserCompact  `json:"sender"`
	Post   *PostPreview `json:"post,omitempty"`
}
