package models

import (
	"time"

	"gorm.io/gorm"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// Friendship is a directed friend request between two users. Direction only matters while the
// record is pending; once accepted it is symmetric.
type Friendship struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RequesterID uint             `json:"requester" gorm:"not null;index"`
	RecipientID uint             `json:"recipient" gorm:"not null;index"`
	UserLowID   uint             `json:"-" gorm:"not null;uniqueIndex:idx_friendship_pair"`
	UserHighID  uint             `json:"-" gorm:"not null;uniqueIndex:idx_friendship_pair"`
	Status      FriendshipStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// BeforeCreate fills the normalised pair so the unique index covers both directions.
func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	f.UserLowID, f.UserHighID = OrderedPair(f.RequesterID, f.RecipientID)
	return nil
}

// Counterpart returns the other side of the relationship as seen by userID.
func (f *Friendship) Counterpart(userID uint) uint {
	if f.RequesterID == userID {
		return f.RecipientID
	}
	return f.RequesterID
}

// Involves reports whether userID is one of the two parties.
func (f *Friendship) Involves(userID uint) bool {
	return f.RequesterID == userID || f.RecipientID == userID
}

// OrderedPair returns the two ids smallest first.
func OrderedPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// Relationship values returned by the status query, relative to the asking user.
const (
	RelationshipNone            = "none"
	RelationshipPendingSent     = "pending_sent"
	RelationshipPendingReceived = "pending_received"
	RelationshipAccepted        = "accepted"
	RelationshipRejected        = "rejected"
)

type RequestDirection string

const (
	DirectionSent     RequestDirection = "sent"
	DirectionReceived RequestDirection = "received"
)

// FriendRequestView is a pending request with the profile of the other party.
type FriendRequestView struct {
	Friendship
	User UserCompact `json:"user"`
}

type FriendshipStatusView struct {
	Status       string `json:"status"`
	FriendshipID *uint  `json:"friendshipId,omitempty"`
}
