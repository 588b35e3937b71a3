package models

import "time"

// FriendRequest is a directed edge between two users. A pending request has
// IsAccepted=false; acceptance flips the flag and the row then persists as the
// friendship record. Rejection deletes the row outright — there is no explicit
// rejected state.
type FriendRequest struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FromUserID uint      `gorm:"not null;uniqueIndex:idx_friend_request_pair" json:"from_user_id"`
	ToUserID   uint      `gorm:"not null;uniqueIndex:idx_friend_request_pair" json:"to_user_id"`
	IsAccepted bool      `gorm:"not null;default:false;index:idx_friend_requests_accepted" json:"is_accepted"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	FromUser User `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
	ToUser   User `gorm:"foreignKey:ToUserID" json:"to_user,omitempty"`
}

// TableName specifies the table name for GORM
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// CooldownWindow is the minimum wait before a user may re-request friendship
// with the same target after a non-accepted outcome.
const CooldownWindow = 24 * time.Hour
