package models

import "time"

// Activity action labels recorded by the request lifecycle engine.
const (
	ActionSentFriendRequest     = "sent friend request"
	ActionAcceptedFriendRequest = "accepted friend request"
	ActionRejectedFriendRequest = "rejected friend request"
)

// Activity is an immutable audit-log entry. Rows are appended as a side
// effect of lifecycle transitions and never updated or deleted.
type Activity struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Action       string    `gorm:"type:varchar(255);not null" json:"action"`
	TargetUserID *uint     `json:"target_user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	User       User  `gorm:"foreignKey:UserID" json:"-"`
	TargetUser *User `gorm:"foreignKey:TargetUserID" json:"-"`
}

// TableName specifies the table name for GORM
func (Activity) TableName() string {
	return "activities"
}
