package models

import "time"

// UserBlock is a directed block edge. Blocking is independent of friend
// requests: creating a block does not delete an existing request or
// friendship between the pair.
type UserBlock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"not null;uniqueIndex:idx_user_block_pair" json:"blocker_id"`
	BlockedID uint      `gorm:"not null;uniqueIndex:idx_user_block_pair" json:"blocked_id"`
	BlockedAt time.Time `gorm:"autoCreateTime" json:"blocked_at"`

	Blocker User `gorm:"foreignKey:BlockerID" json:"-"`
	Blocked User `gorm:"foreignKey:BlockedID" json:"-"`
}

// TableName specifies the table name for GORM
func (UserBlock) TableName() string {
	return "user_blocks"
}
