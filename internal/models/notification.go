package models

import "time"

// Notification is a user-facing message created as a side effect of a
// lifecycle transition. It is mutated only by the bulk mark-all-read
// operation and never deleted. Delivery is pull-only.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_notifications_user_read" json:"user_id"`
	Message   string    `gorm:"type:varchar(255);not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false;index:idx_notifications_user_read" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
