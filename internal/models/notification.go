package models

import "time"

// Notification is a dashboard inbox entry.
type Notification struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	Message   string    `gorm:"column:message;not null" json:"message"`
	Level     string    `gorm:"column:level;default:info" json:"level"`
	Read      bool      `gorm:"column:read" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Notification) TableName() string {
	return "notifications"
}
