package models

import "time"

// User is an authenticated dashboard account. Role is one of admin,
// agronomist, procurement or farmer; FarmerID links farmer accounts to
// their own record.
type User struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         string    `gorm:"column:role;not null;default:farmer" json:"role"`
	FarmerID     *int64    `gorm:"column:farmer_id" json:"farmerId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
