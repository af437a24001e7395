package models

import "time"

// User is an account owned by this service. DefaultLocation is what the user
// registered with; CurrentLocation tracks the most recent location update.
type User struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email           string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash    string    `gorm:"type:varchar(128);not null" json:"-"`
	Name            string    `gorm:"type:varchar(128);not null" json:"name"`
	Age             int       `gorm:"not null" json:"age"`
	DefaultLocation string    `gorm:"type:varchar(255)" json:"default_location"`
	CurrentLocation string    `gorm:"type:varchar(255)" json:"current_location"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
