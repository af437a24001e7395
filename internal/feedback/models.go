package feedback

import "time"

const (
	PrefLike    = "like"
	PrefDislike = "dislike"
)

// Preference records one like/dislike judgment. Keyed by (session,
// restaurant): resubmitting overwrites the row, so a card re-clicked with a
// different polarity ends up with exactly one stored record.
type Preference struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	FeedbackID     string    `gorm:"type:varchar(36);not null" json:"id"`
	UserID         uint64    `gorm:"index;not null" json:"-"`
	SessionID      string    `gorm:"type:varchar(26);not null;index:uniq_session_restaurant,unique,priority:1" json:"session_id"`
	RestaurantID   string    `gorm:"type:varchar(64);not null;index:uniq_session_restaurant,unique,priority:2" json:"restaurant_id"`
	RestaurantName string    `gorm:"type:varchar(255);not null" json:"restaurant_name"`
	Preference     string    `gorm:"type:varchar(8);not null" json:"preference"`
	Comment        *string   `gorm:"type:varchar(500)" json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Preference) TableName() string { return "restaurant_preferences" }
