package chat

import (
	"encoding/json"
	"time"

	"github.com/RehanAnsari17/Qloooooooo/internal/recs"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Session is one conversation with FoodieBot. The profile fields are a
// snapshot taken at registration; Active only ever flips true -> false.
type Session struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string     `gorm:"type:varchar(26);uniqueIndex;not null" json:"session_id"`
	UserID    uint64     `gorm:"index;not null" json:"-"`
	UserName  string     `gorm:"type:varchar(128);not null" json:"user_name"`
	UserAge   int        `gorm:"not null" json:"user_age"`
	Location  string     `gorm:"type:varchar(255);not null" json:"location"`
	Active    bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

func (Session) TableName() string { return "chat_sessions" }

// Message is append-only; insertion order is transcript order. Restaurants
// holds the JSON-encoded card list for bot messages that carry one.
type Message struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	MessageID   string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	SessionID   string    `gorm:"type:varchar(26);not null;index:idx_msg_user_session,priority:2" json:"session_id"`
	UserID      uint64    `gorm:"not null;index:idx_msg_user_session,priority:1" json:"-"`
	Sender      string    `gorm:"type:varchar(8);not null" json:"sender"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Restaurants []byte    `gorm:"type:text" json:"-"`
	CreatedAt   time.Time `json:"timestamp"`
}

func (Message) TableName() string { return "chat_messages" }

// RestaurantList decodes the attached cards, or nil for plain messages.
func (m *Message) RestaurantList() []recs.Restaurant {
	if len(m.Restaurants) == 0 {
		return nil
	}
	var out []recs.Restaurant
	if err := json.Unmarshal(m.Restaurants, &out); err != nil {
		return nil
	}
	return out
}

// SessionArchive is the write-behind shadow: one full JSON snapshot per
// session, keyed uniquely by session id so re-archiving upserts in place.
type SessionArchive struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	SessionID    string    `gorm:"type:varchar(26);uniqueIndex;not null"`
	Snapshot     []byte    `gorm:"type:text;not null"`
	MessageCount int       `gorm:"not null"`
	Active       bool      `gorm:"not null"`
	ArchivedAt   time.Time `gorm:"not null"`
}

func (SessionArchive) TableName() string { return "session_archives" }

// Snapshot is the archived shape of a session.
type Snapshot struct {
	SessionID string            `json:"session_id"`
	UserName  string            `json:"user_name"`
	UserAge   int               `json:"user_age"`
	Location  string            `json:"location"`
	Active    bool              `json:"is_active"`
	CreatedAt time.Time         `json:"created_at"`
	EndedAt   *time.Time        `json:"ended_at"`
	Messages  []SnapshotMessage `json:"messages"`
}

type SnapshotMessage struct {
	ID          string            `json:"id"`
	Sender      string            `json:"sender"`
	Content     string            `json:"content"`
	Restaurants []recs.Restaurant `json:"restaurants,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}
