package chat

import (
	"github.com/google/uuid"

	"github.com/RehanAnsari17/Qloooooooo/internal/common"
)

// NewSessionID returns a sortable 26-char session id.
func NewSessionID() (string, error) {
	return common.NewULID()
}

// NewMessageID returns a random UUID for one message.
func NewMessageID() string {
	return uuid.NewString()
}
