package bot

import "context"

type Message struct {
	Role    string // "system", "user" or "bot"
	Content string
}

// Provider turns a conversation into one FoodieBot reply.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
