package bot

import (
	"context"
	"strings"
)

// ScriptedProvider answers without any external service. It is the default
// when no LLM API key is configured, and keeps the chat flow fully usable
// for local development.
type ScriptedProvider struct{}

func NewScriptedProvider() *ScriptedProvider { return &ScriptedProvider{} }

func (p *ScriptedProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	_ = ctx

	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			last = strings.ToLower(messages[i].Content)
			break
		}
	}

	switch {
	case strings.Contains(last, "i found these restaurants for you"):
		return "Great news - I found some spots that match what you're after! " +
			"Take a look at the cards below and hit like or dislike on each one " +
			"so I can sharpen my next round of picks.", nil
	case strings.Contains(last, "budget") || strings.Contains(last, "cheap"):
		return "Plenty of delicious options won't break the bank. Street food, " +
			"lunch specials and family-run spots are usually the best value - " +
			"what kind of flavors are you in the mood for?", nil
	case strings.Contains(last, "thank"):
		return "You're very welcome! Happy eating, and come back whenever you need " +
			"another recommendation.", nil
	default:
		return "I'd love to help you find somewhere great to eat. Tell me a cuisine, " +
			"a budget or a vibe and I'll suggest some restaurants near you.", nil
	}
}
