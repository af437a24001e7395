package bot

import (
	"fmt"
	"strings"
)

// SystemPrompt pins every provider to the FoodieBot persona. Kept short and
// strict: the bot only talks about food, restaurants and dining.
const SystemPrompt = `You are FoodieBot, an expert restaurant and food recommendation assistant.

SPECIALIZATIONS:
- Restaurant recommendations and reviews
- Cuisine types, dietary restrictions and preferences
- Local food scenes, menu suggestions and dish recommendations
- Budget-friendly to fine dining options

PERSONALIZATION:
- Always consider the user's location for local recommendations
- Factor in their age for appropriate dining experiences
- Suggest options that match their stated preferences

COMMUNICATION STYLE:
- Be enthusiastic and knowledgeable about food
- Keep responses conversational, engaging and clearly formatted
- Ask follow-up questions to better understand preferences

BOUNDARIES:
- Only discuss food, restaurants, cafes and dining-related topics
- If asked about non-food topics, politely redirect to food discussions
- Don't provide medical advice, only general dietary information`

// UserContext frames one user turn with the profile and any restaurants the
// insights API returned, so the reply can reference the cards shown below it.
func UserContext(name string, age int, location, message string, restaurantNames []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "USER PROFILE:\n- Name: %s\n- Age: %d\n- Location: %s\n\n", name, age, location)
	fmt.Fprintf(&b, "USER MESSAGE: %s", message)
	if len(restaurantNames) > 0 {
		fmt.Fprintf(&b, "\n\nI found these restaurants for you: %s. "+
			"Detailed cards with images, ratings and contact information are shown below your response.",
			strings.Join(restaurantNames, ", "))
	}
	b.WriteString("\n\nProvide a helpful, personalized response about restaurants, food or dining " +
		"based on their profile and message. If restaurants were found, mention that they are shown " +
		"below and encourage the user to use the like/dislike buttons to improve future recommendations.")
	return b.String()
}

func Greeting(name, location string) string {
	return fmt.Sprintf("Hello %s! I'm FoodieBot, your personal restaurant and food discovery assistant. "+
		"I'm excited to help you explore the culinary scene in %s.\n\n"+
		"I can help you with restaurant recommendations, cuisine suggestions, cafe discoveries, "+
		"budget-friendly options, fine dining experiences and dietary preferences. "+
		"I'll show you restaurant cards with photos, ratings and contact info - use the like/dislike "+
		"buttons to help me learn your tastes!\n\n"+
		"What are you craving today?", name, location)
}

const ClosingMessage = "Thank you for chatting with me! I hope I helped you discover some great " +
	"dining options. Feel free to start a new conversation anytime you need restaurant recommendations!"

// FallbackReply is used when the provider call fails; the conversation keeps
// going instead of surfacing an error to the user.
func FallbackReply(location string) string {
	return fmt.Sprintf("I'm having trouble connecting right now, but I'd love to help you find "+
		"great food in %s! What type of cuisine are you interested in?", location)
}
