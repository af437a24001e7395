package recs

import "strings"

var recommendKeywords = []string{
	"recommend", "suggest", "find", "restaurant", "food", "eat", "dining", "cuisine",
}

var cuisineKeywords = []string{
	"italian", "chinese", "japanese", "indian", "mexican", "french", "thai", "american",
}

// pizza maps onto the italian signal entity, so treat it as italian.
var cuisineAliases = map[string]string{
	"pizza": "italian",
	"sushi": "japanese",
}

// ShouldRecommend reports whether a user message is asking for restaurant
// suggestions, by keyword scan.
func ShouldRecommend(message string) bool {
	m := strings.ToLower(message)
	for _, kw := range recommendKeywords {
		if strings.Contains(m, kw) {
			return true
		}
	}
	for alias := range cuisineAliases {
		if strings.Contains(m, alias) {
			return true
		}
	}
	return false
}

// DetectCuisine extracts a cuisine type from the message, or "" if none.
func DetectCuisine(message string) string {
	m := strings.ToLower(message)
	for _, c := range cuisineKeywords {
		if strings.Contains(m, c) {
			return c
		}
	}
	for alias, c := range cuisineAliases {
		if strings.Contains(m, alias) {
			return c
		}
	}
	return ""
}
