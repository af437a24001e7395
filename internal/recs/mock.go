package recs

import "fmt"

// mockRestaurants is the fallback list used when the insights API is not
// configured or fails; the chat flow must keep showing cards regardless.
func mockRestaurants(location string, limit int) []Restaurant {
	all := []Restaurant{
		{
			ID:          "mock-1",
			Name:        fmt.Sprintf("Bella Vista Restaurant (%s)", location),
			ImageURL:    strPtr("https://images.pexels.com/photos/262978/pexels-photo-262978.jpeg"),
			Rating:      floatPtr(4.5),
			Address:     strPtr(fmt.Sprintf("123 Main St, %s", location)),
			Phone:       strPtr("+1-555-0123"),
			Website:     strPtr("https://bellavista.com"),
			CuisineType: strPtr("Italian"),
			PriceRange:  strPtr("$$"),
			Description: strPtr("Authentic Italian cuisine with fresh ingredients"),
		},
		{
			ID:          "mock-2",
			Name:        fmt.Sprintf("Sakura Sushi (%s)", location),
			ImageURL:    strPtr("https://images.pexels.com/photos/357756/pexels-photo-357756.jpeg"),
			Rating:      floatPtr(4.7),
			Address:     strPtr(fmt.Sprintf("456 Oak Ave, %s", location)),
			Phone:       strPtr("+1-555-0456"),
			Website:     strPtr("https://sakurasushi.com"),
			CuisineType: strPtr("Japanese"),
			PriceRange:  strPtr("$$$"),
			Description: strPtr("Fresh sushi and traditional Japanese dishes"),
		},
		{
			ID:          "mock-3",
			Name:        fmt.Sprintf("The Local Bistro (%s)", location),
			ImageURL:    strPtr("https://images.pexels.com/photos/1581384/pexels-photo-1581384.jpeg"),
			Rating:      floatPtr(4.3),
			Address:     strPtr(fmt.Sprintf("789 Pine St, %s", location)),
			Phone:       strPtr("+1-555-0789"),
			Website:     strPtr("https://localbistro.com"),
			CuisineType: strPtr("American"),
			PriceRange:  strPtr("$$"),
			Description: strPtr("Farm-to-table American cuisine with local ingredients"),
		},
		{
			ID:          "mock-4",
			Name:        fmt.Sprintf("Spice Garden (%s)", location),
			ImageURL:    strPtr("https://images.pexels.com/photos/1640777/pexels-photo-1640777.jpeg"),
			Rating:      floatPtr(4.6),
			Address:     strPtr(fmt.Sprintf("321 Elm St, %s", location)),
			Phone:       strPtr("+1-555-0321"),
			Website:     strPtr("https://spicegarden.com"),
			CuisineType: strPtr("Indian"),
			PriceRange:  strPtr("$$"),
			Description: strPtr("Authentic Indian spices and traditional recipes"),
		},
		{
			ID:          "mock-5",
			Name:        fmt.Sprintf("Cafe Parisien (%s)", location),
			ImageURL:    strPtr("https://images.pexels.com/photos/1307698/pexels-photo-1307698.jpeg"),
			Rating:      floatPtr(4.4),
			Address:     strPtr(fmt.Sprintf("654 Maple Ave, %s", location)),
			Phone:       strPtr("+1-555-0654"),
			Website:     strPtr("https://cafeparisien.com"),
			CuisineType: strPtr("French"),
			PriceRange:  strPtr("$$$"),
			Description: strPtr("Classic French cafe with pastries and coffee"),
		},
	}
	if limit > 0 && limit < len(all) {
		return all[:limit]
	}
	return all
}
