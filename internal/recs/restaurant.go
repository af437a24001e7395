package recs

// Restaurant is the card payload attached to bot messages. Everything beyond
// id and name is optional; the client renders whatever is present.
type Restaurant struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Website     *string  `json:"website,omitempty"`
	CuisineType *string  `json:"cuisine_type,omitempty"`
	PriceRange  *string  `json:"price_range,omitempty"`
	Description *string  `json:"description,omitempty"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func floatPtr(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
