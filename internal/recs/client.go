package recs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// cuisine -> insights signal entity. Only a couple of signals are mapped;
// unmapped cuisines still filter by location.
var cuisineEntityMap = map[string]string{
	"italian": "FCE8B172-4795-43E4-B222-3B550DC05FD9",
}

// Client queries a Qloo-style insights API for restaurant recommendations.
// With no API key it serves the built-in mock list, so the chat flow never
// depends on the external service being up.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://hackathon.api.qloo.com/v2"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// the insights endpoint routinely takes 15-20s
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type insightsResponse struct {
	Results struct {
		Entities []struct {
			EntityID   string `json:"entity_id"`
			Name       string `json:"name"`
			Properties struct {
				Address        string  `json:"address"`
				Phone          string  `json:"phone"`
				Website        string  `json:"website"`
				Description    string  `json:"description"`
				BusinessRating float64 `json:"business_rating"`
				Image          struct {
					URL string `json:"url"`
				} `json:"image"`
				PriceRange string `json:"price_range"`
			} `json:"properties"`
		} `json:"entities"`
	} `json:"results"`
}

// Recommendations returns up to limit restaurants near location. It never
// returns an error: any failure degrades to the mock list.
func (c *Client) Recommendations(ctx context.Context, location, cuisine string, limit int) []Restaurant {
	if limit <= 0 {
		limit = 5
	}
	if c.apiKey == "" {
		return mockRestaurants(location, limit)
	}

	q := url.Values{}
	q.Set("filter.type", "urn:entity:place")
	q.Set("filter.location.query", location)
	q.Set("limit", fmt.Sprintf("%d", limit))
	if entity, ok := cuisineEntityMap[strings.ToLower(cuisine)]; ok {
		q.Set("signal.interests.entities", entity)
	}

	reqURL := fmt.Sprintf("%s/insights?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Printf("recs: build request: %v", err)
		return mockRestaurants(location, limit)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("recs: insights request failed: %v", err)
		return mockRestaurants(location, limit)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("recs: insights status %d", resp.StatusCode)
		return mockRestaurants(location, limit)
	}

	var decoded insightsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		log.Printf("recs: decode insights response: %v", err)
		return mockRestaurants(location, limit)
	}

	entities := decoded.Results.Entities
	if len(entities) == 0 {
		return mockRestaurants(location, limit)
	}
	if len(entities) > limit {
		entities = entities[:limit]
	}

	out := make([]Restaurant, 0, len(entities))
	for _, e := range entities {
		id := e.EntityID
		if id == "" {
			id = uuid.NewString()
		}
		name := e.Name
		if name == "" {
			name = "Unknown Restaurant"
		}
		out = append(out, Restaurant{
			ID:          id,
			Name:        name,
			ImageURL:    strPtr(e.Properties.Image.URL),
			Rating:      floatPtr(e.Properties.BusinessRating),
			Address:     strPtr(e.Properties.Address),
			Phone:       strPtr(e.Properties.Phone),
			Website:     strPtr(e.Properties.Website),
			CuisineType: strPtr(cuisine),
			PriceRange:  strPtr(e.Properties.PriceRange),
			Description: strPtr(e.Properties.Description),
		})
	}
	return out
}

// Details fetches extended metadata (hours, specialty dishes, amenity tags)
// for one restaurant. Unlike Recommendations, callers see the error: the
// handler degrades to the basic card fields.
func (c *Client) Details(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("insights api not configured")
	}

	reqURL := fmt.Sprintf("%s/insights/%s", c.baseURL, url.PathEscape(restaurantID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch restaurant details: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("restaurant details: status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode restaurant details: %w", err)
	}
	return raw, nil
}
