package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "Lisbon" {
			t.Errorf("q = %q", r.URL.Query().Get("q"))
		}
		w.Write([]byte(`[{
			"display_name": "Lisbon, Portugal",
			"address": {"city": "Lisbon", "country": "Portugal"}
		}]`))
	}))
	defer srv.Close()

	place, err := NewClient(srv.URL).Search(context.Background(), "Lisbon")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if place.City != "Lisbon" || place.Country != "Portugal" {
		t.Fatalf("unexpected place: %+v", place)
	}
}

func TestSearch_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Search(context.Background(), "nowhereville-xyz")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"display_name": "Porto, Portugal",
			"address": {"town": "Porto", "country": "Portugal"}
		}`))
	}))
	defer srv.Close()

	place, err := NewClient(srv.URL).Reverse(context.Background(), 41.15, -8.61)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	// town fills in when no city is present
	if place.City != "Porto" {
		t.Fatalf("city = %q, want Porto", place.City)
	}
}

func TestReverse_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Reverse(context.Background(), 0, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
