package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFakeTMDB(t *testing.T, handler http.HandlerFunc) *TMDBClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewTMDBClient("test-token", "en-US")
	client.BaseURL = srv.URL
	return client
}

func TestTMDBDetailsRequest(t *testing.T) {
	var gotPath, gotAuth, gotAppend string
	client := newFakeTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAppend = r.URL.Query().Get("append_to_response")
		w.Write([]byte(`{"id":550,"title":"Fight Club","release_date":"1999-10-15","vote_average":8.4,"vote_count":26280}`))
	})

	details, err := client.Details(context.Background(), 550, ContentTypeMovie)
	if err != nil {
		t.Fatalf("Details returned error: %v", err)
	}
	if details.ID != 550 || details.Title != "Fight Club" {
		t.Errorf("got details %+v", details)
	}

	// Credentials travel as a bearer header, never in the URL.
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want Bearer test-token", gotAuth)
	}
	if gotPath != "/movie/550" {
		t.Errorf("path = %q, want /movie/550", gotPath)
	}
	if gotAppend != "credits" {
		t.Errorf("append_to_response = %q, want credits", gotAppend)
	}
}

func TestTMDBDetailsTVPath(t *testing.T) {
	var gotPath string
	client := newFakeTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"id":1396,"name":"Breaking Bad","number_of_seasons":5}`))
	})

	details, err := client.Details(context.Background(), 1396, ContentTypeTV)
	if err != nil {
		t.Fatalf("Details returned error: %v", err)
	}
	if gotPath != "/tv/1396" {
		t.Errorf("path = %q, want /tv/1396", gotPath)
	}
	if details.NumberOfSeasons != 5 {
		t.Errorf("NumberOfSeasons = %d, want 5", details.NumberOfSeasons)
	}
}

func TestTMDBNotFound(t *testing.T) {
	client := newFakeTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	})

	_, err := client.Details(context.Background(), 99999999, ContentTypeMovie)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if notFound.Message != "The resource you requested could not be found." {
		t.Errorf("Message = %q, want provider status_message", notFound.Message)
	}
}

func TestTMDBUnauthorizedIsProviderError(t *testing.T) {
	client := newFakeTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key."}`))
	})

	_, err := client.Details(context.Background(), 550, ContentTypeMovie)
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want ProviderError", err)
	}
	if provErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", provErr.StatusCode)
	}
}

func TestTMDBMissingToken(t *testing.T) {
	client := NewTMDBClient("", "en-US")
	if _, err := client.Details(context.Background(), 550, ContentTypeMovie); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestTMDBSeasonRequest(t *testing.T) {
	var gotPath, gotAppend string
	client := newFakeTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAppend = r.URL.Query().Get("append_to_response")
		w.Write([]byte(`{"season_number":1,"episodes":[{"id":62085,"name":"Pilot","episode_number":1,"vote_average":8.2,"vote_count":5000}]}`))
	})

	rec, err := client.Season(context.Background(), 1396, 1)
	if err != nil {
		t.Fatalf("Season returned error: %v", err)
	}
	if gotPath != "/tv/1396/season/1" {
		t.Errorf("path = %q, want /tv/1396/season/1", gotPath)
	}
	if gotAppend != "external_ids" {
		t.Errorf("append_to_response = %q, want external_ids", gotAppend)
	}
	if len(rec.Episodes) != 1 || rec.Episodes[0].Name != "Pilot" {
		t.Errorf("got record %+v", rec)
	}
}

func TestTMDBTrendingAndPopularPaths(t *testing.T) {
	var paths []string
	client := newFakeTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"page":1,"results":[]}`))
	})

	if _, err := client.Trending(context.Background(), ContentTypeMovie); err != nil {
		t.Fatalf("Trending returned error: %v", err)
	}
	if _, err := client.Popular(context.Background(), ContentTypeTV); err != nil {
		t.Fatalf("Popular returned error: %v", err)
	}

	want := []string{"/trending/movie/week", "/tv/popular"}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("request %d path = %q, want %q", i, paths[i], p)
		}
	}
}
