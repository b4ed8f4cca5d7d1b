package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	tmdbDefaultURL = "https://api.themoviedb.org/3"

	// Poster paths are partial; two size prefixes are used depending
	// on where the image is consumed.
	tmdbPosterThumbBase  = "https://image.tmdb.org/t/p/w185"
	tmdbPosterDetailBase = "https://image.tmdb.org/t/p/w500"
)

// TMDBClient wraps the TMDB v3 REST API. Unlike OMDb, TMDB
// authenticates with a bearer token header, and related resources
// (credits, external IDs) are inlined into a single round trip via
// append_to_response.
type TMDBClient struct {
	accessToken string
	BaseURL     string
	language    string
	httpClient  *http.Client
}

func NewTMDBClient(accessToken, language string) *TMDBClient {
	return &TMDBClient{
		accessToken: accessToken,
		BaseURL:     tmdbDefaultURL,
		language:    language,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type TMDBGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type TMDBCastMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type TMDBCrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

type TMDBCredits struct {
	Cast []TMDBCastMember `json:"cast"`
	Crew []TMDBCrewMember `json:"crew"`
}

type TMDBCreator struct {
	Name string `json:"name"`
}

// TMDBDetails covers both /movie/{id} and /tv/{id} payloads; the two
// endpoints use different field names for the same concepts (title vs
// name, release_date vs first_air_date, crew director vs created_by).
type TMDBDetails struct {
	ID              int           `json:"id"`
	Title           string        `json:"title"`
	Name            string        `json:"name"`
	Overview        string        `json:"overview"`
	ReleaseDate     string        `json:"release_date"`
	FirstAirDate    string        `json:"first_air_date"`
	NumberOfSeasons int           `json:"number_of_seasons"`
	VoteAverage     float64       `json:"vote_average"`
	VoteCount       int           `json:"vote_count"`
	Genres          []TMDBGenre   `json:"genres"`
	PosterPath      string        `json:"poster_path"`
	CreatedBy       []TMDBCreator `json:"created_by"`
	Credits         TMDBCredits   `json:"credits"`
}

type TMDBExternalIDs struct {
	ImdbID string `json:"imdb_id"`
}

type TMDBSearchItem struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	PosterPath   string  `json:"poster_path"`
}

type TMDBSearchPage struct {
	Page         int              `json:"page"`
	TotalResults int              `json:"total_results"`
	Results      []TMDBSearchItem `json:"results"`
}

type TMDBSeasonEpisode struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	EpisodeNumber int     `json:"episode_number"`
	AirDate       string  `json:"air_date"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	ExternalIDs   struct {
		ImdbID string `json:"imdb_id"`
	} `json:"external_ids"`
}

type TMDBSeasonRecord struct {
	SeasonNumber int                 `json:"season_number"`
	Episodes     []TMDBSeasonEpisode `json:"episodes"`
}

type tmdbErrorBody struct {
	StatusMessage string `json:"status_message"`
	StatusCode    int    `json:"status_code"`
}

// Details fetches base details plus credits in one round trip.
func (c *TMDBClient) Details(ctx context.Context, id int, contentType ContentType) (*TMDBDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits")
	params.Set("language", c.language)

	var details TMDBDetails
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", c.pathType(contentType), id), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// ExternalIDs resolves the IMDb ID for a TMDB title, when one exists.
func (c *TMDBClient) ExternalIDs(ctx context.Context, id int, contentType ContentType) (*TMDBExternalIDs, error) {
	var ids TMDBExternalIDs
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/external_ids", c.pathType(contentType), id), url.Values{}, &ids); err != nil {
		return nil, err
	}
	return &ids, nil
}

// Search runs a type-scoped title search.
func (c *TMDBClient) Search(ctx context.Context, query string, contentType ContentType) (*TMDBSearchPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", c.language)

	var page TMDBSearchPage
	if err := c.get(ctx, "/search/"+c.pathType(contentType), params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Season fetches one season's episode listing, requesting per-episode
// external IDs inline where the API supplies them.
func (c *TMDBClient) Season(ctx context.Context, id, season int) (*TMDBSeasonRecord, error) {
	params := url.Values{}
	params.Set("append_to_response", "external_ids")
	params.Set("language", c.language)

	var rec TMDBSeasonRecord
	if err := c.get(ctx, fmt.Sprintf("/tv/%d/season/%d", id, season), params, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Trending fetches the weekly trending feed for one content type.
func (c *TMDBClient) Trending(ctx context.Context, contentType ContentType) (*TMDBSearchPage, error) {
	params := url.Values{}
	params.Set("language", c.language)

	var page TMDBSearchPage
	if err := c.get(ctx, fmt.Sprintf("/trending/%s/week", c.pathType(contentType)), params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Popular fetches the popular feed for one content type.
func (c *TMDBClient) Popular(ctx context.Context, contentType ContentType) (*TMDBSearchPage, error) {
	params := url.Values{}
	params.Set("language", c.language)

	var page TMDBSearchPage
	if err := c.get(ctx, fmt.Sprintf("/%s/popular", c.pathType(contentType)), params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *TMDBClient) pathType(contentType ContentType) string {
	if contentType == ContentTypeTV {
		return "tv"
	}
	return "movie"
}

func (c *TMDBClient) get(ctx context.Context, path string, params url.Values, target interface{}) error {
	if c.accessToken == "" {
		return ErrNotConfigured
	}

	reqURL := c.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create TMDB request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Provider: ProviderTMDB, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body tmdbErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if resp.StatusCode == http.StatusNotFound {
			msg := body.StatusMessage
			if msg == "" {
				msg = "not found"
			}
			return &NotFoundError{Provider: ProviderTMDB, Message: msg}
		}
		return &ProviderError{Provider: ProviderTMDB, StatusCode: resp.StatusCode, Message: body.StatusMessage}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode TMDB response: %w", err)
	}
	return nil
}

// TMDBRefFromID builds a provider-tagged ref from a numeric TMDB ID.
func TMDBRefFromID(id int) ContentRef {
	return ContentRef{Provider: ProviderTMDB, ID: strconv.Itoa(id)}
}
