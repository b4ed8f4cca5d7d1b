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

const omdbDefaultURL = "https://www.omdbapi.com/"

// OMDbClient is a thin wrapper over the OMDb HTTP API. OMDb
// authenticates with an `apikey` query parameter and signals its own
// not-found condition in-band with Response:"False".
type OMDbClient struct {
	apiKey     string
	BaseURL    string
	httpClient *http.Client
}

func NewOMDbClient(apiKey string) *OMDbClient {
	return &OMDbClient{
		apiKey:  apiKey,
		BaseURL: omdbDefaultURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// OMDbRecord is the raw by-ID detail payload. Missing values arrive as
// the literal string "N/A"; normalization happens downstream.
type OMDbRecord struct {
	Title        string `json:"Title"`
	Year         string `json:"Year"`
	Rated        string `json:"Rated"`
	Released     string `json:"Released"`
	Genre        string `json:"Genre"`
	Director     string `json:"Director"`
	Actors       string `json:"Actors"`
	Plot         string `json:"Plot"`
	Poster       string `json:"Poster"`
	ImdbRating   string `json:"imdbRating"`
	ImdbID       string `json:"imdbID"`
	Type         string `json:"Type"`
	TotalSeasons string `json:"totalSeasons"`
	Response     string `json:"Response"`
	Error        string `json:"Error"`
}

type OMDbSearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type OMDbSearchPage struct {
	Search       []OMDbSearchItem `json:"Search"`
	TotalResults string           `json:"totalResults"`
	Response     string           `json:"Response"`
	Error        string           `json:"Error"`
}

type OMDbSeasonEpisode struct {
	Title      string `json:"Title"`
	Released   string `json:"Released"`
	Episode    string `json:"Episode"`
	ImdbRating string `json:"imdbRating"`
	ImdbID     string `json:"imdbID"`
}

type OMDbSeasonRecord struct {
	Title        string              `json:"Title"`
	Season       string              `json:"Season"`
	TotalSeasons string              `json:"totalSeasons"`
	Episodes     []OMDbSeasonEpisode `json:"Episodes"`
	Response     string              `json:"Response"`
	Error        string              `json:"Error"`
}

// ByID fetches the full detail record for an IMDb-style ID.
func (c *OMDbClient) ByID(ctx context.Context, id string) (*OMDbRecord, error) {
	params := url.Values{}
	params.Set("i", id)
	params.Set("plot", "full")

	var rec OMDbRecord
	if err := c.get(ctx, params, &rec); err != nil {
		return nil, err
	}
	if rec.Response == "False" {
		return nil, &NotFoundError{Provider: ProviderOMDb, Message: rec.Error}
	}
	return &rec, nil
}

// Search runs a title search. typeFilter may be "movie", "series" or
// empty for both.
func (c *OMDbClient) Search(ctx context.Context, query, typeFilter string) (*OMDbSearchPage, error) {
	params := url.Values{}
	params.Set("s", query)
	if typeFilter != "" {
		params.Set("type", typeFilter)
	}

	var page OMDbSearchPage
	if err := c.get(ctx, params, &page); err != nil {
		return nil, err
	}
	if page.Response == "False" {
		return nil, &NotFoundError{Provider: ProviderOMDb, Message: page.Error}
	}
	return &page, nil
}

// Season fetches the episode listing for one season of a series.
func (c *OMDbClient) Season(ctx context.Context, id string, season int) (*OMDbSeasonRecord, error) {
	params := url.Values{}
	params.Set("i", id)
	params.Set("season", strconv.Itoa(season))

	var rec OMDbSeasonRecord
	if err := c.get(ctx, params, &rec); err != nil {
		return nil, err
	}
	if rec.Response == "False" {
		return nil, &NotFoundError{Provider: ProviderOMDb, Message: rec.Error}
	}
	return &rec, nil
}

func (c *OMDbClient) get(ctx context.Context, params url.Values, target interface{}) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create OMDb request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Provider: ProviderOMDb, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ProviderError{Provider: ProviderOMDb, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode OMDb response: %w", err)
	}
	return nil
}
