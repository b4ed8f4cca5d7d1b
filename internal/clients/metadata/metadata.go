package metadata

import (
	"errors"
	"fmt"
)

// Provider identifies which external metadata source issued an ID.
// OMDb IDs are IMDb-style alphanumeric strings ("tt1234567"), TMDB IDs
// are numeric. The two ID spaces are never comparable, so every ID the
// system holds travels with its provider tag.
type Provider string

const (
	ProviderOMDb Provider = "omdb"
	ProviderTMDB Provider = "tmdb"
)

type ContentType string

const (
	ContentTypeMovie ContentType = "movie"
	ContentTypeTV    ContentType = "tv"
)

// ContentRef is a provider-tagged content identifier.
type ContentRef struct {
	Provider Provider `json:"provider"`
	ID       string   `json:"id"`
}

func (r ContentRef) String() string {
	return string(r.Provider) + ":" + r.ID
}

// DetailedContent is the unified detail record both providers are
// normalized into. Fields a provider reports with its own missing-data
// sentinel ("N/A", empty crew list, zero votes) become nil here; only
// the rating strings keep "N/A" as their sentinel.
type DetailedContent struct {
	Ref            ContentRef  `json:"ref"`
	Title          string      `json:"title"`
	Year           int         `json:"year"` // 0 = unknown
	PosterURL      *string     `json:"poster_url"`
	Genre          *string     `json:"genre"`
	Plot           *string     `json:"plot"`
	ContentRating  *string     `json:"content_rating"`
	CastSummary    *string     `json:"cast_summary"`
	Director       *string     `json:"director"`
	ImdbID         *string     `json:"imdb_id"`
	ExternalRating string      `json:"external_rating"` // decimal string or "N/A"
	ContentType    ContentType `json:"content_type"`
}

// SearchResultItem is the lighter-weight shape used for search and
// list feeds. Year stays a string because the providers format it
// differently ("2010", "2010–2015").
type SearchResultItem struct {
	Ref            ContentRef  `json:"ref"`
	Title          string      `json:"title"`
	Year           string      `json:"year"`
	PosterURL      *string     `json:"poster_url"`
	ContentType    ContentType `json:"content_type"`
	ExternalRating string      `json:"external_rating"`
}

// SearchResults groups the two type-scoped sub-searches. Combined is
// always the concatenation of Movies and TVShows.
type SearchResults struct {
	Movies   []SearchResultItem `json:"movies"`
	TVShows  []SearchResultItem `json:"tv_shows"`
	Combined []SearchResultItem `json:"combined"`
}

type SeriesStructure struct {
	TotalSeasons int            `json:"total_seasons"`
	Seasons      []SeasonDetail `json:"seasons"`
}

type SeasonDetail struct {
	SeasonNumber int             `json:"season_number"`
	Episodes     []EpisodeDetail `json:"episodes"`
}

type EpisodeDetail struct {
	// EpisodeID prefers a cross-provider stable ID (IMDb episode ID)
	// and falls back to the provider-native ID when none is available.
	EpisodeID     string  `json:"episode_id"`
	Title         string  `json:"title"`
	EpisodeNumber int     `json:"episode_number"`
	Rating        string  `json:"rating"` // decimal string or "N/A"
	ReleaseDate   *string `json:"release_date"`
}

// ErrNotConfigured is returned when a client is constructed without an
// API credential and a request is attempted anyway.
var ErrNotConfigured = errors.New("metadata provider credential is not configured")

// ProviderError reports a transport failure or a non-2xx response from
// a provider.
type ProviderError struct {
	Provider   Provider
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed with status %d", e.Provider, e.StatusCode)
}

// NotFoundError means the provider affirmatively reported that the
// title does not exist, carrying its human-readable message.
type NotFoundError struct {
	Provider Provider
	Message  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}
