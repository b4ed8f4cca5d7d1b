package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// RatingUnknown is the sentinel kept by the rating string fields. All
// other fields translate provider missing-data sentinels to nil so the
// literal "N/A" never leaks into a nullable field.
const RatingUnknown = "N/A"

const tmdbTopCastCount = 5

// omdbValue translates OMDb's "N/A" sentinel (or an empty string) to
// nil. Fields are checked independently; a record may have a valid
// genre and a missing plot at the same time.
func omdbValue(s string) *string {
	if s == "" || s == RatingUnknown {
		return nil
	}
	return &s
}

// omdbYear extracts the leading 4-digit year from OMDb's year field,
// which may be a plain year or a range like "2010–2015". Unparsable
// input yields 0.
func omdbYear(s string) int {
	if len(s) < 4 {
		return 0
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0
	}
	return year
}

func omdbRating(s string) string {
	if s == "" {
		return RatingUnknown
	}
	return s
}

// NormalizeOMDbRecord maps a raw OMDb detail payload into the unified
// shape. Pure mapping, no I/O.
func NormalizeOMDbRecord(rec *OMDbRecord) *DetailedContent {
	contentType := ContentTypeMovie
	if rec.Type == "series" {
		contentType = ContentTypeTV
	}

	return &DetailedContent{
		Ref:            ContentRef{Provider: ProviderOMDb, ID: rec.ImdbID},
		Title:          rec.Title,
		Year:           omdbYear(rec.Year),
		PosterURL:      omdbValue(rec.Poster),
		Genre:          omdbValue(rec.Genre),
		Plot:           omdbValue(rec.Plot),
		ContentRating:  omdbValue(rec.Rated),
		CastSummary:    omdbValue(rec.Actors),
		Director:       omdbValue(rec.Director),
		ImdbID:         omdbValue(rec.ImdbID),
		ExternalRating: omdbRating(rec.ImdbRating),
		ContentType:    contentType,
	}
}

// NormalizeOMDbSearchItem maps one OMDb search hit.
func NormalizeOMDbSearchItem(item OMDbSearchItem) SearchResultItem {
	contentType := ContentTypeMovie
	if item.Type == "series" {
		contentType = ContentTypeTV
	}

	return SearchResultItem{
		Ref:            ContentRef{Provider: ProviderOMDb, ID: item.ImdbID},
		Title:          item.Title,
		Year:           item.Year,
		PosterURL:      omdbValue(item.Poster),
		ContentType:    contentType,
		ExternalRating: RatingUnknown, // search pages carry no rating
	}
}

// dateYear extracts the calendar year from a "2006-01-02" date string.
func dateYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// tmdbVote formats the 0-10 vote average to one decimal place. A title
// with zero votes has no audience score at all, so it gets the same
// sentinel OMDb uses for unrated titles.
func tmdbVote(average float64, count int) string {
	if count == 0 {
		return RatingUnknown
	}
	return fmt.Sprintf("%.1f", average)
}

func tmdbPoster(path, sizeBase string) *string {
	if path == "" {
		return nil
	}
	u := sizeBase + path
	return &u
}

func tmdbGenres(genres []TMDBGenre) *string {
	if len(genres) == 0 {
		return nil
	}
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	joined := strings.Join(names, ", ")
	return &joined
}

// tmdbDirector resolves the person filling the director role. Movies
// carry a crew list where exactly the entries with job "Director"
// qualify (first match wins); TV shows use the created_by list
// instead. The two content types use structurally different provider
// fields for the same semantic concept.
func tmdbDirector(details *TMDBDetails, contentType ContentType) *string {
	if contentType == ContentTypeTV {
		if len(details.CreatedBy) == 0 {
			return nil
		}
		name := details.CreatedBy[0].Name
		return &name
	}
	for _, member := range details.Credits.Crew {
		if member.Job == "Director" {
			name := member.Name
			return &name
		}
	}
	return nil
}

func tmdbCast(credits TMDBCredits) *string {
	if len(credits.Cast) == 0 {
		return nil
	}
	limit := tmdbTopCastCount
	if len(credits.Cast) < limit {
		limit = len(credits.Cast)
	}
	names := make([]string, 0, limit)
	for _, member := range credits.Cast[:limit] {
		names = append(names, member.Name)
	}
	joined := strings.Join(names, ", ")
	return &joined
}

// NormalizeTMDBDetails maps the joint output of the details+credits
// call and the external-ids call into the unified shape. Pure mapping,
// no I/O.
func NormalizeTMDBDetails(details *TMDBDetails, ids *TMDBExternalIDs, contentType ContentType) *DetailedContent {
	title := details.Title
	date := details.ReleaseDate
	if contentType == ContentTypeTV {
		title = details.Name
		date = details.FirstAirDate
	}

	var imdbID *string
	if ids != nil && ids.ImdbID != "" {
		imdbID = &ids.ImdbID
	}

	var plot *string
	if details.Overview != "" {
		plot = &details.Overview
	}

	return &DetailedContent{
		Ref:            TMDBRefFromID(details.ID),
		Title:          title,
		Year:           dateYear(date),
		PosterURL:      tmdbPoster(details.PosterPath, tmdbPosterDetailBase),
		Genre:          tmdbGenres(details.Genres),
		Plot:           plot,
		ContentRating:  nil, // TMDB v3 does not expose a certification without another call
		CastSummary:    tmdbCast(details.Credits),
		Director:       tmdbDirector(details, contentType),
		ImdbID:         imdbID,
		ExternalRating: tmdbVote(details.VoteAverage, details.VoteCount),
		ContentType:    contentType,
	}
}

// TMDBEpisodeRating formats an episode's vote average with the same
// zero-votes sentinel rule as title ratings.
func TMDBEpisodeRating(ep TMDBSeasonEpisode) string {
	return tmdbVote(ep.VoteAverage, ep.VoteCount)
}

// NormalizeTMDBSearchItem maps one TMDB search or list hit. Search
// thumbnails use the smaller poster size prefix.
func NormalizeTMDBSearchItem(item TMDBSearchItem, contentType ContentType) SearchResultItem {
	title := item.Title
	date := item.ReleaseDate
	if contentType == ContentTypeTV {
		title = item.Name
		date = item.FirstAirDate
	}

	year := ""
	if y := dateYear(date); y > 0 {
		year = strconv.Itoa(y)
	}

	return SearchResultItem{
		Ref:            TMDBRefFromID(item.ID),
		Title:          title,
		Year:           year,
		PosterURL:      tmdbPoster(item.PosterPath, tmdbPosterThumbBase),
		ContentType:    contentType,
		ExternalRating: tmdbVote(item.VoteAverage, item.VoteCount),
	}
}
