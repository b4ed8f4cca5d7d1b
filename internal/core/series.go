package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"medialog/internal/clients/metadata"
)

// GetSeriesStructure assembles the full season/episode tree for a
// show. Season listings are fetched with one request per season, all
// outstanding at once; long-running shows can have tens of seasons and
// fetching them sequentially would dominate request latency. Results
// are not cached: the structure is only pulled when a user opens
// episode tracking, never on a hot path.
//
// There is no partial result. If any season request fails the whole
// assembly fails.
func (c *Catalog) GetSeriesStructure(ctx context.Context, ref metadata.ContentRef) (*metadata.SeriesStructure, error) {
	switch ref.Provider {
	case metadata.ProviderOMDb:
		return c.assembleOMDbSeries(ctx, ref.ID)
	case metadata.ProviderTMDB:
		id, err := strconv.Atoi(ref.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid TMDB id %q: %w", ref.ID, err)
		}
		return c.assembleTMDBSeries(ctx, id)
	default:
		return nil, fmt.Errorf("unknown metadata provider %q", ref.Provider)
	}
}

func (c *Catalog) assembleOMDbSeries(ctx context.Context, id string) (*metadata.SeriesStructure, error) {
	rec, err := c.omdb.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	total, err := strconv.Atoi(rec.TotalSeasons)
	if err != nil {
		// "N/A" or absent means the provider knows no seasons.
		total = 0
	}
	if total <= 0 {
		return &metadata.SeriesStructure{TotalSeasons: 0, Seasons: []metadata.SeasonDetail{}}, nil
	}

	return fanOutSeasons(total, func(season int) (metadata.SeasonDetail, error) {
		raw, err := c.omdb.Season(ctx, id, season)
		if err != nil {
			return metadata.SeasonDetail{}, err
		}
		return mapOMDbSeason(id, season, raw), nil
	})
}

func (c *Catalog) assembleTMDBSeries(ctx context.Context, id int) (*metadata.SeriesStructure, error) {
	details, err := c.tmdb.Details(ctx, id, metadata.ContentTypeTV)
	if err != nil {
		return nil, err
	}

	total := details.NumberOfSeasons
	if total <= 0 {
		return &metadata.SeriesStructure{TotalSeasons: 0, Seasons: []metadata.SeasonDetail{}}, nil
	}

	return fanOutSeasons(total, func(season int) (metadata.SeasonDetail, error) {
		raw, err := c.tmdb.Season(ctx, id, season)
		if err != nil {
			return metadata.SeasonDetail{}, err
		}
		return mapTMDBSeason(season, raw), nil
	})
}

// fanOutSeasons issues one fetch per season number 1..total
// concurrently and joins on all of them. The first error observed
// fails the assembly. Seasons land in their slot by number, and both
// seasons and episodes are sorted defensively; neither provider
// guarantees response ordering.
func fanOutSeasons(total int, fetch func(season int) (metadata.SeasonDetail, error)) (*metadata.SeriesStructure, error) {
	seasons := make([]metadata.SeasonDetail, total)
	errs := make([]error, total)

	var wg sync.WaitGroup
	for n := 1; n <= total; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			seasons[n-1], errs[n-1] = fetch(n)
		}(n)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(seasons, func(i, j int) bool {
		return seasons[i].SeasonNumber < seasons[j].SeasonNumber
	})
	for i := range seasons {
		episodes := seasons[i].Episodes
		sort.Slice(episodes, func(a, b int) bool {
			return episodes[a].EpisodeNumber < episodes[b].EpisodeNumber
		})
	}

	return &metadata.SeriesStructure{TotalSeasons: total, Seasons: seasons}, nil
}

func mapOMDbSeason(showID string, season int, raw *metadata.OMDbSeasonRecord) metadata.SeasonDetail {
	detail := metadata.SeasonDetail{
		SeasonNumber: season,
		Episodes:     make([]metadata.EpisodeDetail, 0, len(raw.Episodes)),
	}

	for _, ep := range raw.Episodes {
		number, err := strconv.Atoi(ep.Episode)
		if err != nil {
			continue
		}

		episodeID := ep.ImdbID
		if episodeID == "" || episodeID == metadata.RatingUnknown {
			// No stable cross-provider ID for this episode; synthesize
			// one from its position so it is at least non-empty and
			// unique within the structure.
			episodeID = fmt.Sprintf("%s/s%de%d", showID, season, number)
		}

		rating := ep.ImdbRating
		if rating == "" {
			rating = metadata.RatingUnknown
		}

		var release *string
		if ep.Released != "" && ep.Released != metadata.RatingUnknown {
			released := ep.Released
			release = &released
		}

		detail.Episodes = append(detail.Episodes, metadata.EpisodeDetail{
			EpisodeID:     episodeID,
			Title:         ep.Title,
			EpisodeNumber: number,
			Rating:        rating,
			ReleaseDate:   release,
		})
	}

	return detail
}

func mapTMDBSeason(season int, raw *metadata.TMDBSeasonRecord) metadata.SeasonDetail {
	detail := metadata.SeasonDetail{
		SeasonNumber: season,
		Episodes:     make([]metadata.EpisodeDetail, 0, len(raw.Episodes)),
	}

	for _, ep := range raw.Episodes {
		// Prefer the cross-provider IMDb episode ID when the season
		// payload carried one; fall back to TMDB's own episode ID.
		episodeID := ep.ExternalIDs.ImdbID
		if episodeID == "" {
			episodeID = strconv.Itoa(ep.ID)
		}

		var release *string
		if ep.AirDate != "" {
			airDate := ep.AirDate
			release = &airDate
		}

		detail.Episodes = append(detail.Episodes, metadata.EpisodeDetail{
			EpisodeID:     episodeID,
			Title:         ep.Name,
			EpisodeNumber: ep.EpisodeNumber,
			Rating:        metadata.TMDBEpisodeRating(ep),
			ReleaseDate:   release,
		})
	}

	return detail
}
