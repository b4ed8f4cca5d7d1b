package core

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"medialog/internal/clients/metadata"
	"medialog/internal/utils"
)

// Catalog is the aggregation facade the rest of the application talks
// to. It owns the per-title detail cache and decides, per identifier,
// which provider client and normalizer pair to dispatch to. It is the
// first layer allowed to catch a provider error and decide what to do
// with it; the clients and normalizers below it only throw.
type Catalog struct {
	omdb    *metadata.OMDbClient
	tmdb    *metadata.TMDBClient
	details *cache.Cache
	logger  *utils.Logger
}

func NewCatalog(omdb *metadata.OMDbClient, tmdb *metadata.TMDBClient, detailTTL time.Duration, logger *utils.Logger) *Catalog {
	return &Catalog{
		omdb:    omdb,
		tmdb:    tmdb,
		details: cache.New(detailTTL, 10*time.Minute),
		logger:  logger,
	}
}

// detailKey includes the content type because TMDB movie and TV IDs
// live in separate numeric spaces and can collide.
func detailKey(ref metadata.ContentRef, contentType metadata.ContentType) string {
	return string(ref.Provider) + ":" + string(contentType) + ":" + ref.ID
}

// GetDetails returns the unified detail record for a title,
// cache-first. contentType selects the TMDB endpoint family; OMDb
// records declare their own type and ignore it.
func (c *Catalog) GetDetails(ctx context.Context, ref metadata.ContentRef, contentType metadata.ContentType) (*metadata.DetailedContent, error) {
	key := detailKey(ref, contentType)
	if cached, ok := c.details.Get(key); ok {
		return cached.(*metadata.DetailedContent), nil
	}

	var details *metadata.DetailedContent
	switch ref.Provider {
	case metadata.ProviderOMDb:
		rec, err := c.omdb.ByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		details = metadata.NormalizeOMDbRecord(rec)
	case metadata.ProviderTMDB:
		id, err := strconv.Atoi(ref.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid TMDB id %q: %w", ref.ID, err)
		}
		raw, err := c.tmdb.Details(ctx, id, contentType)
		if err != nil {
			return nil, err
		}
		ids, err := c.tmdb.ExternalIDs(ctx, id, contentType)
		if err != nil {
			// The record is still useful without a cross-provider ID.
			c.logger.Error("External ID lookup failed for", ref, ":", err)
			ids = nil
		}
		details = metadata.NormalizeTMDBDetails(raw, ids, contentType)
	default:
		return nil, fmt.Errorf("unknown metadata provider %q", ref.Provider)
	}

	c.details.Set(key, details, cache.DefaultExpiration)
	return details, nil
}

// SearchAll fans out two type-scoped searches in parallel: movies
// through OMDb, TV shows through TMDB. A failing sub-search empties
// only its own list; the call as a whole succeeds as long as the query
// is valid.
func (c *Catalog) SearchAll(ctx context.Context, query string) (*metadata.SearchResults, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}

	var (
		wg     sync.WaitGroup
		movies []metadata.SearchResultItem
		shows  []metadata.SearchResultItem
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		page, err := c.omdb.Search(ctx, query, "movie")
		if err != nil {
			c.logger.Error("Movie search failed for", query, ":", err)
			return
		}
		for _, item := range page.Search {
			movies = append(movies, metadata.NormalizeOMDbSearchItem(item))
		}
	}()
	go func() {
		defer wg.Done()
		page, err := c.tmdb.Search(ctx, query, metadata.ContentTypeTV)
		if err != nil {
			c.logger.Error("TV search failed for", query, ":", err)
			return
		}
		for _, item := range page.Results {
			shows = append(shows, metadata.NormalizeTMDBSearchItem(item, metadata.ContentTypeTV))
		}
	}()
	wg.Wait()

	combined := make([]metadata.SearchResultItem, 0, len(movies)+len(shows))
	combined = append(combined, movies...)
	combined = append(combined, shows...)

	return &metadata.SearchResults{
		Movies:   movies,
		TVShows:  shows,
		Combined: combined,
	}, nil
}
