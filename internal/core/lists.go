package core

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"

	"medialog/internal/clients/metadata"
	"medialog/internal/utils"
)

// ListCatalog serves the trending/popular feeds. These are shared
// across every user, so they get one process-wide cache with a coarser
// window than the per-title detail cache, and a different failure
// policy: when TMDB is down, the previously cached payload is served
// regardless of how stale it is. For a browse feed, availability beats
// freshness.
type ListCatalog struct {
	tmdb      *metadata.TMDBClient
	fresh     *cache.Cache
	lastGood  *cache.Cache
	scheduler *cron.Cron
	logger    *utils.Logger
}

func NewListCatalog(tmdb *metadata.TMDBClient, ttl time.Duration, logger *utils.Logger) *ListCatalog {
	return &ListCatalog{
		tmdb:      tmdb,
		fresh:     cache.New(ttl, 10*time.Minute),
		lastGood:  cache.New(cache.NoExpiration, 0),
		scheduler: cron.New(),
		logger:    logger,
	}
}

// StartScheduler refreshes the feeds on the cache window so the
// stale-fallback copy is warm before users ask for it.
func (l *ListCatalog) StartScheduler() {
	l.scheduler.AddFunc("@every 30m", func() {
		l.Refresh(context.Background())
	})
	l.scheduler.Start()
	l.logger.Info("List scheduler started. Performing initial feed refresh.")
	go l.Refresh(context.Background())
}

func (l *ListCatalog) Stop() {
	if l.scheduler != nil {
		l.scheduler.Stop()
	}
}

// Trending returns the weekly trending feed for one content type.
func (l *ListCatalog) Trending(ctx context.Context, contentType metadata.ContentType) ([]metadata.SearchResultItem, error) {
	return l.fetch(ctx, "trending", contentType, l.tmdb.Trending)
}

// Popular returns the popular feed for one content type.
func (l *ListCatalog) Popular(ctx context.Context, contentType metadata.ContentType) ([]metadata.SearchResultItem, error) {
	return l.fetch(ctx, "popular", contentType, l.tmdb.Popular)
}

func (l *ListCatalog) fetch(ctx context.Context, kind string, contentType metadata.ContentType,
	call func(context.Context, metadata.ContentType) (*metadata.TMDBSearchPage, error)) ([]metadata.SearchResultItem, error) {

	key := kind + ":" + string(contentType)
	if cached, ok := l.fresh.Get(key); ok {
		return cached.([]metadata.SearchResultItem), nil
	}

	page, err := call(ctx, contentType)
	if err != nil {
		if stale, ok := l.lastGood.Get(key); ok {
			l.logger.Error("List fetch failed, serving stale", key, "payload:", err)
			return stale.([]metadata.SearchResultItem), nil
		}
		return nil, err
	}

	items := make([]metadata.SearchResultItem, 0, len(page.Results))
	for _, item := range page.Results {
		items = append(items, metadata.NormalizeTMDBSearchItem(item, contentType))
	}

	l.fresh.Set(key, items, cache.DefaultExpiration)
	l.lastGood.Set(key, items, cache.NoExpiration)
	return items, nil
}

// Refresh pre-warms all four feeds. Wired to the scheduler so the
// stale-fallback copy usually exists before any user asks.
func (l *ListCatalog) Refresh(ctx context.Context) {
	for _, kind := range []string{"trending", "popular"} {
		for _, contentType := range []metadata.ContentType{metadata.ContentTypeMovie, metadata.ContentTypeTV} {
			call := l.tmdb.Trending
			if kind == "popular" {
				call = l.tmdb.Popular
			}
			if _, err := l.fetch(ctx, kind, contentType, call); err != nil {
				l.logger.Error("Failed to refresh", kind, string(contentType), "list:", err)
			}
		}
	}
}
