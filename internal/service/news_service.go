package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"maison-mode/internal/domain"

	"go.uber.org/zap"
)

// TagAll is the sentinel tag selection that shows the unfiltered news list.
const TagAll = "all"

// PreviewSize bounds the homepage news preview.
const PreviewSize = 2

// NewsSource is the slice of the backend client the news feed consumes.
type NewsSource interface {
	ActiveNews(ctx context.Context) ([]domain.NewsItem, error)
}

// NewsService fetches active news from the backend, sorts featured items
// first and recent items next, and serves a bounded preview plus a
// tag-filterable full list. A fetch failure degrades to an empty feed; it
// is logged, never surfaced as an error to the storefront.
type NewsService interface {
	Preview(ctx context.Context) []domain.NewsItem
	List(ctx context.Context, tag string) []domain.NewsItem
	Tags(ctx context.Context) []string
}

type newsService struct {
	source   NewsSource
	cacheTTL time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	items     []domain.NewsItem
	fetchedAt time.Time
}

// NewNewsService creates a news feed over the given source. Fetched items
// are cached for ttl; failures are cached too, so a dead backend is not
// hammered on every page view.
func NewNewsService(source NewsSource, ttl time.Duration, logger *zap.Logger) NewsService {
	return &newsService{
		source:   source,
		cacheTTL: ttl,
		logger:   logger,
	}
}

// Preview returns at most PreviewSize items, featured first.
func (s *newsService) Preview(ctx context.Context) []domain.NewsItem {
	items := s.load(ctx)
	if len(items) > PreviewSize {
		items = items[:PreviewSize]
	}
	return items
}

// List returns the sorted feed, optionally narrowed to an exact tag match.
// The TagAll sentinel (or an empty tag) returns the unfiltered feed.
func (s *newsService) List(ctx context.Context, tag string) []domain.NewsItem {
	items := s.load(ctx)
	if tag == "" || tag == TagAll {
		return items
	}

	filtered := make([]domain.NewsItem, 0, len(items))
	for _, item := range items {
		for _, t := range item.Tags {
			if t == tag {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}

// Tags returns the deduplicated union of tags across loaded items, sorted
// for a stable vocabulary.
func (s *newsService) Tags(ctx context.Context) []string {
	seen := make(map[string]struct{})
	for _, item := range s.load(ctx) {
		for _, t := range item.Tags {
			seen[t] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// load returns the cached sorted feed, fetching when the cache is stale.
// Exactly one fetch attempt is made per refresh; no retries.
func (s *newsService) load(ctx context.Context) []domain.NewsItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.fetchedAt) < s.cacheTTL {
		return s.items
	}

	items, err := s.source.ActiveNews(ctx)
	if err != nil {
		s.logger.Warn("News fetch failed, serving empty feed", zap.Error(err))
		items = nil
	}
	sortNews(items)

	s.items = items
	s.fetchedAt = time.Now()
	return s.items
}

// sortNews orders featured items before the rest and newer items before
// older ones. The sort is stable, so items sharing a flag and timestamp
// keep their delivered order.
func sortNews(items []domain.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Featured != items[j].Featured {
			return items[i].Featured
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
