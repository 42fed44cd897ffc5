package gallery

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/timmy/mediagrid/internal/domain"
	"github.com/timmy/mediagrid/internal/logger"
	"github.com/timmy/mediagrid/internal/metrics"
	"github.com/timmy/mediagrid/internal/source"
)

// DefaultPageSize is the number of items requested per provider page.
const DefaultPageSize = 5

// Page is the outcome of one fetch. Failed marks a provider error that was
// absorbed into an empty page; the controller keeps its cursor on such a page.
type Page struct {
	Category domain.Category
	Number   int
	Items    []domain.MediaItem
	Failed   bool
}

// PageFetcher loads one page of a category. Implementations never return errors.
type PageFetcher interface {
	Fetch(ctx context.Context, category domain.Category, page int) Page
}

// Fetcher adapts a source.Provider into a PageFetcher with a fixed page size.
type Fetcher struct {
	provider source.Provider
	pageSize int
	metrics  *metrics.Metrics
}

// NewFetcher creates a new fetcher.
// Parameters:
//   - provider: external media provider.
//   - pageSize: items per request; non-positive values use DefaultPageSize.
//   - m: metrics sink, may be nil.
// Returns:
//   - *Fetcher: initialized fetcher.
func NewFetcher(provider source.Provider, pageSize int, m *metrics.Metrics) *Fetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Fetcher{
		provider: provider,
		pageSize: pageSize,
		metrics:  m,
	}
}

// Fetch issues exactly one provider request. Provider failures are logged and
// returned as an empty page with Failed set; no retry is attempted.
func (f *Fetcher) Fetch(ctx context.Context, category domain.Category, page int) Page {
	start := time.Now()
	result := Page{Category: category, Number: page, Items: []domain.MediaItem{}}

	items, err := f.provider.FetchPage(ctx, category, page, f.pageSize)
	elapsed := time.Since(start)

	entry := logger.With(logger.Fields{
		logger.FieldProvider: f.provider.GetProviderID(),
		logger.FieldCategory: category.String(),
	}).WithPage(page).WithDuration(elapsed.Milliseconds())

	if err != nil {
		result.Failed = true
		f.metrics.ObserveFetch(category.String(), metrics.OutcomeFailed, elapsed)
		entry.WithStatus(metrics.OutcomeFailed).Error(ctx, "Failed to fetch page from %s: %v", f.provider.GetDisplayName(), err)
		return result
	}

	result.Items = lo.Filter(items, func(item domain.MediaItem, _ int) bool {
		if item.ThumbnailURL == "" {
			return false
		}
		return item.Kind == domain.MediaKindVideo || item.SourceURL != ""
	})

	outcome := metrics.OutcomeOK
	if len(result.Items) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	f.metrics.ObserveFetch(category.String(), outcome, elapsed)
	entry.WithCount(len(result.Items)).WithStatus(outcome).Debug(ctx, "Fetched page")

	return result
}
