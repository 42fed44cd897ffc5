package gallery

import "github.com/timmy/mediagrid/internal/domain"

// DefaultMaxItems is the per-category cap after which load-more is disabled.
const DefaultMaxItems = 20

// CategoryState is the accumulated result set of one category within a view.
// It only grows until Reset.
type CategoryState struct {
	Category      domain.Category
	Items         []domain.MediaItem
	NextPage      int
	IsLoadingMore bool
}

// NewCategoryState returns an empty state positioned on page 1.
func NewCategoryState() *CategoryState {
	s := &CategoryState{}
	s.Reset("")
	return s
}

// Reset clears the state for a newly selected category.
func (s *CategoryState) Reset(category domain.Category) {
	s.Category = category
	s.Items = []domain.MediaItem{}
	s.NextPage = 1
	s.IsLoadingMore = false
}

// AppendPage adds a successfully fetched page to the tail and advances the page cursor.
// NextPage advances even for an empty or short page, so a provider that serves
// variable page sizes can drift out of step with the cursor. Items re-served by
// the provider are not deduplicated.
func (s *CategoryState) AppendPage(items []domain.MediaItem) {
	s.Items = append(s.Items, items...)
	s.NextPage++
}

// HasReachedCap reports whether len(Items) >= limit.
func (s *CategoryState) HasReachedCap(limit int) bool {
	return len(s.Items) >= limit
}
