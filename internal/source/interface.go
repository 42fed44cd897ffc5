package source

import (
	"context"
	"errors"

	"github.com/timmy/mediagrid/internal/domain"
)

// ErrUnsupportedCategory is returned by providers asked for a category they have no endpoint for.
var ErrUnsupportedCategory = errors.New("category not supported by provider")

// Provider defines the interface for external media providers.
type Provider interface {
	// GetProviderID returns the unique identifier for this provider.
	// Parameters: none.
	// Returns:
	//   - string: stable provider identifier.
	GetProviderID() string

	// GetDisplayName returns a human-readable name for this provider.
	// Parameters: none.
	// Returns:
	//   - string: display-friendly provider name.
	GetDisplayName() string

	// Categories returns the categories this provider can page through.
	// Parameters: none.
	// Returns:
	//   - []domain.Category: supported categories.
	Categories() []domain.Category

	// FetchPage issues exactly one request for a page of media items.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - category: media category to fetch.
	//   - page: 1-based page number.
	//   - perPage: page size requested from the provider.
	// Returns:
	//   - items: normalized media items in provider order.
	//   - err: non-nil on transport, HTTP status, or decoding failure.
	FetchPage(ctx context.Context, category domain.Category, page, perPage int) (items []domain.MediaItem, err error)
}
