package pexels

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"
	"github.com/timmy/mediagrid/internal/domain"
	"github.com/timmy/mediagrid/internal/logger"
	"github.com/timmy/mediagrid/internal/source"
)

const (
	ProviderID   = "pexels"
	ProviderName = "Pexels"

	// DefaultBaseURL is the public Pexels API host.
	DefaultBaseURL = "https://api.pexels.com"

	// DigitalArtQuery is the search keyword behind the digital-art category.
	DigitalArtQuery = "digital art"
)

// Config holds configuration for the Pexels client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// endpoint describes how one category maps onto the Pexels API.
type endpoint struct {
	path      string
	query     func(page, perPage int) map[string]string
	normalize func(resp *pageResponse) []domain.MediaItem
}

func pagingQuery(page, perPage int) map[string]string {
	return map[string]string{
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
	}
}

func searchQuery(keyword string) func(page, perPage int) map[string]string {
	return func(page, perPage int) map[string]string {
		q := pagingQuery(page, perPage)
		q["query"] = keyword
		return q
	}
}

// endpoints is the category dispatch table. New categories only need a new entry.
var endpoints = map[domain.Category]endpoint{
	domain.CategoryImages: {
		path:      "/v1/curated",
		query:     pagingQuery,
		normalize: normalizePhotos,
	},
	domain.CategoryVideos: {
		path:      "/videos/popular",
		query:     pagingQuery,
		normalize: normalizeVideos,
	},
	domain.CategoryDigitalArt: {
		path:      "/v1/search",
		query:     searchQuery(DigitalArtQuery),
		normalize: normalizePhotos,
	},
}

// Client implements the source.Provider interface for the Pexels API.
type Client struct {
	client *resty.Client
}

// NewClient creates a new Pexels client.
// Parameters:
//   - cfg: client configuration; APIKey is required.
//
// Returns:
//   - *Client: initialized client.
//   - error: non-nil if the API key is missing.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("pexels: api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", cfg.APIKey)
	client.SetHeader("Accept", "application/json")
	// One outbound call per page, failures are handled by the caller
	client.SetRetryCount(0)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{client: client}, nil
}

// GetProviderID returns the unique identifier for this provider.
func (c *Client) GetProviderID() string {
	return ProviderID
}

// GetDisplayName returns a human-readable name for this provider.
func (c *Client) GetDisplayName() string {
	return ProviderName
}

// Categories returns the categories present in the dispatch table, in navigation order.
func (c *Client) Categories() []domain.Category {
	return lo.Filter(domain.Categories, func(cat domain.Category, _ int) bool {
		_, ok := endpoints[cat]
		return ok
	})
}

// FetchPage fetches one page of media items for a category.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - category: media category to fetch.
//   - page: 1-based page number.
//   - perPage: number of items requested.
//
// Returns:
//   - []domain.MediaItem: normalized items; records without usable URLs are dropped.
//   - error: non-nil on transport, HTTP, or decoding failure.
func (c *Client) FetchPage(ctx context.Context, category domain.Category, page, perPage int) ([]domain.MediaItem, error) {
	ep, ok := endpoints[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrUnsupportedCategory, category)
	}

	var resp pageResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(ep.query(page, perPage)).
		ForceContentType("application/json").
		SetResult(&resp).
		SetError(&resp).
		Get(ep.path)

	if err != nil {
		return nil, fmt.Errorf("failed to call Pexels API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != "" {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return nil, fmt.Errorf("Pexels API returned error: %s", errorMsg)
	}

	items := ep.normalize(&resp)

	logger.With(logger.Fields{
		logger.FieldCategory: category.String(),
		logger.FieldPage:     page,
		logger.FieldCount:    len(items),
	}).Debug(ctx, "Fetched page from Pexels: path=%s", ep.path)

	return items, nil
}
