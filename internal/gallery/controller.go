package gallery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/timmy/mediagrid/internal/domain"
	"github.com/timmy/mediagrid/internal/logger"
	"github.com/timmy/mediagrid/internal/metrics"
)

// ErrControllerClosed is returned when a closed controller is asked to load a category.
var ErrControllerClosed = errors.New("gallery controller closed")

// DefaultFetchTimeout bounds a single provider fetch.
const DefaultFetchTimeout = 15 * time.Second

const (
	// LoadMoreLabel is shown while more items can be requested.
	LoadMoreLabel = "Load More"
	// ExhaustedLabel is shown once the cap is reached.
	ExhaustedLabel = "Nothing more to show."
)

// State is the load-more controller state.
// Values include StateIdle, StateFetchingInitial, StateReady, StateFetchingMore, and StateCapped.
type State string

const (
	StateIdle            State = "idle"
	StateFetchingInitial State = "fetching_initial"
	StateReady           State = "ready"
	StateFetchingMore    State = "fetching_more"
	StateCapped          State = "capped"
)

// Fetching reports whether a fetch is in flight in this state.
func (s State) Fetching() bool {
	return s == StateFetchingInitial || s == StateFetchingMore
}

// ControllerConfig holds configuration for a Controller.
type ControllerConfig struct {
	MaxItems     int
	FetchTimeout time.Duration
}

// Snapshot is the consumer-facing view of a controller.
type Snapshot struct {
	Category        domain.Category    `json:"category,omitempty"`
	State           State              `json:"state"`
	Items           []domain.MediaItem `json:"items"`
	NextPage        int                `json:"next_page"`
	MaxItems        int                `json:"max_items"`
	IsLoadingMore   bool               `json:"is_loading_more"`
	IsCapped        bool               `json:"is_capped"`
	CanLoadMore     bool               `json:"can_load_more"`
	LastFetchFailed bool               `json:"last_fetch_failed"`
	Footer          string             `json:"footer,omitempty"`
}

// Controller coordinates category selection and load-more requests for one view.
// At most one fetch is in flight at a time; results of a fetch issued for a
// previous category selection are discarded.
type Controller struct {
	fetcher      PageFetcher
	maxItems     int
	fetchTimeout time.Duration
	metrics      *metrics.Metrics

	mu         sync.Mutex
	state      State
	items      *CategoryState
	generation uint64
	lastFailed bool
	closed     bool

	closeCtx    context.Context
	closeCancel context.CancelFunc
	inFlight    sync.WaitGroup

	subscribers map[int]chan Snapshot
	nextSubID   int
}

// NewController creates a controller in the Idle state.
// Parameters:
//   - fetcher: page fetcher shared across views.
//   - cfg: cap and fetch timeout; zero values use the defaults.
//   - m: metrics sink, may be nil.
// Returns:
//   - *Controller: idle controller.
func NewController(fetcher PageFetcher, cfg ControllerConfig, m *metrics.Metrics) *Controller {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	closeCtx, closeCancel := context.WithCancel(context.Background())
	return &Controller{
		fetcher:      fetcher,
		maxItems:     cfg.MaxItems,
		fetchTimeout: cfg.FetchTimeout,
		metrics:      m,
		state:        StateIdle,
		items:        NewCategoryState(),
		closeCtx:     closeCtx,
		closeCancel:  closeCancel,
		subscribers:  make(map[int]chan Snapshot),
	}
}

// SelectCategory resets the accumulated items and starts fetching page 1.
// It is accepted from any state, including while another fetch is in flight.
// Parameters:
//   - ctx: request context; only its logger fields are carried into the fetch.
//   - category: category to load.
// Returns:
//   - Snapshot: state right after the transition to FetchingInitial.
//   - error: ErrControllerClosed after Close.
func (c *Controller) SelectCategory(ctx context.Context, category domain.Category) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.snapshotLocked(), ErrControllerClosed
	}

	if c.state.Fetching() {
		logger.CtxDebug(ctx, "Category switched with fetch in flight, result will be discarded: from=%s", c.items.Category)
	}

	c.generation++
	c.items.Reset(category)
	c.lastFailed = false
	c.state = StateFetchingInitial

	c.startFetchLocked(ctx, category, c.items.NextPage)
	return c.publishLocked(), nil
}

// RequestMore fetches the next page if the controller is Ready.
// Requests in any other state are ignored, never queued.
// Parameters:
//   - ctx: request context; only its logger fields are carried into the fetch.
// Returns:
//   - bool: true if a fetch was started.
//   - Snapshot: current state.
func (c *Controller) RequestMore(ctx context.Context) (bool, Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StateReady {
		c.metrics.IncLoadMoreIgnored(string(c.state))
		logger.CtxDebug(ctx, "Load more ignored: state=%s", c.state)
		return false, c.snapshotLocked()
	}

	c.state = StateFetchingMore
	c.items.IsLoadingMore = true

	c.startFetchLocked(ctx, c.items.Category, c.items.NextPage)
	return true, c.publishLocked()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every transition.
// Slow subscribers only see the latest snapshot. The returned func unsubscribes.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
	}
}

// Subscribers returns the number of open snapshot subscriptions.
func (c *Controller) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscribers)
}

// Wait blocks until no fetch is in flight.
func (c *Controller) Wait() {
	c.inFlight.Wait()
}

// Close aborts in-flight fetches and closes subscriber channels.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.generation++
	c.closeCancel()

	for id, ch := range c.subscribers {
		delete(c.subscribers, id)
		close(ch)
	}
}

// startFetchLocked launches the fetch goroutine tagged with the current generation.
func (c *Controller) startFetchLocked(ctx context.Context, category domain.Category, page int) {
	generation := c.generation

	// Detach from the request lifetime but keep its log fields.
	logCtx := logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldCategory: category.String(),
	}).WithContext(c.closeCtx)
	fetchCtx, cancel := context.WithTimeout(logger.SetComponent(logCtx, "gallery"), c.fetchTimeout)

	c.inFlight.Add(1)
	go func() {
		defer c.inFlight.Done()
		defer cancel()

		result := c.fetcher.Fetch(fetchCtx, category, page)
		c.complete(fetchCtx, generation, result)
	}()
}

func (c *Controller) complete(ctx context.Context, generation uint64, page Page) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		c.metrics.IncStaleResponse()
		logger.With(logger.Fields{
			logger.FieldPage:  page.Number,
			logger.FieldCount: len(page.Items),
		}).Debug(ctx, "Discarding stale page: category=%s", page.Category)
		return
	}

	// A failed fetch leaves the cursor alone so the same page is requested again.
	if !page.Failed {
		c.items.AppendPage(page.Items)
		c.metrics.AddItemsLoaded(page.Category.String(), len(page.Items))
	}
	c.items.IsLoadingMore = false
	c.lastFailed = page.Failed

	if c.items.HasReachedCap(c.maxItems) {
		c.state = StateCapped
	} else {
		c.state = StateReady
	}

	entry := logger.With(logger.Fields{
		logger.FieldCount: len(c.items.Items),
	}).WithPage(page.Number)
	if page.Failed {
		entry.WithStatus(metrics.OutcomeFailed).Warn(ctx, "Page not loaded, next page stays at %d", c.items.NextPage)
	} else {
		entry.WithStatus(string(c.state)).Info(ctx, "Page appended")
	}

	c.publishLocked()
}

func (c *Controller) publishLocked() Snapshot {
	snap := c.snapshotLocked()
	for _, ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
			// Replace the unread snapshot with the latest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	return snap
}

func (c *Controller) snapshotLocked() Snapshot {
	items := make([]domain.MediaItem, len(c.items.Items))
	copy(items, c.items.Items)

	snap := Snapshot{
		Category:        c.items.Category,
		State:           c.state,
		Items:           items,
		NextPage:        c.items.NextPage,
		MaxItems:        c.maxItems,
		IsLoadingMore:   c.items.IsLoadingMore,
		IsCapped:        c.state == StateCapped,
		LastFetchFailed: c.lastFailed,
	}

	switch c.state {
	case StateIdle:
	case StateCapped:
		snap.Footer = ExhaustedLabel
	default:
		snap.CanLoadMore = true
		snap.Footer = LoadMoreLabel
	}
	return snap
}
