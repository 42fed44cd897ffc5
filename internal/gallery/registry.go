package gallery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/mediagrid/internal/logger"
	"github.com/timmy/mediagrid/internal/metrics"
)

// ErrViewNotFound is returned for unknown or already discarded view IDs.
var ErrViewNotFound = errors.New("view not found")

// DefaultViewTTL is how long an untouched view is kept.
const DefaultViewTTL = 30 * time.Minute

// View is one gallery session. It owns exactly one controller.
type View struct {
	ID         string
	Controller *Controller
	CreatedAt  time.Time

	mu         sync.Mutex
	lastAccess time.Time
}

func (v *View) touch(now time.Time) {
	v.mu.Lock()
	v.lastAccess = now
	v.mu.Unlock()
}

// LastAccess returns when the view was last used.
func (v *View) LastAccess() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastAccess
}

// RegistryConfig holds configuration for the view registry.
type RegistryConfig struct {
	Controller ControllerConfig
	ViewTTL    time.Duration
}

// Registry keeps the open views of the process. State is in memory only.
type Registry struct {
	fetcher PageFetcher
	cfg     RegistryConfig
	metrics *metrics.Metrics
	now     func() time.Time

	mu    sync.RWMutex
	views map[string]*View
}

// NewRegistry creates an empty registry.
// Parameters:
//   - fetcher: page fetcher shared by all views.
//   - cfg: controller and TTL configuration.
//   - m: metrics sink, may be nil.
// Returns:
//   - *Registry: empty registry.
func NewRegistry(fetcher PageFetcher, cfg RegistryConfig, m *metrics.Metrics) *Registry {
	if cfg.ViewTTL <= 0 {
		cfg.ViewTTL = DefaultViewTTL
	}
	return &Registry{
		fetcher: fetcher,
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
		views:   make(map[string]*View),
	}
}

// Create opens a new idle view.
func (r *Registry) Create(ctx context.Context) *View {
	now := r.now()
	view := &View{
		ID:         uuid.New().String(),
		Controller: NewController(r.fetcher, r.cfg.Controller, r.metrics),
		CreatedAt:  now,
		lastAccess: now,
	}

	r.mu.Lock()
	r.views[view.ID] = view
	count := len(r.views)
	r.mu.Unlock()

	r.metrics.SetViewsActive(count)
	logger.CtxInfo(logger.SetViewID(ctx, view.ID), "View created: active=%d", count)
	return view
}

// Get returns a view and refreshes its idle timer.
func (r *Registry) Get(id string) (*View, error) {
	r.mu.RLock()
	view, ok := r.views[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrViewNotFound
	}
	view.touch(r.now())
	return view, nil
}

// Close discards a view and its accumulated items.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	view, ok := r.views[id]
	if ok {
		delete(r.views, id)
	}
	count := len(r.views)
	r.mu.Unlock()

	if !ok {
		return ErrViewNotFound
	}
	view.Controller.Close()
	r.metrics.SetViewsActive(count)
	return nil
}

// Len returns the number of open views.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Sweep closes views idle for longer than the TTL. Views with an open
// snapshot stream are never idle.
// Parameters:
//   - now: reference time.
// Returns:
//   - int: number of views closed.
func (r *Registry) Sweep(now time.Time) int {
	var expired []*View

	r.mu.Lock()
	for id, view := range r.views {
		if view.Controller.Subscribers() > 0 {
			view.touch(now)
			continue
		}
		if now.Sub(view.LastAccess()) > r.cfg.ViewTTL {
			expired = append(expired, view)
			delete(r.views, id)
		}
	}
	count := len(r.views)
	r.mu.Unlock()

	for _, view := range expired {
		view.Controller.Close()
	}
	if len(expired) > 0 {
		r.metrics.SetViewsActive(count)
		logger.With(logger.Fields{logger.FieldCount: len(expired)}).Info(context.Background(), "Expired idle views")
	}
	return len(expired)
}

// Run sweeps idle views every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// CloseAll discards every view.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*View)
	r.mu.Unlock()

	for _, view := range views {
		view.Controller.Close()
	}
	r.metrics.SetViewsActive(0)
}
