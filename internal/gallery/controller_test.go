package gallery

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/timmy/mediagrid/internal/domain"
	"github.com/timmy/mediagrid/internal/logger"
	"github.com/timmy/mediagrid/internal/metrics"
	"github.com/timmy/mediagrid/internal/source/pexels"
)

type fetchCall struct {
	category domain.Category
	page     int
}

// fakeFetcher serves pageSize items per page. Categories listed in gates block
// until their gate is closed or the fetch context ends.
type fakeFetcher struct {
	mu       sync.Mutex
	calls    []fetchCall
	pageSize int
	failed   bool
	gates    map[domain.Category]chan struct{}
}

func newFakeFetcher(pageSize int) *fakeFetcher {
	return &fakeFetcher{pageSize: pageSize, gates: make(map[domain.Category]chan struct{})}
}

func (f *fakeFetcher) block(category domain.Category) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gates[category] = gate
	return gate
}

func (f *fakeFetcher) Fetch(ctx context.Context, category domain.Category, page int) Page {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{category: category, page: page})
	gate := f.gates[category]
	failed := f.failed
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Page{Category: category, Number: page, Items: []domain.MediaItem{}, Failed: true}
		}
	}
	if failed {
		return Page{Category: category, Number: page, Items: []domain.MediaItem{}, Failed: true}
	}
	return Page{Category: category, Number: page, Items: makeItems(category, page, f.pageSize)}
}

func (f *fakeFetcher) setFailed(failed bool) {
	f.mu.Lock()
	f.failed = failed
	f.mu.Unlock()
}

func (f *fakeFetcher) requestedPages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	pages := make([]int, len(f.calls))
	for i, call := range f.calls {
		pages[i] = call.page
	}
	return pages
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func waitForState(t *testing.T, c *Controller, want State) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := c.Snapshot()
		if snap.State == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("controller did not reach state %s, last state %s", want, c.Snapshot().State)
	return Snapshot{}
}

func waitForCalls(t *testing.T, f *fakeFetcher, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.callCount() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d fetch calls, got %d", want, f.callCount())
}

func TestController_StartsIdle(t *testing.T) {
	c := NewController(newFakeFetcher(5), ControllerConfig{}, nil)
	defer c.Close()

	snap := c.Snapshot()
	if snap.State != StateIdle || snap.CanLoadMore || snap.Footer != "" {
		t.Errorf("unexpected idle snapshot: %+v", snap)
	}
	if snap.NextPage != 1 || len(snap.Items) != 0 {
		t.Errorf("unexpected initial pagination: next=%d items=%d", snap.NextPage, len(snap.Items))
	}

	accepted, _ := c.RequestMore(context.Background())
	if accepted {
		t.Errorf("load more must be ignored while idle")
	}
}

func TestController_VideosEndToEnd(t *testing.T) {
	fetcher := newFakeFetcher(5)
	c := NewController(fetcher, ControllerConfig{MaxItems: 20}, metrics.New(nil))
	defer c.Close()
	ctx := context.Background()

	snap, err := c.SelectCategory(ctx, domain.CategoryVideos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.State != StateFetchingInitial {
		t.Errorf("state after select = %s, want %s", snap.State, StateFetchingInitial)
	}
	c.Wait()

	snap = c.Snapshot()
	if len(snap.Items) != 5 || snap.NextPage != 2 || snap.State != StateReady {
		t.Fatalf("after page 1: items=%d next=%d state=%s", len(snap.Items), snap.NextPage, snap.State)
	}
	if !snap.CanLoadMore || snap.Footer != LoadMoreLabel {
		t.Errorf("load more affordance should be shown: %+v", snap)
	}

	accepted, snap := c.RequestMore(ctx)
	if !accepted || snap.State != StateFetchingMore || !snap.IsLoadingMore {
		t.Fatalf("expected FetchingMore with loading flag, got accepted=%v %+v", accepted, snap)
	}
	c.Wait()

	snap = c.Snapshot()
	if len(snap.Items) != 10 || snap.NextPage != 3 || snap.IsLoadingMore {
		t.Fatalf("after page 2: items=%d next=%d loading=%v", len(snap.Items), snap.NextPage, snap.IsLoadingMore)
	}

	for len(c.Snapshot().Items) < 20 {
		if accepted, _ := c.RequestMore(ctx); !accepted {
			t.Fatalf("load more rejected at %d items", len(c.Snapshot().Items))
		}
		c.Wait()
	}

	snap = c.Snapshot()
	if snap.State != StateCapped || !snap.IsCapped {
		t.Errorf("state = %s, want %s", snap.State, StateCapped)
	}
	if snap.CanLoadMore || snap.Footer != ExhaustedLabel {
		t.Errorf("capped view must hide load more: %+v", snap)
	}
	if snap.NextPage != 5 {
		t.Errorf("NextPage = %d, want 5", snap.NextPage)
	}

	// Capped is terminal until the category changes.
	if accepted, _ := c.RequestMore(ctx); accepted {
		t.Errorf("load more must be ignored once capped")
	}
	if fetcher.callCount() != 4 {
		t.Errorf("expected 4 fetches, got %d", fetcher.callCount())
	}

	_, _ = c.SelectCategory(ctx, domain.CategoryImages)
	c.Wait()
	snap = c.Snapshot()
	if snap.Category != domain.CategoryImages || len(snap.Items) != 5 || snap.State != StateReady {
		t.Errorf("category change should leave capped: %+v", snap)
	}
}

func TestController_CappedByFirstPage(t *testing.T) {
	c := NewController(newFakeFetcher(25), ControllerConfig{MaxItems: 20}, nil)
	defer c.Close()

	_, _ = c.SelectCategory(context.Background(), domain.CategoryImages)
	c.Wait()

	if snap := c.Snapshot(); snap.State != StateCapped {
		t.Errorf("state = %s, want %s", snap.State, StateCapped)
	}
}

func TestController_RequestMoreGuard(t *testing.T) {
	fetcher := newFakeFetcher(5)
	c := NewController(fetcher, ControllerConfig{}, nil)
	defer c.Close()
	ctx := context.Background()

	_, _ = c.SelectCategory(ctx, domain.CategoryImages)
	c.Wait()

	gate := fetcher.block(domain.CategoryImages)

	first, _ := c.RequestMore(ctx)
	second, snap := c.RequestMore(ctx)

	if !first {
		t.Fatalf("first load more should be accepted")
	}
	if second {
		t.Errorf("second load more must be ignored while fetching")
	}
	if snap.State != StateFetchingMore {
		t.Errorf("state = %s, want %s", snap.State, StateFetchingMore)
	}

	close(gate)
	c.Wait()

	if got := fetcher.callCount(); got != 2 {
		t.Errorf("expected 2 fetcher invocations (initial + one more), got %d", got)
	}
	if snap := c.Snapshot(); len(snap.Items) != 10 || snap.NextPage != 3 {
		t.Errorf("unexpected result: items=%d next=%d", len(snap.Items), snap.NextPage)
	}
}

func TestController_RequestMoreIgnoredDuringInitialFetch(t *testing.T) {
	fetcher := newFakeFetcher(5)
	gate := fetcher.block(domain.CategoryVideos)
	c := NewController(fetcher, ControllerConfig{}, nil)
	defer c.Close()

	_, _ = c.SelectCategory(context.Background(), domain.CategoryVideos)
	if accepted, _ := c.RequestMore(context.Background()); accepted {
		t.Errorf("load more must be ignored during the initial fetch")
	}

	close(gate)
	c.Wait()

	if fetcher.callCount() != 1 {
		t.Errorf("expected a single fetch, got %d", fetcher.callCount())
	}
}

func TestController_DiscardsStaleResult(t *testing.T) {
	fetcher := newFakeFetcher(5)
	imagesGate := fetcher.block(domain.CategoryImages)
	c := NewController(fetcher, ControllerConfig{}, metrics.New(nil))
	defer c.Close()
	ctx := context.Background()

	_, _ = c.SelectCategory(ctx, domain.CategoryImages)
	waitForCalls(t, fetcher, 1)

	_, _ = c.SelectCategory(ctx, domain.CategoryVideos)
	snap := waitForState(t, c, StateReady)
	if snap.Category != domain.CategoryVideos || len(snap.Items) != 5 {
		t.Fatalf("unexpected videos snapshot: category=%s items=%d", snap.Category, len(snap.Items))
	}

	// Let the images fetch resolve after the switch.
	close(imagesGate)
	c.Wait()

	snap = c.Snapshot()
	if len(snap.Items) != 5 || snap.NextPage != 2 {
		t.Errorf("stale page leaked: items=%d next=%d", len(snap.Items), snap.NextPage)
	}
	for _, item := range snap.Items {
		if item.Kind != domain.MediaKindVideo {
			t.Errorf("found %s item in videos view: %s", item.Kind, item.ID)
		}
	}
}

func TestController_FailedFetch(t *testing.T) {
	fetcher := newFakeFetcher(5)
	fetcher.failed = true
	c := NewController(fetcher, ControllerConfig{}, nil)
	defer c.Close()

	_, _ = c.SelectCategory(context.Background(), domain.CategoryDigitalArt)
	c.Wait()

	snap := c.Snapshot()
	if snap.State != StateReady {
		t.Errorf("state = %s, want %s", snap.State, StateReady)
	}
	if !snap.LastFetchFailed {
		t.Errorf("LastFetchFailed should be set")
	}
	if len(snap.Items) != 0 || snap.NextPage != 1 {
		t.Errorf("failed page must not advance the cursor: items=%d next=%d", len(snap.Items), snap.NextPage)
	}
}

func TestController_FailedFetchLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&logger.Config{Level: "debug", Format: "json", Output: &buf, ServiceName: "mediagrid-test"})

	fetcher := newFakeFetcher(5)
	fetcher.setFailed(true)
	c := NewController(fetcher, ControllerConfig{}, nil)
	defer c.Close()

	_, _ = c.SelectCategory(l.WithContext(context.Background()), domain.CategoryImages)
	c.Wait()

	out := buf.String()
	if !strings.Contains(out, "Page not loaded") || !strings.Contains(out, `"level":"warning"`) {
		t.Errorf("expected a warning for the failed page, got:\n%s", out)
	}
	if strings.Contains(out, "Page appended") {
		t.Errorf("failed page must not be logged as appended:\n%s", out)
	}
}

func TestController_RetriesFailedPage(t *testing.T) {
	fetcher := newFakeFetcher(5)
	c := NewController(fetcher, ControllerConfig{}, nil)
	defer c.Close()
	ctx := context.Background()

	_, _ = c.SelectCategory(ctx, domain.CategoryImages)
	c.Wait()

	fetcher.setFailed(true)
	if accepted, _ := c.RequestMore(ctx); !accepted {
		t.Fatalf("load more should be accepted when ready")
	}
	c.Wait()

	snap := c.Snapshot()
	if !snap.LastFetchFailed || snap.NextPage != 2 || len(snap.Items) != 5 || snap.IsLoadingMore {
		t.Fatalf("unexpected state after failure: %+v", snap)
	}

	fetcher.setFailed(false)
	if accepted, _ := c.RequestMore(ctx); !accepted {
		t.Fatalf("load more should be accepted after a failed page")
	}
	c.Wait()

	snap = c.Snapshot()
	if snap.LastFetchFailed || snap.NextPage != 3 || len(snap.Items) != 10 {
		t.Errorf("retry should load page 2: failed=%v next=%d items=%d", snap.LastFetchFailed, snap.NextPage, len(snap.Items))
	}

	want := []int{1, 2, 2}
	got := fetcher.requestedPages()
	if len(got) != len(want) {
		t.Fatalf("requested pages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("requested pages = %v, want %v", got, want)
			break
		}
	}
}

func TestController_ProviderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider, err := pexels.NewClient(&pexels.Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := NewController(NewFetcher(provider, 5, metrics.New(nil)), ControllerConfig{}, nil)
	defer c.Close()

	_, _ = c.SelectCategory(context.Background(), domain.CategoryVideos)
	c.Wait()

	snap := c.Snapshot()
	if snap.State != StateReady || !snap.LastFetchFailed {
		t.Errorf("HTTP 500 should settle as a failed page: %+v", snap)
	}
	if len(snap.Items) != 0 || snap.NextPage != 1 {
		t.Errorf("items=%d next=%d, want 0 and 1", len(snap.Items), snap.NextPage)
	}
}

func TestController_FetchTimeout(t *testing.T) {
	provider := &hangingProvider{}
	fetcher := NewFetcher(provider, 5, nil)
	c := NewController(fetcher, ControllerConfig{FetchTimeout: 50 * time.Millisecond}, nil)
	defer c.Close()

	_, _ = c.SelectCategory(context.Background(), domain.CategoryImages)
	c.Wait()

	snap := c.Snapshot()
	if snap.State != StateReady || !snap.LastFetchFailed {
		t.Errorf("hung fetch should resolve as a failed page: %+v", snap)
	}
}

type hangingProvider struct{ stubProvider }

func (p *hangingProvider) FetchPage(ctx context.Context, category domain.Category, page, perPage int) ([]domain.MediaItem, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestController_Subscribe(t *testing.T) {
	c := NewController(newFakeFetcher(5), ControllerConfig{}, nil)
	updates, unsubscribe := c.Subscribe()
	defer unsubscribe()

	_, _ = c.SelectCategory(context.Background(), domain.CategoryImages)
	c.Wait()

	// Only the latest snapshot is retained for slow subscribers.
	select {
	case snap := <-updates:
		if snap.State != StateReady || len(snap.Items) != 5 {
			t.Errorf("unexpected latest snapshot: %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}

	c.Close()
	if _, ok := <-updates; ok {
		t.Errorf("subscriber channel should be closed after Close")
	}
}

func TestController_Closed(t *testing.T) {
	c := NewController(newFakeFetcher(5), ControllerConfig{}, nil)
	c.Close()
	c.Close()

	if _, err := c.SelectCategory(context.Background(), domain.CategoryImages); err != ErrControllerClosed {
		t.Errorf("expected ErrControllerClosed, got %v", err)
	}
	if accepted, _ := c.RequestMore(context.Background()); accepted {
		t.Errorf("closed controller must ignore load more")
	}
}
