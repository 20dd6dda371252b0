package member

import (
	"context"
	"strings"
	"sync"
	"time"

	"solomanager/internal/metrics"
	"solomanager/internal/notify"
)

type Mode int

const (
	ModePaged Mode = iota
	ModeSearch
)

// ListState is everything a list view needs to render.
type ListState struct {
	Members      []Member
	TotalMembers int
	TotalPages   int
	Page         int
	Mode         Mode
	Loading      bool
}

const DefaultDebounce = 400 * time.Millisecond

// ListController reconciles the three member-list data sources (paged
// fetch, filtered fetch, free-text search) into one view state. A
// non-empty query puts it in search mode: input changes are debounced,
// results come back as a single page, and pagination is disabled until
// the query is cleared.
type ListController struct {
	client   Client
	notifier notify.Notifier
	debounce time.Duration

	mu     sync.Mutex
	filter Filter
	query  string
	page   int
	gen    uint64
	timer  *time.Timer
	state  ListState
}

type ListOption func(*ListController)

// WithDebounce overrides the search quiescence window.
func WithDebounce(d time.Duration) ListOption {
	return func(c *ListController) {
		c.debounce = d
	}
}

func NewListController(client Client, notifier notify.Notifier, opts ...ListOption) *ListController {
	c := &ListController{
		client:   client,
		notifier: notifier,
		debounce: DefaultDebounce,
		filter:   FilterAll,
		page:     1,
		state:    ListState{Page: 1, TotalPages: 1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current view state.
func (c *ListController) Snapshot() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Members = append([]Member(nil), c.state.Members...)
	return s
}

func (c *ListController) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *ListController) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetPage requests a page in paged mode. In search mode pagination is
// disabled and the call is ignored.
func (c *ListController) SetPage(ctx context.Context, page int) {
	c.mu.Lock()
	if c.query != "" {
		c.mu.Unlock()
		return
	}
	if page < 1 {
		page = 1
	}
	c.page = page
	c.gen++
	gen, filter := c.gen, c.filter
	c.mu.Unlock()

	c.fetchPaged(ctx, gen, page, filter)
}

// SetFilter changes the status filter and resets the page to 1. In search
// mode the settled query is re-issued against the new filter after the
// quiescence window.
func (c *ListController) SetFilter(ctx context.Context, filter Filter) {
	c.mu.Lock()
	c.filter = filter
	c.page = 1
	c.gen++
	gen, query := c.gen, c.query
	if query != "" {
		c.scheduleSearchLocked(gen, query, filter)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.fetchPaged(ctx, gen, 1, filter)
}

// SetQuery feeds one keystroke of the free-text query. A non-empty query
// schedules a debounced search; clearing it drops straight back to paged
// mode at page 1.
func (c *ListController) SetQuery(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	c.query = query
	c.page = 1
	c.gen++
	gen, filter := c.gen, c.filter
	if query != "" {
		c.scheduleSearchLocked(gen, query, filter)
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	c.fetchPaged(ctx, gen, 1, filter)
}

// Refresh re-issues the currently active mode's fetch without resetting
// filters. Callers invoke it after any create/update/delete.
func (c *ListController) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.gen++
	gen, query, filter, page := c.gen, c.query, c.filter, c.page
	c.mu.Unlock()

	if query != "" {
		c.runSearch(ctx, gen, query, filter)
		return
	}
	c.fetchPaged(ctx, gen, page, filter)
}

// scheduleSearchLocked resets the debounce timer. Caller holds c.mu.
func (c *ListController) scheduleSearchLocked(gen uint64, query string, filter Filter) {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.state.Loading = true
	c.timer = time.AfterFunc(c.debounce, func() {
		c.runSearch(context.Background(), gen, query, filter)
	})
}

func (c *ListController) runSearch(ctx context.Context, gen uint64, query string, filter Filter) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	res, err := c.client.Search(ctx, query, filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		metrics.RecordStaleResponse()
		return
	}
	if err != nil {
		c.state = ListState{Mode: ModeSearch, Page: 1, TotalPages: 1}
		c.notifier.Error("Failed to search members")
		return
	}
	c.state = ListState{
		Members:      res.Members,
		TotalMembers: res.TotalMembers,
		TotalPages:   1,
		Page:         1,
		Mode:         ModeSearch,
	}
}

func (c *ListController) fetchPaged(ctx context.Context, gen uint64, page int, filter Filter) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state.Loading = true
	c.mu.Unlock()

	res, err := c.client.GetMembers(ctx, page, filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		metrics.RecordStaleResponse()
		return
	}
	if err != nil {
		c.state = ListState{Mode: ModePaged, Page: page, TotalPages: 1}
		c.notifier.Error("Failed to load members")
		return
	}
	c.state = ListState{
		Members:      res.Members,
		TotalMembers: res.TotalMembers,
		TotalPages:   res.TotalPages,
		Page:         res.CurrentPage,
		Mode:         ModePaged,
	}
	c.page = res.CurrentPage
}
