package member

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"solomanager/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pageOf(members []Member, page, totalPages int) *Page {
	return &Page{
		Members:      members,
		TotalPages:   totalPages,
		TotalMembers: len(members),
		CurrentPage:  page,
	}
}

func namedMembers(names ...string) []Member {
	out := make([]Member, len(names))
	for i, n := range names {
		out[i] = Member{ID: n, Name: n, Subs: []Subscription{{Plan: PlanOneMonth, Status: StatusActive}}}
	}
	return out
}

func TestListController_PagedFetch(t *testing.T) {
	client := new(MockClient)
	client.On("GetMembers", mock.Anything, 1, FilterAll).
		Return(pageOf(namedMembers("a", "b"), 1, 3), nil)

	c := NewListController(client, notify.NewRecorder())
	c.SetPage(context.Background(), 1)

	s := c.Snapshot()
	assert.Equal(t, ModePaged, s.Mode)
	assert.Len(t, s.Members, 2)
	assert.Equal(t, 3, s.TotalPages)
	assert.Equal(t, 1, s.Page)
	assert.False(t, s.Loading)
	client.AssertExpectations(t)
}

func TestListController_SamePageTwiceIsIdentical(t *testing.T) {
	client := new(MockClient)
	client.On("GetMembers", mock.Anything, 2, FilterAll).
		Return(pageOf(namedMembers("k", "l", "m"), 2, 5), nil)

	c := NewListController(client, notify.NewRecorder())
	ctx := context.Background()

	c.SetPage(ctx, 2)
	first := c.Snapshot()
	c.SetPage(ctx, 2)
	second := c.Snapshot()

	assert.Equal(t, first.Members, second.Members)
	assert.Equal(t, first.TotalMembers, second.TotalMembers)
	assert.Equal(t, first.TotalPages, second.TotalPages)
}

func TestListController_FilterChangeResetsPage(t *testing.T) {
	client := new(MockClient)
	client.On("GetMembers", mock.Anything, 3, FilterAll).
		Return(pageOf(namedMembers("x"), 3, 4), nil)
	client.On("GetMembers", mock.Anything, 1, FilterActive).
		Return(pageOf(namedMembers("a"), 1, 1), nil)

	c := NewListController(client, notify.NewRecorder())
	ctx := context.Background()

	c.SetPage(ctx, 3)
	c.SetFilter(ctx, FilterActive)

	s := c.Snapshot()
	assert.Equal(t, 1, s.Page)
	client.AssertCalled(t, "GetMembers", mock.Anything, 1, FilterActive)
}

func TestListController_SearchModeSuppressesPagination(t *testing.T) {
	client := new(MockClient)
	client.On("Search", mock.Anything, "ravi", FilterAll).
		Return(&SearchResult{Members: namedMembers("ravi"), TotalMembers: 1}, nil)

	c := NewListController(client, notify.NewRecorder(), WithDebounce(5*time.Millisecond))
	ctx := context.Background()

	c.SetQuery(ctx, "ravi")

	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return s.Mode == ModeSearch && !s.Loading
	}, time.Second, 2*time.Millisecond)

	s := c.Snapshot()
	assert.Equal(t, 1, s.TotalPages)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 1, s.TotalMembers)

	// Pagination is disabled while a query is set.
	c.SetPage(ctx, 2)
	client.AssertNotCalled(t, "GetMembers", mock.Anything, mock.Anything, mock.Anything)
}

func TestListController_DebounceCollapsesKeystrokes(t *testing.T) {
	var searches atomic.Int32
	client := new(MockClient)
	client.On("Search", mock.Anything, mock.Anything, FilterAll).
		Run(func(args mock.Arguments) { searches.Add(1) }).
		Return(&SearchResult{Members: namedMembers("abc"), TotalMembers: 1}, nil)

	c := NewListController(client, notify.NewRecorder(), WithDebounce(40*time.Millisecond))
	ctx := context.Background()

	c.SetQuery(ctx, "a")
	time.Sleep(5 * time.Millisecond)
	c.SetQuery(ctx, "ab")
	time.Sleep(5 * time.Millisecond)
	c.SetQuery(ctx, "abc")

	require.Eventually(t, func() bool {
		return searches.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// Let any spurious timers fire.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), searches.Load())
	client.AssertCalled(t, "Search", mock.Anything, "abc", FilterAll)
	client.AssertNotCalled(t, "Search", mock.Anything, "a", FilterAll)
	client.AssertNotCalled(t, "Search", mock.Anything, "ab", FilterAll)
}

func TestListController_StaleResponseRejected(t *testing.T) {
	slowRelease := make(chan struct{})
	var staleInFlight atomic.Bool
	client := new(MockClient)
	client.On("Search", mock.Anything, "a", FilterAll).
		Run(func(mock.Arguments) {
			staleInFlight.Store(true)
			<-slowRelease
		}).
		Return(&SearchResult{Members: namedMembers("stale"), TotalMembers: 1}, nil)
	client.On("Search", mock.Anything, "ab", FilterAll).
		Return(&SearchResult{Members: namedMembers("fresh"), TotalMembers: 1}, nil)

	c := NewListController(client, notify.NewRecorder(), WithDebounce(time.Millisecond))
	ctx := context.Background()

	c.SetQuery(ctx, "a")
	// Wait until the "a" search is actually in flight.
	require.Eventually(t, staleInFlight.Load, time.Second, time.Millisecond)

	c.SetQuery(ctx, "ab")
	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return len(s.Members) == 1 && s.Members[0].Name == "fresh"
	}, time.Second, time.Millisecond)

	// Release the stale response after the fresh one has rendered.
	close(slowRelease)
	time.Sleep(50 * time.Millisecond)

	s := c.Snapshot()
	require.Len(t, s.Members, 1)
	assert.Equal(t, "fresh", s.Members[0].Name, "stale response must not overwrite the settled query's result")
}

func TestListController_ClearQueryReturnsToPagedMode(t *testing.T) {
	client := new(MockClient)
	client.On("Search", mock.Anything, "q", FilterAll).
		Return(&SearchResult{Members: namedMembers("hit"), TotalMembers: 1}, nil)
	client.On("GetMembers", mock.Anything, 1, FilterAll).
		Return(pageOf(namedMembers("a", "b"), 1, 1), nil)

	c := NewListController(client, notify.NewRecorder(), WithDebounce(time.Millisecond))
	ctx := context.Background()

	c.SetQuery(ctx, "q")
	require.Eventually(t, func() bool {
		return c.Snapshot().Mode == ModeSearch
	}, time.Second, time.Millisecond)

	c.SetQuery(ctx, "")

	s := c.Snapshot()
	assert.Equal(t, ModePaged, s.Mode)
	assert.Equal(t, 1, s.Page)
	assert.Len(t, s.Members, 2)
}

func TestListController_RefreshKeepsActiveMode(t *testing.T) {
	client := new(MockClient)
	client.On("GetMembers", mock.Anything, 1, FilterActive).
		Return(pageOf(namedMembers("a"), 1, 2), nil).Once()
	client.On("GetMembers", mock.Anything, 2, FilterActive).
		Return(pageOf(namedMembers("a"), 2, 2), nil).Twice()

	c := NewListController(client, notify.NewRecorder())
	ctx := context.Background()

	// SetFilter resets to page 1; move to page 2 for the test.
	c.SetFilter(ctx, FilterActive)
	c.SetPage(ctx, 2)

	c.Refresh(ctx)

	s := c.Snapshot()
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, FilterActive, c.Filter())
}

func TestListController_RefreshInSearchModeSkipsDebounce(t *testing.T) {
	client := new(MockClient)
	client.On("Search", mock.Anything, "q", FilterAll).
		Return(&SearchResult{Members: namedMembers("hit"), TotalMembers: 1}, nil)

	c := NewListController(client, notify.NewRecorder(), WithDebounce(time.Millisecond))
	ctx := context.Background()

	c.SetQuery(ctx, "q")
	require.Eventually(t, func() bool {
		return c.Snapshot().Mode == ModeSearch
	}, time.Second, time.Millisecond)

	c.Refresh(ctx)

	assert.Equal(t, ModeSearch, c.Snapshot().Mode)
	client.AssertNumberOfCalls(t, "Search", 2)
}

func TestListController_FetchFailureClearsAndNotifies(t *testing.T) {
	client := new(MockClient)
	client.On("GetMembers", mock.Anything, 1, FilterAll).
		Return(pageOf(namedMembers("a"), 1, 1), nil).Once()
	client.On("GetMembers", mock.Anything, 1, FilterAll).
		Return(nil, errors.New("connection refused")).Once()

	recorder := notify.NewRecorder()
	c := NewListController(client, recorder)
	ctx := context.Background()

	c.SetPage(ctx, 1)
	require.Len(t, c.Snapshot().Members, 1)

	c.Refresh(ctx)

	s := c.Snapshot()
	assert.Empty(t, s.Members)
	assert.Zero(t, s.TotalMembers)
	assert.Equal(t, "Failed to load members", recorder.LastError())
}

func TestListController_ActiveFilterScenario(t *testing.T) {
	// 10 active members exist; filter=active page=1 renders all of them
	// with their current plan and days_left.
	members := make([]Member, 10)
	for i := range members {
		members[i] = Member{
			ID:   string(rune('a' + i)),
			Name: string(rune('a' + i)),
			Subs: []Subscription{{Plan: PlanThreeMonths, Status: StatusActive}},
		}
		require.NoError(t, members[i].DaysLeft.UnmarshalJSON([]byte("7")))
	}

	client := new(MockClient)
	client.On("GetMembers", mock.Anything, 1, FilterActive).
		Return(&Page{Members: members, TotalPages: 1, TotalMembers: 10, CurrentPage: 1}, nil)

	c := NewListController(client, notify.NewRecorder())
	c.SetFilter(context.Background(), FilterActive)

	s := c.Snapshot()
	require.Equal(t, 10, s.TotalMembers)
	assert.Equal(t, 1, s.TotalPages)
	require.Len(t, s.Members, 10)
	for _, m := range s.Members {
		assert.Equal(t, "3 Months", m.CurrentPlan())
		assert.Equal(t, "7 Days left", m.DaysLeft.String())
	}
}
