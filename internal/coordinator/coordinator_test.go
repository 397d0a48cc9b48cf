package coordinator_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard-api/internal/coordinator"
	"sales-dashboard-api/internal/models"
)

func mkReq(search string, page int) models.QueryRequest {
	return models.QueryRequest{
		SearchQuery: search,
		Filters:     models.DefaultFilterState(),
		Sort:        models.DefaultSortConfig(),
		Page:        page,
		PageSize:    10,
	}
}

// fetchCall is one in-flight invocation of the mock fetch, held open until
// the test releases it with a result.
type fetchCall struct {
	req     models.QueryRequest
	release chan *models.QueryResult
}

// blockingFetch returns a FetchFunc whose completions the test controls, and
// the channel on which each invocation is announced.
func blockingFetch() (coordinator.FetchFunc, chan fetchCall) {
	calls := make(chan fetchCall, 16)
	fetch := func(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
		call := fetchCall{req: req, release: make(chan *models.QueryResult)}
		calls <- call
		return <-call.release, nil
	}
	return fetch, calls
}

func nextState(t *testing.T, updates <-chan coordinator.State) coordinator.State {
	t.Helper()
	select {
	case st := <-updates:
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for coordinator state")
		return coordinator.State{}
	}
}

func nextCall(t *testing.T, calls <-chan fetchCall) fetchCall {
	t.Helper()
	select {
	case call := <-calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch dispatch")
		return fetchCall{}
	}
}

func assertQuiet(t *testing.T, updates <-chan coordinator.State) {
	t.Helper()
	select {
	case st := <-updates:
		t.Fatalf("unexpected state update: %+v", st)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestOutOfOrderResponsesSuperseded(t *testing.T) {
	t.Parallel()

	fetch, calls := blockingFetch()
	coord := coordinator.New(fetch, time.Hour, nil)
	defer coord.Close()
	updates := coord.Updates()

	// Two immediate dispatches: the initial request, then a page change.
	coord.Submit(mkReq("", 1))
	callA := nextCall(t, calls)
	assert.True(t, nextState(t, updates).Loading)

	coord.Submit(mkReq("", 2))
	callB := nextCall(t, calls)
	assert.True(t, nextState(t, updates).Loading)

	// B resolves first; its token is the highest, so it is applied.
	resultB := &models.QueryResult{Pagination: models.PaginationConfig{Page: 2}}
	callB.release <- resultB

	st := nextState(t, updates)
	assert.False(t, st.Loading)
	require.NotNil(t, st.Result)
	assert.Equal(t, 2, st.Result.Pagination.Page)

	// A resolves late; it has been superseded and must never surface.
	callA.release <- &models.QueryResult{Pagination: models.PaginationConfig{Page: 1}}
	assertQuiet(t, updates)
}

func TestLoadingClearsOnlyForCurrentToken(t *testing.T) {
	t.Parallel()

	fetch, calls := blockingFetch()
	coord := coordinator.New(fetch, time.Hour, nil)
	defer coord.Close()
	updates := coord.Updates()

	coord.Submit(mkReq("", 1))
	callA := nextCall(t, calls)
	assert.True(t, nextState(t, updates).Loading)

	coord.Submit(mkReq("", 2))
	nextCall(t, calls) // B stays outstanding
	assert.True(t, nextState(t, updates).Loading)

	// The stale response arrives while B is still in flight: the consumer
	// must keep seeing the loading state.
	callA.release <- &models.QueryResult{Pagination: models.PaginationConfig{Page: 1}}
	assertQuiet(t, updates)
}

func TestSearchChangesDebounced(t *testing.T) {
	t.Parallel()

	var dispatched atomic.Int32
	fetch := func(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
		dispatched.Add(1)
		return &models.QueryResult{}, nil
	}

	coord := coordinator.New(fetch, 200*time.Millisecond, nil)
	defer coord.Close()
	updates := coord.Updates()

	// Initial request dispatches immediately.
	coord.Submit(mkReq("", 1))
	assert.True(t, nextState(t, updates).Loading)
	assert.False(t, nextState(t, updates).Loading)
	require.EqualValues(t, 1, dispatched.Load())

	// "an" typed as "a" then "an" inside the window: exactly one dispatch.
	coord.Submit(mkReq("a", 1))
	coord.Submit(mkReq("an", 1))

	assert.True(t, nextState(t, updates).Loading)
	assert.False(t, nextState(t, updates).Loading)
	assert.EqualValues(t, 2, dispatched.Load())
}

func TestDebouncedDispatchCarriesFinalText(t *testing.T) {
	t.Parallel()

	fetch, calls := blockingFetch()
	coord := coordinator.New(fetch, 200*time.Millisecond, nil)
	defer coord.Close()

	coord.Submit(mkReq("", 1))
	nextCall(t, calls).release <- &models.QueryResult{}

	coord.Submit(mkReq("a", 1))
	coord.Submit(mkReq("an", 1))

	call := nextCall(t, calls)
	assert.Equal(t, "an", call.req.SearchQuery)
	call.release <- &models.QueryResult{}
}

func TestFilterChangeDispatchesImmediately(t *testing.T) {
	t.Parallel()

	fetch, calls := blockingFetch()
	// Debounce of an hour: any dispatch observed below was not debounced.
	coord := coordinator.New(fetch, time.Hour, nil)
	defer coord.Close()

	coord.Submit(mkReq("", 1))
	nextCall(t, calls).release <- &models.QueryResult{}

	req := mkReq("", 1)
	req.Filters.Regions = []string{"Europe"}
	coord.Submit(req)

	call := nextCall(t, calls)
	assert.Equal(t, []string{"Europe"}, call.req.Filters.Regions)
	call.release <- &models.QueryResult{}
}

func TestImmediateDispatchAbsorbsPendingSearch(t *testing.T) {
	t.Parallel()

	fetch, calls := blockingFetch()
	coord := coordinator.New(fetch, time.Hour, nil)
	defer coord.Close()

	coord.Submit(mkReq("", 1))
	nextCall(t, calls).release <- &models.QueryResult{}

	// A keystroke sits in the debounce window when the page changes. The
	// immediate dispatch carries the not-yet-debounced text, and the
	// debounce timer is absorbed rather than firing a duplicate later.
	coord.Submit(mkReq("wid", 1))
	coord.Submit(mkReq("wid", 2))

	call := nextCall(t, calls)
	assert.Equal(t, "wid", call.req.SearchQuery)
	assert.Equal(t, 2, call.req.Page)
	call.release <- &models.QueryResult{}

	select {
	case extra := <-calls:
		t.Fatalf("unexpected extra dispatch: %+v", extra.req)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFetchErrorPassedThrough(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("backend unavailable")
	fetch := func(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
		return nil, wantErr
	}

	coord := coordinator.New(fetch, time.Hour, nil)
	defer coord.Close()
	updates := coord.Updates()

	coord.Submit(mkReq("", 1))
	assert.True(t, nextState(t, updates).Loading)

	st := nextState(t, updates)
	assert.False(t, st.Loading)
	assert.ErrorIs(t, st.Err, wantErr)

	// Token bookkeeping survives the error: the next dispatch works.
	coord.Submit(mkReq("", 2))
	assert.True(t, nextState(t, updates).Loading)
	assert.ErrorIs(t, nextState(t, updates).Err, wantErr)
}

func TestSubmitAfterCloseIsNoop(t *testing.T) {
	t.Parallel()

	var dispatched atomic.Int32
	fetch := func(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
		dispatched.Add(1)
		return &models.QueryResult{}, nil
	}

	coord := coordinator.New(fetch, time.Millisecond, nil)
	coord.Close()
	coord.Submit(mkReq("", 1))

	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 0, dispatched.Load())

	// Updates channel is closed.
	_, open := <-coord.Updates()
	assert.False(t, open)
}
