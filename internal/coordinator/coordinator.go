package coordinator

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"sales-dashboard-api/internal/models"
)

// FetchFunc is the asynchronous backing call that actually answers a query.
// In-flight calls cannot be aborted; staleness is handled by the coordinator.
type FetchFunc func(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error)

// State is one observable snapshot of the coordinator: a dispatch in flight
// (Loading true) or the outcome of the newest dispatch. A fetch error is
// passed through Err untouched.
type State struct {
	Loading bool
	Result  *models.QueryResult
	Err     error
}

// Coordinator sequences interactive queries against an asynchronous backing
// call. Search-text-only changes are debounced; filter, sort, and page
// changes dispatch immediately. Each dispatch is tagged with a monotonically
// increasing token, and only the response for the highest token ever
// dispatched is applied — late responses for superseded tokens are dropped
// silently.
type Coordinator struct {
	fetch    FetchFunc
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	seq     uint64
	last    models.QueryRequest
	hasLast bool
	pending models.QueryRequest
	timer   *time.Timer
	closed  bool

	updates chan State
}

// New creates a Coordinator around fetch. debounce is the quiescence window
// for search-text changes.
func New(fetch FetchFunc, debounce time.Duration, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		fetch:    fetch,
		debounce: debounce,
		logger:   logger,
		updates:  make(chan State, 16),
	}
}

// Updates is the current-result stream. The channel is buffered and
// latest-wins: a consumer that falls behind loses the oldest snapshots,
// never the newest. It is closed by Close.
func (c *Coordinator) Updates() <-chan State {
	return c.updates
}

// Submit feeds one user-driven request into the coordinator. A request that
// differs from the previous one only in its search text is held until the
// text has been quiet for the debounce window; intermediate keystrokes never
// dispatch. Any other change dispatches right away, carrying whatever search
// text the request holds, and absorbs a pending debounce (its text is
// already included, so the timer would only duplicate the dispatch).
func (c *Coordinator) Submit(req models.QueryRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	searchOnly := c.hasLast && searchOnlyChange(c.last, req)
	c.last = req
	c.hasLast = true

	if searchOnly {
		c.pending = req
		if c.timer != nil {
			c.timer.Stop()
		}
		c.timer = time.AfterFunc(c.debounce, c.flushPending)
		return
	}

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.dispatchLocked(req)
}

// Close stops the debounce timer and closes the updates stream. Responses
// still in flight are discarded.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	close(c.updates)
}

func (c *Coordinator) flushPending() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.timer == nil {
		return
	}
	c.timer = nil
	c.dispatchLocked(c.pending)
}

// dispatchLocked issues the request under the next sequence token. Caller
// holds c.mu.
func (c *Coordinator) dispatchLocked(req models.QueryRequest) {
	c.seq++
	token := c.seq
	c.notifyLocked(State{Loading: true})

	c.logger.Debug("dispatching query",
		zap.Uint64("token", token),
		zap.String("search", req.SearchQuery),
		zap.Int("page", req.Page),
	)

	go func() {
		result, err := c.fetch(context.Background(), req)

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed {
			return
		}
		if token != c.seq {
			// A newer request has been dispatched since; this
			// response is stale and must never reach the consumer.
			c.logger.Debug("discarding superseded response",
				zap.Uint64("token", token),
				zap.Uint64("current", c.seq),
			)
			return
		}
		c.notifyLocked(State{Result: result, Err: err})
	}()
}

// notifyLocked pushes a snapshot without ever blocking the coordinator: if
// the buffer is full the oldest snapshot is evicted first. Caller holds c.mu.
func (c *Coordinator) notifyLocked(st State) {
	select {
	case c.updates <- st:
		return
	default:
	}
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- st:
	default:
	}
}

// searchOnlyChange reports whether next differs from prev in the search text
// and nothing else.
func searchOnlyChange(prev, next models.QueryRequest) bool {
	if prev.SearchQuery == next.SearchQuery {
		return false
	}
	return next.Page == prev.Page &&
		next.PageSize == prev.PageSize &&
		next.Sort == prev.Sort &&
		filtersEqual(prev.Filters, next.Filters)
}

func filtersEqual(a, b models.FilterState) bool {
	return slices.Equal(a.Regions, b.Regions) &&
		slices.Equal(a.Genders, b.Genders) &&
		slices.Equal(a.Categories, b.Categories) &&
		slices.Equal(a.PaymentMethods, b.PaymentMethods) &&
		a.AgeRange == b.AgeRange &&
		timePtrEqual(a.DateRange.Start, b.DateRange.Start) &&
		timePtrEqual(a.DateRange.End, b.DateRange.End)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
