package table

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/admintable/internal/graphql"
)

// ErrSuperseded is returned by Load when a newer load was issued before this
// one completed. Its response is discarded.
var ErrSuperseded = errors.New("page query superseded by a newer request")

// QueryOptions configures a PagedQuery.
type QueryOptions[TData any, TItem any] struct {
	Name     string
	Executor graphql.Executor
	Document graphql.Document
	PageSize int
	// Extract returns the rows of a decoded response.
	Extract func(*TData) []TItem
	// ExtractTotal returns the filtered total, or nil when not reported.
	ExtractTotal func(*TData) *int
	// OnDataCountChange fires when the number of visible rows differs from
	// the last number reported.
	OnDataCountChange func(count int)
	// OnTotalCountChange fires when the total differs from the last total
	// reported.
	OnTotalCountChange func(total int)
	Logger             *slog.Logger
}

// QueryResult is the state of the most recent completed load.
type QueryResult[TItem any] struct {
	Data        []TItem
	Page        int
	Loading     bool
	Err         error
	HasData     bool
	HasNextPage bool
	TotalCount  *int
}

// PagedQuery fetches one page at a time, asking for one extra row to learn
// whether another page exists. Only the latest load may update its state.
type PagedQuery[TData any, TItem any] struct {
	opts QueryOptions[TData, TItem]

	mu        sync.Mutex
	seq       uint64
	completed uint64
	page      int
	vars      graphql.Variables
	result    QueryResult[TItem]
	prevCount int
	prevTotal int
}

// NewPagedQuery creates a coordinator with empty state.
func NewPagedQuery[TData any, TItem any](opts QueryOptions[TData, TItem]) *PagedQuery[TData, TItem] {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &PagedQuery[TData, TItem]{
		opts:      opts,
		prevCount: -1,
		prevTotal: -1,
	}
}

// PageSize returns the configured page size.
func (q *PagedQuery[TData, TItem]) PageSize() int {
	return q.opts.PageSize
}

// Load fetches page with the caller's variables plus limit and offset.
func (q *PagedQuery[TData, TItem]) Load(ctx context.Context, page int, vars graphql.Variables) (QueryResult[TItem], error) {
	if page < 0 {
		page = 0
	}

	q.mu.Lock()
	q.seq++
	seq := q.seq
	q.page = page
	q.vars = vars
	q.mu.Unlock()

	return q.run(ctx, seq, page, vars)
}

// Refetch repeats the last load. Before any load it fetches page 0 with no
// variables.
func (q *PagedQuery[TData, TItem]) Refetch(ctx context.Context) (QueryResult[TItem], error) {
	q.mu.Lock()
	page, vars := q.page, q.vars
	q.mu.Unlock()

	return q.Load(ctx, page, vars)
}

func (q *PagedQuery[TData, TItem]) run(ctx context.Context, seq uint64, page int, vars graphql.Variables) (QueryResult[TItem], error) {
	size := q.opts.PageSize
	reqVars := vars.Clone()
	reqVars["limit"] = size + 1
	reqVars["offset"] = page * size

	start := time.Now()
	var data TData
	err := q.opts.Executor.Execute(ctx, q.opts.Document, reqVars, &data)
	queryDuration.WithLabelValues(q.opts.Name).Observe(time.Since(start).Seconds())

	var rows []TItem
	var total *int
	hasNext := false
	if err == nil {
		raw := q.opts.Extract(&data)
		hasNext = len(raw) > size
		if len(raw) > size {
			raw = raw[:size]
		}
		rows = raw
		if q.opts.ExtractTotal != nil {
			total = q.opts.ExtractTotal(&data)
		}
	}

	q.mu.Lock()
	if seq != q.seq {
		q.mu.Unlock()
		queriesTotal.WithLabelValues(q.opts.Name, outcomeSuperseded).Inc()
		q.opts.Logger.Debug("discarding superseded page response",
			slog.String("table", q.opts.Name),
			slog.Int("page", page),
		)
		return QueryResult[TItem]{}, ErrSuperseded
	}

	q.completed = seq
	q.result = QueryResult[TItem]{
		Data:        rows,
		Page:        page,
		Err:         err,
		HasData:     len(rows) > 0,
		HasNextPage: hasNext,
		TotalCount:  total,
	}

	notifyCount := len(rows) != q.prevCount
	if notifyCount {
		q.prevCount = len(rows)
	}
	notifyTotal := total != nil && *total != q.prevTotal
	if notifyTotal {
		q.prevTotal = *total
	}
	res := q.result
	q.mu.Unlock()

	if err != nil {
		queriesTotal.WithLabelValues(q.opts.Name, outcomeError).Inc()
		q.opts.Logger.Warn("page query failed",
			slog.String("table", q.opts.Name),
			slog.Int("page", page),
			slog.Any("error", err),
		)
	} else {
		queriesTotal.WithLabelValues(q.opts.Name, outcomeSuccess).Inc()
	}

	if notifyCount && q.opts.OnDataCountChange != nil {
		q.opts.OnDataCountChange(len(rows))
	}
	if notifyTotal && q.opts.OnTotalCountChange != nil {
		q.opts.OnTotalCountChange(*total)
	}

	return res, err
}

// Result returns the latest completed result. Loading is true while the most
// recently issued load has not completed.
func (q *PagedQuery[TData, TItem]) Result() QueryResult[TItem] {
	q.mu.Lock()
	defer q.mu.Unlock()
	res := q.result
	res.Loading = q.completed != q.seq
	return res
}

// ResetNotifications forgets the last reported counts so the next result
// reports both again, as a freshly created coordinator would.
func (q *PagedQuery[TData, TItem]) ResetNotifications() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prevCount = -1
	q.prevTotal = -1
}
