// Package table coordinates paged, filtered and sorted views over a remote
// GraphQL collection.
package table

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BradenHooton/admintable/internal/graphql"
	"github.com/BradenHooton/admintable/internal/models"
)

// PageAction is a pagination control.
type PageAction string

const (
	PageFirst PageAction = "first"
	PagePrev  PageAction = "prev"
	PageNext  PageAction = "next"
	PageLast  PageAction = "last"
)

// ParsePageAction validates a pagination control name.
func ParsePageAction(s string) (PageAction, error) {
	switch a := PageAction(s); a {
	case PageFirst, PagePrev, PageNext, PageLast:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown page action %q", models.ErrBadRequest, s)
}

// Config describes one table.
type Config[TData any, TItem any] struct {
	Name           string
	Executor       graphql.Executor
	Document       graphql.Document
	PageSize       int
	Extract        func(*TData) []TItem
	ExtractTotal   func(*TData) *int
	Columns        []Column[TItem]
	Sorting        SortController
	InitialFilters any
	// OnDataCountChange is forwarded to the page query.
	OnDataCountChange func(count int)
	Logger            *slog.Logger
}

// View is a render-ready snapshot of a table.
type View[TItem any] struct {
	Name       string              `json:"name"`
	Rows       []TItem             `json:"rows"`
	Pagination PageState           `json:"pagination"`
	Sorting    models.SortingState `json:"sorting"`
	Filters    any                 `json:"filters"`
	Loading    bool                `json:"loading"`
	HasData    bool                `json:"has_data"`
	Error      string              `json:"error,omitempty"`
}

// Table binds a page query, its pagination and its sort state.
type Table[TData any, TItem any] struct {
	name       string
	query      *PagedQuery[TData, TItem]
	pagination *Pagination
	sorter     SortController
	columns    []Column[TItem]
	logger     *slog.Logger

	mu      sync.Mutex
	filters any
}

// New creates a table on page 0 of its initial filters. Without a Sorting
// controller the table sorts uncontrolled, starting unsorted.
func New[TData any, TItem any](cfg Config[TData, TItem]) *Table[TData, TItem] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Sorting == nil {
		cfg.Sorting = NewUncontrolledSort(nil)
	}

	t := &Table[TData, TItem]{
		name:       cfg.Name,
		pagination: NewPagination(cfg.PageSize),
		sorter:     cfg.Sorting,
		columns:    cfg.Columns,
		logger:     cfg.Logger,
	}
	t.query = NewPagedQuery(QueryOptions[TData, TItem]{
		Name:               cfg.Name,
		Executor:           cfg.Executor,
		Document:           cfg.Document,
		PageSize:           cfg.PageSize,
		Extract:            cfg.Extract,
		ExtractTotal:       cfg.ExtractTotal,
		OnDataCountChange:  cfg.OnDataCountChange,
		OnTotalCountChange: t.pagination.SetTotalCount,
		Logger:             cfg.Logger,
	})
	t.SetFilters(cfg.InitialFilters)
	return t
}

// Name returns the table's name.
func (t *Table[TData, TItem]) Name() string { return t.name }

// Columns returns the column definitions.
func (t *Table[TData, TItem]) Columns() []Column[TItem] { return t.columns }

// SetFilters binds new filters. A change in content resets pagination and
// the page query's change notifications, and reports true.
func (t *Table[TData, TItem]) SetFilters(filters any) bool {
	t.mu.Lock()
	t.filters = filters
	t.mu.Unlock()

	if !t.pagination.SetFilters(filters) {
		return false
	}
	t.query.ResetNotifications()
	paginationResets.WithLabelValues(t.name).Inc()
	return true
}

// Remount puts the table back on its first page as if it were newly
// created, keeping filters and sort state.
func (t *Table[TData, TItem]) Remount() {
	t.pagination.Reset()
	t.query.ResetNotifications()
}

// Load fetches the current page for the current filters.
func (t *Table[TData, TItem]) Load(ctx context.Context) (View[TItem], error) {
	t.mu.Lock()
	vars := graphql.Variables{"filters": t.filters}
	t.mu.Unlock()

	res, err := t.query.Load(ctx, t.pagination.Page(), vars)
	return t.settle(res, err)
}

// Refetch repeats the last page request.
func (t *Table[TData, TItem]) Refetch(ctx context.Context) (View[TItem], error) {
	res, err := t.query.Refetch(ctx)
	return t.settle(res, err)
}

func (t *Table[TData, TItem]) settle(res QueryResult[TItem], err error) (View[TItem], error) {
	if errors.Is(err, ErrSuperseded) {
		return t.View(), err
	}
	t.pagination.SetHasNextPage(res.HasNextPage)
	return t.View(), err
}

// Navigate applies a pagination control and returns the new page index.
// The caller loads the page.
func (t *Table[TData, TItem]) Navigate(action PageAction) int {
	switch action {
	case PageFirst:
		return t.pagination.First()
	case PagePrev:
		return t.pagination.Prev()
	case PageNext:
		return t.pagination.Next()
	case PageLast:
		return t.pagination.Last()
	default:
		return t.pagination.Page()
	}
}

// Page returns the current page index.
func (t *Table[TData, TItem]) Page() int { return t.pagination.Page() }

// SortableColumn reports whether id names a column that can be sorted.
func (t *Table[TData, TItem]) SortableColumn(id string) bool {
	for _, c := range t.columns {
		if c.ID == id {
			return c.Compare != nil
		}
	}
	return false
}

// Sorting returns the current sort state.
func (t *Table[TData, TItem]) Sorting() models.SortingState {
	return t.sorter.Sorting()
}

// SetSorting requests a new sort state.
func (t *Table[TData, TItem]) SetSorting(v models.SortingState) {
	t.sorter.SetSorting(v)
}

// UpdateSorting requests a sort state derived from the current one.
func (t *Table[TData, TItem]) UpdateSorting(fn Updater) {
	t.sorter.UpdateSorting(fn)
}

// Rows returns the current page sorted by the current sort state.
func (t *Table[TData, TItem]) Rows() []TItem {
	return ApplySorting(t.query.Result().Data, t.sorter.Sorting(), t.columns)
}

// View returns a snapshot of rows, pagination, sorting and load state.
func (t *Table[TData, TItem]) View() View[TItem] {
	res := t.query.Result()
	sorting := t.sorter.Sorting()

	t.mu.Lock()
	filters := t.filters
	t.mu.Unlock()

	rows := ApplySorting(res.Data, sorting, t.columns)
	if rows == nil {
		rows = []TItem{}
	}

	v := View[TItem]{
		Name:       t.name,
		Rows:       rows,
		Pagination: t.pagination.State(),
		Sorting:    sorting,
		Filters:    filters,
		Loading:    res.Loading,
		HasData:    res.HasData,
	}
	if res.Err != nil {
		v.Error = res.Err.Error()
	}
	return v
}
