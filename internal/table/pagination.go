package table

import (
	"encoding/json"
	"fmt"
	"sync"
)

// PageState is the pagination state exposed to clients.
type PageState struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalCount  int  `json:"total_count"`
	HasNextPage bool `json:"has_next_page"`
	LastPage    int  `json:"last_page"`
}

// Pagination tracks the current page of one table. It resets itself whenever
// the filters it is bound to change.
type Pagination struct {
	mu          sync.Mutex
	pageSize    int
	page        int
	hasNextPage bool
	totalCount  int
	filterKey   string
}

func NewPagination(pageSize int) *Pagination {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Pagination{pageSize: pageSize}
}

// SetFilters binds the pagination to a filter value. Filters are compared by
// content. When they differ from the previous value the state returns to the
// first page with no next page and a zero total, and true is returned.
func (p *Pagination) SetFilters(filters any) bool {
	key := filterKey(filters)

	p.mu.Lock()
	defer p.mu.Unlock()
	if key == p.filterKey {
		return false
	}
	p.filterKey = key
	p.resetLocked()
	return true
}

// Reset returns to the first page regardless of filters.
func (p *Pagination) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

func (p *Pagination) resetLocked() {
	p.page = 0
	p.hasNextPage = false
	p.totalCount = 0
}

// First moves to page 0.
func (p *Pagination) First() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = 0
	return p.page
}

// Prev moves back one page, stopping at 0.
func (p *Pagination) Prev() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = max(p.page-1, 0)
	return p.page
}

// Next moves forward one page. It is not clamped; callers gate it on
// HasNextPage.
func (p *Pagination) Next() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page++
	return p.page
}

// Last moves to the last page implied by the total count.
func (p *Pagination) Last() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = p.lastPageLocked()
	return p.page
}

// SetHasNextPage records whether the latest result saw an extra row.
func (p *Pagination) SetHasNextPage(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hasNextPage = v
}

// SetTotalCount records the filtered total reported by the API.
func (p *Pagination) SetTotalCount(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalCount = n
}

// Page returns the current page index.
func (p *Pagination) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// State returns a snapshot.
func (p *Pagination) State() PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PageState{
		Page:        p.page,
		PageSize:    p.pageSize,
		TotalCount:  p.totalCount,
		HasNextPage: p.hasNextPage,
		LastPage:    p.lastPageLocked(),
	}
}

func (p *Pagination) lastPageLocked() int {
	if p.totalCount <= 0 {
		return 0
	}
	return (p.totalCount+p.pageSize-1)/p.pageSize - 1
}

// filterKey is the canonical JSON of a filter value. Struct fields marshal in
// declaration order and map keys sorted, so equal content gives equal keys.
func filterKey(filters any) string {
	b, err := json.Marshal(filters)
	if err != nil {
		return fmt.Sprintf("%#v", filters)
	}
	return string(b)
}
