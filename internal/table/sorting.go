package table

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/BradenHooton/admintable/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Updater derives a new sorting state from the current one.
type Updater func(models.SortingState) models.SortingState

// SortController resolves sort change requests for one table. The mode is
// fixed at construction.
type SortController interface {
	Sorting() models.SortingState
	SetSorting(models.SortingState)
	UpdateSorting(Updater)
	Controlled() bool
}

// ControlledSort leaves the state with its owner. Changes are forwarded to
// onChange and never stored here.
type ControlledSort struct {
	get      func() models.SortingState
	onChange func(models.SortingState)
}

func NewControlledSort(get func() models.SortingState, onChange func(models.SortingState)) *ControlledSort {
	return &ControlledSort{get: get, onChange: onChange}
}

func (c *ControlledSort) Sorting() models.SortingState { return c.get() }

func (c *ControlledSort) SetSorting(v models.SortingState) {
	c.onChange(v.Clone())
}

func (c *ControlledSort) UpdateSorting(fn Updater) {
	c.onChange(fn(c.get().Clone()))
}

func (c *ControlledSort) Controlled() bool { return true }

// UncontrolledSort owns its state, seeded from a default.
type UncontrolledSort struct {
	mu    sync.Mutex
	state models.SortingState
}

func NewUncontrolledSort(defaultSorting models.SortingState) *UncontrolledSort {
	return &UncontrolledSort{state: defaultSorting.Clone()}
}

func (u *UncontrolledSort) Sorting() models.SortingState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.Clone()
}

func (u *UncontrolledSort) SetSorting(v models.SortingState) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state = v.Clone()
}

func (u *UncontrolledSort) UpdateSorting(fn Updater) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state = fn(u.state.Clone()).Clone()
}

func (u *UncontrolledSort) Controlled() bool { return false }

// Column describes one table column. Compare is nil for columns that cannot
// be sorted.
type Column[T any] struct {
	ID      string
	Header  string
	Value   func(T) any
	Compare func(a, b T) int
}

// ApplySorting returns a sorted copy of rows. Earlier entries of state take
// priority; ties keep their original order. Unknown or unsortable column ids
// are skipped.
func ApplySorting[T any](rows []T, state models.SortingState, columns []Column[T]) []T {
	out := slices.Clone(rows)
	if len(state) == 0 || len(out) < 2 {
		return out
	}

	byID := make(map[string]Column[T], len(columns))
	for _, c := range columns {
		byID[c.ID] = c
	}

	type key struct {
		compare func(a, b T) int
		desc    bool
	}
	keys := make([]key, 0, len(state))
	for _, s := range state {
		if c, ok := byID[s.ID]; ok && c.Compare != nil {
			keys = append(keys, key{compare: c.Compare, desc: s.Desc})
		}
	}
	if len(keys) == 0 {
		return out
	}

	slices.SortStableFunc(out, func(a, b T) int {
		for _, k := range keys {
			if r := k.compare(a, b); r != 0 {
				if k.desc {
					return -r
				}
				return r
			}
		}
		return 0
	})
	return out
}

// Collators are not safe for concurrent use.
var collatorPool = sync.Pool{
	New: func() any { return collate.New(language.English) },
}

// StringSort compares two cell values as trimmed, lower-cased text using
// locale-aware collation. nil values, typed nil pointers included, sort as
// the empty string. Other values are stringified first, so 10 sorts before 9.
func StringSort(a, b any) int {
	x := strings.ToLower(strings.TrimSpace(cellString(a)))
	y := strings.ToLower(strings.TrimSpace(cellString(b)))

	c := collatorPool.Get().(*collate.Collator)
	defer collatorPool.Put(c)
	return c.CompareString(x, y)
}

func cellString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case *string:
		if s == nil {
			return ""
		}
		return *s
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		if _, ok := v.(fmt.Stringer); !ok {
			return cellString(rv.Elem().Interface())
		}
	}

	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

// compareIntPtr orders nil before any number.
func compareIntPtr(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

// compareTimePtr orders nil before any time.
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func compareText(a, b *string) int {
	return strings.Compare(cellString(a), cellString(b))
}
