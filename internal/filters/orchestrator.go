package filters

import (
	"sync"
	"time"

	"github.com/BradenHooton/admintable/internal/debounce"
	"github.com/BradenHooton/admintable/internal/models"
)

// DefaultSearchDebounce is the quiet period before a search is applied.
const DefaultSearchDebounce = 400 * time.Millisecond

// ChangeReason says what caused a filter rebuild.
type ChangeReason int

const (
	// ChangeDebounced follows a committed search value (timer goroutine).
	ChangeDebounced ChangeReason = iota
	// ChangeInput follows an age operator or value change.
	ChangeInput
	// ChangeTab follows a switch of the active tab.
	ChangeTab
	// ChangeReset follows Reset.
	ChangeReset
)

func (r ChangeReason) String() string {
	switch r {
	case ChangeDebounced:
		return "debounced"
	case ChangeInput:
		return "input"
	case ChangeTab:
		return "tab"
	case ChangeReset:
		return "reset"
	default:
		return "unknown"
	}
}

// State is a snapshot of the filter inputs and the expressions derived from them.
type State struct {
	ActiveTab       models.Tab         `json:"active_tab"`
	SearchValue     string             `json:"search_value"`
	DebouncedSearch string             `json:"debounced_search"`
	AgeOperator     models.AgeOperator `json:"age_operator"`
	AgeValue        models.AgeInput    `json:"age_value"`
	UserFilters     models.UserFilters `json:"user_filters"`
	PostFilters     models.PostFilters `json:"post_filters"`
}

// Change is delivered to the orchestrator's listener after every rebuild.
// Deliveries may race; Seq orders them, and a listener should ignore any
// change whose Seq is not above the last one it applied.
type Change struct {
	Reason ChangeReason
	State  State
	Seq    uint64
}

// Orchestrator owns the search and age inputs of one table page and rebuilds
// the active tab's filter expression when they settle.
type Orchestrator struct {
	mu          sync.Mutex
	activeTab   models.Tab
	ageOp       models.AgeOperator
	ageVal      models.AgeInput
	userFilters models.UserFilters
	postFilters models.PostFilters
	seq         uint64

	search   *debounce.Debouncer[string]
	onChange func(Change)
}

// NewOrchestrator creates an orchestrator with empty inputs. onChange may be
// nil and is never called with the orchestrator's lock held.
func NewOrchestrator(activeTab models.Tab, delay time.Duration, onChange func(Change), opts ...debounce.Option) *Orchestrator {
	o := &Orchestrator{
		activeTab: activeTab,
		onChange:  onChange,
	}
	o.search = debounce.New("", delay, o.searchCommitted, opts...)
	return o
}

func (o *Orchestrator) searchCommitted(string) {
	o.mu.Lock()
	rebuilt := o.rebuildLocked()
	ch := o.changeLocked(ChangeDebounced)
	o.mu.Unlock()

	if rebuilt {
		o.emit(ch)
	}
}

// SetSearchValue records raw search input. The filter is rebuilt once the
// value has been stable for the debounce delay.
func (o *Orchestrator) SetSearchValue(v string) {
	o.search.Set(v)
}

// SetAgeOperator changes the age comparison. On the Users tab the user filter
// is rebuilt immediately unless the age filter is half-filled.
func (o *Orchestrator) SetAgeOperator(op models.AgeOperator) {
	o.mu.Lock()
	if o.ageOp == op {
		o.mu.Unlock()
		return
	}
	o.ageOp = op
	o.applyAgeChangeLocked()
}

// SetAgeValue changes the age value. Callers are expected to have passed the
// input through NormalizeAgeInput.
func (o *Orchestrator) SetAgeValue(v models.AgeInput) {
	o.mu.Lock()
	if o.ageVal == v {
		o.mu.Unlock()
		return
	}
	o.ageVal = v
	o.applyAgeChangeLocked()
}

// applyAgeChangeLocked releases the lock before notifying.
func (o *Orchestrator) applyAgeChangeLocked() {
	if o.activeTab != models.TabUsers {
		o.mu.Unlock()
		return
	}
	rebuilt := o.rebuildLocked()
	ch := o.changeLocked(ChangeInput)
	o.mu.Unlock()

	if rebuilt {
		o.emit(ch)
	}
}

// SetActiveTab switches the tab and rebuilds that tab's filter from the
// current inputs.
func (o *Orchestrator) SetActiveTab(tab models.Tab) {
	o.mu.Lock()
	if o.activeTab == tab {
		o.mu.Unlock()
		return
	}
	o.activeTab = tab
	rebuilt := o.rebuildLocked()
	ch := o.changeLocked(ChangeTab)
	o.mu.Unlock()

	if rebuilt {
		o.emit(ch)
	}
}

// Reset clears every input and both expressions at once. Any pending search
// commit is dropped.
func (o *Orchestrator) Reset() {
	o.search.Reset("")

	o.mu.Lock()
	o.ageOp = models.AgeOpNone
	o.ageVal = ""
	o.userFilters = models.UserFilters{}
	o.postFilters = models.PostFilters{}
	ch := o.changeLocked(ChangeReset)
	o.mu.Unlock()

	o.emit(ch)
}

// State returns a snapshot of inputs and derived filters.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stateLocked()
}

// UserFilters returns the current users expression.
func (o *Orchestrator) UserFilters() models.UserFilters {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.userFilters
}

// PostFilters returns the current posts expression.
func (o *Orchestrator) PostFilters() models.PostFilters {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.postFilters
}

// Close stops the search debouncer. No change is emitted afterwards for
// pending search input.
func (o *Orchestrator) Close() {
	o.search.Stop()
}

// rebuildLocked recomputes the active tab's expression. It reports false when
// the rebuild was skipped because the age filter is incomplete.
func (o *Orchestrator) rebuildLocked() bool {
	search := o.search.Value()

	switch o.activeTab {
	case models.TabPosts:
		o.postFilters = BuildPostFilters(search)
		return true
	case models.TabUsers:
		if o.ageOp != models.AgeOpNone && !IsAgeFilterComplete(o.ageOp, o.ageVal) {
			return false
		}
		o.userFilters = BuildUserFilters(search, o.ageOp, o.ageVal)
		return true
	default:
		return false
	}
}

func (o *Orchestrator) stateLocked() State {
	return State{
		ActiveTab:       o.activeTab,
		SearchValue:     o.search.Input(),
		DebouncedSearch: o.search.Value(),
		AgeOperator:     o.ageOp,
		AgeValue:        o.ageVal,
		UserFilters:     o.userFilters,
		PostFilters:     o.postFilters,
	}
}

// changeLocked snapshots the state under the next sequence number.
func (o *Orchestrator) changeLocked(reason ChangeReason) Change {
	o.seq++
	return Change{Reason: reason, State: o.stateLocked(), Seq: o.seq}
}

func (o *Orchestrator) emit(ch Change) {
	if o.onChange != nil {
		o.onChange(ch)
	}
}
