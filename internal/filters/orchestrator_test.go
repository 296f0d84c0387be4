package filters

import (
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/admintable/internal/debounce"
	"github.com/BradenHooton/admintable/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeLog struct {
	mu      sync.Mutex
	changes []Change
}

func (l *changeLog) add(c Change) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, c)
}

func (l *changeLog) all() []Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Change(nil), l.changes...)
}

func (l *changeLog) last(t *testing.T) Change {
	t.Helper()
	all := l.all()
	require.NotEmpty(t, all)
	return all[len(all)-1]
}

func newTestOrchestrator(tab models.Tab) (*Orchestrator, *debounce.FakeClock, *changeLog) {
	clock := debounce.NewFakeClock()
	log := &changeLog{}
	o := NewOrchestrator(tab, DefaultSearchDebounce, log.add, debounce.WithAfterFunc(clock.AfterFunc))
	return o, clock, log
}

func TestOrchestrator_SearchRebuildsAfterDebounce(t *testing.T) {
	o, clock, log := newTestOrchestrator(models.TabPosts)

	o.SetSearchValue("g")
	o.SetSearchValue("go")
	clock.Advance(300 * time.Millisecond)
	assert.Empty(t, log.all())
	assert.True(t, o.PostFilters().IsEmpty())

	clock.Advance(100 * time.Millisecond)
	change := log.last(t)
	assert.Equal(t, ChangeDebounced, change.Reason)
	assert.Equal(t, "go", change.State.DebouncedSearch)
	assert.Len(t, o.PostFilters().Or, 2)
	assert.Len(t, log.all(), 1)
}

func TestOrchestrator_AgeChangesRebuildImmediatelyOnUsersTab(t *testing.T) {
	o, _, log := newTestOrchestrator(models.TabUsers)

	o.SetAgeOperator(models.AgeOpGte)
	assert.Empty(t, log.all(), "operator without value is incomplete")

	o.SetAgeValue("30")
	change := log.last(t)
	assert.Equal(t, ChangeInput, change.Reason)
	require.NotNil(t, change.State.UserFilters.Age)
	assert.Equal(t, 30, *change.State.UserFilters.Age.Gte)
}

func TestOrchestrator_IncompleteAgeKeepsStaleFilter(t *testing.T) {
	o, _, _ := newTestOrchestrator(models.TabUsers)

	o.SetAgeOperator(models.AgeOpEq)
	o.SetAgeValue("40")
	before := o.UserFilters()

	o.SetAgeValue("")
	assert.Equal(t, before, o.UserFilters())
}

func TestOrchestrator_ClearingOperatorDropsAgeLeaf(t *testing.T) {
	o, _, _ := newTestOrchestrator(models.TabUsers)

	o.SetAgeOperator(models.AgeOpEq)
	o.SetAgeValue("40")
	o.SetAgeOperator(models.AgeOpNone)

	assert.True(t, o.UserFilters().IsEmpty())
}

func TestOrchestrator_AgeIgnoredOnPostsTab(t *testing.T) {
	o, _, log := newTestOrchestrator(models.TabPosts)

	o.SetAgeOperator(models.AgeOpEq)
	o.SetAgeValue("40")

	assert.Empty(t, log.all())
	assert.True(t, o.UserFilters().IsEmpty())
}

func TestOrchestrator_DebouncedSearchCombinesWithAge(t *testing.T) {
	o, clock, _ := newTestOrchestrator(models.TabUsers)

	o.SetAgeOperator(models.AgeOpLt)
	o.SetAgeValue("50")
	o.SetSearchValue("ann")
	clock.Advance(DefaultSearchDebounce)

	f := o.UserFilters()
	require.Len(t, f.And, 2)
	assert.NotNil(t, f.And[0].Age)
}

func TestOrchestrator_ResetIsSynchronous(t *testing.T) {
	o, clock, log := newTestOrchestrator(models.TabUsers)

	o.SetAgeOperator(models.AgeOpEq)
	o.SetAgeValue("40")
	o.SetSearchValue("pending")

	o.Reset()
	st := o.State()
	assert.Equal(t, "", st.SearchValue)
	assert.Equal(t, "", st.DebouncedSearch)
	assert.Equal(t, models.AgeOpNone, st.AgeOperator)
	assert.Equal(t, models.AgeInput(""), st.AgeValue)
	assert.True(t, st.UserFilters.IsEmpty())
	assert.True(t, st.PostFilters.IsEmpty())
	assert.Equal(t, ChangeReset, log.last(t).Reason)

	count := len(log.all())
	clock.Advance(time.Second)
	assert.Len(t, log.all(), count, "the dropped search must not commit later")
}

func TestOrchestrator_SetActiveTabRebuildsForNewTab(t *testing.T) {
	o, clock, log := newTestOrchestrator(models.TabUsers)

	o.SetSearchValue("go")
	clock.Advance(DefaultSearchDebounce)
	assert.True(t, o.PostFilters().IsEmpty())

	o.SetActiveTab(models.TabPosts)
	assert.Equal(t, ChangeTab, log.last(t).Reason)
	assert.Len(t, o.PostFilters().Or, 2)
}

func TestOrchestrator_CloseStopsPendingSearch(t *testing.T) {
	o, clock, log := newTestOrchestrator(models.TabPosts)

	o.SetSearchValue("late")
	o.Close()
	clock.Advance(time.Second)

	assert.Empty(t, log.all())
}

func TestOrchestrator_ChangesCarryIncreasingSeq(t *testing.T) {
	o, clock, log := newTestOrchestrator(models.TabUsers)

	o.SetSearchValue("ann")
	clock.Advance(DefaultSearchDebounce)
	o.SetAgeOperator(models.AgeOpGte)
	o.SetAgeValue("30")
	o.Reset()

	changes := log.all()
	require.Len(t, changes, 3)
	assert.Equal(t, ChangeDebounced, changes[0].Reason)
	assert.Equal(t, ChangeInput, changes[1].Reason)
	assert.Equal(t, ChangeReset, changes[2].Reason)
	for i := 1; i < len(changes); i++ {
		assert.Greater(t, changes[i].Seq, changes[i-1].Seq)
	}
}
