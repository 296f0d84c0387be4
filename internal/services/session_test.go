package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/admintable/internal/debounce"
	"github.com/BradenHooton/admintable/internal/filters"
	"github.com/BradenHooton/admintable/internal/graphql"
	"github.com/BradenHooton/admintable/internal/models"
	"github.com/BradenHooton/admintable/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testUsersData = `{"users":{"data":[
	{"id":1,"name":"Cy","age":31,"email":"cy@example.com","phone":"555","posts":[]},
	{"id":2,"name":"Ann","age":22,"email":"ann@example.com","phone":"556","posts":[
		{"id":5,"title":"First","content":"Hello","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"}
	]},
	{"id":3,"name":"Bea","age":40,"email":"bea@example.com","phone":"557","posts":[]}
],"totalCount":3}}`

const testPostsData = `{"posts":{"data":[
	{"id":5,"title":"First","content":"Hello","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-02T00:00:00Z","user":{"name":"Ann"}}
],"totalCount":1}}`

type sessionFixture struct {
	exec    *graphql.MockExecutor
	clock   *debounce.FakeClock
	mutator *stubMutator
	sess    *Session
}

// stubMutator records which mutations the session asked for.
type stubMutator struct {
	createErr error
	updateErr error
	deleteErr error
	created   int
	updated   int
	deleted   []int
}

func (m *stubMutator) CreatePost(ctx context.Context, actor Actor, userID int, title, content string) (*models.Post, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created++
	return NewTestPost(100, title, content), nil
}

func (m *stubMutator) UpdatePost(ctx context.Context, actor Actor, original *models.Post, title, content string) (UpdateResult, error) {
	if m.updateErr != nil {
		return UpdateResult{}, m.updateErr
	}
	if title == original.TitleOrEmpty() && content == original.ContentOrEmpty() {
		return UpdateResult{Post: original}, nil
	}
	m.updated++
	return UpdateResult{Post: NewTestPost(original.ID, title, content), Changed: true}, nil
}

func (m *stubMutator) DeletePost(ctx context.Context, actor Actor, id int) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		exec:    FixtureExecutor(testUsersData, testPostsData),
		clock:   debounce.NewFakeClock(),
		mutator: &stubMutator{},
	}
	cfg := SessionConfig{
		SearchDebounce:  filters.DefaultSearchDebounce,
		UsersPageSize:   2,
		PostsPageSize:   2,
		LoadTimeout:     time.Second,
		DebounceOptions: []debounce.Option{debounce.WithAfterFunc(f.clock.AfterFunc)},
	}
	f.sess = newSession("sess-1", f.exec, f.mutator, cfg, slog.Default(), time.Now())
	require.NoError(t, f.sess.Load(context.Background()))
	t.Cleanup(f.sess.Close)
	return f
}

func lastFilters(t *testing.T, exec *graphql.MockExecutor) string {
	t.Helper()
	calls := exec.Calls()
	require.NotEmpty(t, calls)
	raw, err := json.Marshal(calls[len(calls)-1].Variables["filters"])
	require.NoError(t, err)
	return string(raw)
}

func TestSession_InitialView(t *testing.T) {
	f := newSessionFixture(t)

	view := f.sess.View()

	assert.Equal(t, models.TabUsers, view.ActiveTab)
	require.Len(t, view.Users.Rows, 2)
	assert.Equal(t, 1, view.Users.Rows[0].ID)
	assert.Equal(t, 2, view.Users.Rows[1].ID)
	assert.True(t, view.Users.Pagination.HasNextPage)
	assert.Equal(t, table.DefaultUserSorting, view.Users.Sorting)
	assert.Equal(t, table.DefaultPostSorting, view.Posts.Sorting)
	assert.Equal(t, 2, view.RowCounts[models.TabUsers])
	assert.Equal(t, 1, CallsTo(f.exec, "GetUsers"))
	assert.Zero(t, CallsTo(f.exec, "GetPosts"))
}

func TestSession_SearchReloadsAfterQuietPeriod(t *testing.T) {
	f := newSessionFixture(t)

	f.sess.SetSearch("a")
	f.sess.SetSearch("an")
	f.clock.Advance(200 * time.Millisecond)
	assert.Equal(t, 1, CallsTo(f.exec, "GetUsers"))

	f.clock.Advance(filters.DefaultSearchDebounce)

	assert.Eventually(t, func() bool { return CallsTo(f.exec, "GetUsers") == 2 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, lastFilters(t, f.exec), `"an"`)
	assert.Equal(t, "an", f.sess.View().Filters.DebouncedSearch)
}

func TestSession_SearchResetsPagination(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Navigate(ctx, table.PageNext))
	assert.Equal(t, 1, f.sess.View().Users.Pagination.Page)

	f.sess.SetSearch("ann")
	f.clock.Advance(filters.DefaultSearchDebounce)

	assert.Eventually(t, func() bool { return CallsTo(f.exec, "GetUsers") == 3 }, time.Second, 5*time.Millisecond)
	calls := f.exec.Calls()
	assert.Equal(t, 0, calls[len(calls)-1].Variables["offset"])
}

func TestSession_AgeFilterOnlyOnUsersTab(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.SwitchTab(ctx, models.TabPosts))

	assert.ErrorIs(t, f.sess.SetAgeOperator(ctx, models.AgeOpGte), models.ErrInvalidTab)
	assert.ErrorIs(t, f.sess.SetAgeValue(ctx, "30"), models.ErrInvalidTab)
}

func TestSession_AgeFilterWaitsForCompleteInput(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.SetAgeOperator(ctx, models.AgeOpGte))
	assert.Equal(t, 1, CallsTo(f.exec, "GetUsers"))

	require.NoError(t, f.sess.SetAgeValue(ctx, "30"))
	assert.Equal(t, 2, CallsTo(f.exec, "GetUsers"))
	assert.Contains(t, lastFilters(t, f.exec), "30")
}

func TestSession_AgeValueClampedWithNotice(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.SetAgeOperator(ctx, models.AgeOpLt))
	require.NoError(t, f.sess.SetAgeValue(ctx, "200"))

	view := f.sess.View()
	assert.Equal(t, filters.AgeRangeNotice, view.Notice)
	assert.Equal(t, models.AgeInput("150"), view.Filters.AgeValue)
	assert.Contains(t, lastFilters(t, f.exec), "150")

	assert.Empty(t, f.sess.View().Notice, "notice is shown once")
}

func TestSession_NonNumericAgeIgnored(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.SetAgeValue(ctx, "30"))
	require.NoError(t, f.sess.SetAgeValue(ctx, "abc"))

	assert.Equal(t, models.AgeInput("30"), f.sess.View().Filters.AgeValue)
}

func TestSession_InvalidAgeOperator(t *testing.T) {
	f := newSessionFixture(t)

	err := f.sess.SetAgeOperator(context.Background(), models.AgeOperator("!="))
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestSession_NavigateLoadsOnlyOnPageChange(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Navigate(ctx, table.PagePrev))
	assert.Equal(t, 1, CallsTo(f.exec, "GetUsers"))

	require.NoError(t, f.sess.Navigate(ctx, table.PageNext))
	assert.Equal(t, 2, CallsTo(f.exec, "GetUsers"))
	calls := f.exec.Calls()
	assert.Equal(t, 2, calls[len(calls)-1].Variables["offset"])
}

func TestSession_SwitchTabResetsFiltersAndKeepsSorting(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.SetSorting(models.TabUsers, models.SortingState{{ID: "name", Desc: true}}))
	require.NoError(t, f.sess.SetAgeValue(ctx, "30"))
	f.sess.SetSearch("cy")

	require.NoError(t, f.sess.SwitchTab(ctx, models.TabPosts))

	view := f.sess.View()
	assert.Equal(t, models.TabPosts, view.ActiveTab)
	assert.Empty(t, view.Filters.SearchValue)
	assert.Empty(t, view.Filters.AgeValue)
	assert.Equal(t, 1, CallsTo(f.exec, "GetPosts"))
	require.Len(t, view.Posts.Rows, 1)
	assert.True(t, view.Posts.Rows[0].Edited())

	f.clock.Advance(filters.DefaultSearchDebounce)
	assert.Zero(t, f.clock.Active())

	require.NoError(t, f.sess.SwitchTab(ctx, models.TabUsers))
	view = f.sess.View()
	assert.Equal(t, models.SortingState{{ID: "name", Desc: true}}, view.Users.Sorting)
	assert.Equal(t, "Cy", view.Users.Rows[0].DisplayName())
}

func TestSession_SwitchTabRejectsUnknownTab(t *testing.T) {
	f := newSessionFixture(t)

	err := f.sess.SwitchTab(context.Background(), models.Tab("Comments"))
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestSession_SetSortingValidatesColumns(t *testing.T) {
	f := newSessionFixture(t)

	assert.ErrorIs(t, f.sess.SetSorting(models.TabPosts, models.SortingState{{ID: "edited"}}), models.ErrBadRequest)
	assert.ErrorIs(t, f.sess.SetSorting(models.TabUsers, models.SortingState{{ID: "nope"}}), models.ErrBadRequest)
	assert.ErrorIs(t, f.sess.SetSorting(models.TabUsers, models.SortingState{{ID: "age"}, {ID: "age", Desc: true}}), models.ErrBadRequest)
	assert.ErrorIs(t, f.sess.SetSorting(models.Tab("x"), nil), models.ErrBadRequest)

	require.NoError(t, f.sess.SetSorting(models.TabUsers, nil))
	assert.Empty(t, f.sess.View().Users.Sorting)
	assert.Equal(t, 1, CallsTo(f.exec, "GetUsers"), "sorting is applied locally")
}

func TestSession_ResetFilters(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.SetAgeOperator(ctx, models.AgeOpEq))
	require.NoError(t, f.sess.SetAgeValue(ctx, "30"))
	assert.Equal(t, 2, CallsTo(f.exec, "GetUsers"))

	require.NoError(t, f.sess.ResetFilters(ctx))

	assert.Equal(t, 3, CallsTo(f.exec, "GetUsers"))
	assert.Equal(t, "{}", lastFilters(t, f.exec))
	view := f.sess.View()
	assert.Empty(t, view.Filters.AgeValue)
	assert.Equal(t, models.AgeOpNone, view.Filters.AgeOperator)
}

func TestSession_StaleFilterChangeAfterResetIsDropped(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.ResetFilters(ctx))
	applied := f.sess.orchestrator.State()
	require.True(t, applied.UserFilters.IsEmpty())

	// A search commit snapshotted before the reset but delivered after it.
	stale := filters.Change{
		Reason: filters.ChangeDebounced,
		State: filters.State{
			ActiveTab:       models.TabUsers,
			DebouncedSearch: "ann",
			UserFilters:     filters.BuildUserFilters("ann", models.AgeOpNone, ""),
		},
		Seq: 1,
	}
	f.sess.onFilterChange(stale)

	require.NoError(t, f.sess.Load(ctx))
	assert.Equal(t, "{}", lastFilters(t, f.exec))
	assert.Equal(t, 2, CallsTo(f.exec, "GetUsers"))
}

func TestSession_ExportFollowsActiveTab(t *testing.T) {
	f := newSessionFixture(t)

	name, data, err := f.sess.Export()
	require.NoError(t, err)
	assert.Equal(t, "users", name)
	assert.Len(t, sheetRows(t, data, "Users"), 3, "header plus one page of users")

	require.NoError(t, f.sess.SwitchTab(context.Background(), models.TabPosts))
	name, data, err = f.sess.Export()
	require.NoError(t, err)
	assert.Equal(t, "posts", name)
	rows := sheetRows(t, data, "Posts")
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "First")
}

func sheetRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer xl.Close()
	rows, err := xl.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestSession_Refresh(t *testing.T) {
	f := newSessionFixture(t)

	require.NoError(t, f.sess.Refresh(context.Background()))
	assert.Equal(t, 2, CallsTo(f.exec, "GetUsers"))
}

func TestSession_CreatePostRefetchesUsers(t *testing.T) {
	f := newSessionFixture(t)

	post, err := f.sess.CreatePost(context.Background(), "127.0.0.1", 2, "Title", "")

	require.NoError(t, err)
	assert.Equal(t, 100, post.ID)
	assert.Equal(t, 2, CallsTo(f.exec, "GetUsers"))
	assert.Equal(t, NoticePostCreated, f.sess.View().Notice)
}

func TestSession_CreatePostFailureLeavesState(t *testing.T) {
	f := newSessionFixture(t)
	f.mutator.createErr = errors.New("boom")

	_, err := f.sess.CreatePost(context.Background(), "127.0.0.1", 2, "Title", "")

	assert.Error(t, err)
	assert.Equal(t, 1, CallsTo(f.exec, "GetUsers"))
	assert.Empty(t, f.sess.View().Notice)
}

func TestSession_UpdatePost(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res, err := f.sess.UpdatePost(ctx, "", 5, "First", "Hello")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, 1, CallsTo(f.exec, "GetUsers"))

	res, err = f.sess.UpdatePost(ctx, "", 5, "Second", "Hello")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 2, CallsTo(f.exec, "GetUsers"))
	assert.Equal(t, NoticePostUpdated, f.sess.View().Notice)

	_, err = f.sess.UpdatePost(ctx, "", 999, "x", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSession_DeletePostNeedsConfirmation(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	id, err := f.sess.RequestDeletePost("", 5)
	require.NoError(t, err)
	assert.Equal(t, id, f.sess.View().PendingConfirmation)
	assert.Empty(t, f.mutator.deleted)

	assert.ErrorIs(t, f.sess.ConfirmPending(ctx, "stale"), models.ErrConfirmationNotFound)

	require.NoError(t, f.sess.ConfirmPending(ctx, id))
	assert.Equal(t, []int{5}, f.mutator.deleted)
	view := f.sess.View()
	assert.Equal(t, NoticePostDeleted, view.Notice)
	assert.Empty(t, view.PendingConfirmation)
	assert.Equal(t, 2, CallsTo(f.exec, "GetUsers"))
}

func TestSession_DeleteFailureKeepsConfirmation(t *testing.T) {
	f := newSessionFixture(t)
	f.mutator.deleteErr = errors.New("boom")
	ctx := context.Background()

	id, err := f.sess.RequestDeletePost("", 5)
	require.NoError(t, err)

	assert.Error(t, f.sess.ConfirmPending(ctx, id))
	assert.Equal(t, id, f.sess.View().PendingConfirmation)

	f.sess.DismissConfirmation()
	assert.Empty(t, f.sess.View().PendingConfirmation)
}

func TestSession_DeleteUnknownPost(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.sess.RequestDeletePost("", 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSession_CloseStopsPendingSearch(t *testing.T) {
	f := newSessionFixture(t)

	f.sess.SetSearch("cy")
	assert.Equal(t, 1, f.clock.Active())

	f.sess.Close()
	assert.Zero(t, f.clock.Active())

	f.clock.Advance(filters.DefaultSearchDebounce)
	assert.Equal(t, 1, CallsTo(f.exec, "GetUsers"))
}
