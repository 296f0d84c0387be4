package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/admintable/internal/debounce"
	"github.com/BradenHooton/admintable/internal/export"
	"github.com/BradenHooton/admintable/internal/filters"
	"github.com/BradenHooton/admintable/internal/graphql"
	"github.com/BradenHooton/admintable/internal/models"
	"github.com/BradenHooton/admintable/internal/repositories"
	"github.com/BradenHooton/admintable/internal/table"
)

// Notices shown after post mutations.
const (
	NoticePostCreated        = "Post created"
	NoticePostUpdated        = "Post updated"
	NoticePostDeleted        = "Post deleted"
	NoticeFailedToSavePost   = "Failed to save post"
	NoticeFailedToDeletePost = "Failed to delete post"
)

// PostMutator executes validated post mutations.
type PostMutator interface {
	CreatePost(ctx context.Context, actor Actor, userID int, title, content string) (*models.Post, error)
	UpdatePost(ctx context.Context, actor Actor, original *models.Post, title, content string) (UpdateResult, error)
	DeletePost(ctx context.Context, actor Actor, id int) error
}

// SessionConfig holds the tunables shared by every session.
type SessionConfig struct {
	SearchDebounce time.Duration
	UsersPageSize  int
	PostsPageSize  int
	// LoadTimeout bounds loads started by a debounced search commit.
	LoadTimeout time.Duration
	// DebounceOptions are passed to the search debouncer.
	DebounceOptions []debounce.Option
}

type (
	usersTable = table.Table[repositories.UsersData, *models.User]
	postsTable = table.Table[repositories.PostsData, *models.Post]
)

// SessionView is the render-ready state of a session.
type SessionView struct {
	ID                  string                   `json:"id"`
	ActiveTab           models.Tab               `json:"active_tab"`
	Filters             filters.State            `json:"filters"`
	Users               table.View[*models.User] `json:"users"`
	Posts               table.View[*models.Post] `json:"posts"`
	RowCounts           map[models.Tab]int       `json:"row_counts"`
	Notice              string                   `json:"notice,omitempty"`
	PendingConfirmation string                   `json:"pending_confirmation,omitempty"`
}

// Session is one open data table page: a tab selector, the filter inputs,
// and a users and a posts table. Sort state is kept per tab and survives tab
// switches.
type Session struct {
	id          string
	logger      *slog.Logger
	mutator     PostMutator
	loadTimeout time.Duration

	orchestrator *filters.Orchestrator
	users        *usersTable
	posts        *postsTable
	confirm      *ConfirmCoordinator

	// filterMu orders filter deliveries into the tables.
	filterMu   sync.Mutex
	appliedSeq uint64

	mu        sync.Mutex
	activeTab models.Tab
	sorting   map[models.Tab]models.SortingState
	dirty     map[models.Tab]bool
	counts    map[models.Tab]int
	notice    string
	lastSeen  time.Time
	closed    bool

	ctx    context.Context
	cancel context.CancelFunc
	bg     sync.WaitGroup
}

func newSession(id string, exec graphql.Executor, mutator PostMutator, cfg SessionConfig, logger *slog.Logger, now time.Time) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:          id,
		logger:      logger.With(slog.String("session_id", id)),
		mutator:     mutator,
		loadTimeout: cfg.LoadTimeout,
		confirm:     NewConfirmCoordinator(),
		activeTab:   models.TabUsers,
		sorting: map[models.Tab]models.SortingState{
			models.TabUsers: table.DefaultUserSorting.Clone(),
			models.TabPosts: table.DefaultPostSorting.Clone(),
		},
		dirty:    map[models.Tab]bool{},
		counts:   map[models.Tab]int{},
		lastSeen: now,
		ctx:      ctx,
		cancel:   cancel,
	}

	s.users = table.New(table.Config[repositories.UsersData, *models.User]{
		Name:              "users",
		Executor:          exec,
		Document:          repositories.UsersQuery,
		PageSize:          cfg.UsersPageSize,
		Extract:           repositories.ExtractUsers,
		ExtractTotal:      repositories.ExtractUsersTotal,
		Columns:           table.UserColumns,
		Sorting:           s.sortController(models.TabUsers),
		InitialFilters:    models.UserFilters{},
		OnDataCountChange: s.countChanged(models.TabUsers),
		Logger:            s.logger,
	})
	s.posts = table.New(table.Config[repositories.PostsData, *models.Post]{
		Name:              "posts",
		Executor:          exec,
		Document:          repositories.PostsQuery,
		PageSize:          cfg.PostsPageSize,
		Extract:           repositories.ExtractPosts,
		ExtractTotal:      repositories.ExtractPostsTotal,
		Columns:           table.PostColumns,
		Sorting:           s.sortController(models.TabPosts),
		InitialFilters:    models.PostFilters{},
		OnDataCountChange: s.countChanged(models.TabPosts),
		Logger:            s.logger,
	})
	s.orchestrator = filters.NewOrchestrator(models.TabUsers, cfg.SearchDebounce, s.onFilterChange, cfg.DebounceOptions...)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// ActiveTab returns the selected tab.
func (s *Session) ActiveTab() models.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTab
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

// LastSeen returns the time of the last recorded activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// sortController keeps each tab's sort state in the session.
func (s *Session) sortController(tab models.Tab) table.SortController {
	return table.NewControlledSort(
		func() models.SortingState {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.sorting[tab].Clone()
		},
		func(v models.SortingState) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.sorting[tab] = v
		},
	)
}

func (s *Session) countChanged(tab models.Tab) func(int) {
	return func(n int) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.counts[tab] = n
	}
}

// onFilterChange pushes rebuilt expressions into the tables. A change that
// arrives after a newer one has been applied is dropped. Only a debounced
// search commit starts a load here; every other change comes from a request
// that loads on its own.
func (s *Session) onFilterChange(ch filters.Change) {
	s.filterMu.Lock()
	if ch.Seq <= s.appliedSeq {
		s.filterMu.Unlock()
		return
	}
	s.appliedSeq = ch.Seq
	usersChanged := s.users.SetFilters(ch.State.UserFilters)
	postsChanged := s.posts.SetFilters(ch.State.PostFilters)
	s.filterMu.Unlock()

	s.mu.Lock()
	if usersChanged {
		s.dirty[models.TabUsers] = true
	}
	if postsChanged {
		s.dirty[models.TabPosts] = true
	}
	active := s.activeTab
	start := ch.Reason == filters.ChangeDebounced && s.dirty[active] && !s.closed
	if start {
		s.bg.Add(1)
	}
	s.mu.Unlock()

	if start {
		go s.backgroundLoad(active)
	}
}

func (s *Session) backgroundLoad(tab models.Tab) {
	defer s.bg.Done()

	ctx := s.ctx
	if s.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.loadTimeout)
		defer cancel()
	}
	if err := s.load(ctx, tab); err != nil && !errors.Is(err, table.ErrSuperseded) {
		s.logger.Warn("search reload failed", slog.String("tab", string(tab)), slog.Any("error", err))
	}
}

// load fetches the current page of tab.
func (s *Session) load(ctx context.Context, tab models.Tab) error {
	s.mu.Lock()
	s.dirty[tab] = false
	s.mu.Unlock()

	var err error
	switch tab {
	case models.TabUsers:
		_, err = s.users.Load(ctx)
	case models.TabPosts:
		_, err = s.posts.Load(ctx)
	}
	return err
}

// loadIfDirty loads the active table when its filters changed since its last
// load.
func (s *Session) loadIfDirty(ctx context.Context) error {
	s.mu.Lock()
	tab := s.activeTab
	dirty := s.dirty[tab]
	s.mu.Unlock()

	if !dirty {
		return nil
	}
	return s.load(ctx, tab)
}

// Load fetches the active table's current page.
func (s *Session) Load(ctx context.Context) error {
	return s.load(ctx, s.ActiveTab())
}

// SwitchTab selects a tab and clears every filter input. A newly selected
// table starts again from its first page.
func (s *Session) SwitchTab(ctx context.Context, tab models.Tab) error {
	if !tab.Valid() {
		return fmt.Errorf("%w: unknown tab %q", models.ErrBadRequest, tab)
	}

	s.mu.Lock()
	prev := s.activeTab
	s.activeTab = tab
	s.mu.Unlock()

	s.orchestrator.SetActiveTab(tab)
	s.orchestrator.Reset()

	if prev == tab {
		return s.loadIfDirty(ctx)
	}
	switch tab {
	case models.TabUsers:
		s.users.Remount()
	case models.TabPosts:
		s.posts.Remount()
	}
	return s.load(ctx, tab)
}

// SetSearch records raw search input and returns at once. The active table
// reloads in the background once the input settles.
func (s *Session) SetSearch(value string) {
	s.orchestrator.SetSearchValue(value)
}

// SetAgeOperator changes the age comparison of the users table.
func (s *Session) SetAgeOperator(ctx context.Context, op models.AgeOperator) error {
	if s.ActiveTab() != models.TabUsers {
		return models.ErrInvalidTab
	}
	if !op.Valid() {
		return fmt.Errorf("%w: unknown age operator %q", models.ErrBadRequest, op)
	}
	s.orchestrator.SetAgeOperator(op)
	return s.loadIfDirty(ctx)
}

// SetAgeValue changes the typed age. Non-numeric input is ignored and
// out-of-range input is clamped with a notice.
func (s *Session) SetAgeValue(ctx context.Context, raw string) error {
	if s.ActiveTab() != models.TabUsers {
		return models.ErrInvalidTab
	}

	val, notice, ok := filters.NormalizeAgeInput(raw)
	if !ok {
		return nil
	}
	if notice != "" {
		s.setNotice(notice)
	}
	s.orchestrator.SetAgeValue(val)
	return s.loadIfDirty(ctx)
}

// ResetFilters clears search and age inputs.
func (s *Session) ResetFilters(ctx context.Context) error {
	s.orchestrator.Reset()
	return s.loadIfDirty(ctx)
}

// Navigate moves the active table's pagination and loads the page when it
// changed.
func (s *Session) Navigate(ctx context.Context, action table.PageAction) error {
	tab := s.ActiveTab()

	var before, after int
	switch tab {
	case models.TabUsers:
		before = s.users.Page()
		after = s.users.Navigate(action)
	case models.TabPosts:
		before = s.posts.Page()
		after = s.posts.Navigate(action)
	}

	if before == after {
		return s.loadIfDirty(ctx)
	}
	return s.load(ctx, tab)
}

// SetSorting replaces a tab's sort state. Rows are sorted locally so no load
// is needed.
func (s *Session) SetSorting(tab models.Tab, sorting models.SortingState) error {
	var sortable func(string) bool
	switch tab {
	case models.TabUsers:
		sortable = s.users.SortableColumn
	case models.TabPosts:
		sortable = s.posts.SortableColumn
	default:
		return fmt.Errorf("%w: unknown tab %q", models.ErrBadRequest, tab)
	}

	seen := make(map[string]bool, len(sorting))
	for _, cs := range sorting {
		if !sortable(cs.ID) {
			return fmt.Errorf("%w: column %q cannot be sorted", models.ErrBadRequest, cs.ID)
		}
		if seen[cs.ID] {
			return fmt.Errorf("%w: column %q listed twice", models.ErrBadRequest, cs.ID)
		}
		seen[cs.ID] = true
	}

	if tab == models.TabUsers {
		s.users.SetSorting(sorting)
	} else {
		s.posts.SetSorting(sorting)
	}
	return nil
}

// Refresh repeats the active table's last request.
func (s *Session) Refresh(ctx context.Context) error {
	return s.refetch(ctx, s.ActiveTab())
}

func (s *Session) refetch(ctx context.Context, tab models.Tab) error {
	var err error
	switch tab {
	case models.TabUsers:
		_, err = s.users.Refetch(ctx)
	case models.TabPosts:
		_, err = s.posts.Refetch(ctx)
	}
	return err
}

// View returns the session state and consumes the pending notice.
func (s *Session) View() SessionView {
	users := s.users.View()
	posts := s.posts.View()
	st := s.orchestrator.State()

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[models.Tab]int, len(s.counts))
	for k, v := range s.counts {
		counts[k] = v
	}
	v := SessionView{
		ID:                  s.id,
		ActiveTab:           s.activeTab,
		Filters:             st,
		Users:               users,
		Posts:               posts,
		RowCounts:           counts,
		Notice:              s.notice,
		PendingConfirmation: s.confirm.Pending(),
	}
	s.notice = ""
	return v
}

// Export renders the active table's current rows, in their current sort
// order, as an xlsx workbook. name is the table's name for file naming.
func (s *Session) Export() (name string, data []byte, err error) {
	tab := s.ActiveTab()
	switch tab {
	case models.TabPosts:
		data, err = export.Workbook(string(tab), s.posts.Columns(), s.posts.Rows())
		return s.posts.Name(), data, err
	default:
		data, err = export.Workbook(string(tab), s.users.Columns(), s.users.Rows())
		return s.users.Name(), data, err
	}
}

func (s *Session) setNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = msg
}

// FindPost looks a post up among the rows currently loaded in either table.
func (s *Session) FindPost(id int) *models.Post {
	for _, u := range s.users.Rows() {
		if p := u.FindPost(id); p != nil {
			return p
		}
	}
	for _, p := range s.posts.Rows() {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// afterMutation refetches the users table, and the posts table when it is
// on screen. Refetch failures only show up in the table's error state.
func (s *Session) afterMutation(ctx context.Context) {
	tabs := []models.Tab{models.TabUsers}
	if s.ActiveTab() == models.TabPosts {
		tabs = append(tabs, models.TabPosts)
	}
	for _, tab := range tabs {
		if err := s.refetch(ctx, tab); err != nil && !errors.Is(err, table.ErrSuperseded) {
			s.logger.Warn("refetch after mutation failed", slog.String("tab", string(tab)), slog.Any("error", err))
		}
	}
}

func (s *Session) actor(ip string) Actor {
	return Actor{SessionID: s.id, IPAddress: ip}
}

// CreatePost adds a post for userID.
func (s *Session) CreatePost(ctx context.Context, ip string, userID int, title, content string) (*models.Post, error) {
	post, err := s.mutator.CreatePost(ctx, s.actor(ip), userID, title, content)
	if err != nil {
		return nil, err
	}
	s.setNotice(NoticePostCreated)
	s.afterMutation(ctx)
	return post, nil
}

// UpdatePost saves a draft of a post shown in either table.
func (s *Session) UpdatePost(ctx context.Context, ip string, postID int, title, content string) (UpdateResult, error) {
	original := s.FindPost(postID)
	if original == nil {
		return UpdateResult{}, fmt.Errorf("post %d: %w", postID, models.ErrNotFound)
	}

	res, err := s.mutator.UpdatePost(ctx, s.actor(ip), original, title, content)
	if err != nil {
		return UpdateResult{}, err
	}
	if res.Changed {
		s.setNotice(NoticePostUpdated)
		s.afterMutation(ctx)
	}
	return res, nil
}

// RequestDeletePost asks for confirmation before deleting a post and returns
// the confirmation id.
func (s *Session) RequestDeletePost(ip string, postID int) (string, error) {
	if s.FindPost(postID) == nil {
		return "", fmt.Errorf("post %d: %w", postID, models.ErrNotFound)
	}

	actor := s.actor(ip)
	id := s.confirm.Request(func(ctx context.Context) error {
		if err := s.mutator.DeletePost(ctx, actor, postID); err != nil {
			return err
		}
		s.setNotice(NoticePostDeleted)
		s.afterMutation(ctx)
		return nil
	})
	return id, nil
}

// ConfirmPending runs the pending confirmation with the given id.
func (s *Session) ConfirmPending(ctx context.Context, id string) error {
	return s.confirm.Confirm(ctx, id)
}

// DismissConfirmation drops the pending confirmation.
func (s *Session) DismissConfirmation() {
	s.confirm.Dismiss()
}

// Close stops the search debouncer and waits for background loads.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.orchestrator.Close()
	s.cancel()
	s.bg.Wait()
}
