package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/admintable/internal/graphql"
	"github.com/BradenHooton/admintable/internal/models"
	"github.com/BradenHooton/admintable/internal/table"
	"github.com/google/uuid"
)

// SessionService owns the open table sessions
type SessionService struct {
	exec    graphql.Executor
	mutator PostMutator
	cfg     SessionConfig
	idleTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionService creates a new SessionService. Sessions idle for longer
// than idleTTL are removed by ExpireIdle.
func NewSessionService(exec graphql.Executor, mutator PostMutator, cfg SessionConfig, idleTTL time.Duration, logger *slog.Logger) *SessionService {
	return &SessionService{
		exec:     exec,
		mutator:  mutator,
		cfg:      cfg,
		idleTTL:  idleTTL,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create opens a session on the Users tab and loads its first page. A failed
// load still returns the session; the error is part of its view.
func (s *SessionService) Create(ctx context.Context) (*Session, error) {
	sess := newSession(uuid.NewString(), s.exec, s.mutator, s.cfg, s.logger, s.now())

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
	sessionsActive.Inc()

	s.logger.Info("session created", slog.String("session_id", sess.ID()))

	if err := sess.Load(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			s.Delete(sess.ID())
			return nil, err
		}
		if !errors.Is(err, table.ErrSuperseded) {
			s.logger.Warn("initial load failed", slog.String("session_id", sess.ID()), slog.Any("error", err))
		}
	}
	return sess, nil
}

// Get returns a session and records activity on it.
func (s *SessionService) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, models.ErrSessionNotFound
	}
	sess.Touch(s.now())
	return sess, nil
}

// Delete closes and removes a session.
func (s *SessionService) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return models.ErrSessionNotFound
	}
	sessionsActive.Dec()
	sess.Close()
	s.logger.Info("session closed", slog.String("session_id", id))
	return nil
}

// ExpireIdle removes sessions whose last activity is older than the idle TTL
// and returns how many were removed.
func (s *SessionService) ExpireIdle(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}

	var expired []*Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.LastSeen()) > s.idleTTL {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
		sessionsActive.Dec()
		sessionsExpired.Inc()
	}
	return len(expired)
}

// Count returns the number of open sessions.
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseAll closes every session. Used on shutdown.
func (s *SessionService) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.Close()
		sessionsActive.Dec()
	}
}
