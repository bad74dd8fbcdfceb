// Package session tracks who the CLI is acting as.
//
// A Session holds the current user and account. Only their ids are
// persisted; Hydrate re-fetches the records on start-up and forgets any id
// the backend no longer recognises.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/go-logr/logr"

	"github.com/showup-events/showup/internal/api"
	"github.com/showup-events/showup/internal/util/async"
)

// ErrNoUser is returned when an operation needs a logged-in user.
var ErrNoUser = errors.New("no user in session, run 'showup login' first")

// Persister loads and saves session State.
type Persister interface {
	Load() (State, error)
	Save(State) error
}

// Fetcher resolves ids to records.
type Fetcher interface {
	GetUser(ctx context.Context, id string) (*api.User, error)
	GetAccount(ctx context.Context, id string) (*api.Account, error)
}

// Session is safe for concurrent use.
type Session struct {
	store Persister
	fetch Fetcher
	log   logr.Logger

	mu      sync.RWMutex
	state   State
	user    *api.User
	account *api.Account
}

// New loads persisted ids from store.
func New(store Persister, fetch Fetcher, log logr.Logger) (*Session, error) {
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{store: store, fetch: fetch, log: log, state: st}, nil
}

// Hydrate refreshes the user and account records in parallel. An id that
// cannot be resolved is dropped from the session; the returned error joins
// the failures.
func (s *Session) Hydrate(ctx context.Context) error {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()

	var tasks []async.Task
	if st.UserID != "" {
		tasks = append(tasks, async.Task{Name: "user", Func: func(ctx context.Context) error {
			u, err := s.fetch.GetUser(ctx, st.UserID)
			if err != nil {
				s.log.Info("error refreshing user details", "error", err.Error())
				s.SetUser(nil)
				return err
			}
			s.SetUser(u)
			return nil
		}})
	}
	if st.AccountID != "" {
		tasks = append(tasks, async.Task{Name: "account", Func: func(ctx context.Context) error {
			a, err := s.fetch.GetAccount(ctx, st.AccountID)
			if err != nil {
				s.log.Info("error refreshing account details", "error", err.Error())
				s.SetAccount(nil)
				return err
			}
			s.SetAccount(a)
			return nil
		}})
	}

	return async.RunParallel(ctx, tasks)
}

// SetUser replaces the user and persists its id. nil clears it.
func (s *Session) SetUser(u *api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.state.UserID = ""
	if u != nil {
		s.state.UserID = u.ID
	}
	s.persistLocked()
}

// SetAccount replaces the account and persists its id. nil clears it.
func (s *Session) SetAccount(a *api.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = a
	s.state.AccountID = ""
	if a != nil {
		s.state.AccountID = a.ID
	}
	s.persistLocked()
}

// Clear forgets user and account.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.account = nil
	s.state = State{}
	s.persistLocked()
}

// User returns the hydrated user, or nil.
func (s *Session) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Account returns the hydrated account, or nil.
func (s *Session) Account() *api.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// UserID returns the current user id or ErrNoUser.
func (s *Session) UserID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.user.ID == "" {
		return "", ErrNoUser
	}
	return s.user.ID, nil
}

func (s *Session) persistLocked() {
	if err := s.store.Save(s.state); err != nil {
		s.log.Error(err, "failed to persist session")
	}
}
