// Package accounts lists the cloud accounts a connection can be scoped to.
package accounts

import (
	"context"
	"time"

	"github.com/juju/clock"

	"github.com/showup-events/showup/internal/connection"
)

// DefaultStubDelay is how long StubLister pretends to work.
const DefaultStubDelay = time.Second

// Account is a selectable cloud account.
type Account struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Lister fetches the accounts reachable with a credential set.
type Lister interface {
	ListAccounts(ctx context.Context, creds connection.Credentials) ([]Account, error)
}

// StubLister stands in for real account discovery. It waits Delay and
// returns no accounts.
type StubLister struct {
	Delay time.Duration
	Clock clock.Clock
}

// NewStubLister returns a StubLister on the wall clock.
func NewStubLister(delay time.Duration) *StubLister {
	return &StubLister{Delay: delay, Clock: clock.WallClock}
}

// ListAccounts implements Lister.
func (s *StubLister) ListAccounts(ctx context.Context, _ connection.Credentials) ([]Account, error) {
	clk := s.Clock
	if clk == nil {
		clk = clock.WallClock
	}

	if s.Delay > 0 {
		select {
		case <-clk.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []Account{}, nil
}

// IDs returns the account ids in order.
func IDs(list []Account) []string {
	ids := make([]string, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	return ids
}
