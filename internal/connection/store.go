package connection

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/go-logr/logr"
)

// BasePath is the connection collection endpoint.
const BasePath = "/api/db/aws-connections"

// ErrEmptyID is returned for operations addressed by id without one.
var ErrEmptyID = errors.New("connection id is required")

// Requester is the subset of the API client the store needs.
type Requester interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Store reads and writes connections on the backend.
type Store struct {
	client Requester
	log    logr.Logger
}

// NewStore creates a Store.
func NewStore(client Requester, log logr.Logger) *Store {
	return &Store{client: client, log: log}
}

// List returns the caller's connections. Failures are logged and yield an
// empty list so that listing never breaks the caller.
func (s *Store) List(ctx context.Context) []Connection {
	var out []Connection
	if err := s.client.Get(ctx, BasePath, &out); err != nil {
		s.log.Error(err, "error fetching AWS connections")
		return []Connection{}
	}
	if out == nil {
		out = []Connection{}
	}
	return out
}

// Create stores a new connection and returns the backend's copy.
func (s *Store) Create(ctx context.Context, c *Connection) (*Connection, error) {
	var out Connection
	if err := s.client.Post(ctx, BasePath, c, &out); err != nil {
		return nil, fmt.Errorf("failed to create AWS connection: %w", err)
	}
	return &out, nil
}

// Update applies patch to the connection with the given id.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (*Connection, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	var out Connection
	if err := s.client.Put(ctx, itemPath(id), patch, &out); err != nil {
		return nil, fmt.Errorf("failed to update AWS connection: %w", err)
	}
	return &out, nil
}

// Delete removes the connection with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if err := s.client.Delete(ctx, itemPath(id), nil); err != nil {
		return fmt.Errorf("failed to delete AWS connection: %w", err)
	}
	return nil
}

func itemPath(id string) string {
	return BasePath + "/" + url.PathEscape(id)
}
