// Package store defines the entity store shared by every storage backend:
// four record kinds, insert and find-by-filter, nothing else.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/csr-bridge/backend/internal/models"
)

// DefaultLimit caps listing results when the caller passes no bound.
const DefaultLimit = 1000

var (
	// ErrNotFound is returned when a lookup by id or email matches nothing.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicateEmail is returned when a user with the same email exists.
	ErrDuplicateEmail = errors.New("store: duplicate email")
)

// PartialWriteError reports that a Connection was persisted but its summary
// could not be appended to the referenced Event.
type PartialWriteError struct {
	Connection *models.Connection
	Err        error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("connection %s stored but event %s not updated: %v",
		e.Connection.ID, e.Connection.EventID, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// Page is a bounded listing result. Truncated is set when more records
// matched than were returned.
type Page[T any] struct {
	Items     []T
	Truncated bool
}

// NewPage trims items to limit. Backends fetch limit+1 records so that
// truncation can be detected without a count query.
func NewPage[T any](items []T, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	if limit > 0 && len(items) > limit {
		return Page[T]{Items: items[:limit], Truncated: true}
	}
	return Page[T]{Items: items}
}

// Users persists platform users.
type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Businesses persists business profiles.
type Businesses interface {
	CreateBusiness(ctx context.Context, b *models.Business) error
	GetBusiness(ctx context.Context, id string) (*models.Business, error)
	ListBusinesses(ctx context.Context, f BusinessFilter, limit int) (Page[models.Business], error)
}

// Events persists events and their embedded connection summaries.
type Events interface {
	CreateEvent(ctx context.Context, e *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context, f EventFilter, limit int) (Page[models.Event], error)
	// AppendConnectionSummary adds s to the event's connections_made unless a
	// summary with the same id is already there. It returns ErrNotFound when
	// the event does not exist.
	AppendConnectionSummary(ctx context.Context, eventID string, s models.ConnectionSummary) error
}

// Connections persists connections.
type Connections interface {
	// CreateConnection inserts c and appends its summary to the referenced
	// event. When both writes cannot be made atomic and the second fails,
	// the returned error is a *PartialWriteError.
	CreateConnection(ctx context.Context, c *models.Connection) error
	ListConnections(ctx context.Context, f ConnectionFilter, limit int) (Page[models.Connection], error)
}

// Store is the full entity store.
type Store interface {
	Users
	Businesses
	Events
	Connections
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
