// Package memory is an in-process Store used by tests and by STORE_DRIVER=memory.
// Connection creation follows the same two-write sequence as the document
// store without a transaction, so a failure between the writes can be
// injected with FailAppend.
package memory

import (
	"context"
	"sync"

	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store"
)

// Store keeps every record in memory. Records are copied on the way in and
// out, so callers never share state with the store.
type Store struct {
	mu sync.RWMutex

	users       []*models.User
	userByID    map[string]*models.User
	userByEmail map[string]*models.User
	businesses  []*models.Business
	events      []*models.Event
	eventByID   map[string]*models.Event
	connections []*models.Connection

	appendErr error
}

var _ store.Store = (*Store)(nil)

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		userByID:    make(map[string]*models.User),
		userByEmail: make(map[string]*models.User),
		eventByID:   make(map[string]*models.Event),
	}
}

// FailAppend makes every following AppendConnectionSummary return err, until
// called again with nil.
func (s *Store) FailAppend(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendErr = err
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close is a no-op; the records are dropped with the Store.
func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.userByEmail[u.Email]; ok {
		return store.ErrDuplicateEmail
	}
	cp := *u
	s.users = append(s.users, &cp)
	s.userByID[cp.ID] = &cp
	s.userByEmail[cp.Email] = &cp
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.userByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.userByEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) CreateBusiness(ctx context.Context, b *models.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.businesses = append(s.businesses, copyBusiness(b))
	return nil
}

func (s *Store) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.businesses {
		if b.ID == id {
			return copyBusiness(b), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListBusinesses(ctx context.Context, f store.BusinessFilter, limit int) (store.Page[models.Business], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Business
	for _, b := range s.businesses {
		if f.Match(b) {
			out = append(out, *copyBusiness(b))
			if limit > 0 && len(out) > limit {
				break
			}
		}
	}
	return store.NewPage(out, limit), nil
}

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := copyEvent(e)
	s.events = append(s.events, cp)
	s.eventByID[cp.ID] = cp
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.eventByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyEvent(e), nil
}

func (s *Store) ListEvents(ctx context.Context, f store.EventFilter, limit int) (store.Page[models.Event], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Event
	for _, e := range s.events {
		if f.Match(e) {
			out = append(out, *copyEvent(e))
			if limit > 0 && len(out) > limit {
				break
			}
		}
	}
	return store.NewPage(out, limit), nil
}

func (s *Store) AppendConnectionSummary(ctx context.Context, eventID string, sum models.ConnectionSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	e, ok := s.eventByID[eventID]
	if !ok {
		return store.ErrNotFound
	}
	if e.HasConnection(sum.ID) {
		return nil
	}
	e.ConnectionsMade = append(e.ConnectionsMade, sum)
	return nil
}

func (s *Store) CreateConnection(ctx context.Context, c *models.Connection) error {
	s.mu.Lock()
	cp := *c
	s.connections = append(s.connections, &cp)
	s.mu.Unlock()

	if err := s.AppendConnectionSummary(ctx, c.EventID, c.Summary()); err != nil {
		return &store.PartialWriteError{Connection: c, Err: err}
	}
	return nil
}

func (s *Store) ListConnections(ctx context.Context, f store.ConnectionFilter, limit int) (store.Page[models.Connection], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Connection
	for _, c := range s.connections {
		if f.Match(c) {
			out = append(out, *c)
			if limit > 0 && len(out) > limit {
				break
			}
		}
	}
	return store.NewPage(out, limit), nil
}

func copyBusiness(b *models.Business) *models.Business {
	cp := *b
	cp.Products = append([]string{}, b.Products...)
	return &cp
}

func copyEvent(e *models.Event) *models.Event {
	cp := *e
	cp.ParticipatingBusinesses = append([]models.EventBusiness{}, e.ParticipatingBusinesses...)
	cp.InvitedCorporates = append([]string{}, e.InvitedCorporates...)
	cp.ConnectionsMade = append([]models.ConnectionSummary{}, e.ConnectionsMade...)
	return &cp
}
