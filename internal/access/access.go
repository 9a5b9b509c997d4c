// Package access decides which role may perform which operation and which
// records each identity can see in its scoped listings.
package access

import (
	"context"
	"fmt"

	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store"
)

// Operation is a gated action.
type Operation int

const (
	CreateBusiness Operation = iota
	CreateEvent
	CreateConnection
	ListMyBusinesses
	ListMyEvents
	ListConnections
	RequestImageUpload
)

func (op Operation) String() string {
	switch op {
	case CreateBusiness:
		return "create business"
	case CreateEvent:
		return "create event"
	case CreateConnection:
		return "create connection"
	case ListMyBusinesses:
		return "list my businesses"
	case ListMyEvents:
		return "list my events"
	case ListConnections:
		return "list connections"
	case RequestImageUpload:
		return "request image upload"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

// creatorRole is the only role allowed to run each create-style operation.
var creatorRole = map[Operation]models.Role{
	CreateBusiness:     models.RoleBusinessOwner,
	CreateEvent:        models.RoleNGO,
	CreateConnection:   models.RoleCorporate,
	RequestImageUpload: models.RoleBusinessOwner,
}

var denyMessage = map[Operation]string{
	CreateBusiness:     "only business owners can create businesses",
	CreateEvent:        "only NGOs can create events",
	CreateConnection:   "only corporates can create connections",
	RequestImageUpload: "only business owners can upload business images",
}

// Authorize returns a permission error when user may not run op. Public
// reads are not gated and never reach Authorize.
func Authorize(user *models.User, op Operation) error {
	if user == nil {
		return apperr.Unauthenticated("authentication required")
	}
	if !user.Role.Valid() {
		return apperr.Forbidden("unknown role")
	}
	switch op {
	case CreateBusiness, CreateEvent, CreateConnection, RequestImageUpload:
		if user.Role != creatorRole[op] {
			return apperr.Forbidden(denyMessage[op])
		}
		return nil
	case ListMyBusinesses, ListMyEvents, ListConnections:
		return nil
	default:
		return apperr.Forbidden("operation not permitted")
	}
}

// Policy builds role-scoped listing filters. Some scopes need the caller's
// own businesses or events, so it reads the store.
type Policy struct {
	businesses store.Businesses
	events     store.Events
}

// NewPolicy creates a Policy. Owned-id lookups are unbounded; only the
// final listing is capped.
func NewPolicy(businesses store.Businesses, events store.Events) *Policy {
	return &Policy{businesses: businesses, events: events}
}

// MyBusinesses returns the filter for the caller's own businesses.
func (p *Policy) MyBusinesses(user *models.User) (store.BusinessFilter, error) {
	if err := Authorize(user, ListMyBusinesses); err != nil {
		return store.BusinessFilter{}, err
	}
	return store.BusinessesOwnedBy(user.ID), nil
}

// MyEvents returns the filter for events relevant to the caller's role.
func (p *Policy) MyEvents(ctx context.Context, user *models.User) (store.EventFilter, error) {
	if err := Authorize(user, ListMyEvents); err != nil {
		return store.EventFilter{}, err
	}
	switch user.Role {
	case models.RoleNGO:
		return store.EventsByNGO(user.ID), nil
	case models.RoleCorporate:
		return store.EventsInviting(user.ID), nil
	case models.RoleBusinessOwner:
		ids, err := p.ownedBusinessIDs(ctx, user.ID)
		if err != nil {
			return store.EventFilter{}, err
		}
		return store.EventsWithBusinesses(ids), nil
	default:
		return store.EventFilter{}, apperr.Forbidden("unknown role")
	}
}

// Connections returns the filter for connections visible to the caller.
func (p *Policy) Connections(ctx context.Context, user *models.User) (store.ConnectionFilter, error) {
	if err := Authorize(user, ListConnections); err != nil {
		return store.ConnectionFilter{}, err
	}
	switch user.Role {
	case models.RoleCorporate:
		return store.ConnectionsByCorporate(user.ID), nil
	case models.RoleBusinessOwner:
		ids, err := p.ownedBusinessIDs(ctx, user.ID)
		if err != nil {
			return store.ConnectionFilter{}, err
		}
		return store.ConnectionsForBusinesses(ids), nil
	case models.RoleNGO:
		page, err := p.events.ListEvents(ctx, store.EventsByNGO(user.ID), 0)
		if err != nil {
			return store.ConnectionFilter{}, fmt.Errorf("list ngo events: %w", err)
		}
		ids := make([]string, 0, len(page.Items))
		for _, e := range page.Items {
			ids = append(ids, e.ID)
		}
		return store.ConnectionsForEvents(ids), nil
	default:
		return store.ConnectionFilter{}, apperr.Forbidden("unknown role")
	}
}

func (p *Policy) ownedBusinessIDs(ctx context.Context, ownerID string) ([]string, error) {
	page, err := p.businesses.ListBusinesses(ctx, store.BusinessesOwnedBy(ownerID), 0)
	if err != nil {
		return nil, fmt.Errorf("list owned businesses: %w", err)
	}
	ids := make([]string, 0, len(page.Items))
	for _, b := range page.Items {
		ids = append(ids, b.ID)
	}
	return ids, nil
}
