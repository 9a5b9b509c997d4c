package store

import "github.com/csr-bridge/backend/internal/models"

// Scope selects which predicate a filter applies.
type Scope int

const (
	// ScopeAll matches every record.
	ScopeAll Scope = iota
	// ScopeNone matches nothing.
	ScopeNone
	// ScopeOwner matches businesses owned by ID.
	ScopeOwner
	// ScopeNGO matches events created by ID.
	ScopeNGO
	// ScopeInvitedCorporate matches events whose invited_corporates contain ID.
	ScopeInvitedCorporate
	// ScopeParticipatingBusinesses matches events with a participating business in IDs.
	ScopeParticipatingBusinesses
	// ScopeCorporate matches connections created by ID.
	ScopeCorporate
	// ScopeBusinesses matches connections whose business_id is in IDs.
	ScopeBusinesses
	// ScopeEvents matches connections whose event_id is in IDs.
	ScopeEvents
)

// BusinessFilter selects businesses.
type BusinessFilter struct {
	Scope Scope
	ID    string
}

// AllBusinesses matches every business.
func AllBusinesses() BusinessFilter { return BusinessFilter{Scope: ScopeAll} }

// BusinessesOwnedBy matches businesses with owner_id == ownerID.
func BusinessesOwnedBy(ownerID string) BusinessFilter {
	return BusinessFilter{Scope: ScopeOwner, ID: ownerID}
}

// Match reports whether b is selected by f.
func (f BusinessFilter) Match(b *models.Business) bool {
	switch f.Scope {
	case ScopeAll:
		return true
	case ScopeOwner:
		return b.OwnerID == f.ID
	default:
		return false
	}
}

// EventFilter selects events.
type EventFilter struct {
	Scope Scope
	ID    string
	IDs   []string
}

// AllEvents matches every event.
func AllEvents() EventFilter { return EventFilter{Scope: ScopeAll} }

// EventsByNGO matches events with ngo_id == ngoID.
func EventsByNGO(ngoID string) EventFilter { return EventFilter{Scope: ScopeNGO, ID: ngoID} }

// EventsInviting matches events whose invited_corporates contain corporateID.
func EventsInviting(corporateID string) EventFilter {
	return EventFilter{Scope: ScopeInvitedCorporate, ID: corporateID}
}

// EventsWithBusinesses matches events where any participating business id is
// in businessIDs. An empty set matches nothing.
func EventsWithBusinesses(businessIDs []string) EventFilter {
	if len(businessIDs) == 0 {
		return EventFilter{Scope: ScopeNone}
	}
	return EventFilter{Scope: ScopeParticipatingBusinesses, IDs: businessIDs}
}

// Match reports whether e is selected by f.
func (f EventFilter) Match(e *models.Event) bool {
	switch f.Scope {
	case ScopeAll:
		return true
	case ScopeNGO:
		return e.NGOID == f.ID
	case ScopeInvitedCorporate:
		return contains(e.InvitedCorporates, f.ID)
	case ScopeParticipatingBusinesses:
		for _, pb := range e.ParticipatingBusinesses {
			if contains(f.IDs, pb.BusinessID) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ConnectionFilter selects connections.
type ConnectionFilter struct {
	Scope Scope
	ID    string
	IDs   []string
}

// ConnectionsByCorporate matches connections with corporate_id == corporateID.
func ConnectionsByCorporate(corporateID string) ConnectionFilter {
	return ConnectionFilter{Scope: ScopeCorporate, ID: corporateID}
}

// ConnectionsForBusinesses matches connections whose business_id is in
// businessIDs. An empty set matches nothing.
func ConnectionsForBusinesses(businessIDs []string) ConnectionFilter {
	if len(businessIDs) == 0 {
		return ConnectionFilter{Scope: ScopeNone}
	}
	return ConnectionFilter{Scope: ScopeBusinesses, IDs: businessIDs}
}

// ConnectionsForEvents matches connections whose event_id is in eventIDs.
// An empty set matches nothing.
func ConnectionsForEvents(eventIDs []string) ConnectionFilter {
	if len(eventIDs) == 0 {
		return ConnectionFilter{Scope: ScopeNone}
	}
	return ConnectionFilter{Scope: ScopeEvents, IDs: eventIDs}
}

// Match reports whether c is selected by f.
func (f ConnectionFilter) Match(c *models.Connection) bool {
	switch f.Scope {
	case ScopeAll:
		return true
	case ScopeCorporate:
		return c.CorporateID == f.ID
	case ScopeBusinesses:
		return contains(f.IDs, c.BusinessID)
	case ScopeEvents:
		return contains(f.IDs, c.EventID)
	default:
		return false
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
