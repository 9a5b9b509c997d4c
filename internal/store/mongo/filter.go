package mongo

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/csr-bridge/backend/internal/store"
)

// The translators return ok=false for filters that match nothing, so the
// caller can skip the round trip.

func businessFilter(f store.BusinessFilter) (bson.M, bool) {
	switch f.Scope {
	case store.ScopeAll:
		return bson.M{}, true
	case store.ScopeOwner:
		return bson.M{"owner_id": f.ID}, true
	default:
		return nil, false
	}
}

func eventFilter(f store.EventFilter) (bson.M, bool) {
	switch f.Scope {
	case store.ScopeAll:
		return bson.M{}, true
	case store.ScopeNGO:
		return bson.M{"ngo_id": f.ID}, true
	case store.ScopeInvitedCorporate:
		return bson.M{"invited_corporates": f.ID}, true
	case store.ScopeParticipatingBusinesses:
		return bson.M{"participating_businesses.business_id": bson.M{"$in": f.IDs}}, true
	default:
		return nil, false
	}
}

func connectionFilter(f store.ConnectionFilter) (bson.M, bool) {
	switch f.Scope {
	case store.ScopeAll:
		return bson.M{}, true
	case store.ScopeCorporate:
		return bson.M{"corporate_id": f.ID}, true
	case store.ScopeBusinesses:
		return bson.M{"business_id": bson.M{"$in": f.IDs}}, true
	case store.ScopeEvents:
		return bson.M{"event_id": bson.M{"$in": f.IDs}}, true
	default:
		return nil, false
	}
}
