package access

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store"
	"github.com/csr-bridge/backend/internal/store/memory"
)

func TestAuthorizeMatrix(t *testing.T) {
	allowed := map[Operation]models.Role{
		CreateBusiness:     models.RoleBusinessOwner,
		CreateEvent:        models.RoleNGO,
		CreateConnection:   models.RoleCorporate,
		RequestImageUpload: models.RoleBusinessOwner,
	}
	for op, want := range allowed {
		for _, role := range models.Roles {
			err := Authorize(&models.User{ID: "u", Role: role}, op)
			if role == want {
				assert.NoError(t, err, "%s as %s", op, role)
			} else {
				assert.ErrorIs(t, err, apperr.ErrForbidden, "%s as %s", op, role)
			}
		}
	}

	for _, op := range []Operation{ListMyBusinesses, ListMyEvents, ListConnections} {
		for _, role := range models.Roles {
			assert.NoError(t, Authorize(&models.User{ID: "u", Role: role}, op))
		}
	}
}

func TestAuthorizeUnknownRoleAndOperation(t *testing.T) {
	assert.ErrorIs(t, Authorize(&models.User{Role: "admin"}, ListMyEvents), apperr.ErrForbidden)
	assert.ErrorIs(t, Authorize(&models.User{Role: models.RoleNGO}, Operation(99)), apperr.ErrForbidden)
	assert.ErrorIs(t, Authorize(nil, CreateEvent), apperr.ErrUnauthenticated)
	assert.ErrorIs(t, Authorize(&models.User{Role: " ngo"}, CreateEvent), apperr.ErrForbidden)
}

func seed(t *testing.T) (*memory.Store, *Policy) {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.CreateBusiness(ctx, &models.Business{ID: "b1", OwnerID: "meera"}))
	require.NoError(t, s.CreateBusiness(ctx, &models.Business{ID: "b2", OwnerID: "other"}))
	require.NoError(t, s.CreateEvent(ctx, &models.Event{
		ID: "e1", NGOID: "priya", InvitedCorporates: []string{"rajesh"},
		ParticipatingBusinesses: []models.EventBusiness{{BusinessID: "b1"}},
	}))
	require.NoError(t, s.CreateEvent(ctx, &models.Event{ID: "e2", NGOID: "someone"}))
	require.NoError(t, s.CreateConnection(ctx, &models.Connection{ID: "c1", EventID: "e1", BusinessID: "b1", CorporateID: "rajesh"}))
	require.NoError(t, s.CreateConnection(ctx, &models.Connection{ID: "c2", EventID: "e2", BusinessID: "b2", CorporateID: "other"}))
	return s, NewPolicy(s, s)
}

func TestMyEventsScopes(t *testing.T) {
	ctx := context.Background()
	s, p := seed(t)

	for _, u := range []*models.User{
		{ID: "priya", Role: models.RoleNGO},
		{ID: "rajesh", Role: models.RoleCorporate},
		{ID: "meera", Role: models.RoleBusinessOwner},
	} {
		f, err := p.MyEvents(ctx, u)
		require.NoError(t, err)
		page, err := s.ListEvents(ctx, f, 10)
		require.NoError(t, err)
		require.Len(t, page.Items, 1, u.Role)
		assert.Equal(t, "e1", page.Items[0].ID, u.Role)
	}

	// A business owner without businesses sees nothing.
	f, err := p.MyEvents(ctx, &models.User{ID: "nobody", Role: models.RoleBusinessOwner})
	require.NoError(t, err)
	assert.Equal(t, store.ScopeNone, f.Scope)
}

func TestConnectionScopes(t *testing.T) {
	ctx := context.Background()
	s, p := seed(t)

	for _, u := range []*models.User{
		{ID: "priya", Role: models.RoleNGO},
		{ID: "rajesh", Role: models.RoleCorporate},
		{ID: "meera", Role: models.RoleBusinessOwner},
	} {
		f, err := p.Connections(ctx, u)
		require.NoError(t, err)
		page, err := s.ListConnections(ctx, f, 10)
		require.NoError(t, err)
		require.Len(t, page.Items, 1, u.Role)
		assert.Equal(t, "c1", page.Items[0].ID, u.Role)
	}

	_, err := p.Connections(ctx, &models.User{ID: "x", Role: "auditor"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestOwnedLookupsAreUnbounded(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	n := store.DefaultLimit + 1
	for i := 0; i < n; i++ {
		require.NoError(t, s.CreateBusiness(ctx, &models.Business{ID: fmt.Sprintf("b%d", i), OwnerID: "meera"}))
		require.NoError(t, s.CreateEvent(ctx, &models.Event{ID: fmt.Sprintf("e%d", i), NGOID: "priya"}))
	}
	p := NewPolicy(s, s)

	ef, err := p.MyEvents(ctx, &models.User{ID: "meera", Role: models.RoleBusinessOwner})
	require.NoError(t, err)
	assert.Len(t, ef.IDs, n)
	assert.Contains(t, ef.IDs, fmt.Sprintf("b%d", n-1))

	cf, err := p.Connections(ctx, &models.User{ID: "priya", Role: models.RoleNGO})
	require.NoError(t, err)
	assert.Len(t, cf.IDs, n)
	assert.Contains(t, cf.IDs, fmt.Sprintf("e%d", n-1))
}

type failingBusinesses struct{ store.Businesses }

func (failingBusinesses) ListBusinesses(context.Context, store.BusinessFilter, int) (store.Page[models.Business], error) {
	return store.Page[models.Business]{}, errors.New("boom")
}

func TestPolicyPropagatesStoreErrors(t *testing.T) {
	p := NewPolicy(failingBusinesses{}, memory.NewStore())
	_, err := p.MyEvents(context.Background(), &models.User{ID: "meera", Role: models.RoleBusinessOwner})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrForbidden)
}
