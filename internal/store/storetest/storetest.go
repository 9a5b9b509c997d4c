// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store"
)

// Run exercises s. Every record it writes uses fresh ids, so a shared
// database may be reused between runs.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	ngo := user(t, ctx, s, models.RoleNGO, now)
	owner := user(t, ctx, s, models.RoleBusinessOwner, now)
	corp := user(t, ctx, s, models.RoleCorporate, now)

	t.Run("users", func(t *testing.T) {
		got, err := s.GetUserByEmail(ctx, ngo.Email)
		require.NoError(t, err)
		assert.Equal(t, ngo.ID, got.ID)
		assert.Equal(t, models.RoleNGO, got.Role)
		assert.Equal(t, ngo.PasswordHash, got.PasswordHash)

		dup := *ngo
		dup.ID = uuid.NewString()
		assert.ErrorIs(t, s.CreateUser(ctx, &dup), store.ErrDuplicateEmail)

		_, err = s.GetUserByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	var biz *models.Business
	t.Run("businesses", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			b := &models.Business{
				ID: uuid.NewString(), OwnerID: owner.ID, Name: fmt.Sprintf("Shop %d", i),
				Description: "d", Category: "c", Location: "l", Products: []string{"tea"},
				CreatedAt: now.Add(time.Duration(i) * time.Second),
			}
			require.NoError(t, s.CreateBusiness(ctx, b))
			if biz == nil {
				biz = b
			}
		}
		page, err := s.ListBusinesses(ctx, store.BusinessesOwnedBy(owner.ID), 2)
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.True(t, page.Truncated)
		assert.Equal(t, biz.ID, page.Items[0].ID)

		page, err = s.ListBusinesses(ctx, store.BusinessesOwnedBy(owner.ID), 10)
		require.NoError(t, err)
		assert.Len(t, page.Items, 3)
		assert.False(t, page.Truncated)

		page, err = s.ListBusinesses(ctx, store.BusinessesOwnedBy(uuid.NewString()), 10)
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
	})
	require.NotNil(t, biz)

	var ev *models.Event
	t.Run("events", func(t *testing.T) {
		ev = &models.Event{
			ID: uuid.NewString(), NGOID: ngo.ID, NGOName: ngo.Name, Title: "Clean-up", Description: "d",
			InitiativeType: "environment", Date: now.Add(72 * time.Hour), Location: "l", TargetAudience: "all",
			ParticipatingBusinesses: []models.EventBusiness{{BusinessID: biz.ID, BusinessName: biz.Name}},
			InvitedCorporates:       []string{corp.ID},
			ConnectionsMade:         []models.ConnectionSummary{},
			Status:                  models.EventUpcoming,
			CreatedAt:               now,
		}
		require.NoError(t, s.CreateEvent(ctx, ev))

		for name, f := range map[string]store.EventFilter{
			"ngo":      store.EventsByNGO(ngo.ID),
			"invited":  store.EventsInviting(corp.ID),
			"business": store.EventsWithBusinesses([]string{biz.ID}),
		} {
			page, err := s.ListEvents(ctx, f, 10)
			require.NoError(t, err, name)
			require.Len(t, page.Items, 1, name)
			assert.Equal(t, ev.ID, page.Items[0].ID, name)
		}

		page, err := s.ListEvents(ctx, store.EventsWithBusinesses(nil), 10)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})
	require.NotNil(t, ev)

	t.Run("connections", func(t *testing.T) {
		c := &models.Connection{
			ID: uuid.NewString(), EventID: ev.ID, BusinessID: biz.ID, CorporateID: corp.ID,
			Status: models.ConnectionInterested, CreatedAt: now,
		}
		require.NoError(t, s.CreateConnection(ctx, c))

		got, err := s.GetEvent(ctx, ev.ID)
		require.NoError(t, err)
		require.Len(t, got.ConnectionsMade, 1)
		assert.Equal(t, c.ID, got.ConnectionsMade[0].ID)

		// Replaying the summary must not duplicate it.
		require.NoError(t, s.AppendConnectionSummary(ctx, ev.ID, c.Summary()))
		got, err = s.GetEvent(ctx, ev.ID)
		require.NoError(t, err)
		assert.Len(t, got.ConnectionsMade, 1)

		assert.ErrorIs(t, s.AppendConnectionSummary(ctx, uuid.NewString(), c.Summary()), store.ErrNotFound)

		for name, f := range map[string]store.ConnectionFilter{
			"corporate": store.ConnectionsByCorporate(corp.ID),
			"business":  store.ConnectionsForBusinesses([]string{biz.ID}),
			"event":     store.ConnectionsForEvents([]string{ev.ID}),
		} {
			page, err := s.ListConnections(ctx, f, 10)
			require.NoError(t, err, name)
			require.Len(t, page.Items, 1, name)
			assert.Equal(t, c.ID, page.Items[0].ID, name)
		}
	})
}

func user(t *testing.T, ctx context.Context, s store.Store, role models.Role, now time.Time) *models.User {
	t.Helper()
	id := uuid.NewString()
	u := &models.User{
		ID: id, Email: id + "@example.org", Name: string(role) + " user",
		Role: role, PasswordHash: "$2a$10$hash", CreatedAt: now,
	}
	require.NoError(t, s.CreateUser(ctx, u))
	return u
}
