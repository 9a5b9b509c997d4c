package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/csr-bridge/backend/internal/models"
)

func TestBusinessFilterMatch(t *testing.T) {
	b := &models.Business{ID: "b1", OwnerID: "meera"}
	assert.True(t, AllBusinesses().Match(b))
	assert.True(t, BusinessesOwnedBy("meera").Match(b))
	assert.False(t, BusinessesOwnedBy("someone-else").Match(b))
}

func TestEventFilterMatch(t *testing.T) {
	e := &models.Event{
		ID:                      "e1",
		NGOID:                   "priya",
		InvitedCorporates:       []string{"rajesh"},
		ParticipatingBusinesses: []models.EventBusiness{{BusinessID: "achar"}},
	}
	assert.True(t, AllEvents().Match(e))
	assert.True(t, EventsByNGO("priya").Match(e))
	assert.False(t, EventsByNGO("other").Match(e))
	assert.True(t, EventsInviting("rajesh").Match(e))
	assert.False(t, EventsInviting("other").Match(e))
	assert.True(t, EventsWithBusinesses([]string{"papad", "achar"}).Match(e))
	assert.False(t, EventsWithBusinesses([]string{"papad"}).Match(e))

	none := EventsWithBusinesses(nil)
	assert.Equal(t, ScopeNone, none.Scope)
	assert.False(t, none.Match(e))
}

func TestConnectionFilterMatch(t *testing.T) {
	c := &models.Connection{ID: "c1", EventID: "e1", BusinessID: "b1", CorporateID: "rajesh"}
	assert.True(t, ConnectionsByCorporate("rajesh").Match(c))
	assert.False(t, ConnectionsByCorporate("other").Match(c))
	assert.True(t, ConnectionsForBusinesses([]string{"b1"}).Match(c))
	assert.False(t, ConnectionsForBusinesses(nil).Match(c))
	assert.True(t, ConnectionsForEvents([]string{"e0", "e1"}).Match(c))
	assert.False(t, ConnectionsForEvents([]string{}).Match(c))
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2, 3}, 2)
	assert.Equal(t, []int{1, 2}, p.Items)
	assert.True(t, p.Truncated)

	p = NewPage([]int{1, 2}, 2)
	assert.False(t, p.Truncated)

	empty := NewPage[int](nil, 10)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}
