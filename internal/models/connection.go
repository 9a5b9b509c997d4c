package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/pkg/utils"
)

// ConnectionStatus tracks how far a corporate/business partnership has progressed.
type ConnectionStatus string

const (
	ConnectionInterested        ConnectionStatus = "interested"
	ConnectionMeetingScheduled  ConnectionStatus = "meeting_scheduled"
	ConnectionPartnershipFormed ConnectionStatus = "partnership_formed"
)

// ParseConnectionStatus returns the ConnectionStatus named by s. Empty means interested.
func ParseConnectionStatus(s string) (ConnectionStatus, error) {
	switch st := ConnectionStatus(s); st {
	case "":
		return ConnectionInterested, nil
	case ConnectionInterested, ConnectionMeetingScheduled, ConnectionPartnershipFormed:
		return st, nil
	default:
		return "", apperr.Invalid("status must be one of interested, meeting_scheduled, partnership_formed")
	}
}

// Connection records a corporate's interest in a business surfaced by an event.
type Connection struct {
	ID          string           `json:"id" bson:"_id"`
	EventID     string           `json:"event_id" bson:"event_id"`
	BusinessID  string           `json:"business_id" bson:"business_id"`
	CorporateID string           `json:"corporate_id" bson:"corporate_id"`
	Status      ConnectionStatus `json:"status" bson:"status"`
	Notes       *string          `json:"notes" bson:"notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
}

// ConnectionSummary is the copy of a Connection embedded in its Event.
type ConnectionSummary struct {
	ID          string           `json:"id" bson:"id"`
	EventID     string           `json:"event_id" bson:"event_id"`
	BusinessID  string           `json:"business_id" bson:"business_id"`
	CorporateID string           `json:"corporate_id" bson:"corporate_id"`
	Status      ConnectionStatus `json:"status" bson:"status"`
	Notes       *string          `json:"notes" bson:"notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
}

// Summary returns the embedded copy of c.
func (c *Connection) Summary() ConnectionSummary {
	return ConnectionSummary{
		ID:          c.ID,
		EventID:     c.EventID,
		BusinessID:  c.BusinessID,
		CorporateID: c.CorporateID,
		Status:      c.Status,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
	}
}

// ConnectionInput holds the caller-supplied Connection fields.
type ConnectionInput struct {
	EventID    string
	BusinessID string
	Notes      *string
}

// Clean trims identifiers, strips markup from notes and checks required values.
func (in ConnectionInput) Clean() (ConnectionInput, error) {
	out := ConnectionInput{
		EventID:    utils.CleanText(in.EventID),
		BusinessID: utils.CleanText(in.BusinessID),
		Notes:      utils.CleanOptional(in.Notes),
	}
	if err := requireFields(
		field{"event_id", out.EventID},
		field{"business_id", out.BusinessID},
	); err != nil {
		return ConnectionInput{}, err
	}
	return out, nil
}

// NewConnection validates in and builds an interested Connection created by
// corporate, which must hold the corporate role.
func NewConnection(corporate *User, in ConnectionInput, now time.Time) (*Connection, error) {
	if corporate == nil || corporate.Role != RoleCorporate {
		return nil, apperr.Forbidden("only corporates can express interest")
	}
	in, err := in.Clean()
	if err != nil {
		return nil, err
	}
	return &Connection{
		ID:          uuid.NewString(),
		EventID:     in.EventID,
		BusinessID:  in.BusinessID,
		CorporateID: corporate.ID,
		Status:      ConnectionInterested,
		Notes:       in.Notes,
		CreatedAt:   now.UTC(),
	}, nil
}
