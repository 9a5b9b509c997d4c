package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/csr-bridge/backend/internal/apperr"
	"github.com/csr-bridge/backend/pkg/utils"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
)

// ParseEventStatus returns the EventStatus named by s. Empty means upcoming.
func ParseEventStatus(s string) (EventStatus, error) {
	switch st := EventStatus(s); st {
	case "":
		return EventUpcoming, nil
	case EventUpcoming, EventOngoing, EventCompleted:
		return st, nil
	default:
		return "", apperr.Invalid("status must be one of upcoming, ongoing, completed")
	}
}

// EventBusiness is a point-in-time copy of a participating business.
type EventBusiness struct {
	BusinessID   string `json:"business_id" bson:"business_id"`
	BusinessName string `json:"business_name" bson:"business_name"`
	Description  string `json:"description" bson:"description"`
	Category     string `json:"category" bson:"category"`
}

// Event is an NGO-run initiative that surfaces businesses to corporates.
type Event struct {
	ID                      string              `json:"id" bson:"_id"`
	NGOID                   string              `json:"ngo_id" bson:"ngo_id"`
	NGOName                 string              `json:"ngo_name" bson:"ngo_name"`
	Title                   string              `json:"title" bson:"title"`
	Description             string              `json:"description" bson:"description"`
	InitiativeType          string              `json:"initiative_type" bson:"initiative_type"` // women_empowerment, skill_development, ...
	Date                    time.Time           `json:"date" bson:"date"`
	Location                string              `json:"location" bson:"location"`
	TargetAudience          string              `json:"target_audience" bson:"target_audience"`
	ParticipatingBusinesses []EventBusiness     `json:"participating_businesses" bson:"participating_businesses"`
	InvitedCorporates       []string            `json:"invited_corporates" bson:"invited_corporates"`
	ConnectionsMade         []ConnectionSummary `json:"connections_made" bson:"connections_made"`
	Status                  EventStatus         `json:"status" bson:"status"`
	CreatedAt               time.Time           `json:"created_at" bson:"created_at"`
}

// HasConnection reports whether a summary for connectionID is already embedded.
func (e *Event) HasConnection(connectionID string) bool {
	for _, s := range e.ConnectionsMade {
		if s.ID == connectionID {
			return true
		}
	}
	return false
}

// EventInput holds the caller-supplied Event fields.
type EventInput struct {
	Title                   string
	Description             string
	InitiativeType          string
	Date                    time.Time
	Location                string
	TargetAudience          string
	ParticipatingBusinesses []EventBusiness
	InvitedCorporates       []string
}

// Clean strips markup from every text field and checks required values.
func (in EventInput) Clean() (EventInput, error) {
	out := EventInput{
		Title:          utils.CleanText(in.Title),
		Description:    utils.CleanText(in.Description),
		InitiativeType: utils.CleanText(in.InitiativeType),
		Date:           in.Date.UTC(),
		Location:       utils.CleanText(in.Location),
		TargetAudience: utils.CleanText(in.TargetAudience),
	}
	if err := requireFields(
		field{"title", out.Title},
		field{"description", out.Description},
		field{"initiative_type", out.InitiativeType},
		field{"location", out.Location},
		field{"target_audience", out.TargetAudience},
	); err != nil {
		return EventInput{}, err
	}
	if in.Date.IsZero() {
		return EventInput{}, apperr.Invalid("date is required")
	}

	out.ParticipatingBusinesses = make([]EventBusiness, 0, len(in.ParticipatingBusinesses))
	for i, pb := range in.ParticipatingBusinesses {
		c := EventBusiness{
			BusinessID:   utils.CleanText(pb.BusinessID),
			BusinessName: utils.CleanText(pb.BusinessName),
			Description:  utils.CleanText(pb.Description),
			Category:     utils.CleanText(pb.Category),
		}
		if c.BusinessID == "" || c.BusinessName == "" {
			return EventInput{}, apperr.Invalid("participating_businesses[%d] needs business_id and business_name", i)
		}
		out.ParticipatingBusinesses = append(out.ParticipatingBusinesses, c)
	}
	out.InvitedCorporates = utils.CleanList(in.InvitedCorporates)
	return out, nil
}

// NewEvent validates in and builds an upcoming Event created by ngo, which
// must hold the ngo role.
func NewEvent(ngo *User, in EventInput, now time.Time) (*Event, error) {
	if ngo == nil || ngo.Role != RoleNGO {
		return nil, apperr.Forbidden("only NGOs can create events")
	}
	in, err := in.Clean()
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:                      uuid.NewString(),
		NGOID:                   ngo.ID,
		NGOName:                 ngo.Name,
		Title:                   in.Title,
		Description:             in.Description,
		InitiativeType:          in.InitiativeType,
		Date:                    in.Date,
		Location:                in.Location,
		TargetAudience:          in.TargetAudience,
		ParticipatingBusinesses: in.ParticipatingBusinesses,
		InvitedCorporates:       in.InvitedCorporates,
		ConnectionsMade:         []ConnectionSummary{},
		Status:                  EventUpcoming,
		CreatedAt:               now.UTC(),
	}, nil
}
