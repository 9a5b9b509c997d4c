package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureIndexes is called at startup. CreateMany is idempotent for identical
specs; every collection is attempted and the problems are reported together.
The unique email index is what enforces email uniqueness under concurrent
registrations.
*/
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("uniq_email").SetUnique(true)},
		},
		s.businesses: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("owner_created")},
		},
		s.events: {
			{Keys: bson.D{{Key: "ngo_id", Value: 1}}, Options: options.Index().SetName("ngo")},
			{Keys: bson.D{{Key: "invited_corporates", Value: 1}}, Options: options.Index().SetName("invited_corporates")},
			{Keys: bson.D{{Key: "participating_businesses.business_id", Value: 1}}, Options: options.Index().SetName("participating_business")},
		},
		s.connections: {
			{Keys: bson.D{{Key: "corporate_id", Value: 1}}, Options: options.Index().SetName("corporate")},
			{Keys: bson.D{{Key: "business_id", Value: 1}}, Options: options.Index().SetName("business")},
			{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetName("event")},
		},
	}

	var problems []string
	for coll, models := range specs {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			problems = append(problems, coll.Name()+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
