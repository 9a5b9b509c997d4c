// Package mongo implements store.Store on MongoDB, one collection per record kind.
package mongo

import (
	"context"
	"errors"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store"
)

const (
	colUsers       = "users"
	colBusinesses  = "businesses"
	colEvents      = "events"
	colConnections = "connections"
)

// Store is a MongoDB-backed store.Store.
type Store struct {
	client      *mongo.Client
	users       *mongo.Collection
	businesses  *mongo.Collection
	events      *mongo.Collection
	connections *mongo.Collection
	logger      *zap.Logger

	// noTxn is set once the deployment has refused a transaction
	// (standalone server); later connection writes go straight to the
	// sequential path.
	noTxn atomic.Bool
}

var _ store.Store = (*Store)(nil)

// New returns a Store over the named database.
func New(client *mongo.Client, dbName string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	db := client.Database(dbName)
	return &Store{
		client:      client,
		users:       db.Collection(colUsers),
		businesses:  db.Collection(colBusinesses),
		events:      db.Collection(colEvents),
		connections: db.Collection(colConnections),
		logger:      logger,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// listOptions sorts by creation and fetches one record past limit so
// store.NewPage can detect truncation.
func listOptions(limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit) + 1)
	}
	return opts
}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := c.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func list[T any](ctx context.Context, c *mongo.Collection, filter bson.M, limit int) (store.Page[T], error) {
	cur, err := c.Find(ctx, filter, listOptions(limit))
	if err != nil {
		return store.Page[T]{}, err
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return store.Page[T]{}, err
	}
	return store.NewPage(out, limit), nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"email": models.NormalizeEmail(email)})
}

func (s *Store) CreateBusiness(ctx context.Context, b *models.Business) error {
	_, err := s.businesses.InsertOne(ctx, b)
	return err
}

func (s *Store) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	return findOne[models.Business](ctx, s.businesses, bson.M{"_id": id})
}

func (s *Store) ListBusinesses(ctx context.Context, f store.BusinessFilter, limit int) (store.Page[models.Business], error) {
	filter, ok := businessFilter(f)
	if !ok {
		return store.NewPage[models.Business](nil, limit), nil
	}
	return list[models.Business](ctx, s.businesses, filter, limit)
}

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	_, err := s.events.InsertOne(ctx, e)
	return err
}

func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return findOne[models.Event](ctx, s.events, bson.M{"_id": id})
}

func (s *Store) ListEvents(ctx context.Context, f store.EventFilter, limit int) (store.Page[models.Event], error) {
	filter, ok := eventFilter(f)
	if !ok {
		return store.NewPage[models.Event](nil, limit), nil
	}
	return list[models.Event](ctx, s.events, filter, limit)
}

func (s *Store) AppendConnectionSummary(ctx context.Context, eventID string, sum models.ConnectionSummary) error {
	res, err := s.events.UpdateOne(ctx,
		bson.M{"_id": eventID, "connections_made.id": bson.M{"$ne": sum.ID}},
		bson.M{"$push": bson.M{"connections_made": sum}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	// Either the event is missing or the summary is already embedded.
	n, err := s.events.CountDocuments(ctx, bson.M{"_id": eventID})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateConnection(ctx context.Context, c *models.Connection) error {
	if !s.noTxn.Load() {
		err := s.createConnectionTxn(ctx, c)
		if err == nil || !isTxnNotSupported(err) {
			return err
		}
		s.noTxn.Store(true)
		s.logger.Warn("mongo transactions unavailable; connection writes are not atomic", zap.Error(err))
	}

	if _, err := s.connections.InsertOne(ctx, c); err != nil {
		return err
	}
	if err := s.AppendConnectionSummary(ctx, c.EventID, c.Summary()); err != nil {
		return &store.PartialWriteError{Connection: c, Err: err}
	}
	return nil
}

func (s *Store) createConnectionTxn(ctx context.Context, c *models.Connection) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.connections.InsertOne(sc, c); err != nil {
			return nil, err
		}
		return nil, s.AppendConnectionSummary(sc, c.EventID, c.Summary())
	})
	return err
}

func (s *Store) ListConnections(ctx context.Context, f store.ConnectionFilter, limit int) (store.Page[models.Connection], error) {
	filter, ok := connectionFilter(f)
	if !ok {
		return store.NewPage[models.Connection](nil, limit), nil
	}
	return list[models.Connection](ctx, s.connections, filter, limit)
}
