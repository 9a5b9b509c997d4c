// Package postgres implements store.Store on PostgreSQL. Embedded lists on
// events are kept as JSONB so the record shapes match the document backends.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store"
)

const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a PostgreSQL-backed store.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New returns a Store using pool. Migrations must already be applied.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// ---- users ----

const userColumns = `id, email, name, role, organization, phone, hashed_password, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.Organization, &u.Phone, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, models.NormalizeEmail(u.Email), u.Name, string(u.Role), u.Organization, u.Phone, u.PasswordHash, u.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrDuplicateEmail
	}
	return err
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, models.NormalizeEmail(email)))
}

// ---- businesses ----

const businessColumns = `id, owner_id, name, description, category, location, revenue_range, employees_count, products, image_url, created_at`

func scanBusiness(row pgx.Row) (*models.Business, error) {
	var b models.Business
	err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.Category, &b.Location,
		&b.RevenueRange, &b.EmployeesCount, &b.Products, &b.ImageURL, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	b.Products = nonNil(b.Products)
	return &b, nil
}

func (s *Store) CreateBusiness(ctx context.Context, b *models.Business) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO businesses (`+businessColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		b.ID, b.OwnerID, b.Name, b.Description, b.Category, b.Location,
		b.RevenueRange, b.EmployeesCount, nonNil(b.Products), b.ImageURL, b.CreatedAt,
	)
	return err
}

func (s *Store) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	return scanBusiness(s.pool.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id))
}

func (s *Store) ListBusinesses(ctx context.Context, f store.BusinessFilter, limit int) (store.Page[models.Business], error) {
	var where string
	var args []any
	switch f.Scope {
	case store.ScopeAll:
		where = "TRUE"
	case store.ScopeOwner:
		where, args = "owner_id = $1", []any{f.ID}
	default:
		return store.NewPage[models.Business](nil, limit), nil
	}
	return list(ctx, s.pool, `SELECT `+businessColumns+` FROM businesses WHERE `+where, args, limit, scanBusiness)
}

// ---- events ----

const eventColumns = `id, ngo_id, ngo_name, title, description, initiative_type, date, location, target_audience,
	participating_businesses, invited_corporates, connections_made, status, created_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	var participating, connections []byte
	var status string
	err := row.Scan(&e.ID, &e.NGOID, &e.NGOName, &e.Title, &e.Description, &e.InitiativeType, &e.Date,
		&e.Location, &e.TargetAudience, &participating, &e.InvitedCorporates, &connections, &status, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(participating, &e.ParticipatingBusinesses); err != nil {
		return nil, fmt.Errorf("decode participating_businesses: %w", err)
	}
	if err := json.Unmarshal(connections, &e.ConnectionsMade); err != nil {
		return nil, fmt.Errorf("decode connections_made: %w", err)
	}
	if e.ParticipatingBusinesses == nil {
		e.ParticipatingBusinesses = []models.EventBusiness{}
	}
	if e.ConnectionsMade == nil {
		e.ConnectionsMade = []models.ConnectionSummary{}
	}
	e.InvitedCorporates = nonNil(e.InvitedCorporates)
	e.Status = models.EventStatus(status)
	return &e, nil
}

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	participating := e.ParticipatingBusinesses
	if participating == nil {
		participating = []models.EventBusiness{}
	}
	connections := e.ConnectionsMade
	if connections == nil {
		connections = []models.ConnectionSummary{}
	}
	pb, err := json.Marshal(participating)
	if err != nil {
		return err
	}
	cm, err := json.Marshal(connections)
	if err != nil {
		return err
	}
	status := e.Status
	if status == "" {
		status = models.EventUpcoming
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11, $12::jsonb, $13, $14)`,
		e.ID, e.NGOID, e.NGOName, e.Title, e.Description, e.InitiativeType, e.Date, e.Location, e.TargetAudience,
		string(pb), nonNil(e.InvitedCorporates), string(cm), string(status), e.CreatedAt,
	)
	return err
}

func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return scanEvent(s.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

func (s *Store) ListEvents(ctx context.Context, f store.EventFilter, limit int) (store.Page[models.Event], error) {
	var where string
	var args []any
	switch f.Scope {
	case store.ScopeAll:
		where = "TRUE"
	case store.ScopeNGO:
		where, args = "ngo_id = $1", []any{f.ID}
	case store.ScopeInvitedCorporate:
		where, args = "$1 = ANY(invited_corporates)", []any{f.ID}
	case store.ScopeParticipatingBusinesses:
		where = `EXISTS (SELECT 1 FROM jsonb_array_elements(participating_businesses) pb
			WHERE pb->>'business_id' = ANY($1))`
		args = []any{f.IDs}
	default:
		return store.NewPage[models.Event](nil, limit), nil
	}
	return list(ctx, s.pool, `SELECT `+eventColumns+` FROM events WHERE `+where, args, limit, scanEvent)
}

func (s *Store) AppendConnectionSummary(ctx context.Context, eventID string, sum models.ConnectionSummary) error {
	return appendSummary(ctx, s.pool, eventID, sum)
}

func appendSummary(ctx context.Context, q querier, eventID string, sum models.ConnectionSummary) error {
	raw, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx,
		`UPDATE events SET connections_made = connections_made || jsonb_build_array($2::jsonb)
		 WHERE id = $1 AND NOT connections_made @> jsonb_build_array(jsonb_build_object('id', $3::text))`,
		eventID, string(raw), sum.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return nil
}

// ---- connections ----

const connectionColumns = `id, event_id, business_id, corporate_id, status, notes, created_at`

func scanConnection(row pgx.Row) (*models.Connection, error) {
	var c models.Connection
	var status string
	if err := row.Scan(&c.ID, &c.EventID, &c.BusinessID, &c.CorporateID, &status, &c.Notes, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	c.Status = models.ConnectionStatus(status)
	return &c, nil
}

// CreateConnection writes the connection and the event summary in one
// transaction, so a PartialWriteError is never returned.
func (s *Store) CreateConnection(ctx context.Context, c *models.Connection) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	status := c.Status
	if status == "" {
		status = models.ConnectionInterested
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO connections (`+connectionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.EventID, c.BusinessID, c.CorporateID, string(status), c.Notes, c.CreatedAt,
	); err != nil {
		return err
	}
	if err := appendSummary(ctx, tx, c.EventID, c.Summary()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ListConnections(ctx context.Context, f store.ConnectionFilter, limit int) (store.Page[models.Connection], error) {
	var where string
	var args []any
	switch f.Scope {
	case store.ScopeAll:
		where = "TRUE"
	case store.ScopeCorporate:
		where, args = "corporate_id = $1", []any{f.ID}
	case store.ScopeBusinesses:
		where, args = "business_id = ANY($1)", []any{f.IDs}
	case store.ScopeEvents:
		where, args = "event_id = ANY($1)", []any{f.IDs}
	default:
		return store.NewPage[models.Connection](nil, limit), nil
	}
	return list(ctx, s.pool, `SELECT `+connectionColumns+` FROM connections WHERE `+where, args, limit, scanConnection)
}

func list[T any](ctx context.Context, q querier, query string, args []any, limit int, scan func(pgx.Row) (*T, error)) (store.Page[T], error) {
	query += " ORDER BY created_at, id"
	if limit > 0 {
		args = append(args, limit+1)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return store.Page[T]{}, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return store.Page[T]{}, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return store.Page[T]{}, err
	}
	return store.NewPage(out, limit), nil
}
